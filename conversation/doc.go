// Package conversation holds the bounded turn history of one chat session.
//
// A State keeps the most recent W turns (10 by default) and evicts the oldest
// first. Each session owns its own State; nothing here is process-global.
package conversation
