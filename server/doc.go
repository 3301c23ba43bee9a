// Package server exposes the chatbot over HTTP with fiber.
//
// Every session id owns its own agent and conversation. Sessions live in an
// in-memory cache and expire after a period of inactivity.
package server
