// Package tui is a terminal chat client for the agent built with bubbletea.
package tui
