// Package ws provides WebSocket streaming for terminal sessions.
//
// A connection attaches to one session. Shell output is polled and pushed
// to the client as it arrives; input, start_shell, and stop messages drive
// the session. A single writer goroutine serializes all connection writes.
package ws
