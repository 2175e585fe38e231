// Package terminal provides terminal session management and command
// execution.
//
// A Session is a logical terminal context: working directory, private
// environment, input history, and at most one live child process. The
// Manager is the authoritative session registry; the Executor runs one-shot
// commands with no session state.
//
// Components:
//   - Manager: Session registry, interactive shells, history, idle reaping
//   - Executor: One-shot execution with cd/clear built-ins and root support
//   - Provider: Service surface dispatching terminal.* tools
//
// Interactive shells stream output through dedicated reader goroutines into
// bounded line channels; ReadOutput drains within a caller-chosen window
// without blocking other sessions.
package terminal
