package terminal

import "errors"

// Sentinel errors for session and process operations. Public operations
// translate these into structured results at the provider boundary;
// nothing panics across it.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrProcessRunning   = errors.New("a process is already running in this session")
	ErrNoProcess        = errors.New("no interactive shell running in this session")
	ErrStdinUnavailable = errors.New("shell stdin not available")
	ErrNotPTY           = errors.New("session is not backed by a PTY")
)
