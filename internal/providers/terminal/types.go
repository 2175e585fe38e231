package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Session is a logical terminal context: working directory, private
// environment copy, input history, and at most one owned live process.
type Session struct {
	ID string

	mu           sync.Mutex
	workingDir   string
	env          map[string]string
	history      []string
	createdAt    time.Time
	lastActivity time.Time
	proc         *Process
}

// touch updates the last-activity timestamp. Caller holds s.mu.
func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// Process is a live child owned by exactly one session.
type Process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	ptmx  *os.File // set when started under a PTY

	// Line channels fed by dedicated reader goroutines; closed on EOF.
	stdout chan string
	stderr chan string

	command   string
	startedAt time.Time

	// done is closed once the child has been reaped.
	done    chan struct{}
	exitErr error
}

// Running reports whether the child is still alive. Non-blocking.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// kill terminates the child unconditionally and releases its handles.
func (p *Process) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.closeHandles()
}

// stop terminates the child, optionally with a SIGTERM grace window
// before escalating to SIGKILL.
func (p *Process) stop(graceful bool, wait time.Duration) {
	if p.cmd.Process == nil {
		p.closeHandles()
		return
	}

	if graceful {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-p.done:
			p.closeHandles()
			return
		case <-time.After(wait):
		}
	}

	_ = p.cmd.Process.Kill()
	p.closeHandles()
}

func (p *Process) closeHandles() {
	if p.stdin != nil {
		_ = p.stdin.Close()
		p.stdin = nil
	}
	if p.ptmx != nil {
		_ = p.ptmx.Close()
		p.ptmx = nil
	}
}

// CommandResult is the value produced by one-shot execution. Never stored.
type CommandResult struct {
	Success          bool     `json:"success"`
	Output           []string `json:"output"`
	ErrorOutput      []string `json:"error_output"`
	ExitCode         int      `json:"exit_code"`
	ExecutionTimeMS  int64    `json:"execution_time_ms"`
	Command          string   `json:"command"`
	WorkingDirectory string   `json:"working_directory"`
	Timestamp        int64    `json:"timestamp"`
}

func (r CommandResult) asMap() map[string]interface{} {
	return map[string]interface{}{
		"success":           r.Success,
		"output":            r.Output,
		"error_output":      r.ErrorOutput,
		"exit_code":         r.ExitCode,
		"execution_time_ms": r.ExecutionTimeMS,
		"command":           r.Command,
		"working_directory": r.WorkingDirectory,
		"timestamp":         r.Timestamp,
	}
}

// SessionSummary is the public snapshot of a session.
type SessionSummary struct {
	SessionID        string `json:"session_id"`
	WorkingDirectory string `json:"working_directory"`
	ProcessRunning   bool   `json:"process_running"`
	CurrentCommand   string `json:"current_command"`
	ProcessStartTime int64  `json:"process_start_time,omitempty"`
	HistorySize      int    `json:"history_size"`
	CreatedAt        int64  `json:"created_at"`
	LastActivity     int64  `json:"last_activity"`
	IdleTimeSeconds  int64  `json:"idle_time_seconds"`
}

// DefaultRoot is what WorkingDirectory reports for unknown session ids.
// The source behavior returns a root path instead of signaling not-found;
// callers that need the distinction use SessionInfo.
const DefaultRoot = "/"

// seedEnv builds a session's private environment: the ambient process
// environment plus synthesized terminal defaults.
func seedEnv(workingDir string) map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}

	env["TERM"] = "xterm-256color"
	env["LANG"] = "en_US.UTF-8"
	env["HOME"] = workingDir
	env["PS1"] = "\\[\\e[32m\\]\\u@\\h:\\[\\e[34m\\]\\w\\[\\e[0m\\]\\$ "
	env["HISTSIZE"] = "1000"
	env["HISTFILESIZE"] = "2000"

	return env
}

// flattenEnv converts an environment map to the KEY=value form expected
// by exec.Cmd.Env.
func flattenEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
