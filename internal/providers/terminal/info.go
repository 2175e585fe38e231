package terminal

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Capabilities describes which terminal features this host supports.
type Capabilities struct {
	Sessions      bool `json:"sessions"`
	Interactive   bool `json:"interactive"`
	PTY           bool `json:"pty"`
	RootExecution bool `json:"root_execution"`
	History       bool `json:"history"`
}

// TerminalInfo is the static description of the terminal facility.
type TerminalInfo struct {
	Version       string       `json:"version"`
	Available     bool         `json:"available"`
	ShellPath     string       `json:"shell_path"`
	OSInfo        string       `json:"os_info"`
	RootAvailable bool         `json:"root_available"`
	Features      []string     `json:"features"`
	Capabilities  Capabilities `json:"capabilities"`
}

// Info probes the host and reports terminal capabilities.
func (m *Manager) Info(ctx context.Context, executor *Executor) TerminalInfo {
	root := executor.RootAvailable(ctx)

	return TerminalInfo{
		Version:       "1.0.0",
		Available:     true,
		ShellPath:     m.resolveShell(),
		OSInfo:        osInfo(ctx),
		RootAvailable: root,
		Features: []string{
			"sessions",
			"interactive_shell",
			"pty",
			"command_history",
			"environment",
		},
		Capabilities: Capabilities{
			Sessions:      true,
			Interactive:   true,
			PTY:           true,
			RootExecution: root,
			History:       true,
		},
	}
}

func osInfo(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "uname", "-a").Output()
	if err != nil {
		return runtime.GOOS
	}
	return strings.TrimSpace(string(out))
}

// EnvVars returns the session's private environment snapshot, or the
// ambient process environment when the id is unknown.
func (m *Manager) EnvVars(sessionID string) map[string]string {
	session, ok := m.get(sessionID)
	if !ok {
		env := make(map[string]string)
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i > 0 {
				env[kv[:i]] = kv[i+1:]
			}
		}
		return env
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	env := make(map[string]string, len(session.env))
	for k, v := range session.env {
		env[k] = v
	}
	return env
}
