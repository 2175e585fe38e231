package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.uber.org/zap"
)

// shellCandidates are probed in order when $SHELL is unusable.
var shellCandidates = []string{
	"/bin/bash",
	"/usr/bin/bash",
	"/bin/zsh",
	"/usr/bin/zsh",
	"/bin/sh",
	"/system/bin/sh",
}

const fallbackShell = "/bin/sh"

// StartShellOptions configures an interactive shell start.
type StartShellOptions struct {
	// PTY spawns the shell under a pseudo-terminal instead of plain pipes,
	// enabling Resize. Output arrives on the stdout stream only.
	PTY  bool
	Cols int
	Rows int
}

// StartShell spawns an interactive shell on the session. It fails when the
// session already owns a live process. The shell runs with the session's own
// environment (replacing the ambient one) and working directory.
// Returns the resolved shell path.
func (m *Manager) StartShell(sessionID string, opts StartShellOptions) (string, error) {
	session, ok := m.get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.proc != nil {
		if session.proc.Running() {
			return "", ErrProcessRunning
		}
		// Lazily reap a process that exited on its own.
		session.proc.closeHandles()
		session.proc = nil
	}

	shellPath := m.resolveShell()

	cmd := exec.Command(shellPath)
	cmd.Dir = session.workingDir
	cmd.Env = flattenEnv(session.env)

	proc := &Process{
		cmd:       cmd,
		stdout:    make(chan string, m.opts.OutputBuffer),
		stderr:    make(chan string, m.opts.OutputBuffer),
		command:   "interactive shell",
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	if opts.PTY {
		if err := startPTY(proc, opts); err != nil {
			return "", fmt.Errorf("failed to start shell: %w", err)
		}
	} else {
		if err := startPiped(proc); err != nil {
			return "", fmt.Errorf("failed to start shell: %w", err)
		}
	}

	session.proc = proc
	session.touch()

	if m.metrics != nil {
		m.metrics.ShellsStarted.Inc()
	}
	m.logger.Info("interactive shell started",
		zap.String("session_id", sessionID),
		zap.String("shell", shellPath),
		zap.Bool("pty", opts.PTY))

	return shellPath, nil
}

// startPiped wires plain stdin/stdout/stderr pipes and one reader goroutine
// per output stream. Each reader pushes complete lines into a bounded
// channel and closes it at end-of-stream; the wait goroutine reaps the
// child once both streams are drained.
func startPiped(proc *Process) error {
	stdin, err := proc.cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := proc.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := proc.cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := proc.cmd.Start(); err != nil {
		return err
	}
	proc.stdin = stdin

	var readers sync.WaitGroup
	readers.Add(2)
	go readLines(stdout, proc.stdout, &readers)
	go readLines(stderr, proc.stderr, &readers)

	go func() {
		readers.Wait()
		proc.exitErr = proc.cmd.Wait()
		close(proc.done)
	}()

	return nil
}

// startPTY spawns the shell under a pseudo-terminal. The PTY is a single
// bidirectional stream, so all output lands on the stdout channel and the
// stderr channel is closed immediately.
func startPTY(proc *Process, opts StartShellOptions) error {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	ptmx, err := pty.StartWithSize(proc.cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return err
	}
	proc.ptmx = ptmx
	close(proc.stderr)

	var readers sync.WaitGroup
	readers.Add(1)
	go readLines(ptmx, proc.stdout, &readers)

	go func() {
		readers.Wait()
		proc.exitErr = proc.cmd.Wait()
		close(proc.done)
	}()

	return nil
}

func readLines(r io.Reader, lines chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// SendInput writes one line to the session's interactive shell. History is
// appended and activity updated only when the write succeeds.
func (m *Manager) SendInput(sessionID, input string) error {
	session, ok := m.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.proc == nil {
		return ErrNoProcess
	}

	var w io.Writer
	switch {
	case session.proc.ptmx != nil:
		w = session.proc.ptmx
	case session.proc.stdin != nil:
		w = session.proc.stdin
	default:
		return ErrStdinUnavailable
	}

	if _, err := fmt.Fprintln(w, input); err != nil {
		return fmt.Errorf("failed to send input to shell: %w", err)
	}

	session.history = append(session.history, input)
	session.touch()
	return nil
}

// ReadOutput collects whatever complete lines the shell produced within the
// timeout. The deadline bounds wall-clock time, not read attempts; a stream
// stops early at end-of-stream. Stdout/stderr interleaving is not preserved
// across the two returned slices.
func (m *Manager) ReadOutput(sessionID string, timeout time.Duration) ([]string, []string, error) {
	session, ok := m.get(sessionID)
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	session.mu.Lock()
	proc := session.proc
	session.mu.Unlock()

	if proc == nil {
		return nil, nil, ErrNoProcess
	}

	stdout := []string{}
	stderr := []string{}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	outCh, errCh := proc.stdout, proc.stderr
	for outCh != nil || errCh != nil {
		select {
		case line, open := <-outCh:
			if !open {
				outCh = nil
				continue
			}
			stdout = append(stdout, line)
		case line, open := <-errCh:
			if !open {
				errCh = nil
				continue
			}
			stderr = append(stderr, line)
		case <-deadline.C:
			outCh, errCh = nil, nil
		}
	}

	session.mu.Lock()
	session.touch()
	session.mu.Unlock()

	return stdout, stderr, nil
}

// IsShellRunning reports whether the session owns a live process.
// Non-blocking poll; a process that exited on its own reads as not running.
func (m *Manager) IsShellRunning(sessionID string) bool {
	session, ok := m.get(sessionID)
	if !ok {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.proc != nil && session.proc.Running()
}

// StopCommand kills the session's owned process and drops its handle.
// Returns false when no process is owned.
func (m *Manager) StopCommand(sessionID string) bool {
	session, ok := m.get(sessionID)
	if !ok {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.proc == nil {
		return false
	}

	session.proc.stop(m.opts.GracefulStop, m.opts.GracefulStopTimeout)
	session.proc = nil
	session.touch()

	if m.metrics != nil {
		m.metrics.ShellsStopped.Inc()
	}
	m.logger.Info("process stopped", zap.String("session_id", sessionID))

	return true
}

// Resize changes the dimensions of a PTY-backed shell.
func (m *Manager) Resize(sessionID string, cols, rows int) error {
	session, ok := m.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.proc == nil {
		return ErrNoProcess
	}
	if session.proc.ptmx == nil {
		return ErrNotPTY
	}

	return pty.Setsize(session.proc.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// resolveShell picks the shell binary for new interactive sessions:
// configured override, then $SHELL, then a fixed candidate list.
func (m *Manager) resolveShell() string {
	if m.opts.Shell != "" && isExecutable(m.opts.Shell) {
		return m.opts.Shell
	}
	if shell := os.Getenv("SHELL"); shell != "" && isExecutable(shell) {
		return shell
	}
	for _, candidate := range shellCandidates {
		if isExecutable(candidate) {
			return candidate
		}
	}
	return fallbackShell
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}
