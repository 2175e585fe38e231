package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/monitoring"
)

const rootProbeTimeout = 5 * time.Second

// Executor runs one-shot commands. It holds no session state; each call
// spawns a fresh child and produces a self-contained CommandResult.
type Executor struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewExecutor creates a one-shot command executor.
func NewExecutor(logger *logging.Logger, metrics *monitoring.Metrics) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{logger: logger, metrics: metrics}
}

// Execute runs command via `sh -c` in workingDir and captures its output as
// lines. The built-ins `clear` and `cd <dir>` are intercepted and never
// spawn a child. A non-zero exit code is reported in the result, not as a
// spawn failure; only failing to start the child produces exit code -1.
func (e *Executor) Execute(ctx context.Context, command, workingDir string) CommandResult {
	start := time.Now()
	trimmed := strings.TrimSpace(command)

	if trimmed == "clear" {
		return e.finish(CommandResult{
			Success:          true,
			Output:           []string{},
			ErrorOutput:      []string{},
			Command:          command,
			WorkingDirectory: workingDir,
		}, start, "user")
	}

	if dir, ok := strings.CutPrefix(trimmed, "cd "); ok {
		return e.finish(e.changeDir(command, workingDir, strings.TrimSpace(dir)), start, "user")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workingDir

	res := e.run(cmd, command, workingDir)
	return e.finish(res, start, "user")
}

// changeDir evaluates the cd built-in against the caller-supplied working
// directory. Only absolute and relative targets resolve here; there is no
// session environment in a one-shot call, so "~" and "$HOME" are ordinary
// names (session-level ChangeDirectory has the home rules). On success the
// result's WorkingDirectory carries the NEW directory so the caller can
// adopt it.
func (e *Executor) changeDir(command, workingDir, target string) CommandResult {
	resolved := target
	if !strings.HasPrefix(target, "/") {
		resolved = filepath.Join(workingDir, target)
	}

	if !isDir(resolved) {
		return CommandResult{
			Success:          false,
			Output:           []string{},
			ErrorOutput:      []string{fmt.Sprintf("cd: %s: No such file or directory", target)},
			ExitCode:         1,
			Command:          command,
			WorkingDirectory: workingDir,
		}
	}

	return CommandResult{
		Success:          true,
		Output:           []string{},
		ErrorOutput:      []string{},
		Command:          command,
		WorkingDirectory: resolved,
	}
}

// ExecuteRoot runs command as root via `su -c`. The result echoes the
// elevated invocation and a root working directory.
func (e *Executor) ExecuteRoot(ctx context.Context, command string) CommandResult {
	start := time.Now()

	cmd := exec.CommandContext(ctx, "su", "-c", command)

	res := e.run(cmd, fmt.Sprintf("su -c '%s'", command), DefaultRoot)
	return e.finish(res, start, "root")
}

// RootAvailable probes for a working `su` by asking for the root uid.
func (e *Executor) RootAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, rootProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "su", "-c", "id -u").Output()
	if err != nil {
		return false
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first) == "0"
}

// run spawns the prepared command and collects stdout/stderr lines
// concurrently. The echoed command and working directory are caller-chosen
// so elevated runs can report the wrapped invocation.
func (e *Executor) run(cmd *exec.Cmd, echoCommand, echoDir string) CommandResult {
	res := CommandResult{
		Output:           []string{},
		ErrorOutput:      []string{},
		Command:          echoCommand,
		WorkingDirectory: echoDir,
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return spawnFailure(res, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return spawnFailure(res, err)
	}

	if err := cmd.Start(); err != nil {
		return spawnFailure(res, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		res.Output = collectLines(stdout)
		return nil
	})
	g.Go(func() error {
		res.ErrorOutput = collectLines(stderr)
		return nil
	})
	_ = g.Wait()

	if err := cmd.Wait(); err != nil {
		if _, isExit := err.(*exec.ExitError); !isExit {
			res.ErrorOutput = append(res.ErrorOutput,
				fmt.Sprintf("Failed to wait for process: %v", err))
		}
	}

	res.ExitCode = -1
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	res.Success = res.ExitCode == 0

	return res
}

func spawnFailure(res CommandResult, err error) CommandResult {
	res.Success = false
	res.ExitCode = -1
	res.ErrorOutput = append(res.ErrorOutput, fmt.Sprintf("Failed to execute command: %v", err))
	return res
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func collectLines(r io.Reader) []string {
	lines := []string{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// finish stamps timing fields and emits observability for a completed run.
func (e *Executor) finish(res CommandResult, start time.Time, mode string) CommandResult {
	elapsed := time.Since(start)
	res.ExecutionTimeMS = elapsed.Milliseconds()
	res.Timestamp = nowMillis()

	status := "ok"
	if !res.Success {
		status = "error"
	}
	if e.metrics != nil {
		e.metrics.RecordCommand(mode, status, elapsed)
	}
	e.logger.Debug("command executed",
		zap.String("command", res.Command),
		zap.String("working_dir", res.WorkingDirectory),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", elapsed))

	return res
}
