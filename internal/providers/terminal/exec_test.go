package terminal

import (
	"context"
	"strings"
	"testing"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
)

func newTestExecutor() *Executor {
	return NewExecutor(logging.NewNop(), nil)
}

func TestExecuteEcho(t *testing.T) {
	e := newTestExecutor()

	res := e.Execute(context.Background(), "echo hello", "/tmp")
	if !res.Success {
		t.Fatalf("Expected success, got error output: %v", res.ErrorOutput)
	}
	if res.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", res.ExitCode)
	}
	if len(res.Output) != 1 || res.Output[0] != "hello" {
		t.Errorf("Expected output [hello], got %v", res.Output)
	}
	if res.Command != "echo hello" {
		t.Errorf("Expected command echoed, got %q", res.Command)
	}
	if res.WorkingDirectory != "/tmp" {
		t.Errorf("Expected working directory /tmp, got %q", res.WorkingDirectory)
	}
	if res.Timestamp == 0 {
		t.Error("Expected a timestamp")
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	e := newTestExecutor()

	res := e.Execute(context.Background(), "exit 3", "/tmp")
	if res.Success {
		t.Error("Expected failure for non-zero exit")
	}
	if res.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", res.ExitCode)
	}
}

func TestExecuteStderrCaptured(t *testing.T) {
	e := newTestExecutor()

	res := e.Execute(context.Background(), "echo oops 1>&2", "/tmp")
	if !res.Success {
		t.Fatalf("Expected success, got exit %d", res.ExitCode)
	}
	if len(res.ErrorOutput) != 1 || res.ErrorOutput[0] != "oops" {
		t.Errorf("Expected error output [oops], got %v", res.ErrorOutput)
	}
	if len(res.Output) != 0 {
		t.Errorf("Expected empty stdout, got %v", res.Output)
	}
}

func TestExecuteClearBuiltin(t *testing.T) {
	e := newTestExecutor()

	res := e.Execute(context.Background(), "clear", "/tmp")
	if !res.Success {
		t.Error("Expected clear to succeed")
	}
	if res.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", res.ExitCode)
	}
	if len(res.Output) != 0 || len(res.ErrorOutput) != 0 {
		t.Error("Expected clear to produce no output")
	}
}

func TestExecuteCdBuiltin(t *testing.T) {
	e := newTestExecutor()
	dir := t.TempDir()

	res := e.Execute(context.Background(), "cd "+dir, "/tmp")
	if !res.Success {
		t.Fatalf("Expected cd to succeed, got %v", res.ErrorOutput)
	}
	if res.WorkingDirectory != dir {
		t.Errorf("Expected new working directory %q, got %q", dir, res.WorkingDirectory)
	}
}

func TestExecuteCdBuiltinMissing(t *testing.T) {
	e := newTestExecutor()

	res := e.Execute(context.Background(), "cd /nope-not-here", "/tmp")
	if res.Success {
		t.Error("Expected cd to a missing directory to fail")
	}
	if res.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", res.ExitCode)
	}
	want := "cd: /nope-not-here: No such file or directory"
	if len(res.ErrorOutput) != 1 || res.ErrorOutput[0] != want {
		t.Errorf("Expected %q, got %v", want, res.ErrorOutput)
	}
	if res.WorkingDirectory != "/tmp" {
		t.Errorf("Expected working directory unchanged, got %q", res.WorkingDirectory)
	}
}

func TestExecuteCdTildeIsOrdinaryName(t *testing.T) {
	e := newTestExecutor()
	base := t.TempDir()

	// One-shot cd has no session environment; "~" resolves under the
	// working directory like any other relative name.
	res := e.Execute(context.Background(), "cd ~", base)
	if res.Success {
		t.Fatalf("Expected cd ~ to fail, got working dir %q", res.WorkingDirectory)
	}
	if res.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", res.ExitCode)
	}
	want := "cd: ~: No such file or directory"
	if len(res.ErrorOutput) != 1 || res.ErrorOutput[0] != want {
		t.Errorf("Expected %q, got %v", want, res.ErrorOutput)
	}
	if res.WorkingDirectory != base {
		t.Errorf("Expected working directory unchanged, got %q", res.WorkingDirectory)
	}

	res = e.Execute(context.Background(), "cd $HOME", base)
	if res.Success {
		t.Error("Expected cd $HOME to fail in a one-shot call")
	}
}

func TestExecuteCdRelative(t *testing.T) {
	e := newTestExecutor()
	base := t.TempDir()

	res := e.Execute(context.Background(), "cd ..", base)
	if !res.Success {
		t.Fatalf("Expected relative cd to succeed, got %v", res.ErrorOutput)
	}
	if strings.HasSuffix(res.WorkingDirectory, base) {
		t.Errorf("Expected parent directory, got %q", res.WorkingDirectory)
	}
}

func TestExecuteSpawnFailure(t *testing.T) {
	e := newTestExecutor()

	// A nonexistent working directory makes the spawn itself fail.
	res := e.Execute(context.Background(), "echo hi", "/nonexistent-dir-for-test")
	if res.Success {
		t.Error("Expected spawn failure")
	}
	if res.ExitCode != -1 {
		t.Errorf("Expected exit code -1 on spawn failure, got %d", res.ExitCode)
	}
	if len(res.ErrorOutput) == 0 {
		t.Error("Expected error output describing the failure")
	}
}

func TestRootAvailableDoesNotPanic(t *testing.T) {
	e := newTestExecutor()

	// Result depends on the host; the probe must simply complete.
	_ = e.RootAvailable(context.Background())
}
