package terminal

import (
	"os"
	"testing"
	"time"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
)

func newTestManager() *Manager {
	return NewManager(DefaultOptions(), logging.NewNop(), nil)
}

func TestCreateSessionDefaults(t *testing.T) {
	m := newTestManager()

	id := m.CreateSession("")
	if id == "" {
		t.Fatal("Expected a session id")
	}

	if cwd := m.WorkingDirectory(id); cwd != DefaultRoot {
		t.Errorf("Expected default working directory %q, got %q", DefaultRoot, cwd)
	}
}

func TestCreateSessionUniqueIDs(t *testing.T) {
	m := newTestManager()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := m.CreateSession("/tmp")
		if seen[id] {
			t.Fatalf("Duplicate session id: %s", id)
		}
		seen[id] = true
	}
}

func TestCloseSession(t *testing.T) {
	m := newTestManager()

	id := m.CreateSession("/tmp")
	if !m.CloseSession(id) {
		t.Error("Expected close to succeed for existing session")
	}
	if m.CloseSession(id) {
		t.Error("Expected close to fail for already-closed session")
	}
	if m.CloseSession("sess_nonexistent") {
		t.Error("Expected close to fail for unknown session")
	}
}

func TestWorkingDirectoryUnknownSession(t *testing.T) {
	m := newTestManager()

	if cwd := m.WorkingDirectory("sess_nonexistent"); cwd != DefaultRoot {
		t.Errorf("Expected %q for unknown session, got %q", DefaultRoot, cwd)
	}
}

func TestChangeDirectory(t *testing.T) {
	m := newTestManager()
	dir := t.TempDir()

	id := m.CreateSession(dir)

	if !m.ChangeDirectory(id, "/tmp") {
		t.Error("Expected chdir to /tmp to succeed")
	}
	if cwd := m.WorkingDirectory(id); cwd != "/tmp" {
		t.Errorf("Expected /tmp, got %q", cwd)
	}

	if m.ChangeDirectory(id, "/nonexistent-path-for-test") {
		t.Error("Expected chdir to nonexistent directory to fail")
	}
	if cwd := m.WorkingDirectory(id); cwd != "/tmp" {
		t.Errorf("Expected working directory unchanged after failed chdir, got %q", cwd)
	}
}

func TestChangeDirectoryTilde(t *testing.T) {
	m := newTestManager()
	home := t.TempDir()

	// HOME is seeded to the session's initial working directory.
	id := m.CreateSession(home)
	m.ChangeDirectory(id, "/tmp")

	if !m.ChangeDirectory(id, "~") {
		t.Fatal("Expected chdir to ~ to succeed")
	}
	if cwd := m.WorkingDirectory(id); cwd != home {
		t.Errorf("Expected ~ to resolve to %q, got %q", home, cwd)
	}
}

func TestChangeDirectoryRelative(t *testing.T) {
	m := newTestManager()
	base := t.TempDir()
	if err := os.Mkdir(base+"/sub", 0o755); err != nil {
		t.Fatal(err)
	}

	id := m.CreateSession(base)
	if !m.ChangeDirectory(id, "sub") {
		t.Fatal("Expected relative chdir to succeed")
	}
	if cwd := m.WorkingDirectory(id); cwd != base+"/sub" {
		t.Errorf("Expected %q, got %q", base+"/sub", cwd)
	}
}

func TestSetEnvVisibleInSessions(t *testing.T) {
	m := newTestManager()

	id := m.CreateSession("/tmp")
	m.SetEnv("TERMINAL_TEST_VAR", "hello")

	env := m.EnvVars(id)
	if env["TERMINAL_TEST_VAR"] != "hello" {
		t.Errorf("Expected broadcast env var in session, got %q", env["TERMINAL_TEST_VAR"])
	}
}

func TestSessionInfo(t *testing.T) {
	m := newTestManager()

	id := m.CreateSession("/tmp")
	summary, ok := m.SessionInfo(id)
	if !ok {
		t.Fatal("Expected session info for existing session")
	}
	if summary.SessionID != id {
		t.Errorf("Expected id %q, got %q", id, summary.SessionID)
	}
	if summary.WorkingDirectory != "/tmp" {
		t.Errorf("Expected /tmp, got %q", summary.WorkingDirectory)
	}
	if summary.ProcessRunning {
		t.Error("Expected no running process on fresh session")
	}

	if _, ok := m.SessionInfo("sess_nonexistent"); ok {
		t.Error("Expected no info for unknown session")
	}
}

func TestListSessions(t *testing.T) {
	m := newTestManager()

	m.CreateSession("/tmp")
	m.CreateSession("/tmp")

	if got := len(m.ListSessions()); got != 2 {
		t.Errorf("Expected 2 sessions, got %d", got)
	}
}

func TestCleanupInactive(t *testing.T) {
	m := newTestManager()

	m.CreateSession("/tmp")
	m.CreateSession("/tmp")
	time.Sleep(5 * time.Millisecond)

	removed, remaining := m.CleanupInactive(0)
	if len(removed) != 2 {
		t.Errorf("Expected 2 sessions reaped, got %d", len(removed))
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
}

func TestCleanupInactiveKeepsFresh(t *testing.T) {
	m := newTestManager()

	m.CreateSession("/tmp")
	removed, remaining := m.CleanupInactive(time.Hour)
	if len(removed) != 0 {
		t.Errorf("Expected no sessions reaped, got %d", len(removed))
	}
	if remaining != 1 {
		t.Errorf("Expected 1 remaining, got %d", remaining)
	}
}

func TestSeededEnvironment(t *testing.T) {
	m := newTestManager()

	id := m.CreateSession("/tmp")
	env := m.EnvVars(id)

	if env["TERM"] != "xterm-256color" {
		t.Errorf("Expected TERM=xterm-256color, got %q", env["TERM"])
	}
	if env["HOME"] != "/tmp" {
		t.Errorf("Expected HOME=/tmp, got %q", env["HOME"])
	}
	if env["HISTSIZE"] != "1000" {
		t.Errorf("Expected HISTSIZE=1000, got %q", env["HISTSIZE"])
	}
}

func TestShutdownClosesAll(t *testing.T) {
	m := newTestManager()

	m.CreateSession("/tmp")
	m.CreateSession("/tmp")
	m.Shutdown()

	if got := len(m.ListSessions()); got != 0 {
		t.Errorf("Expected 0 sessions after shutdown, got %d", got)
	}
}
