package terminal

import (
	"errors"
	"testing"
	"time"
)

func startTestShell(t *testing.T, m *Manager) string {
	t.Helper()

	id := m.CreateSession("/tmp")
	if _, err := m.StartShell(id, StartShellOptions{}); err != nil {
		t.Fatalf("Failed to start shell: %v", err)
	}
	t.Cleanup(func() { m.CloseSession(id) })
	return id
}

func TestStartShellUnknownSession(t *testing.T) {
	m := newTestManager()

	_, err := m.StartShell("sess_nonexistent", StartShellOptions{})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestStartShellTwiceFails(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	_, err := m.StartShell(id, StartShellOptions{})
	if !errors.Is(err, ErrProcessRunning) {
		t.Errorf("Expected ErrProcessRunning, got %v", err)
	}
}

func TestShellEchoRoundTrip(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	if err := m.SendInput(id, "echo hello"); err != nil {
		t.Fatalf("Failed to send input: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var got []string
	for time.Now().Before(deadline) {
		stdout, _, err := m.ReadOutput(id, 200*time.Millisecond)
		if err != nil {
			t.Fatalf("Failed to read output: %v", err)
		}
		got = append(got, stdout...)
		if contains(got, "hello") {
			return
		}
	}
	t.Errorf("Expected 'hello' in shell output, got %v", got)
}

func TestSendInputNoShell(t *testing.T) {
	m := newTestManager()
	id := m.CreateSession("/tmp")

	err := m.SendInput(id, "echo hi")
	if !errors.Is(err, ErrNoProcess) {
		t.Errorf("Expected ErrNoProcess, got %v", err)
	}
}

func TestReadOutputNoShell(t *testing.T) {
	m := newTestManager()
	id := m.CreateSession("/tmp")

	_, _, err := m.ReadOutput(id, 10*time.Millisecond)
	if !errors.Is(err, ErrNoProcess) {
		t.Errorf("Expected ErrNoProcess, got %v", err)
	}
}

func TestReadOutputRespectsTimeout(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	start := time.Now()
	_, _, err := m.ReadOutput(id, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Read took %v, expected it bounded by the timeout", elapsed)
	}
}

func TestStopCommand(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	if !m.IsShellRunning(id) {
		t.Fatal("Expected shell to be running")
	}
	if !m.StopCommand(id) {
		t.Fatal("Expected stop to succeed")
	}
	if m.IsShellRunning(id) {
		t.Error("Expected shell stopped")
	}
	if m.StopCommand(id) {
		t.Error("Expected second stop to report no process")
	}
}

func TestShellRunningAfterExit(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	if err := m.SendInput(id, "exit"); err != nil {
		t.Fatalf("Failed to send exit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !m.IsShellRunning(id) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("Expected shell to report not running after exit")
}

func TestStartShellAfterExit(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	m.StopCommand(id)

	// A dead owned process is released lazily on the next start.
	if _, err := m.StartShell(id, StartShellOptions{}); err != nil {
		t.Errorf("Expected restart after stop to succeed, got %v", err)
	}
}

func TestResizeWithoutPTY(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	err := m.Resize(id, 120, 40)
	if !errors.Is(err, ErrNotPTY) {
		t.Errorf("Expected ErrNotPTY, got %v", err)
	}
}

func TestPTYShell(t *testing.T) {
	m := newTestManager()
	id := m.CreateSession("/tmp")
	t.Cleanup(func() { m.CloseSession(id) })

	if _, err := m.StartShell(id, StartShellOptions{PTY: true, Cols: 100, Rows: 30}); err != nil {
		t.Fatalf("Failed to start PTY shell: %v", err)
	}
	if err := m.Resize(id, 120, 40); err != nil {
		t.Errorf("Expected PTY resize to succeed, got %v", err)
	}
	if err := m.SendInput(id, "echo from-pty"); err != nil {
		t.Fatalf("Failed to send input: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var got []string
	for time.Now().Before(deadline) {
		stdout, _, err := m.ReadOutput(id, 200*time.Millisecond)
		if err != nil {
			t.Fatalf("Failed to read output: %v", err)
		}
		got = append(got, stdout...)
		for _, line := range got {
			if line == "from-pty" {
				return
			}
		}
	}
	t.Errorf("Expected 'from-pty' in PTY output, got %v", got)
}

func contains(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}
