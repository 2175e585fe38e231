package terminal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryRecordsInput(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)

	m.SendInput(id, "echo one")
	m.SendInput(id, "echo two")

	history, err := m.History(id)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0] != "echo one" || history[1] != "echo two" {
		t.Errorf("Expected ordered history, got %v", history)
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	m := newTestManager()

	_, err := m.History("sess_nonexistent")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	m := newTestManager()
	id := startTestShell(t, m)
	path := filepath.Join(t.TempDir(), "history")

	m.SendInput(id, "echo one")
	m.SendInput(id, "echo two")

	if !m.SaveHistory(id, path) {
		t.Fatal("Expected save to succeed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "echo one\necho two" {
		t.Errorf("Unexpected file contents: %q", string(data))
	}

	other := m.CreateSession("/tmp")
	if !m.LoadHistory(other, path) {
		t.Fatal("Expected load to succeed")
	}

	history, _ := m.History(other)
	if len(history) != 2 || history[0] != "echo one" {
		t.Errorf("Expected loaded history, got %v", history)
	}
}

func TestLoadHistoryEmptyFile(t *testing.T) {
	m := newTestManager()
	id := m.CreateSession("/tmp")
	path := filepath.Join(t.TempDir(), "empty")

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !m.LoadHistory(id, path) {
		t.Fatal("Expected load of empty file to succeed")
	}

	history, _ := m.History(id)
	if len(history) != 0 {
		t.Errorf("Expected empty history, got %v", history)
	}
}

func TestLoadHistoryKeepsInteriorBlankLines(t *testing.T) {
	m := newTestManager()
	id := m.CreateSession("/tmp")
	path := filepath.Join(t.TempDir(), "history")

	// "a\n\n" is an "a" entry plus an empty entry; only the final newline
	// terminates.
	if err := os.WriteFile(path, []byte("a\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !m.LoadHistory(id, path) {
		t.Fatal("Expected load to succeed")
	}

	history, _ := m.History(id)
	if len(history) != 2 || history[0] != "a" || history[1] != "" {
		t.Errorf("Expected [a, \"\"], got %v", history)
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	m := newTestManager()
	id := m.CreateSession("/tmp")

	if m.LoadHistory(id, "/nonexistent-history-file") {
		t.Error("Expected load of missing file to fail")
	}
}

func TestSaveHistoryUnknownSession(t *testing.T) {
	m := newTestManager()

	if m.SaveHistory("sess_nonexistent", filepath.Join(t.TempDir(), "h")) {
		t.Error("Expected save for unknown session to fail")
	}
}
