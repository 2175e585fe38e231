package terminal

import (
	"os"
	"strings"
)

// History returns a copy of the session's input history, oldest first.
func (m *Manager) History(sessionID string) ([]string, error) {
	session, ok := m.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	out := make([]string, len(session.history))
	copy(out, session.history)
	return out, nil
}

// SaveHistory writes the session's history to path, one entry per line.
// Returns false on unknown session or write failure.
func (m *Manager) SaveHistory(sessionID, path string) bool {
	history, err := m.History(sessionID)
	if err != nil {
		return false
	}

	data := strings.Join(history, "\n")
	return os.WriteFile(path, []byte(data), 0o644) == nil
}

// LoadHistory replaces the session's history with the contents of path.
// An empty file yields an empty history. Returns false on unknown session
// or read failure.
func (m *Manager) LoadHistory(sessionID, path string) bool {
	session, ok := m.get(sessionID)
	if !ok {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	history := []string{}
	if len(data) > 0 {
		// Only the final newline is a terminator; interior blank lines are
		// real (possibly empty) entries.
		history = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}

	session.mu.Lock()
	session.history = history
	session.touch()
	session.mu.Unlock()

	return true
}
