package terminal

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/logging"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/infrastructure/monitoring"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/shared/id"
)

// Options configures session and process behavior.
type Options struct {
	// Shell overrides shell resolution when set and executable.
	Shell string
	// OutputBuffer is the per-stream line channel capacity.
	OutputBuffer int
	// GracefulStop sends SIGTERM and waits GracefulStopTimeout before SIGKILL.
	GracefulStop        bool
	GracefulStopTimeout time.Duration
}

// DefaultOptions returns production defaults.
func DefaultOptions() Options {
	return Options{
		OutputBuffer:        1024,
		GracefulStopTimeout: 2 * time.Second,
	}
}

// Manager is the authoritative registry of terminal sessions.
//
// The registry lock guards only the session map; per-session state has its
// own lock, so draining one session's output never blocks operations on
// another session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	opts    Options
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewManager creates a session manager.
func NewManager(opts Options, logger *logging.Logger, metrics *monitoring.Metrics) *Manager {
	if opts.OutputBuffer <= 0 {
		opts.OutputBuffer = 1024
	}
	if opts.GracefulStopTimeout <= 0 {
		opts.GracefulStopTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
}

// CreateSession allocates a new session seeded from the ambient environment.
// Always succeeds.
func (m *Manager) CreateSession(workingDir string) string {
	if workingDir == "" {
		workingDir = DefaultRoot
	}

	now := time.Now()
	session := &Session{
		ID:           id.NewSessionID().String(),
		workingDir:   workingDir,
		env:          seedEnv(workingDir),
		history:      []string{},
		createdAt:    now,
		lastActivity: now,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionsCreated.Inc()
		m.metrics.SessionsActive.Set(float64(m.count()))
	}
	m.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("working_dir", workingDir))

	return session.ID
}

// CloseSession kills any owned process and removes the session.
// Returns whether the session existed.
func (m *Manager) CloseSession(sessionID string) bool {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	session.mu.Lock()
	if session.proc != nil {
		session.proc.kill()
		session.proc = nil
	}
	session.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionsActive.Set(float64(m.count()))
	}
	m.logger.Info("session closed", zap.String("session_id", sessionID))

	return true
}

// WorkingDirectory returns the session's cwd, or DefaultRoot when the id is
// unknown (source behavior; see SessionInfo for a not-found-aware lookup).
func (m *Manager) WorkingDirectory(sessionID string) string {
	session, ok := m.get(sessionID)
	if !ok {
		return DefaultRoot
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.workingDir
}

// ChangeDirectory resolves target against the session and mutates the cwd
// only when the resolved path exists and is a directory.
//
// Resolution rules: absolute paths are used as-is; "~" and "$HOME" resolve
// to the session's HOME entry (or root when unset); "~/rest" and "$HOME/rest"
// resolve the remainder under that base; anything else is relative to the
// current working directory.
func (m *Manager) ChangeDirectory(sessionID, target string) bool {
	session, ok := m.get(sessionID)
	if !ok {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	resolved := resolveTarget(session.workingDir, session.env, target)

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return false
	}

	session.workingDir = resolved
	session.touch()
	return true
}

func resolveTarget(cwd string, env map[string]string, target string) string {
	home := env["HOME"]
	if home == "" {
		home = DefaultRoot
	}

	switch {
	case strings.HasPrefix(target, "/"):
		return target
	case target == "~" || target == "$HOME":
		return home
	case strings.HasPrefix(target, "~/"):
		return filepath.Join(home, target[2:])
	case strings.HasPrefix(target, "$HOME/"):
		return filepath.Join(home, target[6:])
	default:
		return filepath.Join(cwd, target)
	}
}

// SetEnv mutates the process-wide environment and fans the update out to
// every existing session's private copy. The broadcast is a deliberate
// global effect: callers change ambient behavior for all future commands.
func (m *Manager) SetEnv(name, value string) {
	_ = os.Setenv(name, value)

	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.mu.Lock()
		s.env[name] = value
		s.mu.Unlock()
	}
}

// SessionInfo returns a snapshot of one session.
func (m *Manager) SessionInfo(sessionID string) (SessionSummary, bool) {
	session, ok := m.get(sessionID)
	if !ok {
		return SessionSummary{}, false
	}
	return m.snapshot(session), true
}

// ListSessions returns snapshots of every tracked session.
func (m *Manager) ListSessions() []SessionSummary {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, m.snapshot(s))
	}
	return summaries
}

func (m *Manager) snapshot(session *Session) SessionSummary {
	session.mu.Lock()
	defer session.mu.Unlock()

	summary := SessionSummary{
		SessionID:        session.ID,
		WorkingDirectory: session.workingDir,
		HistorySize:      len(session.history),
		CreatedAt:        session.createdAt.UnixMilli(),
		LastActivity:     session.lastActivity.UnixMilli(),
		IdleTimeSeconds:  int64(time.Since(session.lastActivity).Seconds()),
	}
	if session.proc != nil {
		summary.ProcessRunning = session.proc.Running()
		summary.CurrentCommand = session.proc.command
		summary.ProcessStartTime = session.proc.startedAt.UnixMilli()
	}
	return summary
}

// CleanupInactive kills and evicts every session idle longer than maxIdle.
// Returns the evicted ids and the remaining session count.
func (m *Manager) CleanupInactive(maxIdle time.Duration) ([]string, int) {
	m.mu.Lock()

	var victims []*Session
	for _, s := range m.sessions {
		s.mu.Lock()
		idle := time.Since(s.lastActivity)
		s.mu.Unlock()
		if idle > maxIdle {
			victims = append(victims, s)
		}
	}

	removed := make([]string, 0, len(victims))
	for _, s := range victims {
		delete(m.sessions, s.ID)
		removed = append(removed, s.ID)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	for _, s := range victims {
		s.mu.Lock()
		if s.proc != nil {
			s.proc.kill()
			s.proc = nil
		}
		s.mu.Unlock()
	}

	if len(removed) > 0 {
		if m.metrics != nil {
			m.metrics.SessionsReaped.Add(float64(len(removed)))
			m.metrics.SessionsActive.Set(float64(remaining))
		}
		m.logger.Info("reaped idle sessions",
			zap.Strings("removed", removed),
			zap.Int("remaining", remaining))
	}

	return removed, remaining
}

// Shutdown closes every session. Used on server teardown.
func (m *Manager) Shutdown() {
	for _, summary := range m.ListSessions() {
		m.CloseSession(summary.SessionID)
	}
}

func (m *Manager) get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	return session, ok
}

func (m *Manager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
