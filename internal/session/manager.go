package session

import (
	"context"
	"log/slog"
	"sync"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
)

// Manager owns the live dashboard sessions. Sessions share no mutable
// state with each other, so the manager only guards its own map.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	defaultSeed uint64
	logger      *slog.Logger
	metrics     *infrastructure.AppMetrics
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(defaultSeed uint64, logger *slog.Logger, metrics *infrastructure.AppMetrics) *Manager {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		defaultSeed: defaultSeed,
		logger:      logger.With(slog.String("component", "session.manager")),
		metrics:     metrics,
	}
}

// Create starts a new session with the default seed
func (m *Manager) Create(ctx context.Context) *Session {
	s := newSession(m.defaultSeed, m.logger)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, 1)
	}
	m.logger.InfoContext(ctx, "session registered",
		slog.String("session_id", s.ID()),
		slog.Int("session_count", count))
	return s
}

// Get retrieves a session by id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("session")
	}
	return s, nil
}

// Remove drops a session from the manager
func (m *Manager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok && m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, -1)
	}
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
