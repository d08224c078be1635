// Package session holds the dashboard's only piece of state: one
// cached dataset per connected user. The dataset is generated once at
// session start and re-derived views read it on demand; regeneration
// happens only on explicit restart, which invalidates the session and
// notifies its registered observers.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"salespulse/internal/generator"
	"salespulse/pkg/contracts/domain"
)

// Observer is a view-recompute callback registered with a session. It
// is invoked synchronously on explicit invalidation.
type Observer func(event string)

// EventDatasetRefresh is emitted to observers when the session dataset
// is regenerated
const EventDatasetRefresh = "dataset:refresh"

// Session is one user's isolated dashboard state
type Session struct {
	id        string
	createdAt time.Time
	logger    *slog.Logger

	mu        sync.RWMutex
	seed      uint64
	dataset   *domain.Dataset
	observers map[int]Observer
	nextObs   int
}

func newSession(seed uint64, logger *slog.Logger) *Session {
	id := uuid.New().String()
	s := &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		seed:      seed,
		dataset:   generator.Generate(seed),
		observers: make(map[int]Observer),
		logger:    logger.With(slog.String("session_id", id)),
	}
	s.logger.Info("session created", slog.Uint64("seed", seed))
	return s
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session creation time
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Seed returns the seed of the current dataset
func (s *Session) Seed() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed
}

// Dataset returns the cached dataset. Consumers must treat it as
// read-only.
func (s *Session) Dataset() *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Subscribe registers a view-recompute callback and returns an
// unsubscribe function
func (s *Session) Subscribe(obs Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Restart regenerates the dataset from the given seed and notifies
// every registered observer. This is the only way the cached dataset
// changes after session start.
func (s *Session) Restart(seed uint64) {
	s.mu.Lock()
	s.seed = seed
	s.dataset = generator.Generate(seed)
	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	s.logger.Info("session restarted", slog.Uint64("seed", seed))
	for _, obs := range observers {
		obs(EventDatasetRefresh)
	}
}
