package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long an unused session is kept
const DefaultIdleTimeout = 2 * time.Hour

// Manager keeps independent sessions keyed by ID
type Manager struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*Session
	deps        Deps
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewManager creates a manager. A zero idleTimeout uses DefaultIdleTimeout.
func NewManager(deps Deps, idleTimeout time.Duration) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		deps:        deps,
		idleTimeout: idleTimeout,
		logger:      deps.Logger,
	}
}

// Create starts a new empty session
func (m *Manager) Create() *Session {
	s := New(uuid.New(), m.deps)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Debug("session created", zap.String("session_id", s.ID().String()))
	return s
}

// Get returns a live session
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session, reporting whether it existed
func (m *Manager) Delete(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes sessions idle since before now minus the idle timeout and returns how many were removed
func (m *Manager) Reap(now time.Time) int {
	cutoff := now.Add(-m.idleTimeout)

	expired := m.idleBefore(cutoff)
	if len(expired) == 0 {
		return 0
	}

	n := m.removeIdle(expired, cutoff)
	if n > 0 {
		m.logger.Info("reaped idle sessions", zap.Int("count", n))
	}
	return n
}

func (m *Manager) idleBefore(cutoff time.Time) []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []uuid.UUID
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// removeIdle deletes the candidates still idle under the write lock.
// A session used since it was collected survives.
func (m *Manager) removeIdle(candidates []uuid.UUID, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range candidates {
		s, ok := m.sessions[id]
		if !ok || !s.idleSince().Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		n++
	}
	return n
}

// RunReaper reaps idle sessions every interval until ctx is done
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Reap(now)
		}
	}
}
