package service

import (
	"context"
	"sync"
	"time"

	"gestionstock/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionManager keeps the open cart sessions of this process. Sessions live
// on the manager's context, not on the request that opened them.
type SessionManager struct {
	st    store.Store
	sales SaleService
	idle  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewSessionManager(st store.Store, sales SaleService, idle time.Duration) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		st:       st,
		sales:    sales,
		idle:     idle,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open starts a session. ctx only bounds the wait for the initial snapshots.
func (m *SessionManager) Open(ctx context.Context) (*Session, error) {
	s, err := OpenSession(m.ctx, ctx, m.st, m.sales)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	log.Debug().Str("session_id", s.ID.String()).Msg("session: opened")
	return s, nil
}

func (m *SessionManager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	log.Debug().Str("session_id", id.String()).Msg("session: closed")
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunReaper closes sessions idle for longer than the configured timeout,
// checking every interval, until ctx is done.
func (m *SessionManager) RunReaper(ctx context.Context, interval time.Duration) {
	if m.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.reap(now); n > 0 {
				log.Info().Int("closed", n).Msg("session: reaped idle sessions")
			}
		}
	}
}

func (m *SessionManager) reap(now time.Time) int {
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.idle && !s.committing.Load() {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Shutdown closes every session and stops their subscriptions.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.cancel()
	for _, s := range all {
		s.Close()
	}
}
