package order

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/menulingua/menulingua/internal/catalog"
)

// Session is the state of one shared device for one seating: the fetched
// menu, the order ledger and the workflow driving the screen. Nothing here
// survives a teardown; a new seating starts a new session.
type Session struct {
	ID        uuid.UUID
	MenuID    uuid.UUID
	Language  catalog.Language
	Menu      *catalog.Menu
	Ledger    *Ledger
	Workflow  *Workflow
	CreatedAt time.Time
	ExpiresAt time.Time
}

// GetID returns the session ID
func (s *Session) GetID() uuid.UUID {
	return s.ID
}

// ResourceType returns the resource type for URL generation
func (s *Session) ResourceType() string {
	return "order/session"
}

// SessionStore keeps live sessions in memory with a TTL. Expired or deleted
// sessions have their workflow disposed so no scheduled transition outlives
// them.
type SessionStore struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	store := &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *SessionStore) Save(session *Session) error {
	if session == nil {
		return errors.New("session is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session.ExpiresAt = time.Now().Add(s.ttl)
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, errors.New("session expired")
	}

	return session, nil
}

// Touch extends the TTL of an active session.
func (s *SessionStore) Touch(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.ExpiresAt = time.Now().Add(s.ttl)
	}
}

func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.Workflow.Dispose()
		delete(s.sessions, id)
	}
}

// Stop disposes every live session. Registered as a lifecycle hook so
// shutdown cancels all scheduled workflow transitions.
func (s *SessionStore) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		session.Workflow.Dispose()
		delete(s.sessions, id)
	}
	return nil
}

func (s *SessionStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for id, session := range s.sessions {
				if now.After(session.ExpiresAt) {
					session.Workflow.Dispose()
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
