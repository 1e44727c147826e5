package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// memoryStore keeps history in process memory. The map lock only guards
// lookup and creation; each session serializes its own appends.
type memoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*memorySession
	retention Retention
	now       func() time.Time
}

type memorySession struct {
	mu    sync.Mutex
	turns []Turn
}

// NewMemoryStore creates an in-memory Store with the given retention.
func NewMemoryStore(retention Retention) (Store, error) {
	if err := retention.Validate(); err != nil {
		return nil, fmt.Errorf("retention %+v: %w", retention, err)
	}
	return &memoryStore{
		sessions:  make(map[string]*memorySession),
		retention: retention,
		now:       time.Now,
	}, nil
}

// History implements Store.
func (s *memoryStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []Turn{}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return slices.Clone(sess.turns), nil
}

// AppendTurn implements Store.
func (s *memoryStore) AppendTurn(ctx context.Context, sessionID, user, bot string) error {
	sess := s.session(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, Turn{User: user, Bot: bot, At: s.now()})
	sess.turns = s.retention.Apply(sess.turns)
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*memorySession)
	return nil
}

func (s *memoryStore) session(id string) *memorySession {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &memorySession{}
	s.sessions[id] = sess
	return sess
}
