package conversationstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/lumee/internal/domain/conversation"
)

type session struct {
	turns    []conversation.Turn
	lastSeen time.Time
}

// MemoryStore keeps conversations in process memory. Idle sessions are
// dropped by Sweep.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, turns ...conversation.Turn) error {
	if sessionID == "" || len(turns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.turns = append(sess.turns, turns...)
	sess.lastSeen = s.now()
	return nil
}

// History returns a copy so callers never observe later appends.
func (s *MemoryStore) History(_ context.Context, sessionID string) ([]conversation.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]conversation.Turn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

func (s *MemoryStore) TrimToLast(_ context.Context, sessionID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if n <= 0 {
		sess.turns = nil
		return nil
	}
	if len(sess.turns) > n {
		kept := make([]conversation.Turn, n)
		copy(kept, sess.turns[len(sess.turns)-n:])
		sess.turns = kept
	}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep removes sessions idle for longer than ttl and reports how many were dropped.
func (s *MemoryStore) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

var _ conversation.Store = (*MemoryStore)(nil)
