package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	userID  string
	expires time.Time
}

// MemoryStore keeps sessions in a map guarded by a mutex. Sessions are lost
// on restart and are not shared between processes.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create also drops expired entries, so the map does not grow without bound.
func (s *MemoryStore) Create(ctx context.Context, userID string) (string, error) {
	id := xid.New().String()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for sid, entry := range s.sessions {
		if !now.Before(entry.expires) {
			delete(s.sessions, sid)
		}
	}
	s.sessions[id] = memoryEntry{userID: userID, expires: now.Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) UserID(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrNotFound
	}
	if !s.now().Before(entry.expires) {
		delete(s.sessions, sessionID)
		return "", ErrNotFound
	}
	return entry.userID, nil
}

func (s *MemoryStore) Destroy(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
