package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are stored
// encoded so callers never share state.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: map[string]memoryEntry{}}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || (!entry.expires.IsZero() && time.Now().After(entry.expires)) {
		return nil, ErrNotFound
	}

	var s Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expires = time.Now().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = entry
	m.purge()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// purge drops expired sessions. Callers hold the write lock.
func (m *MemoryStore) purge() {
	now := time.Now()
	for id, e := range m.sessions {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(m.sessions, id)
		}
	}
}
