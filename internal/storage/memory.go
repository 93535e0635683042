package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps slots in a map. It backs tests and the "memory" backend.
type MemoryStore struct {
	Broadcaster

	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.slots[key] = value
	s.mu.Unlock()

	s.Publish(Change{Key: key, Value: value})
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	_, existed := s.slots[key]
	delete(s.slots, key)
	s.mu.Unlock()

	if existed {
		s.Publish(Change{Key: key, Removed: true})
	}
	return nil
}

// Keys returns the slot names currently set.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	return keys
}
