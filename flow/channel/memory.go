package channel

import (
	"sync"

	"flowkernel/crypto"
)

// MemoryStore is a reference in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	channels map[crypto.Hash]*Channel
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{channels: make(map[crypto.Hash]*Channel)}
}

// GetChannel implements Store.
func (s *MemoryStore) GetChannel(id crypto.Hash) (*Channel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.channels[id]
	if !ok {
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

// PutChannel implements Store.
func (s *MemoryStore) PutChannel(id crypto.Hash, c *Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[id] = c.Clone()
	return nil
}
