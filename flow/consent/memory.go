package consent

import (
	"sync"

	"flowkernel/crypto"
)

// MemoryStore is a reference in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[crypto.Hash]*Entry
	executors map[crypto.Address]bool
}

// NewMemoryStore constructs an empty MemoryStore with the supplied initial
// trusted-executor allowlist.
func NewMemoryStore(initialExecutors ...crypto.Address) *MemoryStore {
	s := &MemoryStore{
		entries:   make(map[crypto.Hash]*Entry),
		executors: make(map[crypto.Address]bool),
	}
	for _, e := range initialExecutors {
		s.executors[e] = true
	}
	return s
}

// GetEntry implements Store.
func (s *MemoryStore) GetEntry(authHash crypto.Hash) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[authHash]
	if !ok {
		return nil, false, nil
	}
	return entry.Clone(), true, nil
}

// PutEntry implements Store.
func (s *MemoryStore) PutEntry(authHash crypto.Hash, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[authHash] = entry.Clone()
	return nil
}

// IsTrustedExecutor implements Store.
func (s *MemoryStore) IsTrustedExecutor(executor crypto.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executors[executor], nil
}

// SetTrustedExecutor adds or removes executor from the allowlist. It makes
// no caller check, and no Registry operation calls it.
func (s *MemoryStore) SetTrustedExecutor(executor crypto.Address, trusted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trusted {
		s.executors[executor] = true
	} else {
		delete(s.executors, executor)
	}
}
