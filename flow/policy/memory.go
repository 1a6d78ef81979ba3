package policy

import (
	"sync"

	"flowkernel/crypto"
)

// MemoryStore is a reference in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	policies map[crypto.Hash]*Policy
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{policies: make(map[crypto.Hash]*Policy)}
}

// GetPolicy implements Store.
func (s *MemoryStore) GetPolicy(policyID crypto.Hash) (*Policy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

// PutPolicy implements Store.
func (s *MemoryStore) PutPolicy(policyID crypto.Hash, p *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policyID] = p.Clone()
	return nil
}
