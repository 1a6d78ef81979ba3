// Package domain implements the DomainDirectory: a controller-curated
// domain → (adapter, destination, active) mapping plus a per-domain
// approved-executor set.
package domain

import (
	"sync"

	flowerrors "flowkernel/core/errors"
	"flowkernel/crypto"
)

// Entry is the per-domain_id stored state.
type Entry struct {
	Adapter            crypto.Address
	Destination        crypto.Address
	Active             bool
	ApprovedExecutors  map[crypto.Address]bool
}

func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	clone := &Entry{Adapter: e.Adapter, Destination: e.Destination, Active: e.Active}
	if e.ApprovedExecutors != nil {
		clone.ApprovedExecutors = make(map[crypto.Address]bool, len(e.ApprovedExecutors))
		for k, v := range e.ApprovedExecutors {
			clone.ApprovedExecutors[k] = v
		}
	}
	return clone
}

// Directory implements the DomainDirectory component. It is
// controller-curated: every mutation requires caller == controller.
type Directory struct {
	mu         sync.RWMutex
	controller crypto.Address
	entries    map[crypto.Hash]*Entry
}

// NewDirectory constructs a Directory controlled by the supplied address.
func NewDirectory(controller crypto.Address) *Directory {
	return &Directory{controller: controller, entries: make(map[crypto.Hash]*Entry)}
}

func (d *Directory) requireController(caller crypto.Address) error {
	if caller != d.controller {
		return flowerrors.ErrNotController
	}
	return nil
}

// SetDomain registers or updates a domain. If active is true, both adapter
// and destination must be nonzero.
func (d *Directory) SetDomain(caller crypto.Address, id crypto.Hash, adapter, destination crypto.Address, active bool) error {
	if err := d.requireController(caller); err != nil {
		return err
	}
	if active && (adapter.IsZero() || destination.IsZero()) {
		return flowerrors.ErrBadAddress
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.entries[id]
	if !ok {
		entry = &Entry{ApprovedExecutors: make(map[crypto.Address]bool)}
	} else {
		entry = entry.clone()
	}
	entry.Adapter = adapter
	entry.Destination = destination
	entry.Active = active
	d.entries[id] = entry
	return nil
}

// SetExecutorApproval grants or revokes an executor's approval to move
// funds into/out of domain id.
func (d *Directory) SetExecutorApproval(caller crypto.Address, id crypto.Hash, executor crypto.Address, approved bool) error {
	if err := d.requireController(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.entries[id]
	if !ok {
		return flowerrors.ErrUnknownAuthorization
	}
	entry = entry.clone()
	if entry.ApprovedExecutors == nil {
		entry.ApprovedExecutors = make(map[crypto.Address]bool)
	}
	if approved {
		entry.ApprovedExecutors[executor] = true
	} else {
		delete(entry.ApprovedExecutors, executor)
	}
	d.entries[id] = entry
	return nil
}

// IsApprovedExecutor reports whether executor is approved for domain id:
// active AND approved_executor[id][executor].
func (d *Directory) IsApprovedExecutor(id crypto.Hash, executor crypto.Address) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[id]
	if !ok || !entry.Active {
		return false
	}
	return entry.ApprovedExecutors[executor]
}

// ReceiverOf returns the destination address for domain id.
func (d *Directory) ReceiverOf(id crypto.Hash) crypto.Address {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[id]
	if !ok {
		return crypto.Address{}
	}
	return entry.Destination
}

// AdapterOf returns the adapter address for domain id.
func (d *Directory) AdapterOf(id crypto.Hash) crypto.Address {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[id]
	if !ok {
		return crypto.Address{}
	}
	return entry.Adapter
}

// IsActive reports whether domain id is currently routable.
func (d *Directory) IsActive(id crypto.Hash) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[id]
	return ok && entry.Active
}

// SetController rotates the controller address. Controller-only.
func (d *Directory) SetController(caller, newController crypto.Address) error {
	if err := d.requireController(caller); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controller = newController
	return nil
}
