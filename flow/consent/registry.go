package consent

import (
	"math/big"

	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
	"flowkernel/flow/common"
)

// Store is the persistence boundary for the registry's per-auth_hash
// entries and its controller-curated trusted-executor allowlist.
type Store interface {
	GetEntry(authHash crypto.Hash) (*Entry, bool, error)
	PutEntry(authHash crypto.Hash, entry *Entry) error
	IsTrustedExecutor(executor crypto.Address) (bool, error)
}

// Registry implements the ConsentRegistry component: per-authorization
// revocation flag, cumulative pulled total, owner binding, and advisory
// soft cap.
type Registry struct {
	state      Store
	controller crypto.Address
	emitter    events.Emitter
	nowFn      func() uint64
}

// NewRegistry constructs a ConsentRegistry controlled by the supplied
// controller address, which SetController can rotate. The Registry has no
// operation that changes the trusted-executor allowlist; that list lives in
// the Store and is changed through the Store directly.
func NewRegistry(controller crypto.Address) *Registry {
	return &Registry{
		controller: controller,
		emitter:    events.NoopEmitter{},
		nowFn:      func() uint64 { return 0 },
	}
}

// SetState wires the registry to its persistence layer.
func (r *Registry) SetState(state Store) { r.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a
// no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetNowFn overrides the registry's time source; tests inject a
// deterministic clock here instead of relying on wall-clock time.
func (r *Registry) SetNowFn(fn func() uint64) {
	if fn == nil {
		return
	}
	r.nowFn = fn
}

func (r *Registry) emit(evt events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(evt)
}

func (r *Registry) now() uint64 {
	if r.nowFn == nil {
		return 0
	}
	return r.nowFn()
}

// IsRevoked is a pure read.
func (r *Registry) IsRevoked(authHash crypto.Hash) (bool, error) {
	entry, ok, err := r.lookup(authHash)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return entry.Revoked, nil
}

// PulledTotal is a pure read.
func (r *Registry) PulledTotal(authHash crypto.Hash) (*big.Int, error) {
	entry, ok, err := r.lookup(authHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(entry.PulledTotal), nil
}

// OwnerOf is a pure read; ok is false when the owner has not yet bound.
func (r *Registry) OwnerOf(authHash crypto.Hash) (owner crypto.Address, ok bool, err error) {
	entry, exists, err := r.lookup(authHash)
	if err != nil {
		return crypto.Address{}, false, err
	}
	if !exists || !entry.OwnerSet {
		return crypto.Address{}, false, nil
	}
	return entry.Owner, true, nil
}

func (r *Registry) lookup(authHash crypto.Hash) (*Entry, bool, error) {
	if r.state == nil {
		return nil, false, flowerrors.ErrUnknownAuthorization
	}
	entry, ok, err := r.state.GetEntry(authHash)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

// RecordPull is restricted to trusted executors. If owner_of is unset it
// binds to grantor. pulled_total is incremented by amount (a saturating
// add is deliberately not offered: overflow is a fatal protocol error).
func (r *Registry) RecordPull(caller crypto.Address, authHash crypto.Hash, token, grantor, grantee crypto.Address, amount *big.Int) error {
	if r.state == nil {
		return flowerrors.ErrUnknownAuthorization
	}
	trusted, err := r.state.IsTrustedExecutor(caller)
	if err != nil {
		return err
	}
	if !trusted {
		return flowerrors.ErrNotTrustedExecutor
	}
	if amount == nil || amount.Sign() <= 0 {
		return flowerrors.ErrAmountZero
	}

	entry, ok, err := r.state.GetEntry(authHash)
	if err != nil {
		return err
	}
	if !ok {
		entry = &Entry{PulledTotal: big.NewInt(0)}
	} else {
		entry = entry.Clone()
	}
	if !entry.OwnerSet {
		entry.Owner = grantor
		entry.OwnerSet = true
	}
	if entry.PulledTotal == nil {
		entry.PulledTotal = big.NewInt(0)
	}

	next, err := common.CheckedAdd(entry.PulledTotal, amount)
	if err != nil {
		return err
	}
	entry.PulledTotal = next

	if err := r.state.PutEntry(authHash, entry); err != nil {
		return err
	}

	r.emit(events.PullExecuted{
		AuthHash:   authHash,
		Token:      token,
		Grantor:    grantor,
		Grantee:    grantee,
		Amount:     new(big.Int).Set(amount),
		Cumulative: new(big.Int).Set(entry.PulledTotal),
	})
	return nil
}

// Revoke is a one-way latch, owner-only.
func (r *Registry) Revoke(caller crypto.Address, authHash crypto.Hash) error {
	entry, ok, err := r.lookup(authHash)
	if err != nil {
		return err
	}
	if !ok || !entry.OwnerSet {
		return flowerrors.ErrUnknownAuthorization
	}
	if caller != entry.Owner {
		return flowerrors.ErrNotGrantor
	}

	clone := entry.Clone()
	clone.Revoked = true
	if err := r.state.PutEntry(authHash, clone); err != nil {
		return err
	}
	r.emit(events.AuthorizationRevoked{AuthHash: authHash, Grantor: clone.Owner, Ts: r.now()})
	return nil
}

// SetCap requires the same authorization as Revoke: caller must be owner.
func (r *Registry) SetCap(caller crypto.Address, authHash crypto.Hash, newCap *big.Int) error {
	entry, ok, err := r.lookup(authHash)
	if err != nil {
		return err
	}
	if !ok || !entry.OwnerSet {
		return flowerrors.ErrUnknownAuthorization
	}
	if caller != entry.Owner {
		return flowerrors.ErrNotGrantor
	}

	clone := entry.Clone()
	oldCap := clone.Cap
	if oldCap == nil {
		oldCap = big.NewInt(0)
	}
	if newCap == nil {
		newCap = big.NewInt(0)
	}
	clone.Cap = new(big.Int).Set(newCap)
	if err := r.state.PutEntry(authHash, clone); err != nil {
		return err
	}
	r.emit(events.AuthorizationBudgetUpdated{AuthHash: authHash, OldCap: oldCap, NewCap: clone.Cap})
	return nil
}

// Observe is advisory and intentionally unauthenticated; it MUST NOT be
// used by any caller as evidence of consent.
func (r *Registry) Observe(authHash crypto.Hash, grantor, grantee, token crypto.Address) {
	r.emit(events.AuthorizationObserved{AuthHash: authHash, Grantor: grantor, Grantee: grantee, Token: token})
}

// SetController rotates the controller address. Controller-only.
func (r *Registry) SetController(caller, newController crypto.Address) error {
	if caller != r.controller {
		return flowerrors.ErrNotController
	}
	r.controller = newController
	return nil
}

// Controller returns the current controller address.
func (r *Registry) Controller() crypto.Address { return r.controller }
