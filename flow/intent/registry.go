package intent

import (
	"math/big"

	"flowkernel/core/events"
	flowerrors "flowkernel/core/errors"
	"flowkernel/crypto"
	"flowkernel/flow/common"
)

// Store persists Entry records keyed by intent_hash.
type Store interface {
	GetEntry(intentHash crypto.Hash) (*Entry, bool, error)
	PutEntry(intentHash crypto.Hash, e *Entry) error
}

// Registry implements IntentRegistry: signed FlowIntent verification and
// cumulative-budget metering, keyed by intent_hash.
type Registry struct {
	state      Store
	controller crypto.Address
	verifier   crypto.CodeVerifier
	domain     crypto.Hash
	latch      common.Latch
	emitter    events.Emitter
	nowFn      func() uint64
}

// NewRegistry constructs a Registry. controller is the sole caller
// permitted to invoke VerifyAndConsume (the Rebalancer or its governance
// proxy).
func NewRegistry(controller crypto.Address, domain crypto.Hash) *Registry {
	return &Registry{controller: controller, domain: domain, verifier: crypto.NewKeyVerifier(), emitter: events.NoopEmitter{}, nowFn: func() uint64 { return 0 }}
}

func (r *Registry) SetState(s Store)                 { r.state = s }
func (r *Registry) SetVerifier(v crypto.CodeVerifier) { r.verifier = v }
func (r *Registry) SetEmitter(e events.Emitter)      { r.emitter = e }
func (r *Registry) SetNowFn(fn func() uint64)        { r.nowFn = fn }

func (r *Registry) now() uint64 {
	if r.nowFn == nil {
		return 0
	}
	return r.nowFn()
}

func (r *Registry) emit(ev events.Event) {
	if r.emitter != nil {
		r.emitter.Emit(ev)
	}
}

// Controller returns the caller address permitted to drive VerifyAndConsume.
func (r *Registry) Controller() crypto.Address { return r.controller }

// SetController rotates the controller address. Controller-only.
func (r *Registry) SetController(caller, newController crypto.Address) error {
	if caller != r.controller {
		return flowerrors.ErrNotController
	}
	r.controller = newController
	return nil
}

// IsRevoked reports whether intentHash has been revoked.
func (r *Registry) IsRevoked(intentHash crypto.Hash) (bool, error) {
	e, ok, err := r.state.GetEntry(intentHash)
	if err != nil || !ok {
		return false, err
	}
	return e.Revoked, nil
}

// MovedSoFar returns the cumulative amount consumed against intentHash.
func (r *Registry) MovedSoFar(intentHash crypto.Hash) (*big.Int, error) {
	e, ok, err := r.state.GetEntry(intentHash)
	if err != nil || !ok {
		return big.NewInt(0), err
	}
	return new(big.Int).Set(e.MovedSoFar), nil
}

// VerifyAndConsume implements IntentRegistry.verify_and_consume. Controller-only.
func (r *Registry) VerifyAndConsume(caller crypto.Address, fi FlowIntent, sig []byte, amount *big.Int) (crypto.Hash, error) {
	if caller != r.controller {
		return crypto.Hash{}, flowerrors.ErrNotController
	}
	release, err := r.latch.Enter()
	if err != nil {
		return crypto.Hash{}, err
	}
	defer release()

	if amount == nil || amount.Sign() <= 0 {
		return crypto.Hash{}, flowerrors.ErrAmountZero
	}
	now := r.now()
	if now < fi.ValidAfter {
		return crypto.Hash{}, flowerrors.ErrTooSoon
	}
	if now > fi.ValidBefore {
		return crypto.Hash{}, flowerrors.ErrExpired
	}

	h := fi.IntentHash()
	entry, ok, err := r.state.GetEntry(h)
	if err != nil {
		return crypto.Hash{}, err
	}
	if !ok {
		entry = &Entry{MovedSoFar: big.NewInt(0)}
	} else {
		entry = entry.Clone()
	}
	if entry.Revoked {
		return crypto.Hash{}, flowerrors.ErrRevoked
	}

	moved, err := common.CheckedAdd(entry.MovedSoFar, amount)
	if err != nil {
		return crypto.Hash{}, err
	}
	if moved.Cmp(fi.MaxTotal) > 0 {
		return crypto.Hash{}, flowerrors.ErrCapExceeded
	}

	digest := fi.SigningDigest(r.domain)
	if err := crypto.VerifySignature(digest, sig, fi.Grantor, r.verifier); err != nil {
		return crypto.Hash{}, err
	}

	if !entry.OwnerSet {
		entry.Owner = fi.Grantor
		entry.OwnerSet = true
	}
	entry.MovedSoFar = moved
	if err := r.state.PutEntry(h, entry); err != nil {
		return crypto.Hash{}, err
	}
	return h, nil
}

// RevokeIntent latches revoked[h] = true. Owner-only.
func (r *Registry) RevokeIntent(caller crypto.Address, intentHash crypto.Hash) error {
	entry, ok, err := r.state.GetEntry(intentHash)
	if err != nil {
		return err
	}
	if !ok || !entry.OwnerSet {
		return flowerrors.ErrUnknownIntent
	}
	if caller != entry.Owner {
		return flowerrors.ErrNotGrantor
	}
	entry = entry.Clone()
	if entry.Revoked {
		return nil
	}
	entry.Revoked = true
	if err := r.state.PutEntry(intentHash, entry); err != nil {
		return err
	}
	r.emit(events.IntentRevoked{IntentHash: intentHash})
	return nil
}
