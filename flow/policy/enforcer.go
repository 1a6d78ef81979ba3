package policy

import (
	"math/big"

	"flowkernel/core/clock"
	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
	"flowkernel/flow/common"
)

// Store is the persistence boundary for policies.
type Store interface {
	GetPolicy(policyID crypto.Hash) (*Policy, bool, error)
	PutPolicy(policyID crypto.Hash, p *Policy) error
}

// Enforcer implements the PolicyEnforcer component. It holds an immutable
// handle to a UniversalClock shared by every policy instance on the host.
type Enforcer struct {
	state   Store
	clock   *clock.Clock
	emitter events.Emitter
	nowFn   func() uint64
}

// NewEnforcer constructs a PolicyEnforcer bound to the supplied clock.
func NewEnforcer(c *clock.Clock) *Enforcer {
	return &Enforcer{
		clock:   c,
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return 0 },
	}
}

// SetState wires the enforcer to its persistence layer.
func (e *Enforcer) SetState(state Store) { e.state = state }

// SetEmitter configures the event emitter.
func (e *Enforcer) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFn overrides the enforcer's time source.
func (e *Enforcer) SetNowFn(fn func() uint64) {
	if fn != nil {
		e.nowFn = fn
	}
}

func (e *Enforcer) now() uint64 {
	if e.nowFn == nil {
		return 0
	}
	return e.nowFn()
}

func (e *Enforcer) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// CreatePolicy binds grantor = caller. Grantor-only by construction: the
// caller of CreatePolicy becomes the policy's grantor.
func (e *Enforcer) CreatePolicy(policyID crypto.Hash, caller, grantee, token crypto.Address, maxPerPull, maxPerEpoch *big.Int, epochLength uint64) error {
	if e.state == nil {
		return flowerrors.ErrBadParameters
	}
	if _, exists, err := e.state.GetPolicy(policyID); err != nil {
		return err
	} else if exists {
		return flowerrors.ErrBadID
	}
	if maxPerPull == nil || maxPerEpoch == nil || maxPerPull.Sign() <= 0 || maxPerEpoch.Sign() <= 0 {
		return flowerrors.ErrBadParameters
	}
	if maxPerPull.Cmp(maxPerEpoch) > 0 {
		return flowerrors.ErrBadParameters
	}
	if epochLength == 0 {
		return flowerrors.ErrBadParameters
	}

	p := &Policy{
		Grantor:        caller,
		Grantee:        grantee,
		Token:          token,
		MaxPerPull:     new(big.Int).Set(maxPerPull),
		MaxPerEpoch:    new(big.Int).Set(maxPerEpoch),
		EpochLength:    epochLength,
		SpentThisEpoch: big.NewInt(0),
	}
	if err := e.state.PutPolicy(policyID, p); err != nil {
		return err
	}
	e.emit(events.PolicyCreated{PolicyID: policyID, Controller: caller, MaxPerEpoch: p.MaxPerEpoch, EpochLength: epochLength})
	return nil
}

func (e *Enforcer) requireGrantor(caller crypto.Address, policyID crypto.Hash) (*Policy, error) {
	p, ok, err := e.state.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, flowerrors.ErrUnknownAuthorization
	}
	if caller != p.Grantor {
		return nil, flowerrors.ErrNotGrantor
	}
	return p.Clone(), nil
}

// SetReceiverAllowed is grantor-only. Setting any receiver rule flips
// receiver_rules_active to true; entries may subsequently be toggled
// individually without ever turning the flag back off.
func (e *Enforcer) SetReceiverAllowed(caller crypto.Address, policyID crypto.Hash, receiver crypto.Address, allowed bool) error {
	p, err := e.requireGrantor(caller, policyID)
	if err != nil {
		return err
	}
	p.ReceiverRulesActive = true
	if p.AllowedReceivers == nil {
		p.AllowedReceivers = make(map[crypto.Address]bool)
	}
	if allowed {
		p.AllowedReceivers[receiver] = true
	} else {
		delete(p.AllowedReceivers, receiver)
	}
	if err := e.state.PutPolicy(policyID, p); err != nil {
		return err
	}
	e.emit(events.ReceiverAllowed{PolicyID: policyID, Receiver: receiver, Allowed: allowed})
	return nil
}

// RevokePolicy is grantor-only.
func (e *Enforcer) RevokePolicy(caller crypto.Address, policyID crypto.Hash) error {
	p, err := e.requireGrantor(caller, policyID)
	if err != nil {
		return err
	}
	p.Revoked = true
	if err := e.state.PutPolicy(policyID, p); err != nil {
		return err
	}
	e.emit(events.PolicyRevoked{PolicyID: policyID})
	return nil
}

// CheckAndConsume runs the budget check: policy state, epoch rollover,
// epoch-budget ceiling, receiver allowlist, then commit. The rollover is
// lazy: a silent rollover during an epoch where
// no one called this simply means the next call observes a different
// current_epoch and resets the bucket.
func (e *Enforcer) CheckAndConsume(caller crypto.Address, policyID crypto.Hash, to crypto.Address, amount *big.Int) error {
	if e.state == nil {
		return flowerrors.ErrBadParameters
	}
	p, ok, err := e.state.GetPolicy(policyID)
	if err != nil {
		return err
	}
	if !ok {
		return flowerrors.ErrUnknownAuthorization
	}
	p = p.Clone()

	if p.Revoked {
		return flowerrors.ErrRevoked
	}
	if caller != p.Grantee {
		return flowerrors.ErrNotGrantee
	}
	if amount == nil || amount.Sign() <= 0 {
		return flowerrors.ErrAmountZero
	}
	if p.MaxPerPull != nil && amount.Cmp(p.MaxPerPull) > 0 {
		return flowerrors.ErrExceedsPerCall
	}

	currentEpoch := e.clock.CurrentEpoch(e.now())
	if currentEpoch != p.CurrentEpoch {
		p.CurrentEpoch = currentEpoch
		p.SpentThisEpoch = big.NewInt(0)
	}

	next, err := common.CheckedAdd(p.SpentThisEpoch, amount)
	if err != nil {
		return err
	}
	if p.MaxPerEpoch != nil && next.Cmp(p.MaxPerEpoch) > 0 {
		return flowerrors.ErrExceedsEpoch
	}

	if p.ReceiverRulesActive {
		if p.AllowedReceivers == nil || !p.AllowedReceivers[to] {
			return flowerrors.ErrReceiverForbidden
		}
	}

	p.SpentThisEpoch = next
	if err := e.state.PutPolicy(policyID, p); err != nil {
		return err
	}
	e.emit(events.PolicySpend{PolicyID: policyID, Epoch: currentEpoch, Amount: new(big.Int).Set(amount), NewEpochTotal: new(big.Int).Set(p.SpentThisEpoch)})
	return nil
}
