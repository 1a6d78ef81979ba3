package channel

import (
	"context"
	"math/big"

	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
	"flowkernel/flow/common"
	"flowkernel/ledger"
)

// Store is the persistence boundary for channels.
type Store interface {
	GetChannel(id crypto.Hash) (*Channel, bool, error)
	PutChannel(id crypto.Hash, c *Channel) error
}

// PolicyChecker is the subset of policy.Enforcer a channel consults when a
// pull names a policy_ref.
type PolicyChecker interface {
	CheckAndConsume(caller crypto.Address, policyID crypto.Hash, to crypto.Address, amount *big.Int) error
}

// Engine implements the FlowChannel component.
type Engine struct {
	state   Store
	tokens  ledger.TokenLedger
	policy  PolicyChecker
	emitter events.Emitter
	nowFn   func() uint64
	latches map[crypto.Hash]*common.Latch
}

// NewEngine constructs a FlowChannel engine.
func NewEngine(tokens ledger.TokenLedger) *Engine {
	return &Engine{
		tokens:  tokens,
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return 0 },
		latches: make(map[crypto.Hash]*common.Latch),
	}
}

// SetState wires the engine to its persistence layer.
func (e *Engine) SetState(state Store) { e.state = state }

// SetPolicy wires an optional PolicyEnforcer consulted on pulls that name a
// policy_ref.
func (e *Engine) SetPolicy(p PolicyChecker) { e.policy = p }

// SetEmitter configures the event emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFn overrides the engine's time source.
func (e *Engine) SetNowFn(fn func() uint64) {
	if fn != nil {
		e.nowFn = fn
	}
}

func (e *Engine) now() uint64 {
	if e.nowFn == nil {
		return 0
	}
	return e.nowFn()
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) latchFor(id crypto.Hash) *common.Latch {
	l, ok := e.latches[id]
	if !ok {
		l = &common.Latch{}
		e.latches[id] = l
	}
	return l
}

// Open creates a new channel. grantor is bound to caller.
func (e *Engine) Open(caller crypto.Address, id crypto.Hash, grantee, token crypto.Address, rate, maxBalance *big.Int, policyRef *crypto.Hash) error {
	if _, exists, err := e.state.GetChannel(id); err != nil {
		return err
	} else if exists {
		return flowerrors.ErrChannelExists
	}
	if grantee.IsZero() || token.IsZero() {
		return flowerrors.ErrBadAddress
	}
	if rate == nil || maxBalance == nil || rate.Sign() <= 0 || maxBalance.Sign() <= 0 {
		return flowerrors.ErrBadParameters
	}

	c := &Channel{
		Grantor:       caller,
		Grantee:       grantee,
		Token:         token,
		RatePerSecond: new(big.Int).Set(rate),
		MaxBalance:    new(big.Int).Set(maxBalance),
		Accrued:       big.NewInt(0),
		LastUpdate:    e.now(),
		PolicyRef:     policyRef,
	}
	if err := e.state.PutChannel(id, c); err != nil {
		return err
	}
	e.emit(events.ChannelOpened{ID: id, Grantor: caller, Grantee: grantee, Token: token, Rate: c.RatePerSecond, MaxBalance: c.MaxBalance})
	return nil
}

// sync advances c.Accrued/LastUpdate to now in place: no accrual while
// paused or revoked, and dt never banks across
// an off period.
func sync(c *Channel, now uint64) {
	if now <= c.LastUpdate {
		return
	}
	dt := now - c.LastUpdate
	if c.Revoked || c.Paused {
		c.LastUpdate = now
		return
	}
	delta := new(big.Int).Mul(new(big.Int).SetUint64(dt), c.RatePerSecond)
	next := new(big.Int).Add(c.Accrued, delta)
	if next.Cmp(c.MaxBalance) > 0 {
		next = new(big.Int).Set(c.MaxBalance)
	}
	c.Accrued = next
	c.LastUpdate = now
}

// Accrue is the public sync entry point.
func (e *Engine) Accrue(id crypto.Hash) error {
	c, ok, err := e.state.GetChannel(id)
	if err != nil {
		return err
	}
	if !ok {
		return flowerrors.ErrUnknownAuthorization
	}
	sync(c, e.now())
	return e.state.PutChannel(id, c)
}

// Claimable is a pure projection: accrued plus dt*rate capped at
// max_balance, unless paused/revoked (then just accrued). Never mutates.
func (e *Engine) Claimable(id crypto.Hash) (*big.Int, error) {
	c, ok, err := e.state.GetChannel(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, flowerrors.ErrUnknownAuthorization
	}
	if c.Revoked || c.Paused {
		return new(big.Int).Set(c.Accrued), nil
	}
	now := e.now()
	if now <= c.LastUpdate {
		return new(big.Int).Set(c.Accrued), nil
	}
	dt := now - c.LastUpdate
	delta := new(big.Int).Mul(new(big.Int).SetUint64(dt), c.RatePerSecond)
	projected := new(big.Int).Add(c.Accrued, delta)
	if projected.Cmp(c.MaxBalance) > 0 {
		projected = new(big.Int).Set(c.MaxBalance)
	}
	return projected, nil
}

// Pull is non-reentrant: requires caller = grantee, not paused, not
// revoked, to != 0, syncs first, 0 < amount <= accrued. If policy_ref is
// set, invokes policy.check_and_consume before mutating state. Deducts
// accrued before the external token call, per the effects-before-external
// discipline.
func (e *Engine) Pull(ctx context.Context, caller crypto.Address, id crypto.Hash, to crypto.Address, amount *big.Int) error {
	latch := e.latchFor(id)
	release, err := latch.Enter()
	if err != nil {
		return err
	}
	defer release()

	c, ok, err := e.state.GetChannel(id)
	if err != nil {
		return err
	}
	if !ok {
		return flowerrors.ErrUnknownAuthorization
	}
	if caller != c.Grantee {
		return flowerrors.ErrNotGrantee
	}
	if c.Revoked {
		return flowerrors.ErrRevoked
	}
	if c.Paused {
		return flowerrors.ErrPaused
	}
	if to.IsZero() {
		return flowerrors.ErrBadAddress
	}

	sync(c, e.now())

	if amount == nil || amount.Sign() <= 0 {
		return flowerrors.ErrAmountZero
	}
	if amount.Cmp(c.Accrued) > 0 {
		return flowerrors.ErrExceedsAccrued
	}

	if c.PolicyRef != nil && e.policy != nil {
		if err := e.policy.CheckAndConsume(caller, *c.PolicyRef, to, amount); err != nil {
			return err
		}
	}

	c.Accrued = new(big.Int).Sub(c.Accrued, amount)
	if err := e.state.PutChannel(id, c); err != nil {
		return err
	}

	if err := e.tokens.TransferFrom(ctx, c.Grantee, c.Grantor, to, c.Token, amount); err != nil {
		return flowerrors.ErrTransferFailed
	}

	e.emit(events.Pulled{ID: id, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func (e *Engine) requireGrantorSynced(caller crypto.Address, id crypto.Hash) (*Channel, error) {
	c, ok, err := e.state.GetChannel(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, flowerrors.ErrUnknownAuthorization
	}
	if caller != c.Grantor {
		return nil, flowerrors.ErrNotGrantor
	}
	sync(c, e.now())
	return c, nil
}

// Pause is grantor-only; syncs first so accrued reflects earnings at the
// prior configuration.
func (e *Engine) Pause(caller crypto.Address, id crypto.Hash) error {
	c, err := e.requireGrantorSynced(caller, id)
	if err != nil {
		return err
	}
	c.Paused = true
	if err := e.state.PutChannel(id, c); err != nil {
		return err
	}
	e.emit(events.ChannelPaused{ID: id})
	return nil
}

// Resume is grantor-only; requires !revoked, then clears paused and resets
// last_update to now, restarting the accrual baseline.
func (e *Engine) Resume(caller crypto.Address, id crypto.Hash) error {
	c, err := e.requireGrantorSynced(caller, id)
	if err != nil {
		return err
	}
	if c.Revoked {
		return flowerrors.ErrRevoked
	}
	c.Paused = false
	c.LastUpdate = e.now()
	if err := e.state.PutChannel(id, c); err != nil {
		return err
	}
	e.emit(events.ChannelResumed{ID: id})
	return nil
}

// Revoke is grantor-only and a one-way latch.
func (e *Engine) Revoke(caller crypto.Address, id crypto.Hash) error {
	c, err := e.requireGrantorSynced(caller, id)
	if err != nil {
		return err
	}
	c.Revoked = true
	if err := e.state.PutChannel(id, c); err != nil {
		return err
	}
	e.emit(events.ChannelRevoked{ID: id})
	return nil
}

// UpdateRate is grantor-only; requires both new values > 0.
func (e *Engine) UpdateRate(caller crypto.Address, id crypto.Hash, newRate, newCap *big.Int) error {
	c, err := e.requireGrantorSynced(caller, id)
	if err != nil {
		return err
	}
	if newRate == nil || newCap == nil || newRate.Sign() <= 0 || newCap.Sign() <= 0 {
		return flowerrors.ErrBadParameters
	}
	oldRate, oldCap := c.RatePerSecond, c.MaxBalance
	c.RatePerSecond = new(big.Int).Set(newRate)
	c.MaxBalance = new(big.Int).Set(newCap)
	if c.Accrued.Cmp(c.MaxBalance) > 0 {
		c.Accrued = new(big.Int).Set(c.MaxBalance)
	}
	if err := e.state.PutChannel(id, c); err != nil {
		return err
	}
	e.emit(events.ChannelRateUpdated{ID: id, OldRate: oldRate, OldCap: oldCap, NewRate: c.RatePerSecond, NewCap: c.MaxBalance})
	return nil
}
