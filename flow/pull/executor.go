// Package pull implements the PullExecutor: verifies a signed
// Authorization, enforces the per-call window and ceiling, drives the
// TokenLedger, and records into ConsentRegistry.
package pull

import (
	"context"
	"math/big"

	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
	"flowkernel/flow/consent"
	"flowkernel/ledger"
)

// Registry is the subset of consent.Registry the executor depends on.
type Registry interface {
	IsRevoked(authHash crypto.Hash) (bool, error)
	RecordPull(caller crypto.Address, authHash crypto.Hash, token, grantor, grantee crypto.Address, amount *big.Int) error
}

// Executor verifies and executes one per-call pull against an immutable
// ConsentRegistry handle, using a precomputed domain descriptor that binds
// every signature it accepts to this specific instance.
type Executor struct {
	registry Registry
	tokens   ledger.TokenLedger
	verifier crypto.CodeVerifier
	domain   crypto.Hash
	self     crypto.Address
	emitter  events.Emitter
	nowFn    func() uint64
}

// NewExecutor constructs a PullExecutor bound to registry and tokens, with
// domain as its precomputed domain descriptor: hash(name, version, host_id,
// self_address), binding every accepted signature to this instance.
func NewExecutor(registry Registry, tokens ledger.TokenLedger, domain crypto.Hash, self crypto.Address) *Executor {
	return &Executor{
		registry: registry,
		tokens:   tokens,
		verifier: crypto.NewKeyVerifier(),
		domain:   domain,
		self:     self,
		emitter:  events.NoopEmitter{},
		nowFn:    func() uint64 { return 0 },
	}
}

// SetVerifier overrides the code-account verification hook. Passing nil
// resets it to a key-holder-only verifier.
func (e *Executor) SetVerifier(v crypto.CodeVerifier) {
	if v == nil {
		e.verifier = crypto.NewKeyVerifier()
		return
	}
	e.verifier = v
}

// SetEmitter configures the event emitter.
func (e *Executor) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFn overrides the executor's time source.
func (e *Executor) SetNowFn(fn func() uint64) {
	if fn != nil {
		e.nowFn = fn
	}
}

func (e *Executor) now() uint64 {
	if e.nowFn == nil {
		return 0
	}
	return e.nowFn()
}

func (e *Executor) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// Pull verifies and executes one per-call pull: revocation
// check, caller check, window check, ceiling check, signature
// verification, token transfer, registry record, event emission — in that
// order, with the transfer required to precede the registry record and the
// record required to happen iff the transfer succeeds.
func (e *Executor) Pull(ctx context.Context, caller crypto.Address, auth consent.Authorization, sig []byte, amount *big.Int) error {
	h := auth.AuthHash()

	revoked, err := e.registry.IsRevoked(h)
	if err != nil {
		return err
	}
	if revoked {
		return flowerrors.ErrRevoked
	}

	if caller != auth.Grantee {
		return flowerrors.ErrNotAuthorizedCaller
	}

	now := e.now()
	if now < auth.ValidAfter {
		return flowerrors.ErrTooSoon
	}
	if now > auth.ValidBefore {
		return flowerrors.ErrExpired
	}

	if amount == nil || amount.Sign() <= 0 {
		return flowerrors.ErrAmountZero
	}
	if auth.MaxPerPull != nil && amount.Cmp(auth.MaxPerPull) > 0 {
		return flowerrors.ErrExceedsPerCall
	}

	digest := auth.SigningDigest(e.domain)
	if err := crypto.VerifySignature(digest, sig, auth.Grantor, e.verifier); err != nil {
		return err
	}

	if err := e.tokens.TransferFrom(ctx, e.self, auth.Grantor, auth.Grantee, auth.Token, amount); err != nil {
		return flowerrors.ErrTransferFailed
	}

	if err := e.registry.RecordPull(e.self, h, auth.Token, auth.Grantor, auth.Grantee, amount); err != nil {
		return err
	}

	e.emit(events.PullExecutedDirect{
		AuthHash: h,
		Token:    auth.Token,
		Grantor:  auth.Grantor,
		Grantee:  auth.Grantee,
		Amount:   new(big.Int).Set(amount),
	})
	return nil
}
