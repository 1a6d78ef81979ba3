package intent

import (
	"math/big"

	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
)

// IntentFull bundles a FlowIntent with the auth_hash of the lower-level
// per-call pull authority it rides on in the source domain.
type IntentFull struct {
	FlowIntent
	AuthHash crypto.Hash
}

// Directory is the subset of DomainDirectory the Rebalancer depends on.
type Directory interface {
	IsApprovedExecutor(id crypto.Hash, executor crypto.Address) bool
	ReceiverOf(id crypto.Hash) crypto.Address
}

// ConsentRegistry is the subset of ConsentRegistry the Rebalancer depends on.
type ConsentRegistry interface {
	IsRevoked(authHash crypto.Hash) (bool, error)
}

// IntentVerifier is the subset of Registry the Rebalancer depends on.
type IntentVerifier interface {
	VerifyAndConsume(caller crypto.Address, fi FlowIntent, sig []byte, amount *big.Int) (crypto.Hash, error)
}

// SourcePullAdapter moves funds out of the source domain toward dst under
// the authority of authHash, the per-call pull that backs the intent.
type SourcePullAdapter interface {
	Pull(authHash crypto.Hash, dst crypto.Address, amount *big.Int) error
}

// Rebalancer drives a signed FlowIntent across domains: it checks
// directory/consent-level authorization, reserves budget in the
// IntentRegistry, then invokes the caller-supplied source pull adapter.
type Rebalancer struct {
	controller crypto.Address
	directory  Directory
	consent    ConsentRegistry
	intents    IntentVerifier
	emitter    events.Emitter
}

// NewRebalancer constructs a Rebalancer.
func NewRebalancer(controller crypto.Address, directory Directory, consent ConsentRegistry, intents IntentVerifier) *Rebalancer {
	return &Rebalancer{controller: controller, directory: directory, consent: consent, intents: intents, emitter: events.NoopEmitter{}}
}

func (r *Rebalancer) SetEmitter(e events.Emitter) { r.emitter = e }

func (r *Rebalancer) emit(ev events.Event) {
	if r.emitter != nil {
		r.emitter.Emit(ev)
	}
}

// ExecuteFlowIntent implements Rebalancer.execute_flow_intent.
func (r *Rebalancer) ExecuteFlowIntent(caller crypto.Address, full IntentFull, sig []byte, amount *big.Int, adapter SourcePullAdapter) (bool, error) {
	if amount == nil || amount.Sign() <= 0 {
		return false, flowerrors.ErrAmountZero
	}
	if adapter == nil {
		return false, flowerrors.ErrBadAddress
	}
	if caller != full.Executor && caller != r.controller {
		return false, flowerrors.ErrNotAuthorizedCaller
	}
	if !r.directory.IsApprovedExecutor(full.SrcDomain, full.Executor) {
		return false, flowerrors.ErrExecutorForbidden
	}
	if !r.directory.IsApprovedExecutor(full.DstDomain, full.Executor) {
		return false, flowerrors.ErrExecutorForbidden
	}

	revoked, err := r.consent.IsRevoked(full.AuthHash)
	if err != nil {
		return false, err
	}
	if revoked {
		return false, flowerrors.ErrRevoked
	}

	h, err := r.intents.VerifyAndConsume(r.controller, full.FlowIntent, sig, amount)
	if err != nil {
		return false, err
	}

	dst := r.directory.ReceiverOf(full.DstDomain)
	if dst.IsZero() {
		return false, flowerrors.ErrNoDestinationReceiver
	}

	if err := adapter.Pull(full.AuthHash, dst, amount); err != nil {
		return false, err
	}

	r.emit(events.RebalanceExecuted{IntentHash: h, Src: full.SrcDomain, Dst: full.DstDomain, Token: full.Token, Amount: amount, Executor: full.Executor})
	return true, nil
}
