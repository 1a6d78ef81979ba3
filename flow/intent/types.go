// Package intent implements IntentRegistry and Rebalancer: signed
// cross-domain FlowIntent verification/metering, and the orchestration that
// drives a source pull adapter into a destination domain.
package intent

import (
	"math/big"

	"flowkernel/crypto"
)

// FlowIntent is the off-host-signed payload authorizing a controller to
// move up to max_total from src_domain to dst_domain via executor.
type FlowIntent struct {
	Grantor      crypto.Address
	Executor     crypto.Address
	SrcDomain    crypto.Hash
	DstDomain    crypto.Hash
	Token        crypto.Address
	MaxTotal     *big.Int
	ValidAfter   uint64
	ValidBefore  uint64
	Nonce        uint64
	MetadataHash crypto.Hash
}

// IntentHash computes intent_hash: the deterministic hash of the intent's
// ordered field list, excluding the signature.
func (fi FlowIntent) IntentHash() crypto.Hash {
	return crypto.StructHashFlowIntent(fi.Grantor, fi.Executor, fi.SrcDomain, fi.DstDomain, fi.Token, fi.MaxTotal, fi.ValidAfter, fi.ValidBefore, fi.Nonce, fi.MetadataHash)
}

// SigningDigest computes the typed digest the grantor signs.
func (fi FlowIntent) SigningDigest(domain crypto.Hash) crypto.Hash {
	return crypto.TypedDigest(crypto.KindFlowIntent, domain, fi.IntentHash())
}

// Entry is the registry's per-intent_hash stored state.
type Entry struct {
	Owner      crypto.Address
	OwnerSet   bool
	Revoked    bool
	MovedSoFar *big.Int
}

// Clone returns a deep copy safe for callers to mutate.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.MovedSoFar != nil {
		clone.MovedSoFar = new(big.Int).Set(e.MovedSoFar)
	}
	return &clone
}
