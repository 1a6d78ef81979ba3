// Package consent implements the ConsentRegistry: per-authorization
// revocation flag, cumulative pulled total, owner binding, and advisory
// soft cap.
package consent

import (
	"math/big"

	"flowkernel/crypto"
)

// Authorization is the off-host-signed payload a grantor produces to permit
// a grantee to pull funds through a trusted executor. It is never stored
// whole; only its hash (Hash, below) is referenced by the registry.
type Authorization struct {
	Grantor     crypto.Address
	Grantee     crypto.Address
	Token       crypto.Address
	MaxPerPull  *big.Int
	ValidAfter  uint64
	ValidBefore uint64
	Nonce       uint64
}

// AuthHash computes auth_hash: the deterministic hash of the
// authorization's seven ordered fields, excluding the signature. This is
// the identifier used to key ConsentRegistry entries and MUST match how
// wallets and indexers derive it.
func (a Authorization) AuthHash() crypto.Hash {
	structHash := crypto.StructHashAuthorization(a.Grantor, a.Grantee, a.Token, a.MaxPerPull, a.ValidAfter, a.ValidBefore, a.Nonce)
	return structHash
}

// SigningDigest computes the typed digest a grantor signs over: hash(prefix
// ‖ D ‖ struct_hash(auth)), where D is the caller-supplied domain
// descriptor binding the signature to one host and one PullExecutor
// instance.
func (a Authorization) SigningDigest(domain crypto.Hash) crypto.Hash {
	return crypto.TypedDigest(crypto.KindAuthorization, domain, a.AuthHash())
}

// Entry is the registry's per-auth_hash stored state.
type Entry struct {
	Owner       crypto.Address
	OwnerSet    bool
	Revoked     bool
	PulledTotal *big.Int
	Cap         *big.Int
}

// Clone returns a deep copy safe for callers to mutate.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.PulledTotal != nil {
		clone.PulledTotal = new(big.Int).Set(e.PulledTotal)
	}
	if e.Cap != nil {
		clone.Cap = new(big.Int).Set(e.Cap)
	}
	return &clone
}
