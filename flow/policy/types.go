// Package policy implements the PolicyEnforcer: per-policy per-epoch
// budget, per-call ceiling, receiver allowlist, and revocation, consulted
// by the streaming channel and the routers before release.
package policy

import (
	"math/big"

	"flowkernel/crypto"
)

// Policy is the per-policy_id stored configuration and running state.
type Policy struct {
	Grantor             crypto.Address
	Grantee             crypto.Address
	Token               crypto.Address
	MaxPerPull          *big.Int
	MaxPerEpoch         *big.Int
	EpochLength         uint64
	CurrentEpoch        uint64
	SpentThisEpoch      *big.Int
	ReceiverRulesActive bool
	AllowedReceivers    map[crypto.Address]bool
	Revoked             bool
}

// Clone returns a deep copy safe for callers to mutate.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	clone := *p
	if p.MaxPerPull != nil {
		clone.MaxPerPull = new(big.Int).Set(p.MaxPerPull)
	}
	if p.MaxPerEpoch != nil {
		clone.MaxPerEpoch = new(big.Int).Set(p.MaxPerEpoch)
	}
	if p.SpentThisEpoch != nil {
		clone.SpentThisEpoch = new(big.Int).Set(p.SpentThisEpoch)
	}
	if p.AllowedReceivers != nil {
		clone.AllowedReceivers = make(map[crypto.Address]bool, len(p.AllowedReceivers))
		for k, v := range p.AllowedReceivers {
			clone.AllowedReceivers[k] = v
		}
	}
	return &clone
}
