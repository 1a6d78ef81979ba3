// Package channel implements FlowChannel: continuous time-based accrual
// with a cap, letting a designated grantee pull up to the accrued balance
// to any receiver, optionally gated by a PolicyEnforcer.
package channel

import (
	"math/big"

	"flowkernel/crypto"
)

// Channel is the per-channel_id stored state.
type Channel struct {
	Grantor       crypto.Address
	Grantee       crypto.Address
	Token         crypto.Address
	RatePerSecond *big.Int
	MaxBalance    *big.Int
	Accrued       *big.Int
	LastUpdate    uint64
	Paused        bool
	Revoked       bool
	PolicyRef     *crypto.Hash
}

// IsPaused implements flow/common.PauseView.
func (c *Channel) IsPaused() bool { return c != nil && c.Paused }

// Clone returns a deep copy safe for callers to mutate.
func (c *Channel) Clone() *Channel {
	if c == nil {
		return nil
	}
	clone := *c
	if c.RatePerSecond != nil {
		clone.RatePerSecond = new(big.Int).Set(c.RatePerSecond)
	}
	if c.MaxBalance != nil {
		clone.MaxBalance = new(big.Int).Set(c.MaxBalance)
	}
	if c.Accrued != nil {
		clone.Accrued = new(big.Int).Set(c.Accrued)
	}
	if c.PolicyRef != nil {
		ref := *c.PolicyRef
		clone.PolicyRef = &ref
	}
	return &clone
}
