package events

import (
	"math/big"

	"flowkernel/core/types"
	"flowkernel/crypto"
)

const (
	TypePullExecuted              = "consent.pull_executed"
	TypeAuthorizationRevoked      = "consent.authorization_revoked"
	TypeAuthorizationBudgetUpdated = "consent.authorization_budget_updated"
	TypeAuthorizationObserved     = "consent.authorization_observed"
)

// PullExecuted is emitted by ConsentRegistry after record_pull succeeds:
// a trusted executor has recorded a pull against an authorization and the
// registry's cumulative pulled_total for it has advanced.
type PullExecuted struct {
	AuthHash   crypto.Hash
	Token      crypto.Address
	Grantor    crypto.Address
	Grantee    crypto.Address
	Amount     *big.Int
	Cumulative *big.Int
}

func (PullExecuted) EventType() string { return TypePullExecuted }

func (e PullExecuted) Event() *types.Event {
	return &types.Event{
		Type: TypePullExecuted,
		Attributes: map[string]string{
			"auth_hash":  formatHash(e.AuthHash),
			"token":      formatAddress(e.Token),
			"grantor":    formatAddress(e.Grantor),
			"grantee":    formatAddress(e.Grantee),
			"amount":     formatAmount(e.Amount),
			"cumulative": formatAmount(e.Cumulative),
		},
	}
}

// AuthorizationRevoked is emitted when a grantor revokes an authorization.
type AuthorizationRevoked struct {
	AuthHash crypto.Hash
	Grantor  crypto.Address
	Ts       uint64
}

func (AuthorizationRevoked) EventType() string { return TypeAuthorizationRevoked }

func (e AuthorizationRevoked) Event() *types.Event {
	return &types.Event{
		Type: TypeAuthorizationRevoked,
		Attributes: map[string]string{
			"auth_hash": formatHash(e.AuthHash),
			"grantor":   formatAddress(e.Grantor),
			"ts":        formatUint64(e.Ts),
		},
	}
}

// AuthorizationBudgetUpdated is emitted when an authorization's owner sets a
// new advisory epoch cap through SetCap; the new cap may be higher or lower.
type AuthorizationBudgetUpdated struct {
	AuthHash crypto.Hash
	OldCap   *big.Int
	NewCap   *big.Int
}

func (AuthorizationBudgetUpdated) EventType() string { return TypeAuthorizationBudgetUpdated }

func (e AuthorizationBudgetUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeAuthorizationBudgetUpdated,
		Attributes: map[string]string{
			"auth_hash": formatHash(e.AuthHash),
			"old_cap":   formatAmount(e.OldCap),
			"new_cap":   formatAmount(e.NewCap),
		},
	}
}

// AuthorizationObserved is the advisory, intentionally unauthenticated
// event emitted by ConsentRegistry.Observe; no authorization check in
// flow/pull or flow/intent ever consults it.
type AuthorizationObserved struct {
	AuthHash crypto.Hash
	Grantor  crypto.Address
	Grantee  crypto.Address
	Token    crypto.Address
}

func (AuthorizationObserved) EventType() string { return TypeAuthorizationObserved }

func (e AuthorizationObserved) Event() *types.Event {
	return &types.Event{
		Type: TypeAuthorizationObserved,
		Attributes: map[string]string{
			"auth_hash": formatHash(e.AuthHash),
			"grantor":   formatAddress(e.Grantor),
			"grantee":   formatAddress(e.Grantee),
			"token":     formatAddress(e.Token),
		},
	}
}
