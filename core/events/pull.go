package events

import (
	"math/big"

	"flowkernel/core/types"
	"flowkernel/crypto"
)

const TypePullExecutedDirect = "pull.executed_direct"

// PullExecutedDirect is emitted by PullExecutor itself, distinct from
// ConsentRegistry's PullExecuted: it marks a completed pull and is emitted
// after the transfer succeeded and ConsentRegistry's RecordPull advanced
// pulled_total.
type PullExecutedDirect struct {
	AuthHash crypto.Hash
	Token    crypto.Address
	Grantor  crypto.Address
	Grantee  crypto.Address
	Amount   *big.Int
}

func (PullExecutedDirect) EventType() string { return TypePullExecutedDirect }

func (e PullExecutedDirect) Event() *types.Event {
	return &types.Event{
		Type: TypePullExecutedDirect,
		Attributes: map[string]string{
			"auth_hash": formatHash(e.AuthHash),
			"token":     formatAddress(e.Token),
			"grantor":   formatAddress(e.Grantor),
			"grantee":   formatAddress(e.Grantee),
			"amount":    formatAmount(e.Amount),
		},
	}
}
