package events

import (
	"math/big"

	"flowkernel/core/types"
	"flowkernel/crypto"
)

const (
	TypeIntentRevoked      = "intent.revoked"
	TypeRebalanceExecuted  = "intent.rebalance_executed"
)

// IntentRevoked is emitted when a grantor revokes a cross-domain FlowIntent
// before it moves its full max_total.
type IntentRevoked struct {
	IntentHash crypto.Hash
}

func (IntentRevoked) EventType() string { return TypeIntentRevoked }

func (e IntentRevoked) Event() *types.Event {
	return &types.Event{Type: TypeIntentRevoked, Attributes: map[string]string{"intent_hash": formatHash(e.IntentHash)}}
}

// RebalanceExecuted is emitted by the Rebalancer after it moves amount from
// src to dst under intent, recording which executor triggered the move.
type RebalanceExecuted struct {
	IntentHash crypto.Hash
	Src        crypto.Hash
	Dst        crypto.Hash
	Token      crypto.Address
	Amount     *big.Int
	Executor   crypto.Address
}

func (RebalanceExecuted) EventType() string { return TypeRebalanceExecuted }

func (e RebalanceExecuted) Event() *types.Event {
	return &types.Event{
		Type: TypeRebalanceExecuted,
		Attributes: map[string]string{
			"intent_hash": formatHash(e.IntentHash),
			"src":         formatHash(e.Src),
			"dst":         formatHash(e.Dst),
			"token":       formatAddress(e.Token),
			"amount":      formatAmount(e.Amount),
			"executor":    formatAddress(e.Executor),
		},
	}
}
