package events

import (
	"math/big"

	"flowkernel/core/types"
	"flowkernel/crypto"
)

const (
	TypePolicyCreated   = "policy.created"
	TypeReceiverAllowed = "policy.receiver_allowed"
	TypePolicyRevoked   = "policy.revoked"
	TypePolicySpend     = "policy.spend"
)

// PolicyCreated is emitted when a grantor creates a new epoch-budget
// policy. Controller carries the creating grantor's address.
type PolicyCreated struct {
	PolicyID    crypto.Hash
	Controller  crypto.Address
	MaxPerEpoch *big.Int
	EpochLength uint64
}

func (PolicyCreated) EventType() string { return TypePolicyCreated }

func (e PolicyCreated) Event() *types.Event {
	return &types.Event{
		Type: TypePolicyCreated,
		Attributes: map[string]string{
			"policy_id":     formatHash(e.PolicyID),
			"controller":    formatAddress(e.Controller),
			"max_per_epoch": formatAmount(e.MaxPerEpoch),
			"epoch_length":  formatUint64(e.EpochLength),
		},
	}
}

// ReceiverAllowed is emitted when a policy's grantor adds or removes a receiver
// from a policy's allowlist.
type ReceiverAllowed struct {
	PolicyID crypto.Hash
	Receiver crypto.Address
	Allowed  bool
}

func (ReceiverAllowed) EventType() string { return TypeReceiverAllowed }

func (e ReceiverAllowed) Event() *types.Event {
	return &types.Event{
		Type: TypeReceiverAllowed,
		Attributes: map[string]string{
			"policy_id": formatHash(e.PolicyID),
			"receiver":  formatAddress(e.Receiver),
			"allowed":   formatBool(e.Allowed),
		},
	}
}

// PolicyRevoked is emitted when a policy's grantor revokes it entirely.
type PolicyRevoked struct {
	PolicyID crypto.Hash
}

func (PolicyRevoked) EventType() string { return TypePolicyRevoked }

func (e PolicyRevoked) Event() *types.Event {
	return &types.Event{Type: TypePolicyRevoked, Attributes: map[string]string{"policy_id": formatHash(e.PolicyID)}}
}

// PolicySpend is emitted on every successful check_and_consume call,
// recording the epoch spent against and the new running total for it.
type PolicySpend struct {
	PolicyID      crypto.Hash
	Epoch         uint64
	Amount        *big.Int
	NewEpochTotal *big.Int
}

func (PolicySpend) EventType() string { return TypePolicySpend }

func (e PolicySpend) Event() *types.Event {
	return &types.Event{
		Type: TypePolicySpend,
		Attributes: map[string]string{
			"policy_id":       formatHash(e.PolicyID),
			"epoch":           formatUint64(e.Epoch),
			"amount":          formatAmount(e.Amount),
			"new_epoch_total": formatAmount(e.NewEpochTotal),
		},
	}
}
