package events

import (
	"math/big"

	"flowkernel/core/types"
	"flowkernel/crypto"
)

const (
	TypeChannelOpened     = "channel.opened"
	TypeChannelRateUpdated = "channel.rate_updated"
	TypeChannelPaused     = "channel.paused"
	TypeChannelResumed    = "channel.resumed"
	TypeChannelRevoked    = "channel.revoked"
	TypePulled            = "channel.pulled"
)

// ChannelOpened is emitted when a grantor opens a new streaming FlowChannel.
type ChannelOpened struct {
	ID         crypto.Hash
	Grantor    crypto.Address
	Grantee    crypto.Address
	Token      crypto.Address
	Rate       *big.Int
	MaxBalance *big.Int
}

func (ChannelOpened) EventType() string { return TypeChannelOpened }

func (e ChannelOpened) Event() *types.Event {
	return &types.Event{
		Type: TypeChannelOpened,
		Attributes: map[string]string{
			"id":          formatHash(e.ID),
			"grantor":     formatAddress(e.Grantor),
			"grantee":     formatAddress(e.Grantee),
			"token":       formatAddress(e.Token),
			"rate":        formatAmount(e.Rate),
			"max_balance": formatAmount(e.MaxBalance),
		},
	}
}

// ChannelRateUpdated is emitted when a grantor adjusts a channel's accrual
// rate and/or max balance cap.
type ChannelRateUpdated struct {
	ID      crypto.Hash
	OldRate *big.Int
	OldCap  *big.Int
	NewRate *big.Int
	NewCap  *big.Int
}

func (ChannelRateUpdated) EventType() string { return TypeChannelRateUpdated }

func (e ChannelRateUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeChannelRateUpdated,
		Attributes: map[string]string{
			"id":       formatHash(e.ID),
			"old_rate": formatAmount(e.OldRate),
			"old_cap":  formatAmount(e.OldCap),
			"new_rate": formatAmount(e.NewRate),
			"new_cap":  formatAmount(e.NewCap),
		},
	}
}

// ChannelPaused is emitted when a grantor pauses accrual on a channel.
type ChannelPaused struct {
	ID crypto.Hash
}

func (ChannelPaused) EventType() string { return TypeChannelPaused }

func (e ChannelPaused) Event() *types.Event {
	return &types.Event{Type: TypeChannelPaused, Attributes: map[string]string{"id": formatHash(e.ID)}}
}

// ChannelResumed is emitted when a grantor resumes a paused channel.
type ChannelResumed struct {
	ID crypto.Hash
}

func (ChannelResumed) EventType() string { return TypeChannelResumed }

func (e ChannelResumed) Event() *types.Event {
	return &types.Event{Type: TypeChannelResumed, Attributes: map[string]string{"id": formatHash(e.ID)}}
}

// ChannelRevoked is emitted when a grantor permanently closes a channel.
type ChannelRevoked struct {
	ID crypto.Hash
}

func (ChannelRevoked) EventType() string { return TypeChannelRevoked }

func (e ChannelRevoked) Event() *types.Event {
	return &types.Event{Type: TypeChannelRevoked, Attributes: map[string]string{"id": formatHash(e.ID)}}
}

// Pulled is emitted on every successful FlowChannel.pull, recording how much
// of the accrued balance moved to which receiver.
type Pulled struct {
	ID     crypto.Hash
	To     crypto.Address
	Amount *big.Int
}

func (Pulled) EventType() string { return TypePulled }

func (e Pulled) Event() *types.Event {
	return &types.Event{
		Type: TypePulled,
		Attributes: map[string]string{
			"id":     formatHash(e.ID),
			"to":     formatAddress(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}
