package events

import (
	"math/big"

	"flowkernel/core/types"
	"flowkernel/crypto"
)

const (
	TypeChannelRegistered   = "mesh.channel_registered"
	TypeChannelUpdated      = "mesh.channel_updated"
	TypeRouted              = "mesh.routed"
	TypeDestinationConfigured = "mesh.destination_configured"
	TypeBalanceReported     = "mesh.balance_reported"
	TypeMeshStep            = "mesh.step"
)

// ChannelRegistered is emitted by AdaptiveRouter when a new downstream
// routing channel is registered.
type ChannelRegistered struct {
	ChannelID crypto.Hash
	Token     crypto.Address
	Weight    uint64
}

func (ChannelRegistered) EventType() string { return TypeChannelRegistered }

func (e ChannelRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeChannelRegistered,
		Attributes: map[string]string{
			"channel_id": formatHash(e.ChannelID),
			"token":      formatAddress(e.Token),
			"weight":     formatUint64(e.Weight),
		},
	}
}

// ChannelUpdated is emitted when a registered routing channel's weight or
// active state changes.
type ChannelUpdated struct {
	ChannelID crypto.Hash
	Weight    uint64
	Active    bool
}

func (ChannelUpdated) EventType() string { return TypeChannelUpdated }

func (e ChannelUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeChannelUpdated,
		Attributes: map[string]string{
			"channel_id": formatHash(e.ChannelID),
			"weight":     formatUint64(e.Weight),
			"active":     formatBool(e.Active),
		},
	}
}

// Routed is emitted every time AdaptiveRouter selects a channel to carry an
// amount to a receiver.
type Routed struct {
	ChannelID crypto.Hash
	To        crypto.Address
	Amount    *big.Int
}

func (Routed) EventType() string { return TypeRouted }

func (e Routed) Event() *types.Event {
	return &types.Event{
		Type: TypeRouted,
		Attributes: map[string]string{
			"channel_id": formatHash(e.ChannelID),
			"to":         formatAddress(e.To),
			"amount":     formatAmount(e.Amount),
		},
	}
}

// DestinationConfigured is emitted when SettlementMesh learns or updates the
// receiver address for a destination domain.
type DestinationConfigured struct {
	Domain   crypto.Hash
	Receiver crypto.Address
}

func (DestinationConfigured) EventType() string { return TypeDestinationConfigured }

func (e DestinationConfigured) Event() *types.Event {
	return &types.Event{
		Type: TypeDestinationConfigured,
		Attributes: map[string]string{
			"domain":   formatHash(e.Domain),
			"receiver": formatAddress(e.Receiver),
		},
	}
}

// BalanceReported is emitted when the mesh controller reports a
// destination's observed balance (and the total) into the mesh; the event
// carries the balance only.
type BalanceReported struct {
	Domain     crypto.Hash
	Token      crypto.Address
	Balance    *big.Int
	ReportedAt uint64
}

func (BalanceReported) EventType() string { return TypeBalanceReported }

func (e BalanceReported) Event() *types.Event {
	return &types.Event{
		Type: TypeBalanceReported,
		Attributes: map[string]string{
			"domain":      formatHash(e.Domain),
			"token":       formatAddress(e.Token),
			"balance":     formatAmount(e.Balance),
			"reported_at": formatUint64(e.ReportedAt),
		},
	}
}

// MeshStep is emitted for each individual transfer SettlementMesh performs
// during a rebalance_tick, recording the destination it targeted, the
// deficit it observed there, and how much it actually sent.
type MeshStep struct {
	Dest    crypto.Hash
	Deficit *big.Int
	Sent    *big.Int
}

func (MeshStep) EventType() string { return TypeMeshStep }

func (e MeshStep) Event() *types.Event {
	return &types.Event{
		Type: TypeMeshStep,
		Attributes: map[string]string{
			"dest":    formatHash(e.Dest),
			"deficit": formatAmount(e.Deficit),
			"sent":    formatAmount(e.Sent),
		},
	}
}
