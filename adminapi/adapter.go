package adminapi

import (
	"context"
	"math/big"

	"flowkernel/crypto"
	"flowkernel/flow/channel"
)

// channelSourceAdapter satisfies intent.SourcePullAdapter by treating a
// FlowIntent's auth_hash as a FlowChannel id: the Rebalancer's source-domain
// withdrawal rides on an already-open streaming channel rather than a
// one-shot Authorization.
type channelSourceAdapter struct {
	ctx    context.Context
	engine *channel.Engine
	caller crypto.Address
}

func newChannelSourceAdapter(ctx context.Context, engine *channel.Engine, caller crypto.Address) *channelSourceAdapter {
	return &channelSourceAdapter{ctx: ctx, engine: engine, caller: caller}
}

func (a *channelSourceAdapter) Pull(authHash crypto.Hash, dst crypto.Address, amount *big.Int) error {
	return a.engine.Pull(a.ctx, a.caller, authHash, dst, amount)
}
