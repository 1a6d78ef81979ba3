// Package router implements the AdaptiveRouter: weighted selection among a
// registered set of flow channels feeding a single receiver.
package router

import (
	"context"
	"math/big"
	"sort"
	"sync"

	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
)

// ChannelBackend is the subset of FlowChannel's Engine the Router depends
// on: claimable view and the pull operation itself.
type ChannelBackend interface {
	Claimable(id crypto.Hash) (*big.Int, error)
	Pull(ctx context.Context, caller crypto.Address, id crypto.Hash, to crypto.Address, amount *big.Int) error
}

type route struct {
	weight   uint64
	active   bool
	ordinal  int
}

// Router holds the {channel_id -> {weight, active}} mapping and traversal
// order, and drives route_step against a ChannelBackend.
type Router struct {
	mu         sync.RWMutex
	controller crypto.Address
	self       crypto.Address
	channels   ChannelBackend
	routes     map[crypto.Hash]*route
	nextOrdinal int
	emitter    events.Emitter
}

// NewRouter constructs a Router. self is the caller identity the Router
// presents to the channel backend when invoking Pull (it must be the
// registered grantee on every channel it manages).
func NewRouter(controller, self crypto.Address, channels ChannelBackend) *Router {
	return &Router{controller: controller, self: self, channels: channels, routes: make(map[crypto.Hash]*route), emitter: events.NoopEmitter{}}
}

func (r *Router) SetEmitter(e events.Emitter) { r.emitter = e }

func (r *Router) emit(ev events.Event) {
	if r.emitter != nil {
		r.emitter.Emit(ev)
	}
}

func (r *Router) requireController(caller crypto.Address) error {
	if caller != r.controller {
		return flowerrors.ErrNotController
	}
	return nil
}

// RegisterChannel adds or updates channelID's weight/active entry.
func (r *Router) RegisterChannel(caller crypto.Address, channelID crypto.Hash, token crypto.Address, weight uint64, active bool) error {
	if err := r.requireController(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[channelID]
	if !ok {
		rt = &route{ordinal: r.nextOrdinal}
		r.nextOrdinal++
		r.routes[channelID] = rt
		r.emit(events.ChannelRegistered{ChannelID: channelID, Token: token, Weight: weight})
	}
	rt.weight = weight
	rt.active = active
	r.emit(events.ChannelUpdated{ChannelID: channelID, Weight: weight, Active: active})
	return nil
}

// SetChannelActive flips a registered channel's active flag.
func (r *Router) SetChannelActive(caller crypto.Address, channelID crypto.Hash, active bool) error {
	if err := r.requireController(caller); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[channelID]
	if !ok {
		return flowerrors.ErrBadID
	}
	rt.active = active
	r.emit(events.ChannelUpdated{ChannelID: channelID, Weight: rt.weight, Active: active})
	return nil
}

func (r *Router) bestActive() (crypto.Hash, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]crypto.Hash, 0, len(r.routes))
	for id := range r.routes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.routes[ids[i]].ordinal < r.routes[ids[j]].ordinal })

	var best crypto.Hash
	var bestWeight uint64
	found := false
	for _, id := range ids {
		rt := r.routes[id]
		if !rt.active {
			continue
		}
		if !found || rt.weight > bestWeight {
			best = id
			bestWeight = rt.weight
			found = true
		}
	}
	return best, found
}

// RouteStep implements route_step(to, max_desired). Controller-only.
func (r *Router) RouteStep(ctx context.Context, caller crypto.Address, to crypto.Address, maxDesired *big.Int) (crypto.Hash, *big.Int, error) {
	if err := r.requireController(caller); err != nil {
		return crypto.Hash{}, nil, err
	}

	best, ok := r.bestActive()
	if !ok {
		return crypto.Hash{}, nil, flowerrors.ErrNoActiveRoute
	}

	claimable, err := r.channels.Claimable(best)
	if err != nil {
		return crypto.Hash{}, nil, err
	}

	amt := new(big.Int).Set(claimable)
	if maxDesired != nil && maxDesired.Cmp(amt) < 0 {
		amt = new(big.Int).Set(maxDesired)
	}

	if amt.Sign() > 0 {
		if err := r.channels.Pull(ctx, r.self, best, to, amt); err != nil {
			return crypto.Hash{}, nil, err
		}
	}

	r.emit(events.Routed{ChannelID: best, To: to, Amount: amt})
	return best, amt, nil
}
