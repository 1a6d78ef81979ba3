// Package common holds the reentrancy latch and small authorization helpers
// for the flow components.
package common

import (
	"sync"

	flowerrors "flowkernel/core/errors"
)

// Latch is a single-entry guard against reentrancy: while it is held, a
// nested Enter is rejected rather than silently re-entering. FlowChannel
// holds a per-channel latch around Pull, and IntentRegistry holds one around
// VerifyAndConsume. PullExecutor.Pull, PolicyEnforcer.CheckAndConsume,
// ConsentRegistry.RecordPull, the Rebalancer, the router and the mesh take
// no latch.
type Latch struct {
	mu   sync.Mutex
	held bool
}

// Enter acquires the latch, returning flowerrors.ErrReentrancy if it is
// already held. On success, the caller must call the returned release func
// exactly once, typically via defer.
func (l *Latch) Enter() (release func(), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, flowerrors.ErrReentrancy
	}
	l.held = true
	return l.release, nil
}

func (l *Latch) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
}
