// Package clock implements the UniversalClock: the canonical, monotonic
// epoch index shared by every PolicyEnforcer instance on a host.
package clock

import "fmt"

// Config is the immutable configuration of a UniversalClock.
type Config struct {
	// EpochLength is the duration, in seconds, of a single epoch. Must be
	// greater than zero.
	EpochLength uint64
	// GenesisTimestamp is the unix timestamp (seconds) of epoch 0's start.
	GenesisTimestamp uint64
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.EpochLength == 0 {
		return fmt.Errorf("clock: epoch length must be greater than zero")
	}
	return nil
}

// Clock is a deterministic pure function of a host-provided timestamp and an
// immutable (epoch_length, genesis_ts) pair. It holds no mutable state of
// its own; "now" is always supplied by the caller so every consumer observes
// the same value for a given call.
type Clock struct {
	cfg Config
}

// New constructs a Clock from the supplied configuration, returning the
// error from cfg.Validate if the configuration is invalid.
func New(cfg Config) (*Clock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Clock{cfg: cfg}, nil
}

// Config returns the clock's immutable configuration.
func (c *Clock) Config() Config { return c.cfg }

// CurrentEpoch returns the epoch index for the supplied timestamp:
// (now - genesis_ts) / epoch_length, integer division. Timestamps before
// genesis are clamped to epoch 0.
func (c *Clock) CurrentEpoch(now uint64) uint64 {
	if now <= c.cfg.GenesisTimestamp {
		return 0
	}
	return (now - c.cfg.GenesisTimestamp) / c.cfg.EpochLength
}

// EpochStart returns the unix timestamp at which the supplied epoch began.
func (c *Clock) EpochStart(epoch uint64) uint64 {
	return c.cfg.GenesisTimestamp + epoch*c.cfg.EpochLength
}

// SecondsUntilNextEpoch returns how many seconds remain until the epoch
// boundary following now.
func (c *Clock) SecondsUntilNextEpoch(now uint64) uint64 {
	current := c.CurrentEpoch(now)
	nextStart := c.EpochStart(current + 1)
	if now >= nextStart {
		return 0
	}
	return nextStart - now
}
