// Package adminapi exposes an HTTP+WebSocket control surface over the
// kernel's seven components for operators, indexers, and governance tooling.
package adminapi

import (
	"math/big"

	"flowkernel/flow/channel"
	"flowkernel/flow/consent"
	"flowkernel/flow/domain"
	"flowkernel/flow/intent"
	"flowkernel/flow/mesh"
	"flowkernel/flow/policy"
	"flowkernel/flow/pull"
	"flowkernel/flow/router"
)

// Kernel bundles every component the admin API fronts. All fields are
// optional; routes for a nil component are not registered.
type Kernel struct {
	Consent    *consent.Registry
	Pull       *pull.Executor
	Channel    *channel.Engine
	Policy     *policy.Enforcer
	Domain     *domain.Directory
	Intent     *intent.Registry
	Rebalancer *intent.Rebalancer
	Router     *router.Router
	Mesh       *mesh.Mesh
}

// parseAmount parses a decimal string into a *big.Int, used by every route
// handler that accepts an amount field over the wire.
func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	return v, ok
}
