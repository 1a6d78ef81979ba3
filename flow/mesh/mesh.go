// Package mesh implements the SettlementMesh: a target-weight allocator
// across destinations, driving the AdaptiveRouter toward convergence.
package mesh

import (
	"context"
	"math/big"
	"sort"
	"sync"

	flowerrors "flowkernel/core/errors"
	"flowkernel/core/events"
	"flowkernel/crypto"
)

const bpsDenominator = 10000

// RouteStepper is the subset of AdaptiveRouter the Mesh depends on.
type RouteStepper interface {
	RouteStep(ctx context.Context, caller crypto.Address, to crypto.Address, maxDesired *big.Int) (crypto.Hash, *big.Int, error)
}

type destination struct {
	targetBps uint64
	active    bool
	receiver  crypto.Address
	balance   *big.Int
	ordinal   int
}

// Mesh holds the destination list, controller-reported balances, and
// drives rebalance_tick against a RouteStepper.
type Mesh struct {
	mu           sync.Mutex
	controller   crypto.Address
	router       RouteStepper
	destinations map[crypto.Hash]*destination
	nextOrdinal  int
	total        *big.Int
	emitter      events.Emitter
}

// NewMesh constructs a Mesh.
func NewMesh(controller crypto.Address, router RouteStepper) *Mesh {
	return &Mesh{controller: controller, router: router, destinations: make(map[crypto.Hash]*destination), total: big.NewInt(0), emitter: events.NoopEmitter{}}
}

func (m *Mesh) SetEmitter(e events.Emitter) { m.emitter = e }

func (m *Mesh) emit(ev events.Event) {
	if m.emitter != nil {
		m.emitter.Emit(ev)
	}
}

func (m *Mesh) requireController(caller crypto.Address) error {
	if caller != m.controller {
		return flowerrors.ErrNotController
	}
	return nil
}

// ConfigureDestination registers or updates a destination's target weight,
// active flag, and receiver address.
func (m *Mesh) ConfigureDestination(caller crypto.Address, dest crypto.Hash, receiver crypto.Address, targetBps uint64, active bool) error {
	if err := m.requireController(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.destinations[dest]
	if !ok {
		d = &destination{ordinal: m.nextOrdinal, balance: big.NewInt(0)}
		m.nextOrdinal++
		m.destinations[dest] = d
	}
	d.targetBps = targetBps
	d.active = active
	d.receiver = receiver
	m.emit(events.DestinationConfigured{Domain: dest, Receiver: receiver})
	return nil
}

// ReportBalance records the controller-observed balance for a destination
// and the mesh-wide total. Controller-only.
func (m *Mesh) ReportBalance(caller crypto.Address, dest crypto.Hash, token crypto.Address, balance, total *big.Int, reportedAt uint64) error {
	if err := m.requireController(caller); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.destinations[dest]
	if !ok {
		return flowerrors.ErrBadID
	}
	d.balance = new(big.Int).Set(balance)
	if total != nil {
		m.total = new(big.Int).Set(total)
	}
	m.emit(events.BalanceReported{Domain: dest, Token: token, Balance: balance, ReportedAt: reportedAt})
	return nil
}

type deficitEntry struct {
	dest    crypto.Hash
	deficit *big.Int
	ordinal int
}

// RebalanceTick implements rebalance_tick(max_step_amount). Controller-only.
// No self-state is mutated after the external router call: reentrancy
// cannot corrupt mesh accounting.
func (m *Mesh) RebalanceTick(ctx context.Context, caller crypto.Address, maxStepAmount *big.Int) error {
	if err := m.requireController(caller); err != nil {
		return err
	}

	m.mu.Lock()
	total := new(big.Int).Set(m.total)
	var candidates []deficitEntry
	for dest, d := range m.destinations {
		if !d.active || d.targetBps == 0 || total.Sign() <= 0 {
			continue
		}
		want := new(big.Int).Mul(total, new(big.Int).SetUint64(d.targetBps))
		want.Div(want, big.NewInt(bpsDenominator))
		deficit := new(big.Int).Sub(want, d.balance)
		if deficit.Sign() <= 0 {
			continue
		}
		candidates = append(candidates, deficitEntry{dest: dest, deficit: deficit, ordinal: d.ordinal})
	}
	receivers := make(map[crypto.Hash]crypto.Address, len(m.destinations))
	for dest, d := range m.destinations {
		receivers[dest] = d.receiver
	}
	m.mu.Unlock()

	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		cmp := candidates[i].deficit.Cmp(candidates[j].deficit)
		if cmp != 0 {
			return cmp > 0
		}
		return candidates[i].ordinal < candidates[j].ordinal
	})
	best := candidates[0]

	step := new(big.Int).Set(best.deficit)
	if maxStepAmount != nil && maxStepAmount.Cmp(step) < 0 {
		step = new(big.Int).Set(maxStepAmount)
	}

	receiver := receivers[best.dest]
	if _, _, err := m.router.RouteStep(ctx, caller, receiver, step); err != nil {
		return err
	}

	m.emit(events.MeshStep{Dest: best.dest, Deficit: best.deficit, Sent: step})
	return nil
}
