package mesh

import (
	"context"
	"math/big"
	"testing"

	"flowkernel/crypto"
)

func addr(b byte) crypto.Address {
	var a crypto.Address
	a[19] = b
	return a
}

func hashOf(b byte) crypto.Hash {
	var h crypto.Hash
	h[31] = b
	return h
}

type fakeRouter struct {
	calls []struct {
		to     crypto.Address
		amount *big.Int
	}
	channelID crypto.Hash
}

func (r *fakeRouter) RouteStep(ctx context.Context, caller crypto.Address, to crypto.Address, maxDesired *big.Int) (crypto.Hash, *big.Int, error) {
	r.calls = append(r.calls, struct {
		to     crypto.Address
		amount *big.Int
	}{to, maxDesired})
	return r.channelID, maxDesired, nil
}

// TestRebalanceTickScenario replays a two-destination deficit-routing scenario.
func TestRebalanceTickScenario(t *testing.T) {
	controller := addr(1)
	r1 := hashOf(1)
	r2 := hashOf(2)
	receiver1 := addr(2)
	receiver2 := addr(3)

	router := &fakeRouter{channelID: hashOf(9)}
	m := NewMesh(controller, router)

	if err := m.ConfigureDestination(controller, r1, receiver1, 7000, true); err != nil {
		t.Fatalf("configure r1: %v", err)
	}
	if err := m.ConfigureDestination(controller, r2, receiver2, 3000, true); err != nil {
		t.Fatalf("configure r2: %v", err)
	}
	if err := m.ReportBalance(controller, r1, addr(9), big.NewInt(400), big.NewInt(1000), 0); err != nil {
		t.Fatalf("report r1: %v", err)
	}
	if err := m.ReportBalance(controller, r2, addr(9), big.NewInt(500), big.NewInt(1000), 0); err != nil {
		t.Fatalf("report r2: %v", err)
	}

	if err := m.RebalanceTick(context.Background(), controller, big.NewInt(1000)); err != nil {
		t.Fatalf("rebalance_tick: %v", err)
	}

	if len(router.calls) != 1 {
		t.Fatalf("expected exactly one router call, got %d", len(router.calls))
	}
	if router.calls[0].to != receiver1 {
		t.Fatalf("expected step toward R1 (greatest deficit), got %x", router.calls[0].to)
	}
	if router.calls[0].amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("step amount = %s, want 300", router.calls[0].amount)
	}
}

func TestRebalanceTickNoOpWhenWithinTarget(t *testing.T) {
	controller := addr(1)
	r1 := hashOf(1)
	receiver1 := addr(2)

	router := &fakeRouter{channelID: hashOf(9)}
	m := NewMesh(controller, router)
	if err := m.ConfigureDestination(controller, r1, receiver1, 5000, true); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := m.ReportBalance(controller, r1, addr(9), big.NewInt(500), big.NewInt(1000), 0); err != nil {
		t.Fatalf("report: %v", err)
	}

	if err := m.RebalanceTick(context.Background(), controller, big.NewInt(1000)); err != nil {
		t.Fatalf("rebalance_tick: %v", err)
	}
	if len(router.calls) != 0 {
		t.Fatal("expected no router call when already at target")
	}
}

func TestRebalanceTickRequiresController(t *testing.T) {
	controller := addr(1)
	impostor := addr(9)
	router := &fakeRouter{}
	m := NewMesh(controller, router)
	if err := m.RebalanceTick(context.Background(), impostor, big.NewInt(10)); err == nil {
		t.Fatal("expected not-controller error")
	}
}
