package router

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

type fakeBackend struct {
	claimable map[crypto.Hash]*big.Int
	pulls     []struct {
		id     crypto.Hash
		to     crypto.Address
		amount *big.Int
	}
	failID crypto.Hash
}

func (b *fakeBackend) Claimable(id crypto.Hash) (*big.Int, error) {
	if v, ok := b.claimable[id]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

func (b *fakeBackend) Pull(ctx context.Context, caller crypto.Address, id crypto.Hash, to crypto.Address, amount *big.Int) error {
	b.pulls = append(b.pulls, struct {
		id     crypto.Hash
		to     crypto.Address
		amount *big.Int
	}{id, to, amount})
	return nil
}

func TestRouteStepSelectsGreatestWeightActive(t *testing.T) {
	controller := addr(1)
	self := addr(2)
	to := addr(9)
	chanA := hashOf(1)
	chanB := hashOf(2)

	backend := &fakeBackend{claimable: map[crypto.Hash]*big.Int{
		chanA: big.NewInt(50),
		chanB: big.NewInt(200),
	}}
	r := NewRouter(controller, self, backend)

	if err := r.RegisterChannel(controller, chanA, addr(3), 10, true); err != nil {
		t.Fatalf("register A: %v", err)
	}
	if err := r.RegisterChannel(controller, chanB, addr(3), 20, true); err != nil {
		t.Fatalf("register B: %v", err)
	}

	best, amt, err := r.RouteStep(context.Background(), controller, to, big.NewInt(1000))
	if err != nil {
		t.Fatalf("route_step: %v", err)
	}
	if best != chanB {
		t.Fatalf("expected greatest-weight channel B selected, got %x", best)
	}
	if amt.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("amount = %s, want 200 (claimable)", amt)
	}
	if len(backend.pulls) != 1 {
		t.Fatalf("expected one pull, got %d", len(backend.pulls))
	}
}

func TestRouteStepLoudZeroWhenNoClaimable(t *testing.T) {
	controller := addr(1)
	self := addr(2)
	to := addr(9)
	chanA := hashOf(1)

	backend := &fakeBackend{claimable: map[crypto.Hash]*big.Int{}}
	r := NewRouter(controller, self, backend)
	if err := r.RegisterChannel(controller, chanA, addr(3), 10, true); err != nil {
		t.Fatalf("register: %v", err)
	}

	best, amt, err := r.RouteStep(context.Background(), controller, to, big.NewInt(1000))
	if err != nil {
		t.Fatalf("route_step: %v", err)
	}
	if best != chanA || amt.Sign() != 0 {
		t.Fatalf("expected loud zero on channel A, got best=%x amt=%s", best, amt)
	}
	if len(backend.pulls) != 0 {
		t.Fatal("amount=0 must not invoke channel.Pull")
	}
}

func TestRouteStepFailsWithNoActiveChannel(t *testing.T) {
	controller := addr(1)
	self := addr(2)
	backend := &fakeBackend{claimable: map[crypto.Hash]*big.Int{}}
	r := NewRouter(controller, self, backend)
	if _, _, err := r.RouteStep(context.Background(), controller, addr(9), big.NewInt(1)); err == nil {
		t.Fatal("expected no-active-route error")
	}
}
