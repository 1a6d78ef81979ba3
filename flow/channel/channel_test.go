package channel

import (
	"context"
	"math/big"
	"testing"

	"flowkernel/crypto"
	"flowkernel/ledger"
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

// TestChannelDripScenario replays a multi-step accrual/claim/pause scenario.
func TestChannelDripScenario(t *testing.T) {
	grantor := addr(1)
	grantee := addr(2)
	receiver := addr(3)
	token := addr(4)
	id := hashOf(1)

	tokens := ledger.NewMemoryLedger()
	tokens.Credit(grantor, token, big.NewInt(10_000))
	tokens.Approve(grantor, grantee, token, big.NewInt(10_000))

	now := uint64(0)
	eng := NewEngine(tokens)
	eng.SetState(NewMemoryStore())
	eng.SetNowFn(func() uint64 { return now })

	if err := eng.Open(grantor, id, grantee, token, big.NewInt(2), big.NewInt(1000), nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	now = 10
	claimable, err := eng.Claimable(id)
	if err != nil || claimable.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("claimable at t=10: %v %v", claimable, err)
	}

	if err := eng.Pull(context.Background(), grantee, id, receiver, big.NewInt(15)); err != nil {
		t.Fatalf("pull 15: %v", err)
	}
	claimable, _ = eng.Claimable(id)
	if claimable.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("claimable after pull = %s, want 5", claimable)
	}

	if err := eng.Pause(grantor, id); err != nil {
		t.Fatalf("pause: %v", err)
	}

	now = 100
	claimable, _ = eng.Claimable(id)
	if claimable.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("claimable while paused = %s, want 5 (no accrual)", claimable)
	}

	if err := eng.Resume(grantor, id); err != nil {
		t.Fatalf("resume: %v", err)
	}

	now = 110
	claimable, _ = eng.Claimable(id)
	if claimable.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("claimable after resume = %s, want 25", claimable)
	}

	if err := eng.Revoke(grantor, id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := eng.Pull(context.Background(), grantee, id, receiver, big.NewInt(1)); err == nil {
		t.Fatal("expected revoked error on pull after revoke")
	}

	recvBal, _ := tokens.BalanceOf(context.Background(), receiver, token)
	if recvBal.Cmp(big.NewInt(15)) != 0 {
		t.Fatalf("receiver balance = %s, want 15", recvBal)
	}
}

func TestChannelAccrualCapsAtMaxBalance(t *testing.T) {
	grantor := addr(1)
	grantee := addr(2)
	token := addr(4)
	id := hashOf(2)

	tokens := ledger.NewMemoryLedger()
	now := uint64(0)
	eng := NewEngine(tokens)
	eng.SetState(NewMemoryStore())
	eng.SetNowFn(func() uint64 { return now })

	if err := eng.Open(grantor, id, grantee, token, big.NewInt(100), big.NewInt(500), nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	now = 1000
	claimable, err := eng.Claimable(id)
	if err != nil {
		t.Fatalf("claimable: %v", err)
	}
	if claimable.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("claimable = %s, want capped at 500", claimable)
	}
}

func TestChannelPullRejectsNonGrantee(t *testing.T) {
	grantor := addr(1)
	grantee := addr(2)
	impostor := addr(5)
	receiver := addr(3)
	token := addr(4)
	id := hashOf(3)

	tokens := ledger.NewMemoryLedger()
	tokens.Credit(grantor, token, big.NewInt(1000))
	tokens.Approve(grantor, grantee, token, big.NewInt(1000))

	now := uint64(0)
	eng := NewEngine(tokens)
	eng.SetState(NewMemoryStore())
	eng.SetNowFn(func() uint64 { return now })

	if err := eng.Open(grantor, id, grantee, token, big.NewInt(10), big.NewInt(1000), nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	now = 10
	if err := eng.Pull(context.Background(), impostor, id, receiver, big.NewInt(1)); err == nil {
		t.Fatal("expected not-grantee error")
	}
}
