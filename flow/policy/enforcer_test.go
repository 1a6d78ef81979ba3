package policy

import (
	"math/big"
	"testing"

	coreclock "flowkernel/core/clock"
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

func newEnforcer(t *testing.T, now *uint64) (*Enforcer, crypto.Hash, crypto.Address, crypto.Address) {
	t.Helper()
	c, err := coreclock.New(coreclock.Config{EpochLength: 100, GenesisTimestamp: 0})
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	e := NewEnforcer(c)
	e.SetState(NewMemoryStore())
	e.SetNowFn(func() uint64 { return *now })

	grantor := addr(1)
	grantee := addr(2)
	token := addr(3)
	policyID := hashOf(1)

	if err := e.CreatePolicy(policyID, grantor, grantee, token, big.NewInt(50), big.NewInt(100), 100); err != nil {
		t.Fatalf("create_policy: %v", err)
	}
	return e, policyID, grantee, grantor
}

func TestCheckAndConsumeEpochBudget(t *testing.T) {
	now := uint64(10)
	e, policyID, grantee, _ := newEnforcer(t, &now)
	to := addr(9)

	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(40)); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(40)); err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(30)); err == nil {
		t.Fatal("expected exceeds-epoch error")
	}
}

func TestCheckAndConsumeEpochRollover(t *testing.T) {
	now := uint64(10)
	e, policyID, grantee, _ := newEnforcer(t, &now)
	to := addr(9)

	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(50)); err != nil {
		t.Fatalf("spend epoch 0: %v", err)
	}
	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(40)); err != nil {
		t.Fatalf("spend epoch 0 (second pull): %v", err)
	}
	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(20)); err == nil {
		t.Fatal("expected exceeds-epoch before rollover")
	}

	now = 150
	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(20)); err != nil {
		t.Fatalf("spend after rollover should succeed: %v", err)
	}
}

func TestCheckAndConsumeReceiverAllowlist(t *testing.T) {
	now := uint64(10)
	e, policyID, grantee, grantor := newEnforcer(t, &now)
	allowed := addr(20)
	forbidden := addr(21)

	if err := e.SetReceiverAllowed(grantor, policyID, allowed, true); err != nil {
		t.Fatalf("set_receiver_allowed: %v", err)
	}

	if err := e.CheckAndConsume(grantee, policyID, forbidden, big.NewInt(10)); err == nil {
		t.Fatal("expected receiver-forbidden error")
	}
	if err := e.CheckAndConsume(grantee, policyID, allowed, big.NewInt(10)); err != nil {
		t.Fatalf("allowed receiver should pass: %v", err)
	}
}

func TestRevokePolicyBlocksConsume(t *testing.T) {
	now := uint64(10)
	e, policyID, grantee, grantor := newEnforcer(t, &now)
	to := addr(9)

	if err := e.RevokePolicy(grantor, policyID); err != nil {
		t.Fatalf("revoke_policy: %v", err)
	}
	if err := e.CheckAndConsume(grantee, policyID, to, big.NewInt(1)); err == nil {
		t.Fatal("expected revoked error")
	}
}
