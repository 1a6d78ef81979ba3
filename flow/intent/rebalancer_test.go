package intent

import (
	"math/big"
	"testing"

	"flowkernel/crypto"
	"flowkernel/flow/domain"
)

type fakeConsent struct {
	revoked map[crypto.Hash]bool
}

func (f *fakeConsent) IsRevoked(h crypto.Hash) (bool, error) { return f.revoked[h], nil }

type fakeAdapter struct {
	calls int
	last  struct {
		authHash crypto.Hash
		dst      crypto.Address
		amount   *big.Int
	}
	fail error
}

func (a *fakeAdapter) Pull(authHash crypto.Hash, dst crypto.Address, amount *big.Int) error {
	if a.fail != nil {
		return a.fail
	}
	a.calls++
	a.last.authHash = authHash
	a.last.dst = dst
	a.last.amount = amount
	return nil
}

func TestRebalancerExecutesFlowIntent(t *testing.T) {
	rebalancerAddr := addr(1)
	executor := addr(2)
	srcDomain := hashOf(1)
	dstDomain := hashOf(2)
	receiver := addr(5)
	authHash := hashOf(7)
	kernelDomain := hashOf(9)

	dir := domain.NewDirectory(rebalancerAddr)
	if err := dir.SetDomain(rebalancerAddr, srcDomain, addr(3), addr(4), true); err != nil {
		t.Fatalf("set src domain: %v", err)
	}
	if err := dir.SetDomain(rebalancerAddr, dstDomain, addr(6), receiver, true); err != nil {
		t.Fatalf("set dst domain: %v", err)
	}
	if err := dir.SetExecutorApproval(rebalancerAddr, srcDomain, executor, true); err != nil {
		t.Fatalf("approve src executor: %v", err)
	}
	if err := dir.SetExecutorApproval(rebalancerAddr, dstDomain, executor, true); err != nil {
		t.Fatalf("approve dst executor: %v", err)
	}

	consent := &fakeConsent{revoked: map[crypto.Hash]bool{}}

	registry := NewRegistry(rebalancerAddr, kernelDomain)
	registry.SetState(NewMemoryStore())
	registry.SetNowFn(func() uint64 { return 100 })

	reb := NewRebalancer(rebalancerAddr, dir, consent, registry)

	fi, sig, _ := newSignedIntent(t, kernelDomain, FlowIntent{
		Executor: executor, SrcDomain: srcDomain, DstDomain: dstDomain, Token: addr(8),
		MaxTotal: big.NewInt(1000), ValidAfter: 0, ValidBefore: 1000, Nonce: 1,
	})
	full := IntentFull{FlowIntent: fi, AuthHash: authHash}

	adapter := &fakeAdapter{}
	ok, err := reb.ExecuteFlowIntent(executor, full, sig, big.NewInt(300), adapter)
	if err != nil || !ok {
		t.Fatalf("execute: ok=%v err=%v", ok, err)
	}
	if adapter.calls != 1 || adapter.last.amount.Cmp(big.NewInt(300)) != 0 || adapter.last.dst != receiver {
		t.Fatalf("adapter not invoked correctly: %+v", adapter)
	}

	if _, err := reb.ExecuteFlowIntent(executor, full, sig, big.NewInt(800), adapter); err == nil {
		t.Fatal("expected cap-exceeded on second call")
	}

	if err := dir.SetDomain(rebalancerAddr, dstDomain, addr(6), receiver, false); err != nil {
		t.Fatalf("deactivate dst: %v", err)
	}
	if _, err := reb.ExecuteFlowIntent(executor, full, sig, big.NewInt(1), adapter); err == nil {
		t.Fatal("expected dst-exec-forbidden after deactivation")
	}
}
