package intent

import (
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

func newSignedIntent(t *testing.T, domain crypto.Hash, fi FlowIntent) (FlowIntent, []byte, *crypto.PrivateKey) {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	fi.Grantor = key.PubKey().Address()
	sig, err := crypto.Sign(fi.SigningDigest(domain), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return fi, sig, key
}

func TestVerifyAndConsumeAccumulatesBudget(t *testing.T) {
	controller := addr(1)
	domain := hashOf(9)
	reg := NewRegistry(controller, domain)
	reg.SetState(NewMemoryStore())
	now := uint64(100)
	reg.SetNowFn(func() uint64 { return now })

	fi, sig, _ := newSignedIntent(t, domain, FlowIntent{
		Executor: addr(2), SrcDomain: hashOf(1), DstDomain: hashOf(2), Token: addr(3),
		MaxTotal: big.NewInt(1000), ValidAfter: 0, ValidBefore: 1000, Nonce: 1,
	})

	h1, err := reg.VerifyAndConsume(controller, fi, sig, big.NewInt(300))
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}

	_, err = reg.VerifyAndConsume(controller, fi, sig, big.NewInt(800))
	if err == nil {
		t.Fatal("expected cap-exceeded on second consume")
	}
	if h1 != fi.IntentHash() {
		t.Fatal("intent_hash must be stable across calls")
	}

	moved, err := reg.MovedSoFar(h1)
	if err != nil || moved.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("moved_so_far = %s, want 300 (%v)", moved, err)
	}
}

func TestVerifyAndConsumeRequiresController(t *testing.T) {
	controller := addr(1)
	impostor := addr(9)
	domain := hashOf(9)
	reg := NewRegistry(controller, domain)
	reg.SetState(NewMemoryStore())

	fi, sig, _ := newSignedIntent(t, domain, FlowIntent{
		Executor: addr(2), SrcDomain: hashOf(1), DstDomain: hashOf(2), Token: addr(3),
		MaxTotal: big.NewInt(1000), ValidAfter: 0, ValidBefore: 1000, Nonce: 1,
	})

	if _, err := reg.VerifyAndConsume(impostor, fi, sig, big.NewInt(100)); err == nil {
		t.Fatal("expected not-controller error")
	}
}

func TestRevokeIntentBlocksFurtherConsume(t *testing.T) {
	controller := addr(1)
	domain := hashOf(9)
	reg := NewRegistry(controller, domain)
	reg.SetState(NewMemoryStore())

	fi, sig, _ := newSignedIntent(t, domain, FlowIntent{
		Executor: addr(2), SrcDomain: hashOf(1), DstDomain: hashOf(2), Token: addr(3),
		MaxTotal: big.NewInt(1000), ValidAfter: 0, ValidBefore: 1000, Nonce: 1,
	})

	h, err := reg.VerifyAndConsume(controller, fi, sig, big.NewInt(100))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	if err := reg.RevokeIntent(fi.Grantor, h); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := reg.VerifyAndConsume(controller, fi, sig, big.NewInt(1)); err == nil {
		t.Fatal("expected revoked error after revoke")
	}
}
