package pull

import (
	"context"
	"math/big"
	"testing"

	"flowkernel/crypto"
	"flowkernel/flow/consent"
	"flowkernel/ledger"
)

func mustAddr(b byte) crypto.Address {
	var a crypto.Address
	a[19] = b
	return a
}

func newSignedAuth(t *testing.T, key *crypto.PrivateKey, grantee, token crypto.Address, maxPerPull *big.Int, domain crypto.Hash) (consent.Authorization, []byte) {
	t.Helper()
	auth := consent.Authorization{
		Grantor:     key.PubKey().Address(),
		Grantee:     grantee,
		Token:       token,
		MaxPerPull:  maxPerPull,
		ValidAfter:  0,
		ValidBefore: 1000,
		Nonce:       1,
	}
	digest := auth.SigningDigest(domain)
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return auth, sig
}

func TestExecutorPullSucceeds(t *testing.T) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	grantee := mustAddr(2)
	token := mustAddr(3)
	self := mustAddr(9)

	domain := crypto.DomainDescriptor("flowkernel", "1", 1, self)
	auth, sig := newSignedAuth(t, key, grantee, token, big.NewInt(100), domain)

	store := consent.NewMemoryStore(self)
	registry := consent.NewRegistry(mustAddr(0xFF))
	registry.SetState(store)

	tokens := ledger.NewMemoryLedger()
	tokens.Credit(auth.Grantor, token, big.NewInt(500))
	tokens.Approve(auth.Grantor, self, token, big.NewInt(500))

	exec := NewExecutor(registry, tokens, domain, self)

	if err := exec.Pull(context.Background(), grantee, auth, sig, big.NewInt(60)); err != nil {
		t.Fatalf("pull: %v", err)
	}

	bal, _ := tokens.BalanceOf(context.Background(), grantee, token)
	if bal.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("grantee balance = %s, want 60", bal)
	}

	total, _ := registry.PulledTotal(auth.AuthHash())
	if total.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("pulled_total = %s, want 60", total)
	}
}

func TestExecutorPullRejectsWrongCaller(t *testing.T) {
	key, _ := crypto.GeneratePrivateKey()
	grantee := mustAddr(2)
	token := mustAddr(3)
	self := mustAddr(9)

	domain := crypto.DomainDescriptor("flowkernel", "1", 1, self)
	auth, sig := newSignedAuth(t, key, grantee, token, big.NewInt(100), domain)

	store := consent.NewMemoryStore(self)
	registry := consent.NewRegistry(mustAddr(0xFF))
	registry.SetState(store)
	tokens := ledger.NewMemoryLedger()
	exec := NewExecutor(registry, tokens, domain, self)

	impostor := mustAddr(7)
	if err := exec.Pull(context.Background(), impostor, auth, sig, big.NewInt(10)); err == nil {
		t.Fatal("expected not-authorized-caller error")
	}
}

func TestExecutorPullRejectsOverCeiling(t *testing.T) {
	key, _ := crypto.GeneratePrivateKey()
	grantee := mustAddr(2)
	token := mustAddr(3)
	self := mustAddr(9)

	domain := crypto.DomainDescriptor("flowkernel", "1", 1, self)
	auth, sig := newSignedAuth(t, key, grantee, token, big.NewInt(100), domain)

	store := consent.NewMemoryStore(self)
	registry := consent.NewRegistry(mustAddr(0xFF))
	registry.SetState(store)
	tokens := ledger.NewMemoryLedger()
	tokens.Credit(auth.Grantor, token, big.NewInt(500))
	tokens.Approve(auth.Grantor, self, token, big.NewInt(500))
	exec := NewExecutor(registry, tokens, domain, self)

	if err := exec.Pull(context.Background(), grantee, auth, sig, big.NewInt(200)); err == nil {
		t.Fatal("expected exceeds-per-call error")
	}
}

func TestExecutorPullRejectsBadSignature(t *testing.T) {
	key, _ := crypto.GeneratePrivateKey()
	other, _ := crypto.GeneratePrivateKey()
	grantee := mustAddr(2)
	token := mustAddr(3)
	self := mustAddr(9)

	domain := crypto.DomainDescriptor("flowkernel", "1", 1, self)
	auth, _ := newSignedAuth(t, key, grantee, token, big.NewInt(100), domain)
	_, wrongSig := newSignedAuth(t, other, grantee, token, big.NewInt(100), domain)

	store := consent.NewMemoryStore(self)
	registry := consent.NewRegistry(mustAddr(0xFF))
	registry.SetState(store)
	tokens := ledger.NewMemoryLedger()
	tokens.Credit(auth.Grantor, token, big.NewInt(500))
	tokens.Approve(auth.Grantor, self, token, big.NewInt(500))
	exec := NewExecutor(registry, tokens, domain, self)

	if err := exec.Pull(context.Background(), grantee, auth, wrongSig, big.NewInt(10)); err == nil {
		t.Fatal("expected bad-signature error")
	}
}
