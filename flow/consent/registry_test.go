package consent

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

func newTestRegistry(executor crypto.Address) (*Registry, *MemoryStore) {
	controller := addr(0xFF)
	store := NewMemoryStore(executor)
	r := NewRegistry(controller)
	r.SetState(store)
	return r, store
}

func TestRecordPullBindsOwnerOnce(t *testing.T) {
	executor := addr(1)
	grantor := addr(2)
	grantee := addr(3)
	token := addr(4)
	h := hashOf(1)

	r, _ := newTestRegistry(executor)

	if err := r.RecordPull(executor, h, token, grantor, grantee, big.NewInt(60)); err != nil {
		t.Fatalf("first record_pull: %v", err)
	}
	owner, ok, err := r.OwnerOf(h)
	if err != nil || !ok || owner != grantor {
		t.Fatalf("owner not bound to grantor: owner=%v ok=%v err=%v", owner, ok, err)
	}

	otherGrantor := addr(9)
	if err := r.RecordPull(executor, h, token, otherGrantor, grantee, big.NewInt(10)); err != nil {
		t.Fatalf("second record_pull: %v", err)
	}
	owner, _, _ = r.OwnerOf(h)
	if owner != grantor {
		t.Fatalf("owner changed after binding: got %v, want %v", owner, grantor)
	}

	total, err := r.PulledTotal(h)
	if err != nil {
		t.Fatalf("pulled_total: %v", err)
	}
	if total.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("pulled_total = %s, want 70", total)
	}
}

func TestRecordPullRequiresTrustedExecutor(t *testing.T) {
	executor := addr(1)
	untrusted := addr(5)
	grantor := addr(2)
	grantee := addr(3)
	token := addr(4)
	h := hashOf(2)

	r, _ := newTestRegistry(executor)
	if err := r.RecordPull(untrusted, h, token, grantor, grantee, big.NewInt(1)); err == nil {
		t.Fatal("expected not-trusted-executor error")
	}
}

func TestRevokeRequiresOwner(t *testing.T) {
	executor := addr(1)
	grantor := addr(2)
	grantee := addr(3)
	token := addr(4)
	h := hashOf(3)

	r, _ := newTestRegistry(executor)
	if err := r.Revoke(grantor, h); err == nil {
		t.Fatal("expected unknown-authorization before any pull")
	}

	if err := r.RecordPull(executor, h, token, grantor, grantee, big.NewInt(5)); err != nil {
		t.Fatalf("record_pull: %v", err)
	}

	impostor := addr(6)
	if err := r.Revoke(impostor, h); err == nil {
		t.Fatal("expected not-grantor error for non-owner revoke")
	}

	if err := r.Revoke(grantor, h); err != nil {
		t.Fatalf("owner revoke: %v", err)
	}
	revoked, err := r.IsRevoked(h)
	if err != nil || !revoked {
		t.Fatalf("expected revoked=true, got %v err=%v", revoked, err)
	}
}

func TestRecordPullAfterRevokeStillAccounts(t *testing.T) {
	// record_pull itself does not consult is_revoked: the trust model
	// requires every compliant PullExecutor to check revocation before
	// calling record_pull at all. The registry's
	// own job is bookkeeping, not re-deriving that guarantee.
	executor := addr(1)
	grantor := addr(2)
	grantee := addr(3)
	token := addr(4)
	h := hashOf(4)

	r, _ := newTestRegistry(executor)
	if err := r.RecordPull(executor, h, token, grantor, grantee, big.NewInt(1)); err != nil {
		t.Fatalf("record_pull: %v", err)
	}
	if err := r.Revoke(grantor, h); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := r.RecordPull(executor, h, token, grantor, grantee, big.NewInt(1)); err != nil {
		t.Fatalf("record_pull after revoke (registry-level) should still succeed: %v", err)
	}
}
