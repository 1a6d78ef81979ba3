package sqlite

import (
	"math/big"
	"path/filepath"
	"testing"

	"flowkernel/crypto"
	"flowkernel/flow/consent"
	"flowkernel/flow/intent"
)

func TestStoreConsentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var h crypto.Hash
	h[31] = 7
	var owner crypto.Address
	owner[19] = 1

	entry := &consent.Entry{Owner: owner, OwnerSet: true, Revoked: false, PulledTotal: big.NewInt(42)}
	if err := s.PutEntry(h, entry); err != nil {
		t.Fatalf("put entry: %v", err)
	}

	got, ok, err := s.GetEntry(h)
	if err != nil || !ok {
		t.Fatalf("get entry: ok=%v err=%v", ok, err)
	}
	if got.Owner != owner || !got.OwnerSet || got.PulledTotal.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStoreIntentAdapterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	is := s.Intents()
	var h crypto.Hash
	h[31] = 3
	var owner crypto.Address
	owner[19] = 9

	entry := &intent.Entry{Owner: owner, OwnerSet: true, MovedSoFar: big.NewInt(300)}
	if err := is.PutEntry(h, entry); err != nil {
		t.Fatalf("put entry: %v", err)
	}
	got, ok, err := is.GetEntry(h)
	if err != nil || !ok {
		t.Fatalf("get entry: ok=%v err=%v", ok, err)
	}
	if got.MovedSoFar.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("moved_so_far mismatch: %s", got.MovedSoFar)
	}
}

func TestStoreTrustedExecutor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var exec crypto.Address
	exec[19] = 4
	if trusted, err := s.IsTrustedExecutor(exec); err != nil || trusted {
		t.Fatalf("expected untrusted by default: %v %v", trusted, err)
	}
	if err := s.SetTrustedExecutor(exec, true); err != nil {
		t.Fatalf("set trusted: %v", err)
	}
	if trusted, err := s.IsTrustedExecutor(exec); err != nil || !trusted {
		t.Fatalf("expected trusted after set: %v %v", trusted, err)
	}
}
