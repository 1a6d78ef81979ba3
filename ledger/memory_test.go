package ledger

import (
	"context"
	"math/big"
	"testing"

	"flowkernel/crypto"
)

func makeAddr(b byte) crypto.Address {
	var a crypto.Address
	a[19] = b
	return a
}

func TestMemoryLedgerTransferFrom(t *testing.T) {
	owner := makeAddr(1)
	caller := makeAddr(2)
	recipient := makeAddr(3)
	token := makeAddr(4)

	l := NewMemoryLedger()
	l.Credit(owner, token, big.NewInt(500))
	l.Approve(owner, caller, token, big.NewInt(100))

	ctx := context.Background()
	if err := l.TransferFrom(ctx, caller, owner, recipient, token, big.NewInt(60)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	ownerBal, _ := l.BalanceOf(ctx, owner, token)
	if ownerBal.Cmp(big.NewInt(440)) != 0 {
		t.Fatalf("owner balance = %s, want 440", ownerBal)
	}
	recipientBal, _ := l.BalanceOf(ctx, recipient, token)
	if recipientBal.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("recipient balance = %s, want 60", recipientBal)
	}
	allowance, _ := l.AllowanceOf(ctx, owner, caller, token)
	if allowance.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("allowance = %s, want 40", allowance)
	}
}

func TestMemoryLedgerTransferFromInsufficientAllowance(t *testing.T) {
	owner := makeAddr(1)
	caller := makeAddr(2)
	recipient := makeAddr(3)
	token := makeAddr(4)

	l := NewMemoryLedger()
	l.Credit(owner, token, big.NewInt(500))
	l.Approve(owner, caller, token, big.NewInt(10))

	ctx := context.Background()
	if err := l.TransferFrom(ctx, caller, owner, recipient, token, big.NewInt(60)); err == nil {
		t.Fatal("expected transfer to fail on insufficient allowance")
	}

	ownerBal, _ := l.BalanceOf(ctx, owner, token)
	if ownerBal.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("owner balance mutated on failed transfer: %s", ownerBal)
	}
}

func TestMemoryLedgerTransferFromInsufficientBalance(t *testing.T) {
	owner := makeAddr(1)
	caller := makeAddr(2)
	recipient := makeAddr(3)
	token := makeAddr(4)

	l := NewMemoryLedger()
	l.Credit(owner, token, big.NewInt(10))
	l.Approve(owner, caller, token, big.NewInt(500))

	ctx := context.Background()
	if err := l.TransferFrom(ctx, caller, owner, recipient, token, big.NewInt(60)); err == nil {
		t.Fatal("expected transfer to fail on insufficient balance")
	}

	allowance, _ := l.AllowanceOf(ctx, owner, caller, token)
	if allowance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("allowance mutated on failed transfer: %s", allowance)
	}
}
