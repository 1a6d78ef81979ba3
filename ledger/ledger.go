// Package ledger defines the TokenLedger contract every kernel component
// drives, and ships an in-memory reference implementation for tests and
// single-process deployments.
package ledger

import (
	"context"
	"math/big"

	"flowkernel/crypto"
)

// TokenLedger is the external collaborator the kernel never bypasses:
// the source of truth for balances and allowances. The kernel never holds
// custody; every transfer of value flows through TransferFrom.
type TokenLedger interface {
	// TransferFrom moves amount from owner to recipient on behalf of
	// caller, provided caller's allowance from owner is at least amount and
	// owner's balance is at least amount. On success it decrements both the
	// allowance and owner's balance and credits recipient; on failure
	// nothing is mutated.
	TransferFrom(ctx context.Context, caller, owner, recipient, token crypto.Address, amount *big.Int) error

	// BalanceOf returns owner's balance of token.
	BalanceOf(ctx context.Context, owner, token crypto.Address) (*big.Int, error)

	// AllowanceOf returns the amount owner has allowed caller to move.
	AllowanceOf(ctx context.Context, owner, caller, token crypto.Address) (*big.Int, error)
}
