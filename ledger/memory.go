package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"flowkernel/crypto"
	flowerrors "flowkernel/core/errors"
)

type balanceKey struct {
	owner crypto.Address
	token crypto.Address
}

type allowanceKey struct {
	owner crypto.Address
	spender crypto.Address
	token crypto.Address
}

// MemoryLedger is a reference TokenLedger: an in-process map of balances and
// allowances, useful for tests and single-process deployments that don't
// need a real settlement backend.
type MemoryLedger struct {
	mu         sync.Mutex
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
}

// NewMemoryLedger constructs an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

// Credit adds amount to owner's token balance. Intended for test setup and
// for crediting a recipient after a successful transfer; never exposed on
// the TokenLedger interface since no kernel component should be able to
// mint value out of thin air.
func (m *MemoryLedger) Credit(owner, token crypto.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey{owner: owner, token: token}
	bal := m.balances[key]
	if bal == nil {
		bal = big.NewInt(0)
	}
	m.balances[key] = new(big.Int).Add(bal, amount)
}

// Approve sets the amount spender may move from owner's token balance.
func (m *MemoryLedger) Approve(owner, spender, token crypto.Address, amount *big.Int) {
	if amount == nil {
		amount = big.NewInt(0)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[allowanceKey{owner: owner, spender: spender, token: token}] = new(big.Int).Set(amount)
}

// BalanceOf implements TokenLedger.
func (m *MemoryLedger) BalanceOf(_ context.Context, owner, token crypto.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balances[balanceKey{owner: owner, token: token}]
	if bal == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bal), nil
}

// AllowanceOf implements TokenLedger.
func (m *MemoryLedger) AllowanceOf(_ context.Context, owner, spender, token crypto.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	allowance := m.allowances[allowanceKey{owner: owner, spender: spender, token: token}]
	if allowance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(allowance), nil
}

// TransferFrom implements TokenLedger: moves amount from owner to recipient
// on behalf of caller, provided caller's allowance and owner's balance both
// cover amount. Both are decremented atomically under the ledger's lock; on
// any failure nothing is mutated.
func (m *MemoryLedger) TransferFrom(_ context.Context, caller, owner, recipient, token crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", flowerrors.ErrBadParameters)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	allowKey := allowanceKey{owner: owner, spender: caller, token: token}
	allowance := m.allowances[allowKey]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return flowerrors.ErrTransferFailed
	}

	balKey := balanceKey{owner: owner, token: token}
	balance := m.balances[balKey]
	if balance == nil || balance.Cmp(amount) < 0 {
		return flowerrors.ErrTransferFailed
	}

	m.allowances[allowKey] = new(big.Int).Sub(allowance, amount)
	m.balances[balKey] = new(big.Int).Sub(balance, amount)

	recipientKey := balanceKey{owner: recipient, token: token}
	recipientBal := m.balances[recipientKey]
	if recipientBal == nil {
		recipientBal = big.NewInt(0)
	}
	m.balances[recipientKey] = new(big.Int).Add(recipientBal, amount)
	return nil
}
