// internal/ledger/fund.go
package ledger

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPaymentRejected is returned when the receiving account refuses an
// incoming reference-currency payment.
var ErrPaymentRejected = errors.New("payment rejected by recipient")

// Fund is the reference-currency account book. Conversion proceeds land here,
// and fee payouts and liquidity supply are paid out of it.
type Fund struct {
	mu       sync.RWMutex
	balances map[Address]uint64
	rejects  map[Address]bool
}

func NewFund() *Fund {
	return &Fund{
		balances: make(map[Address]uint64),
		rejects:  make(map[Address]bool),
	}
}

// BalanceOf returns the reference-currency balance of addr.
func (f *Fund) BalanceOf(addr Address) uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.balances[addr]
}

// Deposit credits reference currency to an account out of thin air. Used to
// seed market-maker reserves.
func (f *Fund) Deposit(to Address, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[to] += amount
}

// Pay moves reference currency between accounts. Fails if the recipient is
// marked as rejecting payments, mirroring an address that bounces transfers.
func (f *Fund) Pay(from, to Address, amount uint64) error {
	if from == AddressZero || to == AddressZero {
		return ErrZeroAddress
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rejects[to] {
		return fmt.Errorf("pay %d to %s: %w", amount, to, ErrPaymentRejected)
	}
	if f.balances[from] < amount {
		return fmt.Errorf("pay %d from %s: %w", amount, from, ErrInsufficientBalance)
	}
	f.balances[from] -= amount
	f.balances[to] += amount
	return nil
}

// SetRejectPayments toggles payment rejection for an address.
func (f *Fund) SetRejectPayments(addr Address, reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejects[addr] = reject
}
