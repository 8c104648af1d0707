// internal/ledger/ledger.go
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Address identifies an account on the ledger.
type Address string

// AddressZero is the null identity; transfers to or from it are rejected.
const AddressZero Address = ""

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroAddress         = errors.New("zero address")
)

// Ledger is the base fungible-unit account book. It knows nothing about fees:
// the token engine drives it through Transfer, Mint and Burn.
type Ledger struct {
	mu          sync.RWMutex
	balances    map[Address]uint64
	totalSupply uint64
	logger      *zap.Logger
}

func New(logger *zap.Logger) *Ledger {
	return &Ledger{
		balances: make(map[Address]uint64),
		logger:   logger.Named("ledger"),
	}
}

// BalanceOf returns the current balance of addr.
func (l *Ledger) BalanceOf(addr Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[addr]
}

// TotalSupply returns the number of units currently in circulation.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply
}

// Transfer moves amount units from one account to another.
func (l *Ledger) Transfer(from, to Address, amount uint64) error {
	if from == AddressZero || to == AddressZero {
		return ErrZeroAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf("transfer of %d from %s: %w", amount, from, ErrInsufficientBalance)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Mint credits newly created units to an account.
func (l *Ledger) Mint(to Address, amount uint64) error {
	if to == AddressZero {
		return ErrZeroAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[to] += amount
	l.totalSupply += amount
	l.logger.Debug("Minted units",
		zap.String("to", string(to)),
		zap.Uint64("amount", amount))
	return nil
}

// Burn destroys amount units held by from, shrinking total supply.
func (l *Ledger) Burn(from Address, amount uint64) error {
	if from == AddressZero {
		return ErrZeroAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return fmt.Errorf("burn of %d from %s: %w", amount, from, ErrInsufficientBalance)
	}
	l.balances[from] -= amount
	l.totalSupply -= amount
	l.logger.Debug("Burned units",
		zap.String("from", string(from)),
		zap.Uint64("amount", amount))
	return nil
}
