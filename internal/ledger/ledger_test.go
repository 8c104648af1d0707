// internal/ledger/ledger_test.go
package ledger

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestLedgerTransfer(t *testing.T) {
	l := New(zap.NewNop())

	if err := l.Mint("alice", 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer("alice", "bob", 400); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.BalanceOf("alice"); got != 600 {
		t.Errorf("alice balance = %d, want 600", got)
	}
	if got := l.BalanceOf("bob"); got != 400 {
		t.Errorf("bob balance = %d, want 400", got)
	}

	err := l.Transfer("alice", "bob", 601)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overspend error = %v, want ErrInsufficientBalance", err)
	}
	if err := l.Transfer(AddressZero, "bob", 1); !errors.Is(err, ErrZeroAddress) {
		t.Errorf("zero-address error = %v, want ErrZeroAddress", err)
	}
}

func TestLedgerBurn(t *testing.T) {
	l := New(zap.NewNop())

	if err := l.Mint("alice", 500); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Burn("alice", 200); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := l.TotalSupply(); got != 300 {
		t.Errorf("total supply = %d, want 300", got)
	}
	if err := l.Burn("alice", 301); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("over-burn error = %v, want ErrInsufficientBalance", err)
	}
}

func TestLedgerConcurrentAccess(t *testing.T) {
	l := New(zap.NewNop())

	if err := l.Mint("hub", 1_000_000); err != nil {
		t.Fatalf("mint: %v", err)
	}

	var wg sync.WaitGroup
	numGoroutines := 10
	transfersPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < transfersPerGoroutine; j++ {
				if err := l.Transfer("hub", "sink", 1); err != nil {
					t.Errorf("transfer: %v", err)
				}
				_ = l.BalanceOf("sink")
			}
		}()
	}
	wg.Wait()

	want := uint64(numGoroutines * transfersPerGoroutine)
	if got := l.BalanceOf("sink"); got != want {
		t.Errorf("sink balance = %d, want %d", got, want)
	}
	if got := l.TotalSupply(); got != 1_000_000 {
		t.Errorf("total supply changed: %d", got)
	}
}

func TestFundPay(t *testing.T) {
	f := NewFund()
	f.Deposit("pool", 1000)

	if err := f.Pay("pool", "alice", 300); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if got := f.BalanceOf("alice"); got != 300 {
		t.Errorf("alice balance = %d, want 300", got)
	}

	f.SetRejectPayments("bob", true)
	if err := f.Pay("pool", "bob", 10); !errors.Is(err, ErrPaymentRejected) {
		t.Errorf("rejected payment error = %v, want ErrPaymentRejected", err)
	}
	if got := f.BalanceOf("pool"); got != 700 {
		t.Errorf("pool balance = %d, want 700 (rejected payment must not debit)", got)
	}

	if err := f.Pay("pool", "alice", 701); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overspend error = %v, want ErrInsufficientBalance", err)
	}
}
