// internal/token/errors.go
package token

import (
	"errors"
	"fmt"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

var (
	// ErrUnauthorized rejects administrative calls from anyone but the owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLimitExceeded rejects a transfer above the configured buy or sell cap.
	ErrLimitExceeded = errors.New("transfer limit exceeded")
	// ErrPaused rejects transfers while the pause switch is engaged.
	ErrPaused = errors.New("transfers are paused")
)

// ConfigurationError reports invalid fee-recipient or parameter input. The
// state is untouched; the caller may retry with valid values.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// PayoutFailedError reports a rejected reference-currency payout. Payouts
// already made in the same distribution are not reversed.
type PayoutFailedError struct {
	Recipient ledger.Address
	Err       error
}

func (e *PayoutFailedError) Error() string {
	return fmt.Sprintf("payout to %s failed: %v", e.Recipient, e.Err)
}

func (e *PayoutFailedError) Unwrap() error {
	return e.Err
}
