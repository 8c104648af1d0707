// internal/token/interceptor.go
package token

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/events"
	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

// Transfer is the external entry point for every transfer request. It runs
// the full interception pipeline under the engine mutex: limit check, fee
// exemption check, fee application, conversion decision, final transfer.
func (t *Token) Transfer(ctx context.Context, from, to ledger.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	dir := t.direction(from, to)
	err := t.intercept(ctx, from, to, amount)
	if t.metrics != nil {
		t.metrics.RecordTransfer(dir.String(), time.Since(start), err == nil)
	}
	return err
}

// direction classifies a transfer relative to the market pair: buy when the
// pair sends, sell when the pair receives, none otherwise.
func (t *Token) direction(from, to ledger.Address) Direction {
	pair := t.market.PairAddress()
	switch {
	case from == pair:
		return DirectionBuy
	case to == pair:
		return DirectionSell
	default:
		return DirectionNone
	}
}

// feeExemptTransfer reports whether this transfer bypasses the fee engine
// entirely: exemption-listed parties, the engine's own settlement account
// sending, an exempt owner on either side, or the conversion latch engaged.
func (t *Token) feeExemptTransfer(from, to ledger.Address) bool {
	if t.latched {
		return true
	}
	if t.feeExempt[from] || t.feeExempt[to] {
		return true
	}
	if from == t.holding {
		return true
	}
	if t.params.OwnerFeeExempt && (from == t.owner || to == t.owner) {
		return true
	}
	return false
}

func (t *Token) intercept(ctx context.Context, from, to ledger.Address, amount uint64) error {
	if t.paused {
		return ErrPaused
	}
	if from == ledger.AddressZero || to == ledger.AddressZero {
		return ledger.ErrZeroAddress
	}

	dir := t.direction(from, to)

	// Limit check
	if dir == DirectionBuy && t.params.MaxBuyAmount > 0 && amount > t.params.MaxBuyAmount {
		return ErrLimitExceeded
	}
	if dir == DirectionSell && t.params.MaxSellAmount > 0 && amount > t.params.MaxSellAmount {
		return ErrLimitExceeded
	}

	// Fee exemption check
	if t.feeExemptTransfer(from, to) {
		if err := t.ledger.Transfer(from, to, amount); err != nil {
			return err
		}
		t.emit(events.TransferInterceptedEvent{
			BaseEvent: events.NewBase(events.TransferIntercepted),
			From:      from,
			To:        to,
			Direction: dir.String(),
			Requested: amount,
			Delivered: amount,
			FeeExempt: true,
		})
		return nil
	}

	// Fee application
	bd := ComputeBreakdown(amount, dir, t.registry.Snapshot(), t.params)
	if err := t.applyDeductions(from, bd); err != nil {
		return err
	}

	// Conversion decision: never during a buy (the market maker rejects
	// re-entry on buys), and only when there is something to convert.
	if dir != DirectionBuy {
		halfReserve := t.liquidityDeposit / 2
		toConvert := t.registry.TotalDeposits() + halfReserve
		if toConvert > 0 {
			if err := t.convertAndDistribute(ctx, toConvert, halfReserve); err != nil {
				// Fees already deducted stay deducted; the transfer itself
				// still completes.
				t.logger.Warn("Conversion failed, continuing transfer", zap.Error(err))
			}
		}
	}

	// Final transfer
	if err := t.ledger.Transfer(from, to, bd.Remaining); err != nil {
		return err
	}
	t.emit(events.TransferInterceptedEvent{
		BaseEvent: events.NewBase(events.TransferIntercepted),
		From:      from,
		To:        to,
		Direction: dir.String(),
		Requested: amount,
		Delivered: bd.Remaining,
		FeesTaken: bd.FeesTaken(),
	})
	return nil
}

// applyDeductions performs the partial ledger movements decided by the
// breakdown. Reference-currency recipients accumulate deposits at the
// holding account instead of receiving units directly.
func (t *Token) applyDeductions(from ledger.Address, bd Breakdown) error {
	for _, d := range bd.Deductions {
		switch d.Category {
		case CategoryRecipient:
			if d.PaidInRef {
				if err := t.ledger.Transfer(from, t.holding, d.Amount); err != nil {
					return err
				}
				t.registry.AddDeposit(d.Recipient, d.Amount)
			} else {
				if err := t.ledger.Transfer(from, d.Recipient, d.Amount); err != nil {
					return err
				}
			}
		case CategoryBurn:
			if err := t.ledger.Burn(from, d.Amount); err != nil {
				return err
			}
			t.totalBurned += d.Amount
			t.emit(events.TokensBurnedEvent{
				BaseEvent: events.NewBase(events.TokensBurned),
				From:      from,
				Amount:    d.Amount,
			})
		case CategoryLiquidity:
			if err := t.ledger.Transfer(from, t.holding, d.Amount); err != nil {
				return err
			}
			t.liquidityDeposit += d.Amount
			if t.metrics != nil {
				t.metrics.UpdateLiquidityReserve(t.liquidityDeposit)
			}
		}
		if t.metrics != nil {
			t.metrics.RecordFee(string(d.Category), d.Amount)
		}
	}
	return nil
}
