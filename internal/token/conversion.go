// internal/token/conversion.go
package token

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/events"
)

// convertAndDistribute converts accumulated fee deposits (plus half the
// liquidity reserve) to reference currency and pays recipients pro-rata.
//
// The latch is engaged for the whole duration, caller already holds the
// mutex: the unit movements the market maker performs re-enter the engine
// through internalTransfer and must settle fee-free. The latch is released
// on every exit path.
//
// A zero quote aborts with no state change: deposits stay accumulated and
// the next qualifying transfer retries. Payout failures abort the remaining
// loop without reversing earlier payouts; zeroing each deposit before its
// payout makes a double payment unreachable.
func (t *Token) convertAndDistribute(ctx context.Context, toConvert, halfReserve uint64) error {
	t.latched = true
	defer func() { t.latched = false }()

	start := time.Now()
	outcome := "failed"
	if t.metrics != nil {
		defer func() { t.metrics.RecordConversion(outcome, time.Since(start)) }()
	}

	if quote := t.market.QuoteConversion(toConvert); quote == 0 {
		outcome = "skipped"
		t.logger.Debug("Market maker quoted zero, deferring conversion",
			zap.Uint64("to_convert", toConvert))
		t.emit(events.ConversionSkippedEvent{
			BaseEvent: events.NewBase(events.ConversionSkipped),
			ToConvert: toConvert,
		})
		return nil
	}

	// Measure actual proceeds by balance differencing rather than trusting
	// the amount the market maker reports.
	before := t.fund.BalanceOf(t.holding)
	if _, err := t.market.Convert(ctx, t.holding, toConvert, 0, t.holding); err != nil {
		return fmt.Errorf("convert %d units: %w", toConvert, err)
	}
	received := t.fund.BalanceOf(t.holding) - before

	if halfReserve > 0 {
		if err := t.supplyReserveLiquidity(ctx, toConvert, halfReserve, received); err != nil {
			return err
		}
	}

	if err := t.distribute(toConvert, received); err != nil {
		return err
	}

	outcome = "success"
	return nil
}

// supplyReserveLiquidity pairs the unconverted half of the reserve with its
// proportional share of the conversion proceeds and supplies both to the
// pool, crediting the resulting shares to the owner. The reserve is reset
// afterwards.
func (t *Token) supplyReserveLiquidity(ctx context.Context, toConvert, halfReserve, received uint64) error {
	tokenSide := t.liquidityDeposit - halfReserve
	refSide := mulDiv(received, halfReserve, toConvert)
	if tokenSide == 0 || refSide == 0 {
		t.liquidityDeposit = 0
		return nil
	}

	_, _, shares, err := t.market.SupplyLiquidity(ctx, t.holding, tokenSide, refSide, t.owner)
	if err != nil {
		return fmt.Errorf("supply liquidity: %w", err)
	}
	t.liquidityDeposit = 0
	if t.metrics != nil {
		t.metrics.UpdateLiquidityReserve(0)
	}

	t.logger.Info("Liquidity supplied",
		zap.Uint64("token_amount", tokenSide),
		zap.Uint64("ref_amount", refSide),
		zap.Uint64("pool_shares", shares))
	t.emit(events.LiquiditySuppliedEvent{
		BaseEvent:   events.NewBase(events.LiquiditySupplied),
		TokenAmount: tokenSide,
		RefAmount:   refSide,
		PoolShares:  shares,
	})
	return nil
}

// distribute pays every recipient with a pending deposit its pro-rata share
// of the conversion proceeds.
func (t *Token) distribute(toConvert, received uint64) error {
	for _, rec := range t.registry.Snapshot() {
		if rec.Deposit == 0 {
			continue
		}
		payout := mulDiv(received, rec.Deposit, toConvert)
		t.registry.ResetDeposit(rec.Address)
		if err := t.fund.Pay(t.holding, rec.Address, payout); err != nil {
			return &PayoutFailedError{Recipient: rec.Address, Err: err}
		}
		t.emit(events.FeesDistributedEvent{
			BaseEvent: events.NewBase(events.FeesDistributed),
			Recipient: rec.Address,
			Deposit:   rec.Deposit,
			Payout:    payout,
		})
	}
	return nil
}
