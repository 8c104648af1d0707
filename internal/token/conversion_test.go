// internal/token/conversion_test.go
package token

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

// fakeMarket quotes a fixed amount and refuses to trade. It stands in for a
// market maker with no capacity, exercising the graceful-degradation path.
type fakeMarket struct {
	pair  ledger.Address
	quote uint64
}

func (f *fakeMarket) PairAddress() ledger.Address { return f.pair }

func (f *fakeMarket) QuoteConversion(uint64) uint64 { return f.quote }

func (f *fakeMarket) Convert(_ context.Context, _ ledger.Address, _, _ uint64, _ ledger.Address) (uint64, error) {
	return 0, errors.New("unexpected convert call")
}

func (f *fakeMarket) SupplyLiquidity(_ context.Context, _ ledger.Address, _, _ uint64, _ ledger.Address) (uint64, uint64, uint64, error) {
	return 0, 0, 0, errors.New("unexpected supply call")
}

func TestSellTriggersConversionAndDistribution(t *testing.T) {
	env := newTestEnv(t, Params{BurnFeeBps: 100, BuyLiquidityFeeBps: 50, SellLiquidityFeeBps: 50})
	require.NoError(t, env.tok.AddFeeRecipient(testOwner, "A", 200, 300, true))

	env.seedPool(t, 100000, 100000)
	require.NoError(t, env.book.Mint("seller", 50000))

	require.NoError(t, env.tok.Transfer(context.Background(), "seller", testPair, 10000))

	// The sell accumulated 300 for A and 50 into the reserve, then the
	// conversion sold deposits + half the reserve (325 units) for 323 of
	// reference currency, supplied the remaining 25 reserve units as
	// liquidity, and paid A its pro-rata share.
	assert.Equal(t, uint64(0), env.tok.DepositOf("A"), "deposit reset after distribution")
	assert.Equal(t, uint64(0), env.tok.LiquidityReserve(), "reserve reset after supply")
	assert.Equal(t, uint64(298), env.fund.BalanceOf("A"), "pro-rata payout")
	assert.Equal(t, uint64(0), env.book.BalanceOf(testHolding),
		"treasury fully settled: no fee-on-fee leakage on internal transfers")

	// Pool shares from the liquidity supply go to the owner.
	assert.Equal(t, uint64(24), env.sim.SharesOf(testOwner))

	// The sell itself still delivered the post-fee remainder.
	// 100000 seeded + 325 converted + 25 supplied + 9550 delivered.
	assert.Equal(t, uint64(109900), env.book.BalanceOf(testPair))
	assert.Equal(t, uint64(100), env.tok.TotalBurned())
}

func TestZeroQuoteDefersConversion(t *testing.T) {
	book := ledger.New(zap.NewNop())
	fund := ledger.NewFund()
	market := &fakeMarket{pair: testPair, quote: 0}

	tok, err := New(Config{
		Owner:   testOwner,
		Holding: testHolding,
		Params:  Params{BurnFeeBps: 100, SellLiquidityFeeBps: 50},
		Ledger:  book,
		Fund:    fund,
		Market:  market,
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	require.NoError(t, tok.AddFeeRecipient(testOwner, "A", 200, 300, true))
	require.NoError(t, book.Mint("seller", 50000))

	require.NoError(t, tok.Transfer(context.Background(), "seller", testPair, 10000))

	// Deposits persist for a later attempt, nothing was paid out, and the
	// transfer still delivered its remainder.
	assert.Equal(t, uint64(300), tok.DepositOf("A"))
	assert.Equal(t, uint64(50), tok.LiquidityReserve())
	assert.Equal(t, uint64(0), fund.BalanceOf("A"))
	assert.Equal(t, uint64(9550), book.BalanceOf(testPair))
}

func TestDistributionIdempotence(t *testing.T) {
	env := newTestEnv(t, Params{})
	require.NoError(t, env.tok.AddFeeRecipient(testOwner, "A", 200, 300, true))

	env.seedPool(t, 100000, 100000)
	require.NoError(t, env.book.Mint("seller", 50000))

	require.NoError(t, env.tok.Transfer(context.Background(), "seller", testPair, 10000))
	paid := env.fund.BalanceOf("A")
	require.NotZero(t, paid)
	require.Zero(t, env.tok.DepositOf("A"))

	// A further sell with nothing accumulated for A beyond its own fee
	// converts exactly that fee and nothing more.
	require.NoError(t, env.tok.Transfer(context.Background(), "seller", testPair, 100))
	assert.Zero(t, env.tok.DepositOf("A"), "second distribution leaves no residue")

	// And with no deposits at all there is nothing to convert.
	env.tok.mu.Lock()
	toConvert := env.tok.registry.TotalDeposits() + env.tok.liquidityDeposit/2
	env.tok.mu.Unlock()
	assert.Zero(t, toConvert)
}

func TestPayoutFailureStopsLoopWithoutReversal(t *testing.T) {
	env := newTestEnv(t, Params{})
	require.NoError(t, env.tok.AddFeeRecipient(testOwner, "A", 200, 300, true))
	require.NoError(t, env.tok.AddFeeRecipient(testOwner, "B", 200, 300, true))

	env.seedPool(t, 100000, 100000)
	require.NoError(t, env.book.Mint("seller", 50000))
	env.fund.SetRejectPayments("B", true)

	// The distribution fails on B, but the transfer itself completes and
	// A's payout stands.
	require.NoError(t, env.tok.Transfer(context.Background(), "seller", testPair, 10000))

	assert.NotZero(t, env.fund.BalanceOf("A"), "earlier payout not reversed")
	assert.Zero(t, env.fund.BalanceOf("B"))
	assert.Zero(t, env.tok.DepositOf("A"))
	assert.Zero(t, env.tok.DepositOf("B"),
		"deposit zeroed before the payout attempt, a retry cannot double-pay")
	assert.Equal(t, uint64(9400), env.book.BalanceOf(testPair)-100000-600,
		"remainder delivered despite the failed distribution")
}

func TestConversionConservesTreasury(t *testing.T) {
	// Whatever happens in the conversion, treasury units only leave toward
	// the pool, and the reference currency received covers every payout.
	env := newTestEnv(t, Params{SellLiquidityFeeBps: 100})
	require.NoError(t, env.tok.AddFeeRecipient(testOwner, "A", 100, 400, true))
	require.NoError(t, env.tok.AddFeeRecipient(testOwner, "B", 100, 600, true))

	env.seedPool(t, 1_000_000, 1_000_000)
	require.NoError(t, env.book.Mint("seller", 500_000))

	for _, amount := range []uint64{10007, 333, 99999} {
		require.NoError(t, env.tok.Transfer(context.Background(), "seller", testPair, amount))
	}

	assert.Zero(t, env.tok.DepositOf("A"))
	assert.Zero(t, env.tok.DepositOf("B"))
	assert.Zero(t, env.tok.LiquidityReserve())
	// Payout ratios floor, so dust may remain at the treasury but nothing
	// may ever be overdrawn.
	assert.LessOrEqual(t, env.fund.BalanceOf(testHolding), uint64(10))
	payoutA := env.fund.BalanceOf("A")
	payoutB := env.fund.BalanceOf("B")
	assert.Greater(t, payoutB, payoutA, "B accrues larger sell fees than A")
}
