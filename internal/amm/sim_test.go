// internal/amm/sim_test.go
package amm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

const simPair = ledger.Address("pair")

func newTestSim(t *testing.T, feeBps uint64) (*Sim, *ledger.Ledger, *ledger.Fund) {
	t.Helper()
	book := ledger.New(zap.NewNop())
	fund := ledger.NewFund()
	sim := NewSim(simPair, fund, feeBps, zap.NewNop())
	sim.BindTransfer(func(_ context.Context, from, to ledger.Address, amount uint64) error {
		return book.Transfer(from, to, amount)
	})
	return sim, book, fund
}

func TestQuoteConversionConstantProduct(t *testing.T) {
	sim, book, _ := newTestSim(t, 0)
	require.NoError(t, book.Mint(simPair, 742080))
	sim.SeedPool(742080, 33322)

	// out = floor(y * in / (x + in)) with no pool fee.
	in := uint64(136824)
	expected := uint64(33322) * in / (742080 + in)
	assert.Equal(t, expected, sim.QuoteConversion(in))

	assert.Zero(t, sim.QuoteConversion(0))
}

func TestQuoteConversionAppliesPoolFee(t *testing.T) {
	sim, book, _ := newTestSim(t, 25) // 0.25%
	require.NoError(t, book.Mint(simPair, 1_000_000))
	sim.SeedPool(1_000_000, 1_000_000)

	noFee, book2, _ := newTestSim(t, 0)
	require.NoError(t, book2.Mint(simPair, 1_000_000))
	noFee.SeedPool(1_000_000, 1_000_000)

	in := uint64(10_000)
	assert.Less(t, sim.QuoteConversion(in), noFee.QuoteConversion(in),
		"pool fee must reduce the quoted output")
}

func TestQuoteConversionEmptyPool(t *testing.T) {
	sim, _, _ := newTestSim(t, 0)
	assert.Zero(t, sim.QuoteConversion(1000), "empty pool quotes zero")
}

func TestConvertMovesBothLegs(t *testing.T) {
	sim, book, fund := newTestSim(t, 0)
	require.NoError(t, book.Mint(simPair, 100_000))
	require.NoError(t, book.Mint("seller", 10_000))
	sim.SeedPool(100_000, 100_000)

	quoted := sim.QuoteConversion(5_000)
	out, err := sim.Convert(context.Background(), "seller", 5_000, quoted, "seller")
	require.NoError(t, err)
	assert.Equal(t, quoted, out)

	assert.Equal(t, uint64(5_000), book.BalanceOf("seller"), "units pulled into the pool")
	assert.Equal(t, uint64(105_000), book.BalanceOf(simPair))
	assert.Equal(t, quoted, fund.BalanceOf("seller"), "proceeds credited")

	tokenReserve, refReserve := sim.Reserves()
	assert.Equal(t, uint64(105_000), tokenReserve)
	assert.Equal(t, uint64(100_000)-quoted, refReserve)
}

func TestConvertSlippage(t *testing.T) {
	sim, book, _ := newTestSim(t, 0)
	require.NoError(t, book.Mint(simPair, 100_000))
	require.NoError(t, book.Mint("seller", 10_000))
	sim.SeedPool(100_000, 100_000)

	quoted := sim.QuoteConversion(5_000)
	_, err := sim.Convert(context.Background(), "seller", 5_000, quoted+1, "seller")
	assert.ErrorIs(t, err, ErrSlippageExceeded)
	assert.Equal(t, uint64(10_000), book.BalanceOf("seller"), "failed convert moves nothing")
}

func TestSupplyLiquidityMintsShares(t *testing.T) {
	sim, book, fund := newTestSim(t, 0)
	require.NoError(t, book.Mint("lp", 100_000))
	fund.Deposit("lp", 100_000)

	tokenUsed, refUsed, shares, err := sim.SupplyLiquidity(context.Background(), "lp", 40_000, 90_000, "owner")
	require.NoError(t, err)
	assert.Equal(t, uint64(40_000), tokenUsed)
	assert.Equal(t, uint64(90_000), refUsed)
	assert.Equal(t, uint64(60_000), shares, "first supply mints sqrt(token*ref)")
	assert.Equal(t, uint64(60_000), sim.SharesOf("owner"))

	// Second supply mints pro-rata to the token side.
	_, _, more, err := sim.SupplyLiquidity(context.Background(), "lp", 10_000, 5_000, "owner")
	require.NoError(t, err)
	assert.Equal(t, uint64(15_000), more)

	_, _, _, err = sim.SupplyLiquidity(context.Background(), "lp", 0, 5, "owner")
	assert.Error(t, err, "one-sided supply rejected")
}

func TestConvertRequiresBinding(t *testing.T) {
	book := ledger.New(zap.NewNop())
	fund := ledger.NewFund()
	sim := NewSim(simPair, fund, 0, zap.NewNop())
	require.NoError(t, book.Mint(simPair, 1_000))
	sim.SeedPool(1_000, 1_000)

	_, err := sim.Convert(context.Background(), "seller", 100, 0, "seller")
	assert.Error(t, err)
}
