// internal/amm/amm.go
package amm

import (
	"context"
	"errors"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

var (
	ErrSlippageExceeded = errors.New("slippage exceeded")
	ErrNoLiquidity      = errors.New("pool has no liquidity")
)

// TransferFunc moves ledger units on behalf of the market maker. The token
// engine binds its own internal transfer path here, so the pull of units into
// the pool re-enters the interception engine like any other transfer.
type TransferFunc func(ctx context.Context, from, to ledger.Address, amount uint64) error

// MarketMaker is the external market-making capability: quote a conversion of
// ledger units into reference currency, execute it, and accept liquidity.
type MarketMaker interface {
	// PairAddress returns the pool's trading address, used by the engine to
	// classify transfer direction.
	PairAddress() ledger.Address

	// QuoteConversion estimates the reference currency received for
	// converting amountIn ledger units. A zero quote signals the pool cannot
	// take the trade right now.
	QuoteConversion(amountIn uint64) uint64

	// Convert sells amountIn ledger units pulled from seller and credits the
	// reference currency received to recipient. Fails with ErrSlippageExceeded
	// when the executed output falls below minOut.
	Convert(ctx context.Context, seller ledger.Address, amountIn, minOut uint64, recipient ledger.Address) (uint64, error)

	// SupplyLiquidity deposits ledger units and reference currency from the
	// supplier into the pool, crediting pool shares to the given address.
	SupplyLiquidity(ctx context.Context, supplier ledger.Address, tokenAmount, refAmount uint64, to ledger.Address) (tokenUsed, refUsed, poolShares uint64, err error)
}
