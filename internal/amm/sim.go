// internal/amm/sim.go
package amm

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

// Sim is a deterministic constant-product market maker backed by the ledger
// and the reference-currency fund. It exists so the distribution math can be
// exercised without a live external service, and so the conversion path's
// internal transfer genuinely re-enters the engine.
type Sim struct {
	mu     sync.Mutex
	logger *zap.Logger

	pair ledger.Address
	fund *ledger.Fund

	transfer TransferFunc

	tokenReserve uint64
	refReserve   uint64
	feeBps       uint64

	totalShares uint64
	shares      map[ledger.Address]uint64
}

// NewSim creates a simulator for the given pair address. Reserves start
// empty; seed them with SeedPool before quoting.
func NewSim(pair ledger.Address, fund *ledger.Fund, feeBps uint64, logger *zap.Logger) *Sim {
	return &Sim{
		logger: logger.Named("amm"),
		pair:   pair,
		fund:   fund,
		feeBps: feeBps,
		shares: make(map[ledger.Address]uint64),
	}
}

// BindTransfer wires the engine's internal transfer path into the simulator.
// Must be called before Convert; the engine does this at construction.
func (s *Sim) BindTransfer(fn TransferFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfer = fn
}

// SeedPool sets the initial reserves. The pair's fund balance is credited so
// conversion payouts are backed by actual reference currency.
func (s *Sim) SeedPool(tokenReserve, refReserve uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenReserve = tokenReserve
	s.refReserve = refReserve
	s.fund.Deposit(s.pair, refReserve)
}

func (s *Sim) PairAddress() ledger.Address {
	return s.pair
}

// QuoteConversion prices amountIn against the current reserves:
// out = floor(refReserve * in' / (tokenReserve + in')) with the pool fee
// shaved off the input first.
func (s *Sim) QuoteConversion(amountIn uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote(amountIn)
}

func (s *Sim) quote(amountIn uint64) uint64 {
	if amountIn == 0 || s.tokenReserve == 0 || s.refReserve == 0 {
		return 0
	}

	in := decimal.NewFromUint64(amountIn)
	fee := decimal.NewFromUint64(s.feeBps).Div(decimal.NewFromInt(10000))
	in = in.Mul(decimal.NewFromInt(1).Sub(fee))

	x := decimal.NewFromUint64(s.tokenReserve)
	y := decimal.NewFromUint64(s.refReserve)
	out := y.Mul(in).Div(x.Add(in)).Floor()

	if !out.IsPositive() {
		return 0
	}
	return out.BigInt().Uint64()
}

// Convert executes the swap: units move seller -> pair through the bound
// transfer path, reference currency moves pair -> recipient out of the fund.
func (s *Sim) Convert(ctx context.Context, seller ledger.Address, amountIn, minOut uint64, recipient ledger.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transfer == nil {
		return 0, fmt.Errorf("market maker has no transfer binding")
	}

	out := s.quote(amountIn)
	if out == 0 {
		return 0, ErrNoLiquidity
	}
	if out < minOut {
		return 0, fmt.Errorf("quoted %d, wanted at least %d: %w", out, minOut, ErrSlippageExceeded)
	}

	if err := s.transfer(ctx, seller, s.pair, amountIn); err != nil {
		return 0, fmt.Errorf("pull units into pool: %w", err)
	}
	if err := s.fund.Pay(s.pair, recipient, out); err != nil {
		return 0, fmt.Errorf("pay conversion proceeds: %w", err)
	}

	s.tokenReserve += amountIn
	s.refReserve -= out

	s.logger.Debug("Conversion executed",
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("amount_out", out))
	return out, nil
}

// SupplyLiquidity deposits both sides into the pool and mints shares. The
// first supply mints sqrt(token*ref) shares; later supplies mint pro-rata to
// the token side.
func (s *Sim) SupplyLiquidity(ctx context.Context, supplier ledger.Address, tokenAmount, refAmount uint64, to ledger.Address) (uint64, uint64, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transfer == nil {
		return 0, 0, 0, fmt.Errorf("market maker has no transfer binding")
	}
	if tokenAmount == 0 || refAmount == 0 {
		return 0, 0, 0, fmt.Errorf("both sides of the supply must be nonzero")
	}

	if err := s.transfer(ctx, supplier, s.pair, tokenAmount); err != nil {
		return 0, 0, 0, fmt.Errorf("pull units into pool: %w", err)
	}
	if err := s.fund.Pay(supplier, s.pair, refAmount); err != nil {
		return 0, 0, 0, fmt.Errorf("pull reference currency into pool: %w", err)
	}

	var minted uint64
	if s.totalShares == 0 {
		minted = uint64(math.Sqrt(float64(tokenAmount) * float64(refAmount)))
	} else {
		minted = tokenAmount * s.totalShares / s.tokenReserve
	}
	if minted == 0 {
		minted = 1
	}

	s.tokenReserve += tokenAmount
	s.refReserve += refAmount
	s.totalShares += minted
	s.shares[to] += minted

	s.logger.Debug("Liquidity supplied",
		zap.Uint64("token_amount", tokenAmount),
		zap.Uint64("ref_amount", refAmount),
		zap.Uint64("shares", minted))
	return tokenAmount, refAmount, minted, nil
}

// SharesOf returns the pool shares held by addr.
func (s *Sim) SharesOf(addr ledger.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shares[addr]
}

// Reserves returns the current pool reserves.
func (s *Sim) Reserves() (tokenReserve, refReserve uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenReserve, s.refReserve
}
