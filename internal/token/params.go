// internal/token/params.go
package token

// BpsDenominator is the basis-point scale: 10000 bps == 100%.
const BpsDenominator = 10000

// Params holds the global fee configuration. All basis-point values are
// capped at BpsDenominator; a zero max amount means unlimited.
type Params struct {
	BurnFeeBps          uint64
	BuyLiquidityFeeBps  uint64
	SellLiquidityFeeBps uint64
	MaxBuyAmount        uint64
	MaxSellAmount       uint64
	OwnerFeeExempt      bool
}

func (p Params) validate() error {
	if p.BurnFeeBps > BpsDenominator {
		return configErrorf("burn fee %d exceeds %d bps", p.BurnFeeBps, BpsDenominator)
	}
	if p.BuyLiquidityFeeBps > BpsDenominator {
		return configErrorf("buy liquidity fee %d exceeds %d bps", p.BuyLiquidityFeeBps, BpsDenominator)
	}
	if p.SellLiquidityFeeBps > BpsDenominator {
		return configErrorf("sell liquidity fee %d exceeds %d bps", p.SellLiquidityFeeBps, BpsDenominator)
	}
	return nil
}

// liquidityFeeBps returns the liquidity fee for a direction. Non-sell
// transfers fall back to the buy rate, matching the direction classification
// fallback used for recipient fees.
func (p Params) liquidityFeeBps(dir Direction) uint64 {
	if dir == DirectionSell {
		return p.SellLiquidityFeeBps
	}
	return p.BuyLiquidityFeeBps
}
