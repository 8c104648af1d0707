// internal/token/calculator.go
package token

import (
	"math/bits"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

// Direction classifies a transfer relative to the market pair address.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBuy
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	default:
		return "none"
	}
}

// Category names a fee deduction bucket.
type Category string

const (
	CategoryRecipient Category = "recipient"
	CategoryBurn      Category = "burn"
	CategoryLiquidity Category = "liquidity"
)

// Deduction is one decided fee deduction, to be applied after the whole
// breakdown is computed.
type Deduction struct {
	Category  Category
	Recipient ledger.Address
	Amount    uint64
	PaidInRef bool
}

// Breakdown is the full fee decision for one transfer. The amounts always
// conserve: sum(Deductions) + Remaining == the requested amount.
type Breakdown struct {
	Deductions []Deduction
	Remaining  uint64
}

// FeesTaken returns the total units deducted from the transfer.
func (b Breakdown) FeesTaken() uint64 {
	var total uint64
	for _, d := range b.Deductions {
		total += d.Amount
	}
	return total
}

// feeAmount computes floor(amount * bps / BpsDenominator) without overflow.
func feeAmount(amount, bps uint64) uint64 {
	hi, lo := bits.Mul64(amount, bps)
	quo, _ := bits.Div64(hi, lo, BpsDenominator)
	return quo
}

// mulDiv computes floor(a * b / den) without intermediate overflow.
// Requires den > 0 and the result to fit in uint64.
func mulDiv(a, b, den uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, den)
	return quo
}

// ComputeBreakdown decides every deduction for one transfer. Each fee is
// computed on the original amount but applied only while it still fits in
// what remains: recipients first, in registry order, then burn, then the
// liquidity reserve. An earlier deduction consuming the remainder silently
// skips the later categories, so the remainder never goes below zero.
//
// Non-buy, non-sell transfers use the buy-direction basis points; the burn
// fee applies in every direction.
func ComputeBreakdown(amount uint64, dir Direction, recipients []Recipient, p Params) Breakdown {
	bd := Breakdown{Remaining: amount}

	apply := func(d Deduction) {
		if d.Amount == 0 || d.Amount > bd.Remaining {
			return
		}
		bd.Remaining -= d.Amount
		bd.Deductions = append(bd.Deductions, d)
	}

	for _, rec := range recipients {
		bps := rec.BuyFeeBps
		if dir == DirectionSell {
			bps = rec.SellFeeBps
		}
		apply(Deduction{
			Category:  CategoryRecipient,
			Recipient: rec.Address,
			Amount:    feeAmount(amount, bps),
			PaidInRef: rec.PaidInRef,
		})
	}

	apply(Deduction{
		Category: CategoryBurn,
		Amount:   feeAmount(amount, p.BurnFeeBps),
	})

	apply(Deduction{
		Category: CategoryLiquidity,
		Amount:   feeAmount(amount, p.liquidityFeeBps(dir)),
	})

	return bd
}
