// internal/token/registry.go
package token

import (
	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

// MaxFeeRecipients bounds the registry. Every transfer iterates the full
// recipient list, so the bound also caps per-transfer work.
const MaxFeeRecipients = 10

// Recipient is one fee-recipient configuration. Deposit holds fee units
// pending conversion to reference currency for PaidInRef recipients.
type Recipient struct {
	Address    ledger.Address
	BuyFeeBps  uint64
	SellFeeBps uint64
	PaidInRef  bool
	Deposit    uint64
}

// Registry is the ordered collection of fee recipients. The order slice and
// the config map are kept in lockstep; removal swaps with the last entry and
// truncates, so positions are not stable across removals.
type Registry struct {
	byAddr map[ledger.Address]*Recipient
	order  []ledger.Address
}

func NewRegistry() *Registry {
	return &Registry{
		byAddr: make(map[ledger.Address]*Recipient),
	}
}

// Add validates and inserts a recipient. burnBps, buyLiqBps and sellLiqBps
// are the global fees that count toward the cumulative 10000 bps cap,
// checked independently for the buy and sell directions.
func (r *Registry) Add(rec Recipient, burnBps, buyLiqBps, sellLiqBps uint64) error {
	if rec.Address == ledger.AddressZero {
		return configErrorf("fee recipient address is zero")
	}
	if _, exists := r.byAddr[rec.Address]; exists {
		return configErrorf("fee recipient %s already registered", rec.Address)
	}
	if rec.BuyFeeBps == 0 || rec.SellFeeBps == 0 {
		return configErrorf("fee recipient %s has a zero fee", rec.Address)
	}
	if rec.BuyFeeBps > BpsDenominator || rec.SellFeeBps > BpsDenominator {
		return configErrorf("fee recipient %s fee exceeds %d bps", rec.Address, BpsDenominator)
	}
	if len(r.order) >= MaxFeeRecipients {
		return configErrorf("fee recipient capacity %d reached", MaxFeeRecipients)
	}
	if r.TotalBuyBps()+rec.BuyFeeBps+burnBps+buyLiqBps > BpsDenominator {
		return configErrorf("cumulative buy fees would exceed %d bps", BpsDenominator)
	}
	if r.TotalSellBps()+rec.SellFeeBps+burnBps+sellLiqBps > BpsDenominator {
		return configErrorf("cumulative sell fees would exceed %d bps", BpsDenominator)
	}

	stored := rec
	stored.Deposit = 0
	r.byAddr[rec.Address] = &stored
	r.order = append(r.order, rec.Address)
	return nil
}

// Remove deletes a recipient from the map and the order slice.
func (r *Registry) Remove(addr ledger.Address) error {
	if addr == ledger.AddressZero {
		return configErrorf("fee recipient address is zero")
	}
	if _, exists := r.byAddr[addr]; !exists {
		return configErrorf("fee recipient %s not registered", addr)
	}
	delete(r.byAddr, addr)
	for i, a := range r.order {
		if a == addr {
			last := len(r.order) - 1
			r.order[i] = r.order[last]
			r.order = r.order[:last]
			break
		}
	}
	return nil
}

// Get returns a copy of the recipient config, if present.
func (r *Registry) Get(addr ledger.Address) (Recipient, bool) {
	rec, ok := r.byAddr[addr]
	if !ok {
		return Recipient{}, false
	}
	return *rec, true
}

// Len returns the number of registered recipients.
func (r *Registry) Len() int {
	return len(r.order)
}

// Snapshot returns an immutable copy of the recipients in registry order.
// The transfer and distribution loops iterate the snapshot, never the live
// map, so registry mutations cannot alias an in-flight iteration.
func (r *Registry) Snapshot() []Recipient {
	out := make([]Recipient, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, *r.byAddr[addr])
	}
	return out
}

// TotalBuyBps sums the buy-direction fees of all recipients.
func (r *Registry) TotalBuyBps() uint64 {
	var total uint64
	for _, rec := range r.byAddr {
		total += rec.BuyFeeBps
	}
	return total
}

// TotalSellBps sums the sell-direction fees of all recipients.
func (r *Registry) TotalSellBps() uint64 {
	var total uint64
	for _, rec := range r.byAddr {
		total += rec.SellFeeBps
	}
	return total
}

// AddDeposit accumulates pending reference-currency fee units.
func (r *Registry) AddDeposit(addr ledger.Address, amount uint64) {
	if rec, ok := r.byAddr[addr]; ok {
		rec.Deposit += amount
	}
}

// ResetDeposit zeroes a recipient's pending deposit.
func (r *Registry) ResetDeposit(addr ledger.Address) {
	if rec, ok := r.byAddr[addr]; ok {
		rec.Deposit = 0
	}
}

// TotalDeposits sums all pending deposits.
func (r *Registry) TotalDeposits() uint64 {
	var total uint64
	for _, rec := range r.byAddr {
		total += rec.Deposit
	}
	return total
}
