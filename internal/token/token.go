// internal/token/token.go
package token

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/TokenRevolution/FCOtoken/internal/amm"
	"github.com/TokenRevolution/FCOtoken/internal/events"
	"github.com/TokenRevolution/FCOtoken/internal/ledger"
	"github.com/TokenRevolution/FCOtoken/internal/metrics"
)

// Config assembles a Token engine.
type Config struct {
	Owner   ledger.Address
	Holding ledger.Address // the engine's own fee-settlement account
	Params  Params

	Ledger  *ledger.Ledger
	Fund    *ledger.Fund
	Market  amm.MarketMaker
	Bus     *events.Bus        // optional
	Metrics *metrics.Collector // optional
	Logger  *zap.Logger
}

// Token wires the base ledger, the fee registry and the market maker into
// the transfer interception engine.
//
// The mutex guards the whole interception critical section: one transfer runs
// to completion before the next begins. The latch flag marks the engine's own
// settlement transfers (triggered from inside a conversion) as fee-exempt;
// those re-enter through internalTransfer on the same goroutine, while the
// outer lock is still held.
type Token struct {
	mu sync.Mutex

	logger  *zap.Logger
	bus     *events.Bus
	metrics *metrics.Collector

	ledger *ledger.Ledger
	fund   *ledger.Fund
	market amm.MarketMaker

	owner   ledger.Address
	holding ledger.Address

	params    Params
	registry  *Registry
	feeExempt map[ledger.Address]bool

	liquidityDeposit uint64
	totalMinted      uint64
	totalBurned      uint64

	paused  bool
	latched bool
}

// New builds the engine and binds its internal transfer path into the
// market maker when the market maker supports it.
func New(cfg Config) (*Token, error) {
	if cfg.Owner == ledger.AddressZero || cfg.Holding == ledger.AddressZero {
		return nil, configErrorf("owner and holding addresses must be set")
	}
	if err := cfg.Params.validate(); err != nil {
		return nil, err
	}

	t := &Token{
		logger:    cfg.Logger.Named("token"),
		bus:       cfg.Bus,
		metrics:   cfg.Metrics,
		ledger:    cfg.Ledger,
		fund:      cfg.Fund,
		market:    cfg.Market,
		owner:     cfg.Owner,
		holding:   cfg.Holding,
		params:    cfg.Params,
		registry:  NewRegistry(),
		feeExempt: make(map[ledger.Address]bool),
	}

	if binder, ok := cfg.Market.(interface{ BindTransfer(amm.TransferFunc) }); ok {
		binder.BindTransfer(t.internalTransfer)
	}
	return t, nil
}

// Owner returns the administrative owner address.
func (t *Token) Owner() ledger.Address {
	return t.owner
}

// Holding returns the engine's own fee-settlement address.
func (t *Token) Holding() ledger.Address {
	return t.holding
}

// LiquidityReserve returns the units accumulated for liquidity supply.
func (t *Token) LiquidityReserve() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.liquidityDeposit
}

// TotalBurned returns the cumulative burned amount.
func (t *Token) TotalBurned() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalBurned
}

// DepositOf returns a recipient's pending reference-currency deposit.
func (t *Token) DepositOf(addr ledger.Address) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.registry.Get(addr)
	if !ok {
		return 0
	}
	return rec.Deposit
}

func (t *Token) emit(ev events.Event) {
	if t.bus == nil {
		return
	}
	if err := t.bus.Publish(ev); err != nil {
		t.logger.Debug("Event dropped", zap.String("type", string(ev.Type())), zap.Error(err))
	}
}

func (t *Token) requireOwner(caller ledger.Address) error {
	if caller != t.owner {
		return ErrUnauthorized
	}
	return nil
}

// Mint creates new units for an account. Owner only.
func (t *Token) Mint(caller, to ledger.Address, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := t.ledger.Mint(to, amount); err != nil {
		return err
	}
	t.totalMinted += amount
	return nil
}

// AddFeeRecipient registers a fee recipient. Owner only.
func (t *Token) AddFeeRecipient(caller, addr ledger.Address, buyFeeBps, sellFeeBps uint64, paidInRef bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	rec := Recipient{
		Address:    addr,
		BuyFeeBps:  buyFeeBps,
		SellFeeBps: sellFeeBps,
		PaidInRef:  paidInRef,
	}
	if err := t.registry.Add(rec, t.params.BurnFeeBps, t.params.BuyLiquidityFeeBps, t.params.SellLiquidityFeeBps); err != nil {
		return err
	}
	t.logger.Info("Fee recipient added",
		zap.String("address", string(addr)),
		zap.Uint64("buy_fee_bps", buyFeeBps),
		zap.Uint64("sell_fee_bps", sellFeeBps),
		zap.Bool("paid_in_ref", paidInRef))
	t.emit(events.FeeRecipientAddedEvent{
		BaseEvent:  events.NewBase(events.FeeRecipientAdded),
		Address:    addr,
		BuyFeeBps:  buyFeeBps,
		SellFeeBps: sellFeeBps,
		PaidInRef:  paidInRef,
	})
	return nil
}

// RemoveFeeRecipient deletes a fee recipient. Owner only.
func (t *Token) RemoveFeeRecipient(caller, addr ledger.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if err := t.registry.Remove(addr); err != nil {
		return err
	}
	t.logger.Info("Fee recipient removed", zap.String("address", string(addr)))
	t.emit(events.FeeRecipientRemovedEvent{
		BaseEvent: events.NewBase(events.FeeRecipientRemoved),
		Address:   addr,
	})
	return nil
}

// SetBurnFee updates the burn fee. Owner only.
func (t *Token) SetBurnFee(caller ledger.Address, bps uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if bps > BpsDenominator {
		return configErrorf("burn fee %d exceeds %d bps", bps, BpsDenominator)
	}
	old := t.params.BurnFeeBps
	t.params.BurnFeeBps = bps
	t.emitParamUpdate("burn_fee_bps", old, bps)
	return nil
}

// SetLiquidityFees updates the buy and sell liquidity fees. Owner only.
func (t *Token) SetLiquidityFees(caller ledger.Address, buyBps, sellBps uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if buyBps > BpsDenominator || sellBps > BpsDenominator {
		return configErrorf("liquidity fee exceeds %d bps", BpsDenominator)
	}
	oldBuy, oldSell := t.params.BuyLiquidityFeeBps, t.params.SellLiquidityFeeBps
	t.params.BuyLiquidityFeeBps = buyBps
	t.params.SellLiquidityFeeBps = sellBps
	t.emitParamUpdate("buy_liquidity_fee_bps", oldBuy, buyBps)
	t.emitParamUpdate("sell_liquidity_fee_bps", oldSell, sellBps)
	return nil
}

// SetMaxBuyAmount updates the buy cap; zero removes it. Owner only.
func (t *Token) SetMaxBuyAmount(caller ledger.Address, max uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	old := t.params.MaxBuyAmount
	t.params.MaxBuyAmount = max
	t.emitParamUpdate("max_buy_amount", old, max)
	return nil
}

// SetMaxSellAmount updates the sell cap; zero removes it. Owner only.
func (t *Token) SetMaxSellAmount(caller ledger.Address, max uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	old := t.params.MaxSellAmount
	t.params.MaxSellAmount = max
	t.emitParamUpdate("max_sell_amount", old, max)
	return nil
}

// SetOwnerFeeExempt toggles the owner's blanket fee exemption. Owner only.
func (t *Token) SetOwnerFeeExempt(caller ledger.Address, exempt bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	old := t.params.OwnerFeeExempt
	t.params.OwnerFeeExempt = exempt
	t.emitParamUpdate("owner_fee_exempt", old, exempt)
	return nil
}

// SetFeeExempt puts an address on or off the fee exemption list. Owner only.
func (t *Token) SetFeeExempt(caller, addr ledger.Address, exempt bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	old := t.feeExempt[addr]
	if exempt {
		t.feeExempt[addr] = true
	} else {
		delete(t.feeExempt, addr)
	}
	t.emitParamUpdate("fee_exempt:"+string(addr), old, exempt)
	return nil
}

// Pause halts all transfers. Owner only.
func (t *Token) Pause(caller ledger.Address) error {
	return t.setPaused(caller, true)
}

// Unpause resumes transfers. Owner only.
func (t *Token) Unpause(caller ledger.Address) error {
	return t.setPaused(caller, false)
}

func (t *Token) setPaused(caller ledger.Address, paused bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.paused = paused
	evType := events.Unpaused
	if paused {
		evType = events.Paused
	}
	t.emit(events.PausedEvent{BaseEvent: events.NewBase(evType), Paused: paused})
	return nil
}

func (t *Token) emitParamUpdate(name string, oldValue, newValue interface{}) {
	t.logger.Info("Parameter updated",
		zap.String("name", name),
		zap.Any("old", oldValue),
		zap.Any("new", newValue))
	t.emit(events.ParamUpdatedEvent{
		BaseEvent: events.NewBase(events.ParamUpdated),
		Name:      name,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
}

// internalTransfer is the re-entrant path handed to the market maker. The
// outer transfer already holds the mutex and has the latch engaged, so this
// goes straight to interception without re-locking.
func (t *Token) internalTransfer(ctx context.Context, from, to ledger.Address, amount uint64) error {
	return t.intercept(ctx, from, to, amount)
}
