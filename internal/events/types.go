// internal/events/types.go
package events

import (
	"time"

	"github.com/TokenRevolution/FCOtoken/internal/ledger"
)

// EventType represents the type of event.
type EventType string

const (
	// Transfer path events
	TransferIntercepted EventType = "transfer.intercepted"
	TokensBurned        EventType = "transfer.burned"

	// Fee recipient administration
	FeeRecipientAdded   EventType = "fees.recipient_added"
	FeeRecipientRemoved EventType = "fees.recipient_removed"

	// Parameter administration
	ParamUpdated EventType = "admin.param_updated"
	Paused       EventType = "admin.paused"
	Unpaused     EventType = "admin.unpaused"

	// Conversion path events
	ConversionSkipped EventType = "conversion.skipped"
	FeesDistributed   EventType = "conversion.distributed"
	LiquiditySupplied EventType = "conversion.liquidity_supplied"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps a base event with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// TransferInterceptedEvent is emitted after a transfer clears the engine.
type TransferInterceptedEvent struct {
	BaseEvent
	From      ledger.Address
	To        ledger.Address
	Direction string
	Requested uint64
	Delivered uint64
	FeesTaken uint64
	FeeExempt bool
}

// TokensBurnedEvent is emitted when the burn fee destroys units.
type TokensBurnedEvent struct {
	BaseEvent
	From   ledger.Address
	Amount uint64
}

// FeeRecipientAddedEvent is emitted when a recipient joins the registry.
type FeeRecipientAddedEvent struct {
	BaseEvent
	Address    ledger.Address
	BuyFeeBps  uint64
	SellFeeBps uint64
	PaidInRef  bool
}

// FeeRecipientRemovedEvent is emitted when a recipient leaves the registry.
type FeeRecipientRemovedEvent struct {
	BaseEvent
	Address ledger.Address
}

// ParamUpdatedEvent carries old and new values for an administrative change.
type ParamUpdatedEvent struct {
	BaseEvent
	Name     string
	OldValue interface{}
	NewValue interface{}
}

// ConversionSkippedEvent is emitted when the market maker quotes zero and the
// conversion is deferred to a later transfer.
type ConversionSkippedEvent struct {
	BaseEvent
	ToConvert uint64
}

// FeesDistributedEvent is emitted per successful reference-currency payout.
type FeesDistributedEvent struct {
	BaseEvent
	Recipient ledger.Address
	Deposit   uint64
	Payout    uint64
}

// LiquiditySuppliedEvent is emitted after reserve units and reference
// currency are supplied to the market maker's pool.
type LiquiditySuppliedEvent struct {
	BaseEvent
	TokenAmount uint64
	RefAmount   uint64
	PoolShares  uint64
}

// PausedEvent is emitted when transfers are halted or resumed.
type PausedEvent struct {
	BaseEvent
	Paused bool
}
