package session

import (
	"time"

	"github.com/zappabad/papertrade/internal/account/autoexit"
	"github.com/zappabad/papertrade/internal/account/orders"
)

// EventKind names an Event on the wire.
type EventKind string

const (
	EventTick     EventKind = "tick"
	EventTrade    EventKind = "trade"
	EventAutoExit EventKind = "auto_exit"
	EventReset    EventKind = "reset"
)

// Event is emitted on the session's external channel.
type Event interface {
	Kind() EventKind
}

// TickEvent carries the prices after one tick.
type TickEvent struct {
	Time   time.Time          `json:"time"`
	Prices map[string]float64 `json:"prices"`
}

// TradeEvent reports a filled user order.
type TradeEvent struct {
	Time   time.Time     `json:"time"`
	Result orders.Result `json:"result"`
}

// AutoExitEvent reports a position closed by a threshold.
type AutoExitEvent struct {
	Time time.Time     `json:"time"`
	Exit autoexit.Exit `json:"exit"`
}

// ResetEvent is emitted when a reset starts (Pending) and when it completes.
type ResetEvent struct {
	Time    time.Time `json:"time"`
	Pending bool      `json:"pending"`
}

func (TickEvent) Kind() EventKind { return EventTick }
func (TradeEvent) Kind() EventKind { return EventTrade }
func (AutoExitEvent) Kind() EventKind { return EventAutoExit }
func (ResetEvent) Kind() EventKind { return EventReset }
