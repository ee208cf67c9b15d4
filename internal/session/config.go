package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account/autoexit"
	"github.com/zappabad/papertrade/internal/account/orders"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/market/pricegen"
)

// Config holds configuration for a trading session.
type Config struct {
	// TickInterval is the interval between price ticks.
	TickInterval time.Duration
	// ResetDelay is how long Reset waits before restoring the initial state.
	ResetDelay time.Duration
	// StartingBalance is the cash a fresh account receives.
	StartingBalance decimal.Decimal
	// DefaultRange is the history range generated at startup.
	DefaultRange market.TimeRange
	// EventBuffer is the size of the external events channel.
	EventBuffer int
	// DropEvents determines whether the events channel drops on overflow.
	DropEvents bool
	// ActivitySize is the capacity of the activity feed.
	ActivitySize int
	// Seed fixes the random source when non-zero.
	Seed uint64
	// Instruments is the catalog the session trades. Each entry's Price is
	// the base price its history is generated around.
	Instruments []market.Instrument

	Prices   pricegen.Config
	Orders   orders.Config
	AutoExit autoexit.Config
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:    150 * time.Millisecond,
		ResetDelay:      800 * time.Millisecond,
		StartingBalance: decimal.NewFromInt(100000),
		DefaultRange:    market.DefaultRange,
		EventBuffer:     256,
		DropEvents:      true,
		ActivitySize:    100,
		Instruments:     market.DefaultCatalog(),
		Prices:          pricegen.DefaultConfig(),
		Orders:          orders.DefaultConfig(),
		AutoExit:        autoexit.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = def.ResetDelay
	}
	if !c.StartingBalance.IsPositive() {
		c.StartingBalance = def.StartingBalance
	}
	if _, err := market.ParseTimeRange(string(c.DefaultRange)); err != nil {
		c.DefaultRange = def.DefaultRange
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = def.EventBuffer
	}
	if c.ActivitySize <= 0 {
		c.ActivitySize = def.ActivitySize
	}
	if len(c.Instruments) == 0 {
		c.Instruments = def.Instruments
	}
	return c
}
