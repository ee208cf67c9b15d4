// Package autoexit liquidates positions whose stop-loss or take-profit has
// been crossed by the current price.
package autoexit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account"
)

// Reason names the threshold that closed a position.
type Reason string

const (
	ReasonStopLoss   Reason = "stop_loss"
	ReasonTakeProfit Reason = "take_profit"
)

// Exit describes one position closed by the monitor.
type Exit struct {
	Symbol      string              `json:"symbol"`
	Shares      int64               `json:"shares"`
	Price       float64             `json:"price"`
	Reason      Reason              `json:"reason"`
	Transaction account.Transaction `json:"transaction"`
	LevelUp     bool                `json:"level_up"`
}

// Monitor checks positions against prices. It holds no state besides its
// configuration and is safe for concurrent use.
type Monitor struct {
	cfg   Config
	newID func() string
}

// NewMonitor creates a Monitor.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg.withDefaults(), newID: uuid.NewString}
}

// Check reports whether price crosses one of p's thresholds.
// Stop-loss wins when both are crossed.
func Check(p account.Position, price float64) (Reason, bool) {
	if p.StopLoss != nil && price <= *p.StopLoss {
		return ReasonStopLoss, true
	}
	if p.TakeProfit != nil && price >= *p.TakeProfit {
		return ReasonTakeProfit, true
	}
	return "", false
}

// Scan sells every triggered position in full at its symbol's price.
// Positions without a price are left alone. acct is not modified; when
// nothing triggers or the reward cannot be granted it is returned as is.
func (m *Monitor) Scan(acct account.Account, prices map[string]float64, now time.Time) (account.Account, []Exit, error) {
	var exits []Exit
	next := acct

	for _, p := range acct.Positions {
		price, ok := prices[p.Symbol]
		if !ok {
			continue
		}
		reason, hit := Check(p, price)
		if !hit {
			continue
		}
		if exits == nil {
			next = acct.Clone()
		}

		px := decimal.NewFromFloat(price)
		tx := account.Transaction{
			ID:        m.newID(),
			Symbol:    p.Symbol,
			Side:      account.SideAutoSell,
			Shares:    p.Shares,
			Price:     px,
			Timestamp: now,
		}

		next.Balance = next.Balance.Add(tx.Value())
		next.RemovePosition(next.PositionIndex(p.Symbol))
		next.Record(tx)

		prevLevel := next.Level
		if err := next.Grant(m.cfg.XPReward); err != nil {
			return acct, nil, err
		}

		exits = append(exits, Exit{
			Symbol:      p.Symbol,
			Shares:      p.Shares,
			Price:       price,
			Reason:      reason,
			Transaction: tx,
			LevelUp:     next.Level > prevLevel,
		})
	}
	return next, exits, nil
}
