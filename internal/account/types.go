package account

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/progress"
)

// Side is the direction of a ledger entry.
type Side string

const (
	SideBuy      Side = "BUY"
	SideSell     Side = "SELL"
	SideAutoSell Side = "AUTO_SELL"
)

// Position is an open holding. Shares is always positive; a position that
// reaches zero shares is removed from the account.
type Position struct {
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	StopLoss   *float64        `json:"stop_loss,omitempty"`
	TakeProfit *float64        `json:"take_profit,omitempty"`
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"type"`
	Shares     int64           `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	Timestamp  time.Time       `json:"timestamp"`
	StopLoss   *float64        `json:"stop_loss,omitempty"`
	TakeProfit *float64        `json:"take_profit,omitempty"`
}

// Value returns Price*Shares.
func (t Transaction) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}

// Account is the single user's cash, holdings, ledger and progression.
// Ledger is ordered newest first.
type Account struct {
	Balance   decimal.Decimal `json:"balance"`
	Positions []Position      `json:"portfolio"`
	Ledger    []Transaction   `json:"history"`
	XP        int64           `json:"xp"`
	Level     int64           `json:"level"`
}

// New returns an empty account funded with balance.
func New(balance decimal.Decimal) Account {
	return Account{
		Balance:   balance,
		Positions: []Position{},
		Ledger:    []Transaction{},
		Level:     progress.Level(0),
	}
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	out := a
	out.Positions = make([]Position, len(a.Positions))
	for i, p := range a.Positions {
		out.Positions[i] = p.clone()
	}
	out.Ledger = make([]Transaction, len(a.Ledger))
	copy(out.Ledger, a.Ledger)
	return out
}

// Position returns the holding for symbol, if any.
func (a Account) Position(symbol string) (Position, bool) {
	if i := a.PositionIndex(symbol); i >= 0 {
		return a.Positions[i].clone(), true
	}
	return Position{}, false
}

// PositionIndex returns the index of symbol's position or -1.
func (a Account) PositionIndex(symbol string) int {
	for i, p := range a.Positions {
		if p.Symbol == symbol {
			return i
		}
	}
	return -1
}

// Record prepends tx to the ledger.
func (a *Account) Record(tx Transaction) {
	ledger := make([]Transaction, 0, len(a.Ledger)+1)
	ledger = append(ledger, tx)
	a.Ledger = append(ledger, a.Ledger...)
}

// RemovePosition drops the position at index i.
func (a *Account) RemovePosition(i int) {
	positions := make([]Position, 0, len(a.Positions)-1)
	positions = append(positions, a.Positions[:i]...)
	a.Positions = append(positions, a.Positions[i+1:]...)
}

// Grant adds a non-negative XP reward and recomputes the level.
func (a *Account) Grant(reward int64) error {
	xp, level, err := progress.Award(a.XP, reward)
	if err != nil {
		return err
	}
	a.XP, a.Level = xp, level
	return nil
}

func (p Position) clone() Position {
	out := p
	out.StopLoss = copyFloat(p.StopLoss)
	out.TakeProfit = copyFloat(p.TakeProfit)
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Threshold returns a pointer to v, or nil when v is not positive.
func Threshold(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
