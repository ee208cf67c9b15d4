package account

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewAccount(t *testing.T) {
	a := New(decimal.NewFromInt(100000))
	if !a.Balance.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("balance = %s, want 100000", a.Balance)
	}
	if a.Level != 1 || a.XP != 0 {
		t.Errorf("expected level 1 and 0 xp, got %d/%d", a.Level, a.XP)
	}
	if len(a.Positions) != 0 || len(a.Ledger) != 0 {
		t.Errorf("expected empty portfolio and ledger")
	}
}

func TestRecordPrependsNewestFirst(t *testing.T) {
	a := New(decimal.Zero)
	a.Record(Transaction{ID: "1", Timestamp: time.Unix(1, 0)})
	a.Record(Transaction{ID: "2", Timestamp: time.Unix(2, 0)})
	if a.Ledger[0].ID != "2" || a.Ledger[1].ID != "1" {
		t.Fatalf("ledger not newest first: %v", a.Ledger)
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := New(decimal.NewFromInt(10))
	a.Positions = append(a.Positions, Position{Symbol: "AAPL", Shares: 1, StopLoss: Threshold(90)})
	a.Record(Transaction{ID: "x"})

	c := a.Clone()
	c.Positions[0].Shares = 99
	*c.Positions[0].StopLoss = 1
	c.Ledger[0].ID = "y"

	if a.Positions[0].Shares != 1 || *a.Positions[0].StopLoss != 90 || a.Ledger[0].ID != "x" {
		t.Fatalf("clone shares storage with original")
	}
}

func TestGrantRecomputesLevel(t *testing.T) {
	a := New(decimal.Zero)
	a.XP = 900
	if err := a.Grant(150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.XP != 1050 || a.Level != 2 {
		t.Errorf("got xp=%d level=%d", a.XP, a.Level)
	}
	if err := a.Grant(-1); err == nil {
		t.Errorf("expected error for negative reward")
	}
}

func TestThreshold(t *testing.T) {
	if Threshold(0) != nil || Threshold(-3) != nil {
		t.Errorf("non-positive thresholds should be absent")
	}
	if v := Threshold(12.5); v == nil || *v != 12.5 {
		t.Errorf("Threshold(12.5) = %v", v)
	}
}

func TestValue(t *testing.T) {
	a := New(decimal.NewFromInt(99000))
	a.Positions = []Position{
		{Symbol: "AAPL", Shares: 10, AvgCost: decimal.NewFromInt(100)},
		{Symbol: "GONE", Shares: 2, AvgCost: decimal.NewFromInt(50)},
	}

	v := Value(a, map[string]float64{"AAPL": 110}, decimal.NewFromInt(100000))

	if !v.MarketValue.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("market value = %s, want 1200", v.MarketValue)
	}
	if !v.TotalValue.Equal(decimal.NewFromInt(100200)) {
		t.Errorf("total value = %s, want 100200", v.TotalValue)
	}
	if !v.LifetimeGain.Equal(decimal.NewFromInt(200)) {
		t.Errorf("lifetime gain = %s, want 200", v.LifetimeGain)
	}
	if v.LifetimeGainPercent != 0.2 {
		t.Errorf("lifetime gain percent = %v, want 0.2", v.LifetimeGainPercent)
	}
}

func TestMaxBuyAndSell(t *testing.T) {
	if got := MaxBuy(decimal.NewFromInt(1000), 178.35); got != 5 {
		t.Errorf("MaxBuy = %d, want 5", got)
	}
	if got := MaxBuy(decimal.NewFromInt(1000), 0); got != 0 {
		t.Errorf("MaxBuy with zero price = %d, want 0", got)
	}
	if got := MaxBuy(decimal.Zero, 10); got != 0 {
		t.Errorf("MaxBuy with no cash = %d, want 0", got)
	}

	a := New(decimal.Zero)
	a.Positions = []Position{{Symbol: "NVDA", Shares: 7}}
	if got := MaxSell(a, "NVDA"); got != 7 {
		t.Errorf("MaxSell = %d, want 7", got)
	}
	if got := MaxSell(a, "AAPL"); got != 0 {
		t.Errorf("MaxSell for missing position = %d, want 0", got)
	}
}
