package ledger

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account"
)

func testStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("PAPERTRADE_TEST_DSN")
	if dsn == "" {
		t.Skip("PAPERTRADE_TEST_DSN not set")
	}
	ctx := context.Background()
	s, err := NewPGStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := s.Truncate(ctx); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func TestPGStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := testTx("tx-1")
	first.StopLoss = account.Threshold(95.5)
	second := testTx("tx-2")
	second.Side = account.SideSell
	second.Price = decimal.RequireFromString("101.37")

	for _, tx := range []account.Transaction{first, second, first} {
		if err := s.Append(ctx, tx); err != nil {
			t.Fatalf("append %s: %v", tx.ID, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "tx-2" || !got[0].Price.Equal(second.Price) || got[0].Side != account.SideSell {
		t.Errorf("unexpected newest row: %+v", got[0])
	}
	if got[1].StopLoss == nil || *got[1].StopLoss != 95.5 || got[1].TakeProfit != nil {
		t.Errorf("thresholds not preserved: %+v", got[1])
	}

	if err := s.Truncate(ctx); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if got, _ := s.Recent(ctx, 10); len(got) != 0 {
		t.Errorf("rows left after truncate: %d", len(got))
	}
}
