package pricegen

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/zappabad/papertrade/internal/market"
)

func newTestGenerator(seed uint64) *Generator {
	return New(DefaultConfig(), rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func checkBar(t *testing.T, where string, b market.HistoryBar) {
	t.Helper()
	if b.Low > math.Min(b.Open, b.Close) {
		t.Errorf("%s: low %v above body min(%v, %v)", where, b.Low, b.Open, b.Close)
	}
	if b.High < math.Max(b.Open, b.Close) {
		t.Errorf("%s: high %v below body max(%v, %v)", where, b.High, b.Open, b.Close)
	}
}

func TestGenerateHistoryShape(t *testing.T) {
	g := newTestGenerator(1)

	for _, r := range market.TimeRanges() {
		bars := g.GenerateHistory(100, r)
		if len(bars) != r.Points() {
			t.Fatalf("%s: expected %d bars, got %d", r, r.Points(), len(bars))
		}
		if bars[0].Open < 95 || bars[0].Open > 105 {
			t.Errorf("%s: seed price %v outside [95, 105]", r, bars[0].Open)
		}
		for i, b := range bars {
			checkBar(t, string(r), b)
			if b.Volume < 1000 || b.Volume >= 6000 {
				t.Errorf("%s bar %d: volume %d outside [1000, 6000)", r, i, b.Volume)
			}
			if i > 0 && b.Open != bars[i-1].Close {
				t.Errorf("%s bar %d: open %v != previous close %v", r, i, b.Open, bars[i-1].Close)
			}
		}
	}
}

func TestGenerateHistoryLabels(t *testing.T) {
	g := newTestGenerator(2)

	day := g.GenerateHistory(50, market.Range1D)
	wantDay := map[int]string{0: "9:00", 1: "9:30", 2: "10:00", 3: "10:30", 59: "38:30"}
	for i, want := range wantDay {
		if day[i].Label != want {
			t.Errorf("1D bar %d: label %q, want %q", i, day[i].Label, want)
		}
	}

	month := g.GenerateHistory(50, market.Range1M)
	if month[0].Label != "T-100" {
		t.Errorf("1M first label %q, want T-100", month[0].Label)
	}
	if month[99].Label != "T-1" {
		t.Errorf("1M last label %q, want T-1", month[99].Label)
	}
}

func TestGenerateHistoryDeterministic(t *testing.T) {
	a := newTestGenerator(42).GenerateHistory(178.35, market.Range3M)
	b := newTestGenerator(42).GenerateHistory(178.35, market.Range3M)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs between identically seeded generators", i)
		}
	}
}

func TestAdvanceTick(t *testing.T) {
	g := newTestGenerator(3)
	inst := market.Instrument{Symbol: "AAPL", Price: 100, Change: 1.25}
	inst.History = g.GenerateHistory(inst.Price, market.Range1W)

	for i := 0; i < 500; i++ {
		prev := inst
		prevLast, _ := prev.LastBar()
		inst = g.AdvanceTick(prev)

		move := inst.Price - prev.Price
		if math.Abs(move) > prev.Price*0.0004*0.52+1e-9 {
			t.Fatalf("tick %d: move %v exceeds volatility bound", i, move)
		}
		if math.Abs((inst.Change-prev.Change)-move) > 1e-9 {
			t.Fatalf("tick %d: change delta %v != move %v", i, inst.Change-prev.Change, move)
		}
		wantPct := inst.Change / (prev.Price - inst.Change) * 100
		if math.Abs(inst.ChangePercent-wantPct) > 1e-9 {
			t.Fatalf("tick %d: change percent %v, want %v", i, inst.ChangePercent, wantPct)
		}

		last, _ := inst.LastBar()
		if last.Close != inst.Price {
			t.Fatalf("tick %d: last close %v != price %v", i, last.Close, inst.Price)
		}
		if last.Volume < prevLast.Volume || last.Volume >= prevLast.Volume+10 {
			t.Fatalf("tick %d: volume went from %d to %d", i, prevLast.Volume, last.Volume)
		}
		if len(inst.History) != len(prev.History) {
			t.Fatalf("tick %d: history length changed", i)
		}
		checkBar(t, "advanced", last)
	}
}

func TestAdvanceTickDoesNotMutateInput(t *testing.T) {
	g := newTestGenerator(4)
	inst := market.Instrument{Symbol: "TSLA", Price: 245.30}
	inst.History = g.GenerateHistory(inst.Price, market.Range1M)
	before := inst.Clone()

	_ = g.AdvanceTick(inst)

	if inst.Price != before.Price {
		t.Fatalf("input price mutated")
	}
	for i := range before.History {
		if inst.History[i] != before.History[i] {
			t.Fatalf("input history bar %d mutated", i)
		}
	}
}

func TestAdvanceTickFloor(t *testing.T) {
	g := newTestGenerator(5)
	inst := market.Instrument{Symbol: "PENNY", Price: 0.01}
	for i := 0; i < 200; i++ {
		inst = g.AdvanceTick(inst)
		if inst.Price < 0.01 {
			t.Fatalf("price %v fell below floor", inst.Price)
		}
	}
}

func TestRepriceFoldsIntoLastBar(t *testing.T) {
	inst := market.Instrument{
		Symbol: "AMD",
		Price:  100,
		History: []market.HistoryBar{
			{Open: 90, High: 95, Low: 89, Close: 94, Volume: 10},
			{Open: 94, High: 101, Low: 93, Close: 100, Volume: 20},
		},
	}

	up := Reprice(inst, 105, 0.01)
	last, _ := up.LastBar()
	if up.Price != 105 || last.Close != 105 || last.High != 105 || last.Low != 93 {
		t.Errorf("unexpected bar after reprice up: %+v", last)
	}
	if last.Volume != 20 {
		t.Errorf("reprice changed volume to %d", last.Volume)
	}

	down := Reprice(inst, 80, 0.01)
	last, _ = down.LastBar()
	if last.Low != 80 || last.High != 101 {
		t.Errorf("unexpected bar after reprice down: %+v", last)
	}

	floored := Reprice(inst, -5, 0.01)
	if floored.Price != 0.01 {
		t.Errorf("expected floor 0.01, got %v", floored.Price)
	}

	if inst.History[1].Close != 100 {
		t.Errorf("reprice mutated the input history")
	}
}

func TestFoldPriceEmpty(t *testing.T) {
	if got := FoldPrice(nil, 10); got != nil {
		t.Errorf("expected nil history, got %v", got)
	}
}
