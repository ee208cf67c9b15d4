// Package pricegen produces synthetic OHLC history and per-tick price moves.
package pricegen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/zappabad/papertrade/internal/market"
)

// Generator owns a random source and turns it into price movement.
// It is not safe for concurrent use; the session serializes access.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a Generator. A nil rng is replaced by a randomly seeded one.
func New(cfg Config, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{cfg: cfg.withDefaults(), rng: rng}
}

// GenerateHistory builds a fresh random walk of r.Points() bars around basePrice.
func (g *Generator) GenerateHistory(basePrice float64, r market.TimeRange) []market.HistoryBar {
	n := r.Points()
	price := basePrice * (1 - g.cfg.SeedJitter + g.rng.Float64()*2*g.cfg.SeedJitter)

	bars := make([]market.HistoryBar, n)
	for i := range bars {
		open := price
		close := open + open*g.cfg.HistoryVolatility*(g.rng.Float64()-g.cfg.HistoryBias)
		high := math.Max(open, close) + g.rng.Float64()*open*g.cfg.WickFactor
		low := math.Min(open, close) - g.rng.Float64()*open*g.cfg.WickFactor

		bars[i] = market.HistoryBar{
			Label:  barLabel(r, i, n),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: g.cfg.BaseVolume + g.rng.Int64N(g.cfg.VolumeSpread),
		}
		price = close
	}
	return bars
}

// AdvanceTick moves inst by one random step and folds the new price into its
// last bar. The returned instrument shares no storage with inst.
func (g *Generator) AdvanceTick(inst market.Instrument) market.Instrument {
	out := inst.Clone()

	move := inst.Price * g.cfg.TickVolatility * (g.rng.Float64() - g.cfg.TickBias)
	newPrice := math.Max(g.cfg.PriceFloor, inst.Price+move)

	out.Price = newPrice
	out.Change = inst.Change + move
	out.ChangePercent = changePercent(inst.Price, out.Change)

	if len(out.History) > 0 {
		last := &out.History[len(out.History)-1]
		extend(last, newPrice)
		last.Volume += g.rng.Int64N(g.cfg.TickVolumeSpread)
	}
	return out
}

// Reprice sets inst's price to newPrice, clamped at floor, and folds it into
// the last bar without touching volume or the running change.
func Reprice(inst market.Instrument, newPrice, floor float64) market.Instrument {
	out := inst.Clone()
	out.Price = math.Max(floor, newPrice)
	out.History = FoldPrice(out.History, out.Price)
	return out
}

// FoldPrice returns a copy of history whose last bar closes at price with its
// high/low extended to cover it. Empty history is returned unchanged.
func FoldPrice(history []market.HistoryBar, price float64) []market.HistoryBar {
	if len(history) == 0 {
		return history
	}
	out := make([]market.HistoryBar, len(history))
	copy(out, history)
	extend(&out[len(out)-1], price)
	return out
}

func extend(bar *market.HistoryBar, price float64) {
	bar.Close = price
	bar.High = math.Max(bar.High, price)
	bar.Low = math.Min(bar.Low, price)
}

// changePercent measures change against prevPrice less the running change.
func changePercent(prevPrice, change float64) float64 {
	base := prevPrice - change
	if base == 0 {
		return 0
	}
	return change / base * 100
}

func barLabel(r market.TimeRange, i, n int) string {
	if r == market.Range1D {
		return fmt.Sprintf("%d:%02d", i/2+9, (i%2)*30)
	}
	return fmt.Sprintf("T-%d", n-i)
}
