// Package chart computes the visible window and price scale of a bar chart.
package chart

import (
	"math"

	"github.com/zappabad/papertrade/internal/market"
)

const (
	// DefaultWindow is the number of bars shown for fresh data.
	DefaultWindow = 40
	// MinWindow is the narrowest the viewport will zoom.
	MinWindow = 5

	zoomStep   = 0.1
	padFactor  = 0.15
	emptyFloor = 0
	emptyCeil  = 100
)

// Viewport is the half-open bar range [Start, End).
type Viewport struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewViewport shows the last DefaultWindow of n bars, or all of them.
func NewViewport(n int) Viewport {
	if n < 0 {
		n = 0
	}
	return Viewport{Start: max(0, n-DefaultWindow), End: n}
}

// Count is the number of visible bars.
func (v Viewport) Count() int {
	return v.End - v.Start
}

func (v Viewport) step() int {
	return int(math.Ceil(float64(v.Count()) * zoomStep))
}

// ZoomIn narrows the window from both sides, never below MinWindow bars.
func (v Viewport) ZoomIn() Viewport {
	if v.Count() <= MinWindow {
		return v
	}
	z := v.step()
	start := min(v.End-MinWindow, v.Start+z)
	end := max(start+MinWindow, v.End-z)
	return Viewport{Start: start, End: end}
}

// ZoomOut widens the window on both sides within n bars.
func (v Viewport) ZoomOut(n int) Viewport {
	z := v.step()
	return Viewport{Start: max(0, v.Start-z), End: min(n, v.End+z)}
}

// Pan shifts the window by points bars, keeping its width inside [0, n).
func (v Viewport) Pan(points, n int) Viewport {
	count := v.Count()
	start := max(0, min(n-count, v.Start+points))
	return Viewport{Start: start, End: start + count}
}

// Clamp fits v inside n bars. An empty or inverted viewport is reset.
func (v Viewport) Clamp(n int) Viewport {
	start := max(0, min(v.Start, n))
	end := max(0, min(v.End, n))
	if end <= start {
		return NewViewport(n)
	}
	return Viewport{Start: start, End: end}
}

// Slice returns the visible bars. The result aliases bars.
func (v Viewport) Slice(bars []market.HistoryBar) []market.HistoryBar {
	c := v.Clamp(len(bars))
	return bars[c.Start:c.End]
}

// PriceBounds returns the lowest low and highest high of bars, padded by 15%
// of their spread. The lower bound never drops below zero.
func PriceBounds(bars []market.HistoryBar) (float64, float64) {
	if len(bars) == 0 {
		return emptyFloor, emptyCeil
	}
	lo, hi := bars[0].Low, bars[0].High
	for _, b := range bars[1:] {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	pad := (hi - lo) * padFactor
	return math.Max(0, lo-pad), hi + pad
}
