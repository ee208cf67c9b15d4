package chart

import (
	"math"
	"testing"

	"github.com/zappabad/papertrade/internal/market"
)

func TestNewViewport(t *testing.T) {
	if v := NewViewport(100); v != (Viewport{Start: 60, End: 100}) {
		t.Errorf("NewViewport(100) = %+v", v)
	}
	if v := NewViewport(12); v != (Viewport{Start: 0, End: 12}) {
		t.Errorf("NewViewport(12) = %+v", v)
	}
	if v := NewViewport(0); v.Count() != 0 {
		t.Errorf("NewViewport(0) = %+v", v)
	}
}

func TestZoomIn(t *testing.T) {
	v := Viewport{Start: 60, End: 100}.ZoomIn()
	// step = ceil(40*0.1) = 4
	if v != (Viewport{Start: 64, End: 96}) {
		t.Fatalf("ZoomIn = %+v", v)
	}

	for i := 0; i < 50; i++ {
		v = v.ZoomIn()
		if v.Count() < MinWindow {
			t.Fatalf("zoomed below minimum: %+v", v)
		}
	}
	if v.Count() != MinWindow {
		t.Errorf("expected to settle at %d bars, got %+v", MinWindow, v)
	}

	small := Viewport{Start: 3, End: 8}
	if got := small.ZoomIn(); got != small {
		t.Errorf("ZoomIn at minimum changed viewport: %+v", got)
	}
}

func TestZoomInSmallWindow(t *testing.T) {
	// count 6, step 1: start=min(4, 1)=1, end=max(6, 5)=6
	v := Viewport{Start: 0, End: 6}.ZoomIn()
	if v != (Viewport{Start: 1, End: 6}) {
		t.Errorf("ZoomIn = %+v", v)
	}
}

func TestZoomOut(t *testing.T) {
	v := Viewport{Start: 60, End: 100}.ZoomOut(100)
	if v != (Viewport{Start: 56, End: 100}) {
		t.Fatalf("ZoomOut = %+v", v)
	}
	for i := 0; i < 50; i++ {
		v = v.ZoomOut(100)
	}
	if v != (Viewport{Start: 0, End: 100}) {
		t.Errorf("expected full range, got %+v", v)
	}
}

func TestPan(t *testing.T) {
	v := Viewport{Start: 60, End: 100}
	if got := v.Pan(-10, 100); got != (Viewport{Start: 50, End: 90}) {
		t.Errorf("Pan(-10) = %+v", got)
	}
	if got := v.Pan(10, 100); got != v {
		t.Errorf("Pan past end = %+v", got)
	}
	if got := v.Pan(-500, 100); got != (Viewport{Start: 0, End: 40}) {
		t.Errorf("Pan past start = %+v", got)
	}
}

func TestClampAndSlice(t *testing.T) {
	bars := make([]market.HistoryBar, 60)
	if got := (Viewport{Start: 60, End: 100}).Clamp(60); got != NewViewport(60) {
		t.Errorf("Clamp of out-of-range viewport = %+v", got)
	}
	if got := (Viewport{Start: 50, End: 100}).Clamp(60); got != (Viewport{Start: 50, End: 60}) {
		t.Errorf("Clamp = %+v", got)
	}
	if got := len((Viewport{Start: 10, End: 20}).Slice(bars)); got != 10 {
		t.Errorf("Slice len = %d, want 10", got)
	}
}

func TestPriceBounds(t *testing.T) {
	lo, hi := PriceBounds(nil)
	if lo != 0 || hi != 100 {
		t.Errorf("empty bounds = (%v, %v), want (0, 100)", lo, hi)
	}

	bars := []market.HistoryBar{
		{Low: 100, High: 110},
		{Low: 95, High: 105},
	}
	lo, hi = PriceBounds(bars)
	// spread 15, pad 2.25
	if math.Abs(lo-92.75) > 1e-9 || math.Abs(hi-112.25) > 1e-9 {
		t.Errorf("bounds = (%v, %v), want (92.75, 112.25)", lo, hi)
	}

	lo, _ = PriceBounds([]market.HistoryBar{{Low: 1, High: 100}})
	if lo != 0 {
		t.Errorf("lower bound = %v, want floor 0", lo)
	}
}
