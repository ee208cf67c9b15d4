package market

import (
	"errors"
	"strings"
)

var ErrUnknownRange = errors.New("unknown time range")

// TimeRange selects how much synthetic history an instrument carries.
type TimeRange string

const (
	Range1D  TimeRange = "1D"
	Range1W  TimeRange = "1W"
	Range1M  TimeRange = "1M"
	Range3M  TimeRange = "3M"
	RangeYTD TimeRange = "YTD"
	RangeAll TimeRange = "ALL"
)

// DefaultRange is the range selected when a session starts.
const DefaultRange = Range1M

// TimeRanges returns every supported range in display order.
func TimeRanges() []TimeRange {
	return []TimeRange{Range1D, Range1W, Range1M, Range3M, RangeYTD, RangeAll}
}

// ParseTimeRange parses a range label, ignoring case.
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range TimeRanges() {
		if r == known {
			return r, nil
		}
	}
	return "", ErrUnknownRange
}

// Points returns the number of history bars generated for the range.
func (r TimeRange) Points() int {
	switch r {
	case Range1D:
		return 60
	case Range1W:
		return 80
	default:
		return 100
	}
}

// HistoryBar is one OHLCV bar. Low never exceeds min(Open, Close) and
// High is never below max(Open, Close).
type HistoryBar struct {
	Label  string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Instrument is a tradeable mock stock.
type Instrument struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name"`
	Price         float64      `json:"price"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"change_percent"`
	Volume        string       `json:"volume"`
	MarketCap     string       `json:"market_cap"`
	History       []HistoryBar `json:"history"`
}

// Clone returns a copy that shares no history storage with i.
func (i Instrument) Clone() Instrument {
	out := i
	if i.History != nil {
		out.History = make([]HistoryBar, len(i.History))
		copy(out.History, i.History)
	}
	return out
}

// LastBar returns the most recent history bar.
func (i Instrument) LastBar() (HistoryBar, bool) {
	if len(i.History) == 0 {
		return HistoryBar{}, false
	}
	return i.History[len(i.History)-1], true
}
