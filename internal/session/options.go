package session

import (
	"math/rand/v2"
	"time"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/autoexit"
)

// Recorder receives measurements from the session.
type Recorder interface {
	ObserveTick(d time.Duration)
	OrderPlaced(side account.Side, outcome string)
	AutoExit(reason autoexit.Reason)
	Balance(v float64)
}

// Journal persists ledger entries outside the session. Implementations must
// not block.
type Journal interface {
	Append(tx account.Transaction)
	Truncate()
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for price generation.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithJournal attaches a ledger journal.
func WithJournal(j Journal) Option {
	return func(s *Session) {
		s.journal = j
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveTick(time.Duration) {}
func (nopRecorder) OrderPlaced(account.Side, string) {}
func (nopRecorder) AutoExit(autoexit.Reason) {}
func (nopRecorder) Balance(float64) {}

type nopJournal struct{}

func (nopJournal) Append(account.Transaction) {}
func (nopJournal) Truncate() {}
