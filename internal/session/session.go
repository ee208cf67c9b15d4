// Package session owns the instruments and the account of one simulated
// trading session and serializes every change to them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/autoexit"
	"github.com/zappabad/papertrade/internal/account/orders"
	"github.com/zappabad/papertrade/internal/activity"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/market/pricegen"
	"github.com/zappabad/papertrade/internal/progress"
)

var (
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrClosed          = errors.New("session closed")
	ErrResetInProgress = errors.New("reset in progress")
)

// Snapshot is a deep copy of the session state.
type Snapshot struct {
	Time          time.Time           `json:"time"`
	Instruments   []market.Instrument `json:"instruments"`
	Selected      string              `json:"selected"`
	Range         market.TimeRange    `json:"range"`
	Account       account.Account     `json:"account"`
	Valuation     account.Valuation   `json:"valuation"`
	LevelXP       int64               `json:"level_xp"`
	LevelProgress float64             `json:"level_progress"`
	Resetting     bool                `json:"resetting"`
	DroppedEvents int64               `json:"dropped_events"`
}

// Instrument returns the snapshot's copy of symbol.
func (s Snapshot) Instrument(symbol string) (market.Instrument, bool) {
	for _, inst := range s.Instruments {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return market.Instrument{}, false
}

// Session is a single-user trading session.
type Session struct {
	cfg      Config
	logger   *slog.Logger
	rng      *rand.Rand
	now      func() time.Time
	recorder Recorder
	journal  Journal

	gen     *pricegen.Generator
	engine  *orders.Engine
	monitor *autoexit.Monitor
	feed    *activity.Feed

	mu          sync.Mutex
	instruments []market.Instrument
	index       map[string]int
	acct        account.Account
	selected    string
	timeRange   market.TimeRange
	resetting   bool

	events        chan Event
	droppedEvents atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	startOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a Session with freshly generated history. The tick loop does
// not run until Start is called.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Session {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		recorder: nopRecorder{},
		journal:  nopJournal{},
		engine:   orders.NewEngine(cfg.Orders),
		monitor:  autoexit.NewMonitor(cfg.AutoExit),
		feed:     activity.NewFeed(cfg.ActivitySize),
		events:   make(chan Event, cfg.EventBuffer),
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil && cfg.Seed != 0 {
		s.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1|1))
	}
	s.gen = pricegen.New(cfg.Prices, s.rng)

	s.timeRange = cfg.DefaultRange
	s.restore()
	return s
}

// restore puts instruments, account and selection back to their initial
// values. Callers hold s.mu or own s exclusively.
func (s *Session) restore() {
	s.instruments = make([]market.Instrument, len(s.cfg.Instruments))
	s.index = make(map[string]int, len(s.cfg.Instruments))
	for i, c := range s.cfg.Instruments {
		inst := c.Clone()
		inst.History = s.gen.GenerateHistory(c.Price, s.timeRange)
		s.instruments[i] = inst
		s.index[inst.Symbol] = i
	}
	s.acct = account.New(s.cfg.StartingBalance)
	s.selected = s.instruments[0].Symbol
}

// Start launches the tick loop. It runs until ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run(ctx)
	})
}

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// Tick advances every instrument once and liquidates positions whose
// thresholds the new prices cross.
func (s *Session) Tick(now time.Time) {
	start := time.Now()

	s.mu.Lock()
	prices := make(map[string]float64, len(s.instruments))
	for i, inst := range s.instruments {
		s.instruments[i] = s.gen.AdvanceTick(inst)
		prices[inst.Symbol] = s.instruments[i].Price
	}

	next, exits, err := s.monitor.Scan(s.acct, prices, now)
	if err != nil {
		s.logger.Error("auto-exit scan failed", "error", err)
	}
	s.acct = next
	balance := s.acct.Balance.InexactFloat64()
	s.mu.Unlock()

	evs := make([]Event, 0, 1+len(exits))
	evs = append(evs, TickEvent{Time: now, Prices: prices})
	for _, ex := range exits {
		s.logger.Info("position auto-closed",
			"symbol", ex.Symbol,
			"shares", ex.Shares,
			"price", ex.Price,
			"reason", ex.Reason,
		)
		s.feed.Append(activity.Notice{
			Time:     now,
			Kind:     activity.KindAutoExit,
			Symbol:   ex.Symbol,
			Message:  fmt.Sprintf("%s hit: sold %d %s @ $%.2f", reasonLabel(ex.Reason), ex.Shares, ex.Symbol, ex.Price),
			Severity: 1,
		})
		if ex.LevelUp {
			s.levelUp(now)
		}
		s.journal.Append(ex.Transaction)
		s.recorder.AutoExit(ex.Reason)
		evs = append(evs, AutoExitEvent{Time: now, Exit: ex})
	}

	s.recorder.ObserveTick(time.Since(start))
	s.recorder.Balance(balance)
	for _, ev := range evs {
		s.emit(ev)
	}
}

// PlaceOrder validates req at the current price and fills it.
func (s *Session) PlaceOrder(ctx context.Context, req orders.Request) (orders.Result, error) {
	select {
	case <-s.closed:
		return orders.Result{}, ErrClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return orders.Result{}, err
	}

	now := s.now()
	res, balance, err := s.placeOrder(req, now)
	s.recorder.OrderPlaced(req.Side, outcome(err))
	if err != nil {
		s.feed.Append(activity.Notice{
			Time:    now,
			Kind:    activity.KindRejected,
			Symbol:  req.Symbol,
			Message: fmt.Sprintf("%s %d %s rejected: %v", req.Side, req.Shares, req.Symbol, err),
		})
		return orders.Result{}, err
	}

	s.logger.Debug("order filled",
		"id", res.Transaction.ID,
		"symbol", req.Symbol,
		"side", req.Side,
		"shares", req.Shares,
		"price", res.Price,
	)
	s.feed.Append(activity.Notice{
		Time:    now,
		Kind:    activity.KindTrade,
		Symbol:  req.Symbol,
		Message: fmt.Sprintf("%s %d %s @ $%.2f (+%d XP)", req.Side, req.Shares, req.Symbol, res.Price, res.XPAwarded),
	})
	if res.LevelUp {
		s.levelUp(now)
	}
	s.journal.Append(res.Transaction)
	s.recorder.Balance(balance)
	s.emit(TradeEvent{Time: now, Result: res})
	return res, nil
}

func (s *Session) placeOrder(req orders.Request, now time.Time) (orders.Result, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resetting {
		return orders.Result{}, 0, ErrResetInProgress
	}
	i, ok := s.index[req.Symbol]
	if !ok {
		return orders.Result{}, 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, req.Symbol)
	}
	inst := s.instruments[i]

	if err := orders.ValidateParams(req, inst.Price); err != nil {
		return orders.Result{}, 0, err
	}
	acct, moved, res, err := s.engine.Execute(s.acct, inst, req, now)
	if err != nil {
		return orders.Result{}, 0, err
	}
	s.acct = acct
	s.instruments[i] = moved
	return res, s.acct.Balance.InexactFloat64(), nil
}

// SelectInstrument changes the focused symbol.
func (s *Session) SelectInstrument(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[symbol]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	s.selected = symbol
	return nil
}

// SetTimeRange regenerates every instrument's history for r around its
// current price.
func (s *Session) SetTimeRange(r market.TimeRange) error {
	r, err := market.ParseTimeRange(string(r))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeRange = r
	for i, inst := range s.instruments {
		s.instruments[i].History = s.gen.GenerateHistory(inst.Price, r)
	}
	return nil
}

// Reset waits ResetDelay, then restores the starting balance, clears
// positions, ledger and XP, regenerates history for the current range and
// selects the first instrument. Orders are rejected while a reset is pending.
func (s *Session) Reset(ctx context.Context) error {
	finish, err := s.BeginReset()
	if err != nil {
		return err
	}
	return finish(ctx)
}

// BeginReset marks a reset pending and returns the function that completes
// it. It fails with ErrResetInProgress if a reset is already pending.
func (s *Session) BeginReset() (func(ctx context.Context) error, error) {
	s.mu.Lock()
	if s.resetting {
		s.mu.Unlock()
		return nil, ErrResetInProgress
	}
	s.resetting = true
	s.mu.Unlock()

	s.emit(ResetEvent{Time: s.now(), Pending: true})
	return s.finishReset, nil
}

func (s *Session) finishReset(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.ResetDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		s.cancelReset()
		return ctx.Err()
	case <-s.closed:
		s.cancelReset()
		return ErrClosed
	}

	s.mu.Lock()
	s.restore()
	s.resetting = false
	balance := s.acct.Balance.InexactFloat64()
	s.mu.Unlock()

	now := s.now()
	s.feed.Clear()
	s.feed.Append(activity.Notice{Time: now, Kind: activity.KindReset, Message: "session reset"})
	s.journal.Truncate()
	s.recorder.Balance(balance)
	s.logger.Info("session reset")
	s.emit(ResetEvent{Time: now})
	return nil
}

func (s *Session) cancelReset() {
	s.mu.Lock()
	s.resetting = false
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	instruments := make([]market.Instrument, len(s.instruments))
	prices := make(map[string]float64, len(s.instruments))
	for i, inst := range s.instruments {
		instruments[i] = inst.Clone()
		prices[inst.Symbol] = inst.Price
	}
	within, frac := progress.Progress(s.acct.XP)

	return Snapshot{
		Time:          s.now(),
		Instruments:   instruments,
		Selected:      s.selected,
		Range:         s.timeRange,
		Account:       s.acct.Clone(),
		Valuation:     account.Value(s.acct, prices, s.cfg.StartingBalance),
		LevelXP:       within,
		LevelProgress: frac,
		Resetting:     s.resetting,
		DroppedEvents: s.droppedEvents.Load(),
	}
}

// Instrument returns a copy of symbol's current state.
func (s *Session) Instrument(symbol string) (market.Instrument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[symbol]
	if !ok {
		return market.Instrument{}, false
	}
	return s.instruments[i].Clone(), true
}

// Activity returns the last n notices, oldest first.
func (s *Session) Activity(n int) []activity.Notice {
	return s.feed.Latest(n)
}

func (s *Session) levelUp(now time.Time) {
	s.mu.Lock()
	level := s.acct.Level
	s.mu.Unlock()
	s.feed.Append(activity.Notice{
		Time:     now,
		Kind:     activity.KindLevelUp,
		Message:  fmt.Sprintf("reached level %d", level),
		Severity: 2,
	})
}

func (s *Session) emit(ev Event) {
	if s.cfg.DropEvents {
		select {
		case s.events <- ev:
		default:
			s.droppedEvents.Add(1)
		}
	} else {
		select {
		case s.events <- ev:
		case <-s.closed:
		}
	}
}

// Events returns the session events channel. It is never closed; use Done
// to detect shutdown.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// DroppedEvents returns the count of dropped events.
func (s *Session) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops the tick loop and aborts a pending reset.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "filled"
	case errors.Is(err, orders.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, orders.ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, orders.ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, ErrResetInProgress):
		return "resetting"
	default:
		return "invalid"
	}
}

func reasonLabel(r autoexit.Reason) string {
	if r == autoexit.ReasonStopLoss {
		return "stop-loss"
	}
	return "take-profit"
}
