// Package api serves the trading session over HTTP and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/orders"
	"github.com/zappabad/papertrade/internal/activity"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/progress"
	"github.com/zappabad/papertrade/internal/session"
)

// Session is the part of session.Session the API drives.
type Session interface {
	Snapshot() session.Snapshot
	Instrument(symbol string) (market.Instrument, bool)
	PlaceOrder(ctx context.Context, req orders.Request) (orders.Result, error)
	SelectInstrument(symbol string) error
	SetTimeRange(r market.TimeRange) error
	BeginReset() (func(ctx context.Context) error, error)
	Activity(n int) []activity.Notice
	Events() <-chan session.Event
	Done() <-chan struct{}
}

// JournalReader reads persisted transactions.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]account.Transaction, error)
}

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	cfg     Config
	sess    Session
	journal JournalReader
	hub     *Hub
	logger  *slog.Logger
}

// NewHandler creates a Handler. journal may be nil.
func NewHandler(cfg Config, sess Session, journal JournalReader, logger *slog.Logger) *Handler {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		cfg:     cfg,
		sess:    sess,
		journal: journal,
		logger:  logger,
	}
	h.hub = NewHub(cfg, func() any { return sess.Snapshot() }, logger)
	return h
}

// Hub returns the WebSocket hub.
func (h *Handler) Hub() *Hub {
	return h.hub
}

// RunHub pushes session events to WebSocket clients until ctx is done or
// the session closes.
func (h *Handler) RunHub(ctx context.Context) {
	h.hub.Run(ctx, h.sess.Events(), h.sess.Done())
}

// Routes builds the router. Middlewares run in the given order before the
// built-in ones.
func (h *Handler) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	for _, m := range mw {
		r.Use(m)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ws", h.hub.ServeWS())

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/instruments", h.ListInstruments)
		r.Get("/instruments/{symbol}", h.GetInstrument)
		r.Post("/orders", h.PlaceOrder)
		r.Put("/selection", h.SelectInstrument)
		r.Put("/range", h.SetTimeRange)
		r.Post("/reset", h.Reset)
		r.Get("/badges", h.ListBadges)
		r.Get("/activity", h.ListActivity)
		r.Get("/journal", h.ListJournal)
	})
	return r
}

// GetSnapshot returns the full session state.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// ListInstruments returns every instrument.
func (h *Handler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot().Instruments)
}

// GetInstrument returns one instrument by symbol.
func (h *Handler) GetInstrument(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	inst, ok := h.sess.Instrument(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol")
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

type orderRequest struct {
	Symbol     string   `json:"symbol"`
	Shares     int64    `json:"shares"`
	Side       string   `json:"side"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
}

// PlaceOrder fills a market order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.sess.PlaceOrder(r.Context(), orders.Request{
		Symbol:     strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Side:       account.Side(strings.ToUpper(strings.TrimSpace(req.Side))),
		Shares:     req.Shares,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// SelectInstrument changes the focused symbol.
func (h *Handler) SelectInstrument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := h.sess.SelectInstrument(symbol); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selected": symbol})
}

// SetTimeRange regenerates history for a new range.
func (h *Handler) SetTimeRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Range string `json:"range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tr, err := market.ParseTimeRange(req.Range)
	if err == nil {
		err = h.sess.SetTimeRange(tr)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"range": string(tr)})
}

// Reset starts a session reset and returns before it completes. Completion
// is announced on the WebSocket as a reset event.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	finish, err := h.sess.BeginReset()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	go func() {
		if err := finish(context.Background()); err != nil {
			h.logger.Warn("reset failed", "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "resetting"})
}

// ListBadges returns the badge catalog.
func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, progress.Badges())
}

// ListActivity returns recent notices, oldest first.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	n := limitParam(r, h.cfg.ActivityLimit)
	notes := h.sess.Activity(n)
	if notes == nil {
		notes = []activity.Notice{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// ListJournal returns persisted transactions, newest first.
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}
	txs, err := h.journal.Recent(r.Context(), limitParam(r, h.cfg.JournalLimit))
	if err != nil {
		h.logger.Error("journal read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	if txs == nil {
		txs = []account.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func limitParam(r *http.Request, ceiling int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > ceiling {
		return ceiling
	}
	return n
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownSymbol):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrInsufficientFunds), errors.Is(err, orders.ErrInsufficientShares):
		return http.StatusUnprocessableEntity
	case errors.Is(err, orders.ErrInvalidParams),
		errors.Is(err, orders.ErrInvalidShares),
		errors.Is(err, orders.ErrInvalidSide),
		errors.Is(err, orders.ErrSymbolMismatch),
		errors.Is(err, market.ErrUnknownRange):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrResetInProgress):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
