package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/autoexit"
)

func TestRecorderMethods(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveTick(time.Millisecond)
	m.ObserveTick(time.Millisecond)
	m.OrderPlaced(account.SideBuy, "filled")
	m.OrderPlaced(account.SideSell, "insufficient_shares")
	m.AutoExit(autoexit.ReasonStopLoss)
	m.Balance(99000)

	if got := testutil.ToFloat64(m.TicksTotal); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OrdersTotal.WithLabelValues("BUY", "filled")); got != 1 {
		t.Errorf("filled buys = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AutoExitsTotal.WithLabelValues("stop_loss")); got != 1 {
		t.Errorf("stop-loss exits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AccountBalance); got != 99000 {
		t.Errorf("balance = %v, want 99000", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := NewMetrics("test")
	m.RegisterGaugeFunc("session_dropped_events", "dropped", func() float64 { return 3 })

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/instruments/{symbol}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instruments/XYZ", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/instruments/{symbol}", "404")); got != 1 {
		t.Errorf("request count = %v, want 1", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{`papertrade_session_dropped_events{service="test"} 3`, "http_server_requests_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
