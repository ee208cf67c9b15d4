// Package metrics exposes Prometheus instrumentation for the session and the
// HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/autoexit"
)

// Metrics owns a private registry and the papertrade collectors.
type Metrics struct {
	registry    *prometheus.Registry
	constLabels prometheus.Labels

	TicksTotal          *prometheus.CounterVec
	TickDuration        *prometheus.HistogramVec
	OrdersTotal         *prometheus.CounterVec   // side, outcome
	AutoExitsTotal      *prometheus.CounterVec   // reason
	AccountBalance      *prometheus.GaugeVec
	HTTPRequestsTotal   *prometheus.CounterVec   // method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // method, route
}

// NewMetrics creates the registry, including Go runtime collectors.
func NewMetrics(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	constLabels := prometheus.Labels{"service": service}
	m := &Metrics{registry: reg, constLabels: constLabels}

	m.TicksTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "papertrade_ticks_total",
		Help:        "Total number of price ticks",
		ConstLabels: constLabels,
	}, nil)

	m.TickDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "papertrade_tick_duration_seconds",
		Help:        "Time spent advancing prices and scanning thresholds",
		ConstLabels: constLabels,
		Buckets:     []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
	}, nil)

	m.OrdersTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "papertrade_orders_total",
		Help:        "Orders submitted by side and outcome",
		ConstLabels: constLabels,
	}, []string{"side", "outcome"})

	m.AutoExitsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "papertrade_auto_exits_total",
		Help:        "Positions closed by stop-loss or take-profit",
		ConstLabels: constLabels,
	}, []string{"reason"})

	m.AccountBalance = m.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "papertrade_account_balance",
		Help:        "Cash balance of the simulated account",
		ConstLabels: constLabels,
	}, nil)

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name:        "http_server_requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: constLabels,
	}, []string{"method", "route", "status"})

	m.HTTPRequestDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Help:        "HTTP request latency in seconds",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"method", "route"})

	return m
}

// NewCounterVec creates and registers a counter.
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec creates and registers a gauge.
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec creates and registers a histogram.
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// RegisterGaugeFunc exposes fn as papertrade_<name>, e.g. a dropped-events
// counter owned by another component.
func (m *Metrics) RegisterGaugeFunc(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "papertrade",
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, fn))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTick records one tick.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.TicksTotal.WithLabelValues().Inc()
	m.TickDuration.WithLabelValues().Observe(d.Seconds())
}

// OrderPlaced counts an order attempt.
func (m *Metrics) OrderPlaced(side account.Side, outcome string) {
	m.OrdersTotal.WithLabelValues(string(side), outcome).Inc()
}

// AutoExit counts a threshold liquidation.
func (m *Metrics) AutoExit(reason autoexit.Reason) {
	m.AutoExitsTotal.WithLabelValues(string(reason)).Inc()
}

// Balance sets the cash gauge.
func (m *Metrics) Balance(v float64) {
	m.AccountBalance.WithLabelValues().Set(v)
}

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
