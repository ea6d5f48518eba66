package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Ticker outcomes.
const (
	OutcomeRecord     = "record"
	OutcomeEmpty      = "empty"
	OutcomeFetchError = "fetch_error"
)

// Recorder collects run metrics in its own registry so a short-lived run can
// push them to a Pushgateway when it finishes.
type Recorder struct {
	registry      *prometheus.Registry
	tickersTotal  *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	screenMatches *prometheus.GaugeVec
	lastRun       *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		tickersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_tickers_processed_total",
				Help: "Tickers processed by market and outcome",
			},
			[]string{"market", "outcome"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_field_fallbacks_total",
				Help: "Metric fields that fell back to the missing sentinel",
			},
			[]string{"field", "reason"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		screenMatches: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_screen_matches",
				Help: "Records that passed each screen in the last run",
			},
			[]string{"market", "screen"},
		),
		lastRun: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_last_run_timestamp_seconds",
				Help: "Unix time of the last completed market run",
			},
			[]string{"market"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordTicker(market, outcome string) {
	r.tickersTotal.WithLabelValues(market, outcome).Inc()
}

func (r *Recorder) RecordFallback(field, reason string) {
	r.fallbacks.WithLabelValues(field, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordScreenMatches(market, screen string, n int) {
	r.screenMatches.WithLabelValues(market, screen).Set(float64(n))
}

func (r *Recorder) RecordRunCompleted(market string, at time.Time) {
	r.lastRun.WithLabelValues(market).Set(float64(at.Unix()))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push sends every collected metric to the Pushgateway at url under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(r.registry).PushContext(ctx)
}
