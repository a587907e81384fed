package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records pipeline measurements in Prometheus metrics.
type PromSink struct {
	stageDuration *prometheus.HistogramVec
	stageOutcome  *prometheus.CounterVec
	lpSolves      *prometheus.CounterVec
	series        prometheus.Gauge
	queries       *prometheus.CounterVec
}

var _ Sink = (*PromSink)(nil)

// NewPromSink registers pipeline metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	stageDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supplychain_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"stage"}))
	if err != nil {
		return nil, err
	}
	stageOutcome, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplychain_stage_runs_total",
		Help: "Pipeline stage executions by outcome",
	}, []string{"stage", "outcome"}))
	if err != nil {
		return nil, err
	}
	lpSolves, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplychain_transport_lp_solves_total",
		Help: "Transport LP solves by status",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}
	series, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "supplychain_forecast_series",
		Help: "Number of product and wholesaler series in the last forecast",
	}))
	if err != nil {
		return nil, err
	}
	queries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplychain_query_functions_total",
		Help: "Query function calls by outcome",
	}, []string{"function", "outcome"}))
	if err != nil {
		return nil, err
	}

	return &PromSink{
		stageDuration: stageDuration,
		stageOutcome:  stageOutcome,
		lpSolves:      lpSolves,
		series:        series,
		queries:       queries,
	}, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) ObserveStage(stage string, d time.Duration, err error) {
	s.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	s.stageOutcome.WithLabelValues(stage, outcome(err)).Inc()
}

func (s *PromSink) RecordLPSolve(status string) {
	s.lpSolves.WithLabelValues(status).Inc()
}

func (s *PromSink) SetForecastSeries(n int) {
	s.series.Set(float64(n))
}

func (s *PromSink) RecordQuery(function string, err error) {
	s.queries.WithLabelValues(function, outcome(err)).Inc()
}
