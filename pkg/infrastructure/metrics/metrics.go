package metrics

import "time"

// Sink receives pipeline measurements.
type Sink interface {
	ObserveStage(stage string, d time.Duration, err error)
	RecordLPSolve(status string)
	SetForecastSeries(n int)
	RecordQuery(function string, err error)
}

// NopSink discards all measurements.
type NopSink struct{}

func (NopSink) ObserveStage(string, time.Duration, error) {}
func (NopSink) RecordLPSolve(string)                      {}
func (NopSink) SetForecastSeries(int)                     {}
func (NopSink) RecordQuery(string, error)                 {}

// OrNop returns s, or a NopSink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return NopSink{}
	}
	return s
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
