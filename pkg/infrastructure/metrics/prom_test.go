package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)

	sink.ObserveStage("forecast", 2*time.Second, nil)
	sink.ObserveStage("forecast", time.Second, errors.New("boom"))
	sink.RecordLPSolve("optimal")
	sink.RecordLPSolve("optimal")
	sink.RecordLPSolve("infeasible")
	sink.SetForecastSeries(42)
	sink.RecordQuery("revenue_risk", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.stageOutcome.WithLabelValues("forecast", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.stageOutcome.WithLabelValues("forecast", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.lpSolves.WithLabelValues("optimal")))
	assert.Equal(t, 42.0, testutil.ToFloat64(sink.series))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.queries.WithLabelValues("revenue_risk", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.stageDuration))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	require.NoError(t, err)
	second, err := NewPromSink(reg)
	require.NoError(t, err)

	first.RecordLPSolve("optimal")
	second.RecordLPSolve("optimal")
	assert.Equal(t, 2.0, testutil.ToFloat64(first.lpSolves.WithLabelValues("optimal")))
}

func TestOrNop(t *testing.T) {
	s := OrNop(nil)
	s.ObserveStage("x", time.Second, nil)
	s.RecordQuery("x", nil)
	assert.IsType(t, NopSink{}, s)
}
