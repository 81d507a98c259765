package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

func TestObservePrediction(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePrediction(&models.PredictionResult{Confidence: models.ConfidenceHigh, AlertTriggered: true, SkippedSamples: 2})
	m.ObservePrediction(&models.PredictionResult{Confidence: models.ConfidenceLow})
	m.ObservePrediction(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DelayAlertsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SkippedSamplesTotal))
}

func TestObserveAnomalies(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAnomalies([]models.AnomalyRecord{
		{Kind: models.AnomalyExportSpike, Severity: models.SeverityCritical},
		{Kind: models.AnomalyExportSpike, Severity: models.SeverityCritical},
		{Kind: models.AnomalyRBACViolation, Severity: models.SeverityHigh},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnomaliesTotal.WithLabelValues("EXPORT_SPIKE", "critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnomaliesTotal.WithLabelValues("RBAC_VIOLATION", "high")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveEngine("anomaly", 20*time.Millisecond)
	m.SetCircuitBreakerState("source", BreakerOpen)
	m.IncEventsDropped("prediction_computed")
	m.IncSourceErrors("security_snapshot")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sentinel_engine_duration_seconds_count{engine="anomaly"} 1`)
	assert.Contains(t, body, `sentinel_source_breaker_state{name="source"} 1`)
	assert.Contains(t, body, `sentinel_events_dropped_total{type="prediction_computed"} 1`)
	assert.Contains(t, body, `sentinel_source_errors_total{operation="security_snapshot"} 1`)
}
