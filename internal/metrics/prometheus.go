package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

const namespace = "sentinel"

// Breaker states as exported by SourceBreakerState.
const (
	BreakerClosed   = 0
	BreakerOpen     = 1
	BreakerHalfOpen = 2
)

type Metrics struct {
	registry *prometheus.Registry

	PredictionsTotal    *prometheus.CounterVec
	DelayAlertsTotal    prometheus.Counter
	AnomaliesTotal      *prometheus.CounterVec
	EngineDuration      *prometheus.HistogramVec
	SkippedSamplesTotal prometheus.Counter
	SourceErrorsTotal   *prometheus.CounterVec
	SourceBreakerState  *prometheus.GaugeVec
	WebSocketClients    prometheus.Gauge
	EventsDroppedTotal  *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics set.
func Get() *Metrics {
	once.Do(func() {
		instance = New(prometheus.NewRegistry())
	})
	return instance
}

// New registers a fresh metrics set on reg. Tests pass their own registry
// so counters start from zero.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Delay predictions computed, by confidence.",
		}, []string{"confidence"}),

		DelayAlertsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delay_alerts_total",
			Help:      "Predictions whose deviation exceeded the alert threshold.",
		}),

		AnomaliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Anomalies detected, by kind and severity.",
		}, []string{"kind", "severity"}),

		EngineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_duration_seconds",
			Help:      "Duration of one engine cycle including data retrieval.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"engine"}),

		SkippedSamplesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_samples_total",
			Help:      "Malformed historical samples dropped by the predictor.",
		}),

		SourceErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Data source calls that failed after retries.",
		}, []string{"operation"}),

		SourceBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open).",
		}, []string{"name"}),

		WebSocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),

		EventsDroppedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events not delivered because a subscriber buffer was full.",
		}, []string{"type"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObservePrediction(result *models.PredictionResult) {
	if result == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(string(result.Confidence)).Inc()
	if result.AlertTriggered {
		m.DelayAlertsTotal.Inc()
	}
	if result.SkippedSamples > 0 {
		m.SkippedSamplesTotal.Add(float64(result.SkippedSamples))
	}
}

func (m *Metrics) ObserveAnomalies(records []models.AnomalyRecord) {
	for _, r := range records {
		m.AnomaliesTotal.WithLabelValues(string(r.Kind), string(r.Severity)).Inc()
	}
}

func (m *Metrics) ObserveEngine(engine string, d time.Duration) {
	m.EngineDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (m *Metrics) IncSourceErrors(operation string) {
	m.SourceErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncEventsDropped(eventType string) {
	m.EventsDroppedTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.SourceBreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}
