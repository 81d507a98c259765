package predictor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/stats"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// ErrInvalidConfiguration is returned for a non-positive threshold or
// unusable weights. No partial result accompanies it.
var ErrInvalidConfiguration = errors.New("invalid predictor configuration")

const (
	DefaultThresholdMinutes    = 30.0
	DefaultMinSamples          = 3
	DefaultMaxWindow           = 10
	DefaultMovingAverageWeight = 0.7
	DefaultRegressionWeight    = 0.3

	mediumConfidenceSamples = 10
	highConfidenceSamples   = 20
)

// Samples observed before this instant are treated as malformed.
var saneEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type Config struct {
	MinSamples          int
	MaxWindow           int
	MovingAverageWeight float64
	RegressionWeight    float64
}

type Predictor struct {
	config Config
}

// Input is everything one prediction needs. History is ordered
// newest-first. A nil ThresholdMinutes selects DefaultThresholdMinutes.
type Input struct {
	History          []models.HistoricalDelaySample
	Active           *models.ActiveShipment
	ThresholdMinutes *float64
	// AsOf is the instant the active shipment's deviation is measured at.
	// A zero AsOf leaves CurrentDeviationMinutes nil and never alerts, even
	// when Active is set.
	AsOf time.Time
}

func New(cfg Config) (*Predictor, error) {
	if cfg.MinSamples == 0 {
		cfg.MinSamples = DefaultMinSamples
	}
	if cfg.MaxWindow == 0 {
		cfg.MaxWindow = DefaultMaxWindow
	}
	if cfg.MovingAverageWeight == 0 && cfg.RegressionWeight == 0 {
		cfg.MovingAverageWeight = DefaultMovingAverageWeight
		cfg.RegressionWeight = DefaultRegressionWeight
	}

	if cfg.MinSamples < DefaultMinSamples {
		return nil, fmt.Errorf("%w: min samples must be at least %d", ErrInvalidConfiguration, DefaultMinSamples)
	}
	if cfg.MaxWindow < 1 {
		return nil, fmt.Errorf("%w: max window must be positive", ErrInvalidConfiguration)
	}
	if cfg.MovingAverageWeight < 0 || cfg.RegressionWeight < 0 ||
		math.Abs(cfg.MovingAverageWeight+cfg.RegressionWeight-1) > 1e-9 {
		return nil, fmt.Errorf("%w: weights must be non-negative and sum to 1", ErrInvalidConfiguration)
	}

	return &Predictor{config: cfg}, nil
}

// Default returns a predictor with the stock 0.7/0.3 weighting.
func Default() *Predictor {
	p, _ := New(Config{})
	return p
}

// Threshold is a convenience for building Input.ThresholdMinutes.
func Threshold(minutes float64) *float64 {
	return &minutes
}

// Predict forecasts the delay of the next shipment from the supplied
// history. It is a pure function of its input: the wall clock is never
// consulted, so identical inputs give identical results.
func (p *Predictor) Predict(in Input) (*models.PredictionResult, error) {
	threshold := DefaultThresholdMinutes
	if in.ThresholdMinutes != nil {
		threshold = *in.ThresholdMinutes
	}
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: threshold minutes must be positive, got %v", ErrInvalidConfiguration, threshold)
	}

	delays, skipped := usableDelays(in.History)

	result := &models.PredictionResult{
		Confidence:       models.ConfidenceLow,
		ThresholdMinutes: threshold,
		SampleCount:      len(delays),
		SkippedSamples:   skipped,
		AsOf:             in.AsOf,
	}
	if in.Active != nil {
		result.ShipmentID = in.Active.ShipmentID
	}

	if len(delays) < p.config.MinSamples {
		result.Method = models.MethodInsufficientData
		logger.WithEngine("predictor").Debugf(
			"Insufficient history: usable=%d skipped=%d", len(delays), skipped,
		)
		return result, nil
	}

	n := len(delays)
	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = float64(i + 1)
	}

	movingAverage := stats.TrailingMean(delays, p.movingAverageWindow(n))

	regression, ok := stats.LinearRegression(ranks, delays)
	if !ok {
		// Unreachable with distinct ranks and n >= 3; fall back to the average.
		regression = stats.Regression{Intercept: movingAverage}
	}
	linear := regression.At(float64(n + 1))

	predicted := p.config.MovingAverageWeight*movingAverage + p.config.RegressionWeight*linear

	result.Method = models.MethodCombined
	result.Confidence = confidenceFor(n)
	result.PredictedDelayMinutes = stats.Round2(predicted)
	result.MovingAverageComponent = stats.Round2(movingAverage)
	result.LinearRegressionComponent = stats.Round2(linear)
	result.RSquared = stats.Round(regression.RSquared, 4)

	if deviation, ok := currentDeviation(in.Active, in.AsOf, predicted); ok {
		result.CurrentDeviationMinutes = models.Float64Ptr(stats.Round2(deviation))
		result.AlertTriggered = deviation > threshold
	}

	logger.WithEngine("predictor").Debugf(
		"Predicted delay %.2fm (ma=%.2f lr=%.2f r2=%.3f n=%d confidence=%s alert=%v)",
		predicted, movingAverage, linear, regression.RSquared, n, result.Confidence, result.AlertTriggered,
	)

	return result, nil
}

// movingAverageWindow is min(MaxWindow, floor(n/3)) but never below 1.
func (p *Predictor) movingAverageWindow(n int) int {
	window := n / 3
	if window > p.config.MaxWindow {
		window = p.config.MaxWindow
	}
	if window < 1 {
		window = 1
	}
	return window
}

// usableDelays converts newest-first history into an oldest-first delay
// series, dropping malformed samples.
func usableDelays(history []models.HistoricalDelaySample) ([]float64, int) {
	delays := make([]float64, 0, len(history))
	skipped := 0

	for i := len(history) - 1; i >= 0; i-- {
		delay, ok := sampleDelay(history[i])
		if !ok {
			skipped++
			continue
		}
		delays = append(delays, delay)
	}

	return delays, skipped
}

func sampleDelay(s models.HistoricalDelaySample) (float64, bool) {
	if s.ExpectedTime.Before(saneEpoch) || s.ActualTime.Before(saneEpoch) {
		return 0, false
	}
	d := s.ActualTime.Sub(s.ExpectedTime)
	// Sub saturates instead of overflowing.
	if d == math.MaxInt64 || d == math.MinInt64 {
		return 0, false
	}
	minutes := d.Minutes()
	if !stats.IsFinite(minutes) {
		return 0, false
	}
	return minutes, true
}

func currentDeviation(active *models.ActiveShipment, asOf time.Time, predicted float64) (float64, bool) {
	if active == nil || active.ExpectedTime.Before(saneEpoch) || asOf.IsZero() {
		return 0, false
	}
	current := asOf.Sub(active.ExpectedTime).Minutes()
	if !stats.IsFinite(current) {
		return 0, false
	}
	return math.Abs(current - predicted), true
}

func confidenceFor(n int) models.Confidence {
	switch {
	case n >= highConfidenceSamples:
		return models.ConfidenceHigh
	case n >= mediumConfidenceSamples:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
