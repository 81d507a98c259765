package models

import "time"

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence levels so they can be compared.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

type PredictionMethod string

const (
	MethodCombined         PredictionMethod = "moving_average_linear_regression"
	MethodInsufficientData PredictionMethod = "insufficient_data"
)

// PredictionResult is the verdict of the delay predictor for one call.
type PredictionResult struct {
	ShipmentID                string           `json:"shipment_id,omitempty"`
	PredictedDelayMinutes     float64          `json:"predicted_delay_minutes"`
	Confidence                Confidence       `json:"confidence"`
	Method                    PredictionMethod `json:"method"`
	MovingAverageComponent    float64          `json:"moving_average_component"`
	LinearRegressionComponent float64          `json:"linear_regression_component"`
	RSquared                  float64          `json:"r_squared"`
	CurrentDeviationMinutes   *float64         `json:"current_deviation_minutes"`
	AlertTriggered            bool             `json:"alert_triggered"`
	ThresholdMinutes          float64          `json:"threshold_minutes"`
	SampleCount               int              `json:"sample_count"`
	SkippedSamples            int              `json:"skipped_samples"`
	AsOf                      time.Time        `json:"as_of"`
}

func (p *PredictionResult) IsInsufficient() bool {
	return p.Method == MethodInsufficientData
}
