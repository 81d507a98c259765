package config

import (
	"strings"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/anomaly"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/predictor"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

func (p PredictorConfig) ToPredictorConfig() predictor.Config {
	return predictor.Config{
		MinSamples:          p.MinSamples,
		MaxWindow:           p.MaxWindow,
		MovingAverageWeight: p.MovingAverageWeight,
		RegressionWeight:    p.RegressionWeight,
	}
}

// Threshold returns the configured alert threshold, or nil so the
// predictor applies its own default.
func (p PredictorConfig) Threshold() *float64 {
	if p.ThresholdMinutes == 0 {
		return nil
	}
	return predictor.Threshold(p.ThresholdMinutes)
}

func (a AnomalyConfig) ToRuleConfig() anomaly.RuleConfig {
	var restricted map[models.Role][]string
	if len(a.RestrictedResourcesByRole) > 0 {
		restricted = make(map[models.Role][]string, len(a.RestrictedResourcesByRole))
		for role, resources := range a.RestrictedResourcesByRole {
			restricted[models.Role(strings.ToLower(role))] = append([]string(nil), resources...)
		}
	}

	return anomaly.RuleConfig{
		BruteForceFailureThreshold: a.BruteForceFailureThreshold,
		SensitiveBurstMB:           a.SensitiveBurstMB,
		ExportSpikeMB:              a.ExportSpikeMB,
		SensitiveResources:         append([]string(nil), a.SensitiveResources...),
		RestrictedResourcesByRole:  restricted,
		BruteForceWindow:           a.BruteForceWindow,
		AccessWindow:               a.AccessWindow,
	}
}
