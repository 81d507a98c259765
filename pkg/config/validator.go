package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Source validation
	validSources := map[string]bool{"postgres": true, "synthetic": true}
	if !validSources[c.Source.Type] {
		errs = append(errs, fmt.Errorf("source.type must be one of: postgres, synthetic"))
	}

	// Database validation
	if c.Source.Type == "postgres" {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	// Predictor validation
	if c.Predictor.ThresholdMinutes < 0 {
		errs = append(errs, errors.New("predictor.threshold_minutes must be positive"))
	}
	if c.Predictor.HistoryLimit <= 0 {
		errs = append(errs, errors.New("predictor.history_limit must be positive"))
	}

	// Anomaly validation
	if c.Anomaly.BruteForceFailureThreshold < 0 {
		errs = append(errs, errors.New("anomaly.brute_force_failure_threshold must be positive"))
	}
	if c.Anomaly.SensitiveBurstMB < 0 || c.Anomaly.ExportSpikeMB < 0 {
		errs = append(errs, errors.New("anomaly MB thresholds must be positive"))
	}
	for role := range c.Anomaly.RestrictedResourcesByRole {
		if !models.Role(strings.ToLower(role)).Valid() {
			errs = append(errs, fmt.Errorf("anomaly.restricted_resources_by_role has unknown role %q", role))
		}
	}
	if c.Anomaly.Lookback < c.Anomaly.BruteForceWindow || c.Anomaly.Lookback < c.Anomaly.AccessWindow {
		errs = append(errs, errors.New("anomaly.lookback must cover both rule windows"))
	}

	// Scheduler validation
	if c.Scheduler.PredictionInterval <= 0 || c.Scheduler.AnomalyInterval <= 0 {
		errs = append(errs, errors.New("scheduler intervals must be positive"))
	}
	if c.Scheduler.Timeout <= 0 {
		errs = append(errs, errors.New("scheduler.timeout must be positive"))
	}
	if c.Scheduler.Timeout >= c.Scheduler.AnomalyInterval {
		errs = append(errs, errors.New("scheduler.timeout must be less than scheduler.anomaly_interval"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
