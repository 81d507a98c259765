package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/anomaly"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "test-app",
			Mode:     "development",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "testdb",
			User:           "user",
			Password:       "pass",
			MaxConnections: 10,
		},
		Source: SourceConfig{Type: "postgres"},
		Predictor: PredictorConfig{
			ThresholdMinutes: 30,
			HistoryLimit:     50,
		},
		Anomaly: AnomalyConfig{
			BruteForceWindow: 10 * time.Minute,
			AccessWindow:     5 * time.Minute,
			Lookback:         15 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			PredictionInterval: 30 * time.Second,
			AnomalyInterval:    5 * time.Second,
			Timeout:            4 * time.Second,
		},
		API: APIConfig{
			Port: 8080,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modifyFunc  func(*Config)
		expectErr   bool
		errContains string
	}{
		{
			name:       "valid config",
			modifyFunc: func(c *Config) {},
			expectErr:  false,
		},
		{
			name: "synthetic source skips database checks",
			modifyFunc: func(c *Config) {
				c.Source.Type = "synthetic"
				c.Database = DatabaseConfig{}
			},
			expectErr: false,
		},
		{
			name: "unknown source",
			modifyFunc: func(c *Config) {
				c.Source.Type = "csv"
			},
			expectErr:   true,
			errContains: "source.type must be one of",
		},
		{
			name: "negative threshold",
			modifyFunc: func(c *Config) {
				c.Predictor.ThresholdMinutes = -5
			},
			expectErr:   true,
			errContains: "threshold_minutes must be positive",
		},
		{
			name: "unknown restricted role",
			modifyFunc: func(c *Config) {
				c.Anomaly.RestrictedResourcesByRole = map[string][]string{"intern": {"financial_reports"}}
			},
			expectErr:   true,
			errContains: "unknown role",
		},
		{
			name: "lookback shorter than brute force window",
			modifyFunc: func(c *Config) {
				c.Anomaly.Lookback = 6 * time.Minute
			},
			expectErr:   true,
			errContains: "lookback must cover",
		},
		{
			name: "scheduler timeout exceeds interval",
			modifyFunc: func(c *Config) {
				c.Scheduler.Timeout = 10 * time.Second
			},
			expectErr:   true,
			errContains: "timeout must be less than",
		},
		{
			name: "default jwt secret in production",
			modifyFunc: func(c *Config) {
				c.App.Mode = "production"
				c.API.JWTSecret = "change-me-in-production"
			},
			expectErr:   true,
			errContains: "jwt_secret must be changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modifyFunc(cfg)

			err := cfg.Validate()

			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "testdb",
		User:     "admin",
		Password: "secret",
	}

	expected := "host=localhost port=5432 user=admin password=secret dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dbCfg.DSN())
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  mode: test
anomaly:
  export_spike_mb: 250
  restricted_resources_by_role:
    operator: [financial_reports]
scheduler:
  anomaly_interval: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "logistics-sentinel", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Mode)
	assert.Equal(t, 30.0, cfg.Predictor.ThresholdMinutes)
	assert.Equal(t, 50, cfg.Predictor.HistoryLimit)
	assert.Equal(t, 250.0, cfg.Anomaly.ExportSpikeMB)
	assert.Equal(t, 5, cfg.Anomaly.BruteForceFailureThreshold)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.AnomalyInterval)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.PredictionInterval)
	assert.Equal(t, []string{"financial_reports"}, cfg.Anomaly.RestrictedResourcesByRole["operator"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SENTINEL_PREDICTOR_THRESHOLD_MINUTES", "45")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45.0, cfg.Predictor.ThresholdMinutes)
}

func TestAnomalyConfig_ToRuleConfig(t *testing.T) {
	cfg := AnomalyConfig{
		BruteForceFailureThreshold: 4,
		ExportSpikeMB:              300,
		RestrictedResourcesByRole:  map[string][]string{"Operator": {"financial_reports"}},
	}

	rules := cfg.ToRuleConfig()
	assert.Equal(t, 4, rules.BruteForceFailureThreshold)
	assert.Equal(t, 300.0, rules.ExportSpikeMB)
	assert.Equal(t, []string{"financial_reports"}, rules.RestrictedResourcesByRole[models.RoleOperator])

	_, err := anomaly.NewEngine(rules)
	assert.NoError(t, err)
}

func TestPredictorConfig_Threshold(t *testing.T) {
	assert.Nil(t, PredictorConfig{}.Threshold())
	require.NotNil(t, PredictorConfig{ThresholdMinutes: 12}.Threshold())
	assert.Equal(t, 12.0, *PredictorConfig{ThresholdMinutes: 12}.Threshold())
}
