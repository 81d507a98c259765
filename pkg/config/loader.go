package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sentinel")
	}

	// Environment variable settings
	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "logistics-sentinel")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sentinel")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migration_timeout", "60s")
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.connect_delay", "1s")

	// Source defaults
	v.SetDefault("source.type", "postgres")
	v.SetDefault("source.seed", 42)
	v.SetDefault("source.shipments", 60)
	v.SetDefault("source.accounts", 12)
	v.SetDefault("source.inject_attacks", true)

	// Predictor defaults
	v.SetDefault("predictor.threshold_minutes", 30.0)
	v.SetDefault("predictor.history_limit", 50)
	v.SetDefault("predictor.min_samples", 3)
	v.SetDefault("predictor.max_window", 10)
	v.SetDefault("predictor.moving_average_weight", 0.7)
	v.SetDefault("predictor.regression_weight", 0.3)

	// Anomaly defaults
	v.SetDefault("anomaly.brute_force_failure_threshold", 5)
	v.SetDefault("anomaly.sensitive_burst_mb", 100.0)
	v.SetDefault("anomaly.export_spike_mb", 200.0)
	v.SetDefault("anomaly.sensitive_resources", []string{
		"customer_records", "shipment_manifests", "financial_reports", "driver_personnel_files",
	})
	v.SetDefault("anomaly.restricted_resources_by_role", map[string][]string{
		"operator": {"financial_reports"},
	})
	v.SetDefault("anomaly.brute_force_window", "10m")
	v.SetDefault("anomaly.access_window", "5m")
	v.SetDefault("anomaly.lookback", "15m")

	// Scheduler defaults
	v.SetDefault("scheduler.prediction_interval", "30s")
	v.SetDefault("scheduler.anomaly_interval", "5s")
	v.SetDefault("scheduler.timeout", "4s")
	v.SetDefault("scheduler.retry_attempts", 3)
	v.SetDefault("scheduler.circuit_breaker.max_failures", 5)
	v.SetDefault("scheduler.circuit_breaker.timeout", "30s")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.login_rate_limit", 10)
	v.SetDefault("api.cycle_rate_limit", 30)
	v.SetDefault("api.rate_limit_ttl", "10m")
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.jwt_duration", "24h")
	v.SetDefault("api.admin_username", "admin")
	v.SetDefault("api.jwt_issuer", "logistics-sentinel")
	v.SetDefault("api.cookie_name", "sentinel_token")
	v.SetDefault("api.cookie_path", "/")
	v.SetDefault("api.cookie_http_only", true)
	v.SetDefault("api.default_limit", 50)
	v.SetDefault("api.max_limit", 500)

	// WebSocket defaults
	v.SetDefault("websocket.max_connections", 1000)
	v.SetDefault("websocket.ping_interval", "30s")

	// Prometheus defaults
	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.port", 9090)

	// Events defaults
	v.SetDefault("events.buffer_size", 256)
	v.SetDefault("events.persist", true)
}
