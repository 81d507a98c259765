package config

import "time"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Source     SourceConfig     `mapstructure:"source"`
	Predictor  PredictorConfig  `mapstructure:"predictor"`
	Anomaly    AnomalyConfig    `mapstructure:"anomaly"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	API        APIConfig        `mapstructure:"api"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Events     EventsConfig     `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxConnections   int           `mapstructure:"max_connections"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
	ConnectAttempts  int           `mapstructure:"connect_attempts"`
	ConnectDelay     time.Duration `mapstructure:"connect_delay"`
}

// SourceConfig selects where the scheduler reads shipments and security
// events from: "postgres" or "synthetic".
type SourceConfig struct {
	Type          string `mapstructure:"type"`
	Seed          int64  `mapstructure:"seed"`
	Shipments     int    `mapstructure:"shipments"`
	Accounts      int    `mapstructure:"accounts"`
	InjectAttacks bool   `mapstructure:"inject_attacks"`
}

type PredictorConfig struct {
	ThresholdMinutes    float64 `mapstructure:"threshold_minutes"`
	HistoryLimit        int     `mapstructure:"history_limit"`
	MinSamples          int     `mapstructure:"min_samples"`
	MaxWindow           int     `mapstructure:"max_window"`
	MovingAverageWeight float64 `mapstructure:"moving_average_weight"`
	RegressionWeight    float64 `mapstructure:"regression_weight"`
}

type AnomalyConfig struct {
	BruteForceFailureThreshold int                 `mapstructure:"brute_force_failure_threshold"`
	SensitiveBurstMB           float64             `mapstructure:"sensitive_burst_mb"`
	ExportSpikeMB              float64             `mapstructure:"export_spike_mb"`
	SensitiveResources         []string            `mapstructure:"sensitive_resources"`
	RestrictedResourcesByRole  map[string][]string `mapstructure:"restricted_resources_by_role"`
	BruteForceWindow           time.Duration       `mapstructure:"brute_force_window"`
	AccessWindow               time.Duration       `mapstructure:"access_window"`
	Lookback                   time.Duration       `mapstructure:"lookback"`
}

type SchedulerConfig struct {
	PredictionInterval time.Duration        `mapstructure:"prediction_interval"`
	AnomalyInterval    time.Duration        `mapstructure:"anomaly_interval"`
	Timeout            time.Duration        `mapstructure:"timeout"`
	RetryAttempts      int                  `mapstructure:"retry_attempts"`
	CircuitBreaker     CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type APIConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	LoginRateLimit int           `mapstructure:"login_rate_limit"`
	CycleRateLimit int           `mapstructure:"cycle_rate_limit"`
	RateLimitTTL   time.Duration `mapstructure:"rate_limit_ttl"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AdminUsername  string        `mapstructure:"admin_username"`
	AdminPassword  string        `mapstructure:"admin_password"`
	JWTDuration    time.Duration `mapstructure:"jwt_duration"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	CookieName     string        `mapstructure:"cookie_name"`
	CookieMaxAge   int           `mapstructure:"cookie_max_age"`
	CookiePath     string        `mapstructure:"cookie_path"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	CookieHTTPOnly bool          `mapstructure:"cookie_http_only"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	MaxLimit       int           `mapstructure:"max_limit"`
	CORS           CORSConfig    `mapstructure:"cors"`
}

type WebSocketConfig struct {
	MaxConnections  int           `mapstructure:"max_connections"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	BroadcastBuffer int           `mapstructure:"broadcast_buffer"`
	ClientBuffer    int           `mapstructure:"client_buffer"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type EventsConfig struct {
	BufferSize int  `mapstructure:"buffer_size"`
	Persist    bool `mapstructure:"persist"`
}
