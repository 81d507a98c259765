package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/resilience"
)

type DB struct {
	*sql.DB
}

type Config struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxConnections  int
	SSLMode         string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectAttempts bounds how often the initial ping is retried while
	// the server is still starting.
	ConnectAttempts int
	ConnectDelay    time.Duration
}

// DSN renders a lib/pq keyword/value connection string, quoting values
// that would otherwise break parsing.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := []string{
		"host=" + dsnValue(c.Host),
		fmt.Sprintf("port=%d", c.Port),
		"user=" + dsnValue(c.User),
		"password=" + dsnValue(c.Password),
		"dbname=" + dsnValue(c.Name),
		"sslmode=" + dsnValue(sslMode),
	}
	return strings.Join(pairs, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (c Config) withDefaults() Config {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 10 * time.Second
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = 1
	}
	if c.ConnectDelay <= 0 {
		c.ConnectDelay = time.Second
	}
	return c
}

// Open connects and pings the database, retrying the ping with backoff.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.withDefaults()

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections / 2)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	err = resilience.Retry(ctx, resilience.RetryPolicy{
		Attempts: cfg.ConnectAttempts,
		Delay:    cfg.ConnectDelay,
	}, func(attempt int) error {
		err := ping(ctx, db, cfg.PingTimeout)
		if err != nil && attempt < cfg.ConnectAttempts {
			logger.WithFields(map[string]interface{}{
				"host":    cfg.Host,
				"attempt": attempt,
			}).Warnf("Database not reachable yet: %v", err)
		}
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// ping bounds a single attempt. A per-attempt timeout is reported without
// wrapping the deadline so the retry policy still treats it as transient.
func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := db.PingContext(pingCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("ping timed out after %s", timeout)
	}
	return err
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
