package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/resilience"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// ResilientSource wraps a DataSource with retries inside a circuit
// breaker. Every call is bounded by Timeout.
type ResilientSource struct {
	source         DataSource
	circuitBreaker *resilience.CircuitBreaker
	retry          resilience.RetryPolicy
	timeout        time.Duration
	onError        func(operation string, err error)
}

type ResilientSourceConfig struct {
	Source        DataSource
	MaxFailures   int
	BreakerWait   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Timeout       time.Duration
	OnStateChange func(name string, from, to resilience.State)
	OnError       func(operation string, err error)
}

func NewResilientSource(cfg ResilientSourceConfig) *ResilientSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "source",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.BreakerWait,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientSource{
		source:         cfg.Source,
		circuitBreaker: cb,
		retry: resilience.RetryPolicy{
			Attempts: cfg.RetryAttempts,
			Delay:    cfg.RetryDelay,
		},
		timeout: cfg.Timeout,
		onError: cfg.OnError,
	}
}

func (s *ResilientSource) do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.circuitBreaker.Execute(func() error {
		return resilience.Retry(ctx, s.retry, func(attempt int) error {
			err := fn(ctx)
			if err != nil && attempt < s.retry.Attempts {
				logger.WithField("operation", operation).Warnf(
					"Source attempt %d failed: %v", attempt, err,
				)
			}
			return err
		})
	})

	if err != nil {
		if s.onError != nil {
			s.onError(operation, err)
		}
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (s *ResilientSource) DelayHistory(ctx context.Context, limit int) ([]models.HistoricalDelaySample, error) {
	var history []models.HistoricalDelaySample
	err := s.do(ctx, "delay_history", func(ctx context.Context) error {
		var err error
		history, err = s.source.DelayHistory(ctx, limit)
		return err
	})
	return history, err
}

func (s *ResilientSource) ActiveShipments(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := s.do(ctx, "active_shipments", func(ctx context.Context) error {
		var err error
		shipments, err = s.source.ActiveShipments(ctx)
		return err
	})
	return shipments, err
}

func (s *ResilientSource) SecuritySnapshot(ctx context.Context, since time.Time) (*models.SecuritySnapshot, error) {
	var snapshot *models.SecuritySnapshot
	err := s.do(ctx, "security_snapshot", func(ctx context.Context) error {
		var err error
		snapshot, err = s.source.SecuritySnapshot(ctx, since)
		return err
	})
	return snapshot, err
}

func (s *ResilientSource) HealthCheck(ctx context.Context) error {
	return s.source.HealthCheck(ctx)
}

func (s *ResilientSource) Close() error {
	return s.source.Close()
}

func (s *ResilientSource) CircuitState() resilience.State {
	return s.circuitBreaker.State()
}
