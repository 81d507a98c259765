package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/anomaly"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/predictor"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/source"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/validation"
)

// Sentinel is the engine surface the API needs from the orchestrator.
type Sentinel interface {
	Predict(in predictor.Input) (*models.PredictionResult, error)
	Evaluate(snapshot models.SecuritySnapshot, cfg *anomaly.RuleConfig, asOf time.Time) ([]models.AnomalyRecord, error)
	RunPredictionCycle(ctx context.Context, asOf time.Time) ([]*models.PredictionResult, error)
	RunAnomalyCycle(ctx context.Context, asOf time.Time) ([]models.AnomalyRecord, error)
	RuleConfig() anomaly.RuleConfig
	HealthCheck(ctx context.Context) error
	SubscribeAllEvents() <-chan *models.Event
}

type AnomalyStore interface {
	List(ctx context.Context, f queries.AnomalyFilter) ([]queries.AnomalyRow, error)
}

type PredictionStore interface {
	GetRecent(ctx context.Context, shipmentID string, limit int) ([]queries.PredictionRow, error)
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*queries.User, error)
}

var errPersistenceDisabled = errors.New("persistence is disabled")

// statusFor maps engine and source errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, predictor.ErrInvalidConfiguration),
		errors.Is(err, anomaly.ErrInvalidConfiguration),
		errors.Is(err, validation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrSourceUnavailable),
		errors.Is(err, source.ErrSourceClosed),
		errors.Is(err, errPersistenceDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusBadRequest || status == http.StatusServiceUnavailable {
		message = err.Error()
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}

type limits struct {
	defaultLimit int
	maxLimit     int
}

func limitsFrom(cfg *config.APIConfig) limits {
	l := limits{defaultLimit: 50, maxLimit: 500}
	if cfg != nil && cfg.DefaultLimit > 0 {
		l.defaultLimit = cfg.DefaultLimit
	}
	if cfg != nil && cfg.MaxLimit > 0 {
		l.maxLimit = cfg.MaxLimit
	}
	return l
}

func (l limits) parse(c *gin.Context) int {
	limit := l.defaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > l.maxLimit {
		limit = l.maxLimit
	}
	return limit
}

// parseSince reads an RFC3339 "since" or a relative "range" such as 15m,
// 6h or 7d. The zero time means unbounded.
func parseSince(c *gin.Context, now time.Time) (time.Time, error) {
	if s := c.Query("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, validation.ErrInvalidInput
		}
		return t, nil
	}
	if r := c.Query("range"); r != "" {
		d, err := parseRange(r)
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(-d), nil
	}
	return time.Time{}, nil
}

func parseRange(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, validation.ErrInvalidInput
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, validation.ErrInvalidInput
	}
	return d, nil
}
