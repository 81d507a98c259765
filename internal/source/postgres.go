package source

import (
	"context"
	"fmt"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type PostgresSource struct {
	db        *database.DB
	shipments *queries.ShipmentRepository
	security  *queries.SecurityRepository
}

func NewPostgresSource(db *database.DB) *PostgresSource {
	return &PostgresSource{
		db:        db,
		shipments: queries.NewShipmentRepository(db.DB),
		security:  queries.NewSecurityRepository(db.DB),
	}
}

func (s *PostgresSource) DelayHistory(ctx context.Context, limit int) ([]models.HistoricalDelaySample, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	shipments, err := s.shipments.GetCompleted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed shipments: %w", err)
	}
	return historyFrom(shipments, limit), nil
}

func (s *PostgresSource) ActiveShipments(ctx context.Context) ([]models.Shipment, error) {
	shipments, err := s.shipments.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active shipments: %w", err)
	}
	return shipments, nil
}

func (s *PostgresSource) SecuritySnapshot(ctx context.Context, since time.Time) (*models.SecuritySnapshot, error) {
	accounts, err := s.security.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	logins, err := s.security.GetLoginsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load login attempts: %w", err)
	}

	accesses, err := s.security.GetAccessesSince(ctx, since, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load access events: %w", err)
	}

	return &models.SecuritySnapshot{
		Accounts: accounts,
		Logins:   logins,
		Accesses: accesses,
	}, nil
}

func (s *PostgresSource) HealthCheck(ctx context.Context) error {
	if err := s.db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return nil
}

// Close is a no-op: the connection pool belongs to the caller.
func (s *PostgresSource) Close() error {
	return nil
}
