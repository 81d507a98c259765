package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type ShipmentRepository struct {
	db *sql.DB
}

func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

const shipmentColumns = `id, route_code, origin, destination, status, expected_time, actual_time, created_at`

// GetCompleted returns the most recently delivered shipments, newest first.
func (r *ShipmentRepository) GetCompleted(ctx context.Context, limit int) ([]models.Shipment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE actual_time IS NOT NULL
		ORDER BY actual_time DESC
		LIMIT $1`

	return r.query(ctx, query, limit)
}

// GetActive returns shipments that have not arrived, soonest due first.
func (r *ShipmentRepository) GetActive(ctx context.Context) ([]models.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments
		WHERE actual_time IS NULL AND status <> $1
		ORDER BY expected_time ASC`

	return r.query(ctx, query, models.ShipmentCancelled)
}

func (r *ShipmentRepository) Upsert(ctx context.Context, s *models.Shipment) error {
	query := `
		INSERT INTO shipments (id, route_code, origin, destination, status, expected_time, actual_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			expected_time = EXCLUDED.expected_time,
			actual_time = EXCLUDED.actual_time`

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.RouteCode, s.Origin, s.Destination, s.Status,
		s.ExpectedTime, s.ActualTime, createdAt,
	)
	return err
}

func (r *ShipmentRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Shipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []models.Shipment
	for rows.Next() {
		var s models.Shipment
		var actual sql.NullTime
		err := rows.Scan(
			&s.ID, &s.RouteCode, &s.Origin, &s.Destination, &s.Status,
			&s.ExpectedTime, &actual, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if actual.Valid {
			t := actual.Time
			s.ActualTime = &t
		}
		shipments = append(shipments, s)
	}

	return shipments, rows.Err()
}
