package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

type PredictionRow struct {
	ID int64 `json:"id"`
	models.PredictionResult
	CreatedAt time.Time `json:"created_at"`
}

func (r *PredictionRepository) Insert(ctx context.Context, p *models.PredictionResult) error {
	query := `
		INSERT INTO predictions (
			shipment_id, predicted_delay_minutes, confidence, method,
			moving_average_component, linear_regression_component, r_squared,
			current_deviation_minutes, alert_triggered, threshold_minutes,
			sample_count, as_of
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		p.ShipmentID, p.PredictedDelayMinutes, p.Confidence, p.Method,
		p.MovingAverageComponent, p.LinearRegressionComponent, p.RSquared,
		p.CurrentDeviationMinutes, p.AlertTriggered, p.ThresholdMinutes,
		p.SampleCount, p.AsOf,
	)
	return err
}

func (r *PredictionRepository) GetRecent(ctx context.Context, shipmentID string, limit int) ([]PredictionRow, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, shipment_id, predicted_delay_minutes, confidence, method,
			   moving_average_component, linear_regression_component, r_squared,
			   current_deviation_minutes, alert_triggered, threshold_minutes,
			   sample_count, as_of, created_at
		FROM predictions
		WHERE ($1::text = '' OR shipment_id = $1)
		ORDER BY as_of DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, shipmentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PredictionRow
	for rows.Next() {
		var row PredictionRow
		var deviation sql.NullFloat64
		err := rows.Scan(
			&row.ID, &row.ShipmentID, &row.PredictedDelayMinutes, &row.Confidence, &row.Method,
			&row.MovingAverageComponent, &row.LinearRegressionComponent, &row.RSquared,
			&deviation, &row.AlertTriggered, &row.ThresholdMinutes,
			&row.SampleCount, &row.AsOf, &row.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if deviation.Valid {
			row.CurrentDeviationMinutes = models.Float64Ptr(deviation.Float64)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
