package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type AnomalyRepository struct {
	db *sql.DB
}

func NewAnomalyRepository(db *sql.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

type AnomalyRow struct {
	ID int64 `json:"id"`
	models.AnomalyRecord
	CreatedAt time.Time `json:"created_at"`
}

type AnomalyFilter struct {
	Kind     models.AnomalyKind
	Severity models.Severity
	Since    time.Time
	Limit    int
}

// Insert stores the record unless one with the same kind, account and
// minute bucket already exists. It reports whether a row was written.
func (r *AnomalyRepository) Insert(ctx context.Context, rec models.AnomalyRecord) (bool, error) {
	query := `
		INSERT INTO anomalies (account_id, account_key, kind, severity, description, detected_at, bucket)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, account_key, bucket) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		rec.AccountID, rec.Account(), rec.Kind, rec.Severity,
		rec.Description, rec.DetectedAt, rec.Bucket(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AnomalyRepository) List(ctx context.Context, f AnomalyFilter) ([]AnomalyRow, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	var conds []string
	var args []interface{}
	if f.Kind != "" {
		args = append(args, f.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.Severity != "" {
		args = append(args, f.Severity)
		conds = append(conds, fmt.Sprintf("severity = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		conds = append(conds, fmt.Sprintf("detected_at >= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, f.Limit)
	query := fmt.Sprintf(`
		SELECT id, account_id, kind, severity, description, detected_at, created_at
		FROM anomalies
		%s
		ORDER BY detected_at DESC, id DESC
		LIMIT $%d`, where, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnomalyRow
	for rows.Next() {
		var row AnomalyRow
		var account sql.NullString
		err := rows.Scan(
			&row.ID, &account, &row.Kind, &row.Severity,
			&row.Description, &row.DetectedAt, &row.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if account.Valid {
			row.AccountID = models.StringPtr(account.String)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
