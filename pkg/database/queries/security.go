package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type SecurityRepository struct {
	db *sql.DB
}

func NewSecurityRepository(db *sql.DB) *SecurityRepository {
	return &SecurityRepository{db: db}
}

func (r *SecurityRepository) GetAccounts(ctx context.Context) ([]models.AccountProfile, error) {
	query := `SELECT id, username, email, role FROM accounts ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.AccountProfile
	for rows.Next() {
		var a models.AccountProfile
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.Role); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

func (r *SecurityRepository) GetLoginsSince(ctx context.Context, since time.Time) ([]models.LoginAttempt, error) {
	query := `
		SELECT account_id, succeeded, ip_address, timestamp
		FROM login_attempts
		WHERE timestamp >= $1
		ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logins []models.LoginAttempt
	for rows.Next() {
		var l models.LoginAttempt
		if err := rows.Scan(&l.AccountID, &l.Succeeded, &l.IPAddress, &l.Timestamp); err != nil {
			return nil, err
		}
		logins = append(logins, l)
	}

	return logins, rows.Err()
}

// GetAccessesSince returns access events at or after since. When resources
// is non-empty only events touching those resources are returned.
func (r *SecurityRepository) GetAccessesSince(ctx context.Context, since time.Time, resources []string) ([]models.AccessEvent, error) {
	query := `
		SELECT account_id, action, resource_name, size_estimate_mb, timestamp
		FROM access_events
		WHERE timestamp >= $1
		  AND (cardinality($2::text[]) = 0 OR resource_name = ANY($2))
		ORDER BY timestamp DESC`

	if resources == nil {
		resources = []string{}
	}

	rows, err := r.db.QueryContext(ctx, query, since, pq.Array(resources))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AccessEvent
	for rows.Next() {
		var e models.AccessEvent
		var size sql.NullFloat64
		if err := rows.Scan(&e.AccountID, &e.Action, &e.ResourceName, &size, &e.Timestamp); err != nil {
			return nil, err
		}
		if size.Valid {
			e.SizeEstimateMB = models.Float64Ptr(size.Float64)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *SecurityRepository) UpsertAccount(ctx context.Context, a models.AccountProfile) error {
	query := `
		INSERT INTO accounts (id, username, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email, role = EXCLUDED.role`

	_, err := r.db.ExecContext(ctx, query, a.ID, a.Username, a.Email, a.Role)
	return err
}

// InsertLogins writes attempts in one transaction.
func (r *SecurityRepository) InsertLogins(ctx context.Context, logins []models.LoginAttempt) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO login_attempts (account_id, succeeded, ip_address, timestamp)
			VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, l := range logins {
			if _, err := stmt.ExecContext(ctx, l.AccountID, l.Succeeded, l.IPAddress, l.Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertAccesses writes access events in one transaction.
func (r *SecurityRepository) InsertAccesses(ctx context.Context, events []models.AccessEvent) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO access_events (account_id, action, resource_name, size_estimate_mb, timestamp)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range events {
			if _, err := stmt.ExecContext(ctx, e.AccountID, e.Action, e.ResourceName, e.SizeEstimateMB, e.Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SecurityRepository) inTx(ctx context.Context, fn database.TxFunc) error {
	return database.WithTransaction(ctx, r.db, fn)
}
