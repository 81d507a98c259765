package queries

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

var at = time.Date(2026, time.March, 2, 14, 30, 45, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestAnomalyRepository_InsertUsesMinuteBucket(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnomalyRepository(db)

	rec := models.AnomalyRecord{
		AccountID:   models.StringPtr("acct-001"),
		Kind:        models.AnomalyExportSpike,
		Severity:    models.SeverityHigh,
		Description: "export",
		DetectedAt:  at,
	}

	mock.ExpectExec(`INSERT INTO anomalies .* ON CONFLICT \(kind, account_key, bucket\) DO NOTHING`).
		WithArgs(rec.AccountID, "acct-001", rec.Kind, rec.Severity, "export", at, at.Truncate(time.Minute)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO anomalies`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestAnomalyRepository_ListBuildsFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnomalyRepository(db)

	since := at.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "account_id", "kind", "severity", "description", "detected_at", "created_at"}).
		AddRow(7, "acct-002", "RBAC_VIOLATION", "medium", "rbac", at, at).
		AddRow(6, nil, "EXPORT_SPIKE", "high", "unknown actor", at, at)

	mock.ExpectQuery(`WHERE kind = \$1 AND severity = \$2 AND detected_at >= \$3\s+ORDER BY detected_at DESC, id DESC\s+LIMIT \$4`).
		WithArgs(models.AnomalyRBACViolation, models.SeverityMedium, since, 10).
		WillReturnRows(rows)

	out, err := repo.List(context.Background(), AnomalyFilter{
		Kind:     models.AnomalyRBACViolation,
		Severity: models.SeverityMedium,
		Since:    since,
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(7), out[0].ID)
	assert.Equal(t, "acct-002", out[0].Account())
	assert.Nil(t, out[1].AccountID)
}

func TestAnomalyRepository_ListDefaultsLimit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnomalyRepository(db)

	mock.ExpectQuery(`FROM anomalies\s+ORDER BY`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	out, err := repo.List(context.Background(), AnomalyFilter{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPredictionRepository_GetRecent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPredictionRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "shipment_id", "predicted_delay_minutes", "confidence", "method",
		"moving_average_component", "linear_regression_component", "r_squared",
		"current_deviation_minutes", "alert_triggered", "threshold_minutes",
		"sample_count", "as_of", "created_at",
	}).
		AddRow(2, "SHP-00001", 12.5, "medium", string(models.MethodCombined), 12.0, 13.6, 0.8, 41.0, true, 30.0, 12, at, at).
		AddRow(1, "SHP-00001", 0.0, "low", string(models.MethodInsufficientData), 0.0, 0.0, 0.0, nil, false, 30.0, 2, at, at)

	mock.ExpectQuery(`FROM predictions`).
		WithArgs("SHP-00001", 20).
		WillReturnRows(rows)

	out, err := repo.GetRecent(context.Background(), "SHP-00001", 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].CurrentDeviationMinutes)
	assert.Equal(t, 41.0, *out[0].CurrentDeviationMinutes)
	assert.True(t, out[0].AlertTriggered)
	assert.Nil(t, out[1].CurrentDeviationMinutes)
}

func TestSecurityRepository_InsertLoginsIsAtomic(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSecurityRepository(db)

	logins := []models.LoginAttempt{
		{AccountID: "acct-001", Timestamp: at},
		{AccountID: "acct-001", Timestamp: at.Add(time.Second)},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO login_attempts`)
	prep.ExpectExec().WithArgs("acct-001", false, "", at).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.InsertLogins(context.Background(), logins)
	assert.EqualError(t, err, "disk full")
}

func TestSecurityRepository_GetAccessesSince(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSecurityRepository(db)

	rows := sqlmock.NewRows([]string{"account_id", "action", "resource_name", "size_estimate_mb", "timestamp"}).
		AddRow("acct-003", "export", "customer_records", 250.0, at).
		AddRow("acct-004", "read", "financial_reports", nil, at)

	mock.ExpectQuery(`FROM access_events`).
		WithArgs(at, sqlmock.AnyArg()).
		WillReturnRows(rows)

	out, err := repo.GetAccessesSince(context.Background(), at, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 250.0, out[0].SizeMB())
	assert.Nil(t, out[1].SizeEstimateMB)
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStaticUserRepository(t *testing.T) {
	repo := NewStaticUserRepository(User{Username: "admin", PasswordHash: "x"})

	u, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	_, err = repo.GetByUsername(context.Background(), "root")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
