package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type TxFunc func(tx *sql.Tx) error

// RequiredTables must exist once migrations have run.
var RequiredTables = []string{
	"users", "shipments", "accounts", "login_attempts",
	"access_events", "anomalies", "predictions",
}

// WithTransaction commits when fn succeeds and rolls back otherwise.
func WithTransaction(ctx context.Context, db *sql.DB, fn TxFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, db.DB, fn)
}

func (db *DB) TableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
	err := db.QueryRowContext(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return exists, nil
}

// VerifySchema reports every required table that is missing.
func (db *DB) VerifySchema(ctx context.Context) error {
	var missing []string
	for _, table := range RequiredTables {
		ok, err := db.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (db *DB) ServerVersion(ctx context.Context) (string, error) {
	var version string
	err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}
