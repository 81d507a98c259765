// Package source retrieves the bounded data snapshots the engines run
// against: completed-shipment history, in-flight shipments and recent
// security traffic.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

var (
	ErrSourceUnavailable = errors.New("data source unavailable")
	ErrSourceClosed      = errors.New("data source closed")
)

const DefaultHistoryLimit = 50

// DataSource defines the interface for snapshot retrieval
type DataSource interface {
	// DelayHistory returns up to limit completed shipments, most recent first
	DelayHistory(ctx context.Context, limit int) ([]models.HistoricalDelaySample, error)

	// ActiveShipments returns shipments that have not arrived yet
	ActiveShipments(ctx context.Context) ([]models.Shipment, error)

	// SecuritySnapshot returns all accounts plus logins and accesses at or after since
	SecuritySnapshot(ctx context.Context, since time.Time) (*models.SecuritySnapshot, error)

	// HealthCheck verifies the source can reach its backing store
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the source
	Close() error
}

// historyFrom converts newest-first shipments into delay samples,
// dropping any that have not arrived.
func historyFrom(shipments []models.Shipment, limit int) []models.HistoricalDelaySample {
	history := make([]models.HistoricalDelaySample, 0, len(shipments))
	for i := range shipments {
		if sample, ok := shipments[i].DelaySample(); ok {
			history = append(history, sample)
			if len(history) == limit {
				break
			}
		}
	}
	return history
}
