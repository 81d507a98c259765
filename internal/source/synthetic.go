package source

import (
	"context"
	"sync"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/simulator"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

const syntheticRetention = time.Hour

// SyntheticSource serves a generated dataset and keeps appending routine
// traffic as its clock advances, so repeated cycles see a live feed.
type SyntheticSource struct {
	generator *simulator.Generator
	now       func() time.Time

	mu        sync.RWMutex
	shipments []models.Shipment
	accounts  []models.AccountProfile
	logins    []models.LoginAttempt
	accesses  []models.AccessEvent
	lastTick  time.Time
	failure   error
	closed    bool
}

type SyntheticSourceConfig struct {
	Simulator simulator.Config
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewSyntheticSource(cfg SyntheticSourceConfig) *SyntheticSource {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	g := simulator.New(cfg.Simulator)
	ds := g.Generate(now())

	return &SyntheticSource{
		generator: g,
		now:       now,
		shipments: ds.Shipments,
		accounts:  ds.Accounts,
		logins:    ds.Logins,
		accesses:  ds.Accesses,
		lastTick:  ds.AsOf,
	}
}

// SetFailure makes every call fail with err until cleared with nil.
func (s *SyntheticSource) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// InjectAttacks adds one instance of every attack pattern ending at at.
func (s *SyntheticSource) InjectAttacks(at time.Time) {
	logins, accesses := simulator.InjectAttacks(s.accounts, at)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, logins...)
	s.accesses = append(s.accesses, accesses...)
}

func (s *SyntheticSource) DelayHistory(ctx context.Context, limit int) ([]models.HistoricalDelaySample, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	newestFirst := make([]models.Shipment, 0, len(s.shipments))
	for i := len(s.shipments) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, s.shipments[i])
	}
	return historyFrom(newestFirst, limit), nil
}

func (s *SyntheticSource) ActiveShipments(ctx context.Context) ([]models.Shipment, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []models.Shipment
	for _, sh := range s.shipments {
		if sh.IsActive() {
			active = append(active, sh)
		}
	}
	return active, nil
}

func (s *SyntheticSource) SecuritySnapshot(ctx context.Context, since time.Time) (*models.SecuritySnapshot, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.advance()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &models.SecuritySnapshot{
		Accounts: append([]models.AccountProfile(nil), s.accounts...),
	}
	for _, l := range s.logins {
		if !l.Timestamp.Before(since) {
			snapshot.Logins = append(snapshot.Logins, l)
		}
	}
	for _, a := range s.accesses {
		if !a.Timestamp.Before(since) {
			snapshot.Accesses = append(snapshot.Accesses, a)
		}
	}
	return snapshot, nil
}

func (s *SyntheticSource) HealthCheck(ctx context.Context) error {
	return s.check(ctx)
}

func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *SyntheticSource) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSourceClosed
	}
	return s.failure
}

// advance appends traffic for the time elapsed since the last call and
// drops events past the retention horizon.
func (s *SyntheticSource) advance() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !now.After(s.lastTick) {
		return
	}

	logins, accesses := s.generator.Traffic(s.lastTick, now)
	s.logins = append(s.logins, logins...)
	s.accesses = append(s.accesses, accesses...)
	s.lastTick = now

	horizon := now.Add(-syntheticRetention)
	s.logins = pruneLogins(s.logins, horizon)
	s.accesses = pruneAccesses(s.accesses, horizon)
}

func pruneLogins(logins []models.LoginAttempt, horizon time.Time) []models.LoginAttempt {
	kept := logins[:0:0]
	for _, l := range logins {
		if !l.Timestamp.Before(horizon) {
			kept = append(kept, l)
		}
	}
	return kept
}

func pruneAccesses(accesses []models.AccessEvent, horizon time.Time) []models.AccessEvent {
	kept := accesses[:0:0]
	for _, a := range accesses {
		if !a.Timestamp.Before(horizon) {
			kept = append(kept, a)
		}
	}
	return kept
}
