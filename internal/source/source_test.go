package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/resilience"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/simulator"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

var start = time.Date(2026, time.March, 2, 14, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSynthetic(clock *fakeClock, attacks bool) *SyntheticSource {
	return NewSyntheticSource(SyntheticSourceConfig{
		Simulator: simulator.Config{Seed: 11, Shipments: 30, ActiveShipments: 4, Accounts: 6, InjectAttacks: attacks},
		Now:       clock.Now,
	})
}

func TestSyntheticSource_DelayHistory(t *testing.T) {
	src := newSynthetic(&fakeClock{now: start}, false)

	history, err := src.DelayHistory(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 10)

	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].ExpectedTime.After(history[i].ExpectedTime), "history must be newest first")
	}

	all, err := src.DelayHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 30)
}

func TestSyntheticSource_ActiveShipments(t *testing.T) {
	src := newSynthetic(&fakeClock{now: start}, false)

	active, err := src.ActiveShipments(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 4)
	for _, s := range active {
		assert.Nil(t, s.ActualTime)
	}
}

func TestSyntheticSource_SnapshotFiltersAndAdvances(t *testing.T) {
	clock := &fakeClock{now: start}
	src := newSynthetic(clock, true)

	since := start.Add(-5 * time.Minute)
	snap, err := src.SecuritySnapshot(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 6)
	for _, l := range snap.Logins {
		assert.False(t, l.Timestamp.Before(since))
	}
	before := len(snap.Logins)

	clock.Advance(2 * time.Minute)
	snap, err = src.SecuritySnapshot(context.Background(), since)
	require.NoError(t, err)
	assert.Greater(t, len(snap.Logins), before)
}

func TestSyntheticSource_SnapshotIsACopy(t *testing.T) {
	src := newSynthetic(&fakeClock{now: start}, false)

	snap, err := src.SecuritySnapshot(context.Background(), start.Add(-time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, snap.Accounts)
	snap.Accounts[0].Role = "tampered"

	again, err := src.SecuritySnapshot(context.Background(), start.Add(-time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, models.Role("tampered"), again.Accounts[0].Role)
}

func TestSyntheticSource_FailureAndClose(t *testing.T) {
	src := newSynthetic(&fakeClock{now: start}, false)
	boom := errors.New("boom")

	src.SetFailure(boom)
	_, err := src.ActiveShipments(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, src.HealthCheck(context.Background()), boom)

	src.SetFailure(nil)
	assert.NoError(t, src.HealthCheck(context.Background()))

	require.NoError(t, src.Close())
	assert.ErrorIs(t, src.HealthCheck(context.Background()), ErrSourceClosed)
}

// flakySource fails a fixed number of times before delegating.
type flakySource struct {
	DataSource
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakySource) ActiveShipments(ctx context.Context) ([]models.Shipment, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()

	if fail {
		return nil, errors.New("connection reset")
	}
	return f.DataSource.ActiveShipments(ctx)
}

func TestResilientSource_RetriesTransientFailures(t *testing.T) {
	flaky := &flakySource{DataSource: newSynthetic(&fakeClock{now: start}, false), failures: 2}
	src := NewResilientSource(ResilientSourceConfig{
		Source:        flaky,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})

	active, err := src.ActiveShipments(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 4)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, resilience.StateClosed, src.CircuitState())
}

func TestResilientSource_OpensCircuit(t *testing.T) {
	flaky := &flakySource{DataSource: newSynthetic(&fakeClock{now: start}, false), failures: 100}

	var mu sync.Mutex
	var failedOps []string
	src := NewResilientSource(ResilientSourceConfig{
		Source:        flaky,
		MaxFailures:   2,
		BreakerWait:   time.Hour,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		OnError: func(operation string, err error) {
			mu.Lock()
			defer mu.Unlock()
			failedOps = append(failedOps, operation)
		},
	})

	for i := 0; i < 2; i++ {
		_, err := src.ActiveShipments(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, src.CircuitState())

	_, err := src.ActiveShipments(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, 2, flaky.calls)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"active_shipments", "active_shipments", "active_shipments"}, failedOps)
}
