package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 3,
		Timeout:     time.Hour,
	})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	}

	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})

	_ = cb.Execute(func() error { return errBoom })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errBoom })

	state, failures := cb.Stats()
	assert.Equal(t, StateClosed, state)
	assert.Equal(t, uint32(1), failures)
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	var mu sync.Mutex
	var transitions []State

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "source",
		MaxFailures: 1,
		Timeout:     20 * time.Millisecond,
		HalfOpenMax: 1,
		OnStateChange: func(name string, from, to State) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, to)
		},
	})

	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_CancellationDoesNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})

	err := cb.Execute(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Millisecond}, func(attempt int) error {
			calls++
			if attempt < 3 {
				return errBoom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when attempts run out", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), RetryPolicy{Attempts: 2, Delay: time.Millisecond}, func(int) error {
			calls++
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 2, calls)
	})

	t.Run("delay grows between attempts", func(t *testing.T) {
		start := time.Now()
		err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: 20 * time.Millisecond}, func(int) error {
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		// Two fixed 20ms waits would finish in about 40ms.
		assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
	})

	t.Run("open circuit is not retried", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), RetryPolicy{Attempts: 5, Delay: time.Millisecond}, func(int) error {
			calls++
			return ErrCircuitOpen
		})
		assert.ErrorIs(t, err, ErrCircuitOpen)
		assert.Equal(t, 1, calls)
	})
}
