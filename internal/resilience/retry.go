package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
)

type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Delay <= 0 {
		p.Delay = 200 * time.Millisecond
	}
	return p
}

// Retry runs fn with exponential backoff until it succeeds, the attempts
// run out, or ctx ends. The open-circuit error is never retried.
func Retry(ctx context.Context, policy RetryPolicy, fn func(attempt int) error) error {
	policy = policy.withDefaults()

	attempt := 0
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(uint(policy.Attempts)),
		retry.Delay(policy.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrCircuitOpen) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
	)

	return r.Do(func() error {
		attempt++
		return fn(attempt)
	})
}
