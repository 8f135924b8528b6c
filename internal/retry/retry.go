// Package retry implements bounded exponential-backoff retries for
// asynchronous units of work.
package retry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crosspost-cli/crosspost/internal/logutil"
)

const (
	defaultMaxAttempts = 3
	defaultDelay       = time.Second
)

// Policy controls how many times an operation is attempted and how long
// to back off between attempts. The zero value uses 3 attempts with a
// 1s base delay.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// Logger receives retry events. Defaults to the application logger.
	Logger *log.Logger

	// Sleep is the backoff wait. Overridable in tests; the default
	// honours context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.Delay <= 0 {
		p.Delay = defaultDelay
	}
	if p.Logger == nil {
		p.Logger = logutil.Default()
	}
	if p.Sleep == nil {
		p.Sleep = sleep
	}
	return p
}

// Do runs op up to p.MaxAttempts times. After failed attempt k it waits
// Delay * 2^(k-1) before the next one. The error from the final attempt
// is returned once the budget is exhausted.
func Do[T any](ctx context.Context, p Policy, label string, op func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				p.Logger.Info("operation recovered", "platform", label, "attempt", attempt)
			}
			return result, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			p.Logger.Error("operation failed, giving up",
				"platform", label, "attempts", p.MaxAttempts, "error", err)
			break
		}

		backoff := p.Delay << (attempt - 1)
		p.Logger.Warn("attempt failed, retrying",
			"platform", label, "attempt", attempt, "backoff", backoff, "error", err)

		if err := p.Sleep(ctx, backoff); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
