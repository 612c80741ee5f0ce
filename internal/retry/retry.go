// Package retry owns the blocking retry primitive used to (re)establish the
// sink connection.
package retry

import (
	"context"
	"time"

	"github.com/danmuck/teleinfo/internal/clock"
)

// Policy configures Do. MaxAttempts <= 0 retries forever.
type Policy struct {
	// Interval is the wait between a failed attempt and the next one.
	Interval    time.Duration
	MaxAttempts int
	Clock       clock.Clock

	// Retryable reports whether a failed attempt should be retried. A nil
	// Retryable retries every error.
	Retryable func(error) bool

	// OnRetry is called before each wait with the failed attempt number,
	// its error and the delay about to be applied.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts or ctx is done. The last error is returned on exhaustion.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.Clock == nil {
		p.Clock = clock.Real()
	}
	if p.Interval < 0 {
		p.Interval = 0
	}

	var attempt int
	for {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, p.Interval)
		}
		if err := wait(ctx, p.Clock, p.Interval); err != nil {
			return err
		}
	}
}

func wait(ctx context.Context, c clock.Clock, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}
