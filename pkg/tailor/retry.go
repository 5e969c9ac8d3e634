package tailor

import (
	"context"
	"time"
)

// RetryPolicy bounds backoff on rate-limited generation calls. The zero value makes one attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

const defaultMaxDelay = 30 * time.Second

func (p RetryPolicy) attempts() (n int) {
	n = p.MaxAttempts
	if n < 1 {
		n = 1
	}
	return n
}

// delay returns the wait before the next attempt, doubling from BaseDelay after each failure.
func (p RetryPolicy) delay(attempt int) (d time.Duration) {
	d = p.BaseDelay
	if d <= 0 {
		d = time.Second
	}

	limit := p.MaxDelay
	if limit <= 0 {
		limit = defaultMaxDelay
	}

	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit {
			d = limit
			break
		}
	}
	return d
}

// sleep waits for d or until ctx is done. Tests replace it.
//
//nolint:gochecknoglobals // swapped in tests
var sleep = func(ctx context.Context, d time.Duration) (err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}
	return err
}
