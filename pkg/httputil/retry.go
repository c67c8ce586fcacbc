package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a transient fetch failure. After, when set, is the
// wait the server asked for through a Retry-After header.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff retries an operation with a doubling delay.
//
// Only [RetryableError] failures are retried. A server-requested wait
// replaces the computed delay for that attempt, clamped to Max.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration

	// OnRetry, if set, runs before each wait with the failed attempt
	// number (starting at 1) and its error.
	OnRetry func(attempt int, err error)
}

// DefaultBackoff is three attempts starting at one second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Max: 30 * time.Second}

// Do runs fn until it succeeds, fails permanently, runs out of attempts or
// ctx is done. The error of the last attempt is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	for attempt := 1; ; attempt++ {
		err := fn()
		var re *RetryableError
		if err == nil || !errors.As(err, &re) || attempt >= attempts {
			return err
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		if b.Max > 0 {
			wait = min(wait, b.Max)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// retryAfter parses the delay-seconds form of a Retry-After header.
// HTTP dates are ignored.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
