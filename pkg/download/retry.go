package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/batrachia/libfetch/pkg/errors"
	"github.com/jpillora/backoff"
)

// RetryPolicy bounds how often a failed request is repeated.
type RetryPolicy struct {
	Attempts int // retries after the first try; 0 disables retries
	Min      time.Duration
	Max      time.Duration
}

// DefaultRetryPolicy is used by NewManager.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Min: 500 * time.Millisecond, Max: 10 * time.Second}

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Unwrap lets callers match ErrDownloadFailed.
func (e *StatusError) Unwrap() error { return pkgerrors.ErrDownloadFailed }

// retryable reports whether err is worth another attempt: transport failures,
// server errors and rate limiting. Other 4xx responses are final.
func retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError || se.Code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// withRetry calls fn until it succeeds, returns a final error or the policy is exhausted.
func withRetry[T any](ctx context.Context, policy RetryPolicy, fn func() (T, error)) (T, error) {
	b := &backoff.Backoff{Min: policy.Min, Max: policy.Max, Factor: 2, Jitter: true}
	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil || attempt >= policy.Attempts || !retryable(ctx, err) {
			return v, err
		}
		timer := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
