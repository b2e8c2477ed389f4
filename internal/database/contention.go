package database

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// IsDatabaseContentionError reports whether err is a transient SQLite lock or
// busy error worth retrying.
func IsDatabaseContentionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database is busy") ||
		strings.Contains(errStr, "database table is locked")
}

// withContentionRetry runs fn, retrying with backoff while it fails on lock
// contention.
func withContentionRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsDatabaseContentionError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}
