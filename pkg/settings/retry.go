package settings

import (
	"context"
	"strings"

	"github.com/jllopis/surveyshell/pkg/resilience"
)

// RetryStore retries the operations of another store while the database
// reports it is busy.
type RetryStore struct {
	next  Store
	retry resilience.RetryConfig
}

// NewRetryStore wraps next. A zero rc uses resilience.DefaultRetryConfig;
// only busy errors are retried unless rc.IsRecoverable says otherwise.
func NewRetryStore(next Store, rc resilience.RetryConfig) *RetryStore {
	if rc.MaxAttempts == 0 {
		rc = resilience.DefaultRetryConfig()
		rc.IsRecoverable = nil
	}
	if rc.IsRecoverable == nil {
		rc.IsRecoverable = IsBusy
	}
	return &RetryStore{next: next, retry: rc}
}

// IsBusy reports whether err is SQLite's locked or busy condition.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked")
}

// Get returns the value for key.
func (s *RetryStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.retry.Do(ctx, func() error {
		var err error
		value, ok, err = s.next.Get(ctx, key)
		return err
	})
	return value, ok, err
}

// Set stores value under key.
func (s *RetryStore) Set(ctx context.Context, key, value string) error {
	return s.retry.Do(ctx, func() error {
		return s.next.Set(ctx, key, value)
	})
}

// Delete removes key.
func (s *RetryStore) Delete(ctx context.Context, key string) error {
	return s.retry.Do(ctx, func() error {
		return s.next.Delete(ctx, key)
	})
}

// Keys returns all keys.
func (s *RetryStore) Keys(ctx context.Context) ([]string, error) {
	return resilience.DoValue(ctx, s.retry, func() ([]string, error) {
		return s.next.Keys(ctx)
	})
}
