package app

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/metrics"
)

// RetryPolicy bounds how hard a best-effort write is retried.
type RetryPolicy struct {
	Retries int
	Initial time.Duration
}

// DefaultRetryPolicy retries twice starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{Retries: 2, Initial: 200 * time.Millisecond}

// bestEffort runs fn with bounded retries. A final failure is logged with the
// supplied fields and counted, then returned so callers can report it; it must
// never be surfaced to the learner.
func bestEffort(ctx context.Context, log logrus.FieldLogger, m *metrics.Metrics, policy RetryPolicy, op string, fields logrus.Fields, fn func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	if policy.Initial > 0 {
		b.InitialInterval = policy.Initial
	}
	retries := policy.Retries
	if retries < 0 {
		retries = 0
	}

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		return fn(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
	if err != nil {
		log.WithFields(fields).WithFields(logrus.Fields{
			"op":       op,
			"attempts": attempt,
		}).WithError(err).Error("best-effort write failed")
		m.PersistenceFailed(op)
	}
	return err
}
