package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-social/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// RetryPolicy bounds how often an UpstreamUnavailable failure is retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// NoRetry is used by tests that want failures surfaced at once.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}

// withRetry runs op until it succeeds, fails with something other than
// ErrUpstreamUnavailable, or the policy gives up.
func withRetry[T any](ctx context.Context, policy RetryPolicy, m *metrics.Manager, upstream string, op func() (T, error)) (T, error) {
	var result T
	operation := func() error {
		v, err := op()
		if err != nil {
			if !errors.Is(err, ErrUpstreamUnavailable) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warnf("%s unavailable, retrying in %s: %s", upstream, wait, err)
		m.UpstreamRetried(upstream)
	}

	if err := backoff.RetryNotify(operation, policy.backOff(ctx), notify); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
