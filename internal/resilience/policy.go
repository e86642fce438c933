package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/maspatas/ledger/internal/core/domain"
	"github.com/maspatas/ledger/internal/platform/logger"
)

const (
	defaultTimeout  = 5 * time.Second
	maxRetries      = 2
	breakerFailures = 3
	breakerReset    = 30 * time.Second
)

// Policy wraps use-case execution with a per-call timeout, a circuit
// breaker and bounded exponential-backoff retries. Domain errors pass
// through untouched: they are never retried and never count against the
// breaker, since they describe the request, not the system.
type Policy struct {
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *logger.Logger
}

func NewPolicy(log *logger.Logger) *Policy {
	settings := gobreaker.Settings{
		Name:    "use-case",
		Timeout: breakerReset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || domain.IsDomainError(err)
		},
	}
	return &Policy{
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: defaultTimeout,
		log:     log,
	}
}

func (p *Policy) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.breaker.Execute(func() (any, error) {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = 100 * time.Millisecond
		eb.MaxInterval = 2 * time.Second

		attempt := 0
		return nil, backoff.Retry(func() error {
			attempt++
			err := op(ctx)
			if err == nil {
				return nil
			}
			if domain.IsDomainError(err) {
				return backoff.Permanent(err)
			}
			p.log.Warn("use case attempt failed", "attempt", attempt, "error", err)
			return err
		}, backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx))
	})
	return err
}
