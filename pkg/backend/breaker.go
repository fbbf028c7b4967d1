package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

// BreakerBackend wraps a Backend with a circuit breaker so that repeated
// rate_limit/backend_failure responses make the router, workers, and
// guardrail callers fail fast instead of piling up retries (spec §5).
type BreakerBackend struct {
	inner Backend
	cb    *gobreaker.CircuitBreaker[GenerateResponse]
}

// BreakerSettings configures the wrapping circuit breaker.
type BreakerSettings struct {
	Name         string
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// NewBreakerBackend decorates inner with a circuit breaker using the given
// settings.
func NewBreakerBackend(inner Backend, s BreakerSettings) *BreakerBackend {
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[GenerateResponse](gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},
	})

	return &BreakerBackend{inner: inner, cb: cb}
}

// Generate implements Backend.
func (b *BreakerBackend) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	resp, err := b.cb.Execute(func() (GenerateResponse, error) {
		return b.inner.Generate(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return GenerateResponse{}, writecrewerr.New("backend.breaker", "Generate", writecrewerr.KindRateLimit,
				fmt.Errorf("circuit breaker %s: %w", b.cb.Name(), err))
		}
		return GenerateResponse{}, err
	}
	return resp, nil
}

// State exposes the breaker's current state for health reporting.
func (b *BreakerBackend) State() gobreaker.State { return b.cb.State() }
