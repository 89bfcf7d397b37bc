package gateway

import (
	"context"
	"time"

	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/booklend/booklend/pkg/retry"
	"github.com/sony/gobreaker/v2"
)

// ResilientGateway wraps a Gateway with retry and a circuit breaker. A
// tripped breaker fails fast; the caller maps that to ErrPaymentGateway and
// rolls back whatever triggered the call.
type ResilientGateway struct {
	inner    Gateway
	breaker  *gobreaker.CircuitBreaker[*Session]
	retryCfg retry.Config
	metrics  *observability.Metrics
}

func NewResilientGateway(inner Gateway, cfg *config.GatewayConfig, metrics *observability.Metrics) *ResilientGateway {
	threshold := cfg.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 10
	}
	timeout := cfg.CircuitBreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*Session](gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(threshold) && failureRatio >= 0.6
		},
	})

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = uint(cfg.MaxRetries)
	}
	if cfg.RetryDelay > 0 {
		retryCfg.InitialDelay = cfg.RetryDelay
	}

	return &ResilientGateway{inner: inner, breaker: breaker, retryCfg: retryCfg, metrics: metrics}
}

func (g *ResilientGateway) Name() string { return g.inner.Name() }

func (g *ResilientGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	return g.do("create_session", func() (*Session, error) {
		return retry.DoWithResult(ctx, g.retryCfg, func() (*Session, error) {
			return g.breaker.Execute(func() (*Session, error) {
				return g.inner.CreateCheckoutSession(ctx, req)
			})
		})
	})
}

func (g *ResilientGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	return g.do("retrieve_session", func() (*Session, error) {
		return retry.DoWithResult(ctx, g.retryCfg, func() (*Session, error) {
			return g.breaker.Execute(func() (*Session, error) {
				return g.inner.RetrieveSession(ctx, sessionID)
			})
		})
	})
}

// do observes one logical gateway call, retries included.
func (g *ResilientGateway) do(op string, fn func() (*Session, error)) (*Session, error) {
	start := time.Now()
	session, err := fn()
	g.metrics.GatewayDuration.Observe(time.Since(start).Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	g.metrics.GatewayRequests.WithLabelValues(op, result).Inc()
	return session, err
}
