package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

// MockGateway simulates a checkout provider. Sessions it creates can be
// marked paid or expired from tests and local tooling.
type MockGateway struct {
	name        string
	failureRate float64 // 0.0 to 1.0
	latency     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

type MockGatewayOption func(*MockGateway)

func WithFailureRate(rate float64) MockGatewayOption {
	return func(g *MockGateway) { g.failureRate = rate }
}

func WithLatency(d time.Duration) MockGatewayOption {
	return func(g *MockGateway) { g.latency = d }
}

func NewMockGateway(name string, opts ...MockGatewayOption) *MockGateway {
	g := &MockGateway{
		name:     name,
		latency:  50 * time.Millisecond,
		sessions: make(map[string]*Session),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *MockGateway) Name() string { return g.name }

func (g *MockGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if rand.Float64() < g.failureRate {
		return nil, domainErrors.ErrPaymentGateway
	}

	id := fmt.Sprintf("cs_%s_%s", g.name, uuid.New().String()[:8])
	s := &Session{
		ID:            id,
		URL:           fmt.Sprintf("https://checkout.%s.example/pay/%s", g.name, id),
		Status:        SessionStatusOpen,
		PaymentStatus: PaymentStatusUnpaid,
	}

	g.mu.Lock()
	g.sessions[id] = s
	g.mu.Unlock()
	return s, nil
}

func (g *MockGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	cp := *s
	return &cp, nil
}

// CompleteSession marks a session as paid.
func (g *MockGateway) CompleteSession(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.sessions[sessionID]; ok {
		s.Status = SessionStatusComplete
		s.PaymentStatus = PaymentStatusPaid
	}
}

// ExpireSession marks a session as expired.
func (g *MockGateway) ExpireSession(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.sessions[sessionID]; ok {
		s.Status = SessionStatusExpired
	}
}
