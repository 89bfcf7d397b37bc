package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.GatewayConfig {
	return &config.GatewayConfig{MaxRetries: 1, RetryDelay: time.Millisecond}
}

func TestResilientGateway_PassesThrough(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	g := gateway.NewResilientGateway(gateway.NewMockGateway("test", gateway.WithLatency(0)), testConfig(), m)

	session, err := g.CreateCheckoutSession(context.Background(), gateway.CheckoutRequest{
		AmountCents: 750, Currency: "usd", ProductName: "A Book",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	retrieved, err := g.RetrieveSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
}

func TestResilientGateway_RecordsMetrics(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	g := gateway.NewResilientGateway(gateway.NewMockGateway("test", gateway.WithLatency(0)), testConfig(), m)

	session, err := g.CreateCheckoutSession(context.Background(), gateway.CheckoutRequest{
		AmountCents: 750, Currency: "usd", ProductName: "A Book",
	})
	require.NoError(t, err)
	_, err = g.RetrieveSession(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.GatewayRequests.WithLabelValues("create_session", "success")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.GatewayRequests.WithLabelValues("retrieve_session", "success")))
}

func TestResilientGateway_RecordsFailures(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	g := gateway.NewResilientGateway(
		gateway.NewMockGateway("down", gateway.WithLatency(0), gateway.WithFailureRate(1)),
		testConfig(), m)

	_, err := g.CreateCheckoutSession(context.Background(), gateway.CheckoutRequest{
		AmountCents: 750, Currency: "usd", ProductName: "A Book",
	})
	require.Error(t, err)

	// One logical call, retries folded in.
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.GatewayRequests.WithLabelValues("create_session", "error")))
}
