package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Borrowing metrics
	BorrowingsTotal  *prometheus.CounterVec
	OpenBorrowings   prometheus.Gauge
	FinesIssuedTotal prometheus.Counter

	// Payment metrics
	PaymentsTotal   *prometheus.CounterVec
	GatewayRequests *prometheus.CounterVec
	GatewayDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Worker metrics
	ScanItemsTotal    *prometheus.CounterVec
	ScanDuration      *prometheus.HistogramVec
	NotificationsSent *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		BorrowingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "borrowings_total",
				Help:      "Total number of borrowing operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OpenBorrowings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_borrowings",
				Help:      "Number of currently open borrowings",
			},
		),
		FinesIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fines_issued_total",
				Help:      "Total number of fines issued on late returns",
			},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Total number of payments by type and status",
			},
			[]string{"type", "status"},
		),
		GatewayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_requests_total",
				Help:      "Total number of checkout gateway calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		GatewayDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_request_duration_seconds",
				Help:      "Checkout gateway call duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ScanItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_items_total",
				Help:      "Total number of items handled by periodic scans",
			},
			[]string{"scan", "result"},
		),
		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Periodic scan duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"scan"},
		),
		NotificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_sent_total",
				Help:      "Total number of outbound notifications by event type and result",
			},
			[]string{"event_type", "result"},
		),
	}

	reg.MustRegister(
		m.BorrowingsTotal,
		m.OpenBorrowings,
		m.FinesIssuedTotal,
		m.PaymentsTotal,
		m.GatewayRequests,
		m.GatewayDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ScanItemsTotal,
		m.ScanDuration,
		m.NotificationsSent,
	)

	return m
}
