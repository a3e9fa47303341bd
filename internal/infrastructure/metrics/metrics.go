package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "gobalance"

// Metrics holds the application's Prometheus metrics.
type Metrics struct {
	// Ledger metrics
	Mutations    *prometheus.CounterVec
	BalanceDelta *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transaction_mutations_total",
				Help:      "Transaction lifecycle operations by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		BalanceDelta: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "balance_delta",
				Help:      "Absolute balance change applied by committed operations",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"status"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// ObserveMutation records a lifecycle operation and, when it committed, the
// size of the balance change.
func (m *Metrics) ObserveMutation(op string, delta decimal.Decimal, err error) {
	if err != nil {
		m.Mutations.WithLabelValues(op, "error").Inc()
		return
	}

	m.Mutations.WithLabelValues(op, "ok").Inc()
	m.BalanceDelta.WithLabelValues(op).Observe(delta.Abs().InexactFloat64())
}

// ObserveLogin records a login attempt.
func (m *Metrics) ObserveLogin(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	m.AuthAttempts.WithLabelValues(status).Inc()
}

// ObserveRateLimited records a rejected request.
func (m *Metrics) ObserveRateLimited(route string) {
	m.RateLimitHits.WithLabelValues(route).Inc()
}
