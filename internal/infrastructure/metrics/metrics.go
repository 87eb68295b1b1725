package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	DepositsCreated     prometheus.Counter
	TransfersCreated    prometheus.Counter
	ChargebacksCreated  prometheus.Counter
	TransactionsFailed  *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	TransactionAmount   *prometheus.HistogramVec

	// Account metrics
	AccountsCreated prometheus.Counter

	// Reconciliation metrics
	StalePendingSwept    prometheus.Counter
	ConservationVerified prometheus.Counter
	ConservationBroken   prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsPending   prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		DepositsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_deposits_created_total",
			Help: "Total number of deposits created",
		}),
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		ChargebacksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_chargebacks_created_total",
			Help: "Total number of chargebacks created",
		}),
		TransactionsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_transactions_failed_total",
				Help: "Total number of failed transactions by motive",
			},
			[]string{"type", "motive"},
		),
		TransactionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_transaction_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		TransactionAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_transaction_amount",
				Help:    "Transaction amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		StalePendingSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_stale_pending_swept_total",
			Help: "Total number of stale pending transactions failed by the sweeper",
		}),
		ConservationVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_conservation_checks_ok_total",
			Help: "Total number of conservation checks that balanced",
		}),
		ConservationBroken: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_conservation_checks_broken_total",
			Help: "Total number of conservation checks that found a difference",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_http_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_db_queries_total",
				Help: "Total database queries by operation",
			},
			[]string{"operation"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_db_duration_seconds",
				Help:    "Duration of database queries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "walletd_db_connections",
			Help: "Current number of database connections",
		}),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_outbox_events_published_total",
			Help: "Total number of outbox events published",
		}),
		EventsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "walletd_outbox_events_pending",
			Help: "Current number of unpublished outbox events",
		}),

		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"result"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_rate_limit_hits_total",
				Help: "Total requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}
