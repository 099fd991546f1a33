package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Request lifecycle metrics
	RequestsSubmitted prometheus.Counter
	RequestsApproved  prometheus.Counter
	RequestsRejected  prometheus.Counter
	RequestsCancelled prometheus.Counter
	DecisionDuration  prometheus.Histogram
	DecisionErrors    *prometheus.CounterVec
	DaysDebited       *prometheus.CounterVec

	// Balance metrics
	BalancesInitialized prometheus.Counter
	BalancesRolledOver  prometheus.Counter
	VestingRuns         prometheus.Counter
	BalanceAdjustments  prometheus.Counter
	InsufficientDenials *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Request lifecycle metrics
		RequestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_requests_submitted_total",
			Help: "Total number of leave requests submitted",
		}),
		RequestsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_requests_approved_total",
			Help: "Total number of leave requests approved",
		}),
		RequestsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_requests_rejected_total",
			Help: "Total number of leave requests rejected",
		}),
		RequestsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_requests_cancelled_total",
			Help: "Total number of leave requests cancelled by the requester",
		}),
		DecisionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaveledger_decision_duration_seconds",
			Help:    "Duration of approve/reject operations",
			Buckets: prometheus.DefBuckets,
		}),
		DecisionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_decision_errors_total",
				Help: "Total number of decision errors by type",
			},
			[]string{"error_type"},
		),
		DaysDebited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_days_debited_total",
				Help: "Total leave days debited by category",
			},
			[]string{"category"},
		),

		// Balance metrics
		BalancesInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_balances_initialized_total",
			Help: "Total number of balance records opened",
		}),
		BalancesRolledOver: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_balances_rolled_over_total",
			Help: "Total number of balance records advanced by the annual rollover",
		}),
		VestingRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_vesting_runs_total",
			Help: "Total number of monthly vesting passes",
		}),
		BalanceAdjustments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "leaveledger_balance_adjustments_total",
			Help: "Total number of manual balance adjustments",
		}),
		InsufficientDenials: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_insufficient_balance_total",
				Help: "Total approvals denied for insufficient balance by category",
			},
			[]string{"category"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leaveledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "leaveledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leaveledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "leaveledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaveledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
