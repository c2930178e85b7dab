package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors of the service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ledger metrics
	MovementsTotal     prometheus.Counter
	MovementValue      prometheus.Histogram
	SweepsTotal        prometheus.Counter
	SweptValueTotal    prometheus.Counter
	LedgerFailures     *prometheus.CounterVec
	RegistersTotal     prometheus.Gauge
	RegistersActive    prometheus.Gauge
	LedgerBalanceTotal prometheus.Gauge

	// Permission cache metrics
	PermissionCacheHits   prometheus.Counter
	PermissionCacheMisses prometheus.Counter
}

// New creates and registers every collector on the given registry.
// Passing nil uses a fresh private registry.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repairshop_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repairshop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		MovementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repairshop_ledger_movements_total",
			Help: "Invoice settlement movements posted",
		}),
		MovementValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "repairshop_ledger_movement_value",
			Help:    "Value of posted movements",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repairshop_ledger_sweeps_total",
			Help: "Deactivation sweeps into main registers",
		}),
		SweptValueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repairshop_ledger_swept_value_total",
			Help: "Sum of surplus moved into main registers",
		}),
		LedgerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repairshop_ledger_failures_total",
				Help: "Ledger transactions rolled back",
			},
			[]string{"operation"},
		),
		RegistersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "repairshop_cash_registers",
			Help: "Number of cash registers",
		}),
		RegistersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "repairshop_cash_registers_active",
			Help: "Number of active cash registers",
		}),
		LedgerBalanceTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "repairshop_ledger_balance",
			Help: "Sum of all register totals",
		}),
		PermissionCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repairshop_permission_cache_hits_total",
			Help: "Resolved permission trees served from cache",
		}),
		PermissionCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repairshop_permission_cache_misses_total",
			Help: "Resolved permission trees computed from the database",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MovementsTotal,
		m.MovementValue,
		m.SweepsTotal,
		m.SweptValueTotal,
		m.LedgerFailures,
		m.RegistersTotal,
		m.RegistersActive,
		m.LedgerBalanceTotal,
		m.PermissionCacheHits,
		m.PermissionCacheMisses,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
