package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus-метрик сервиса: HTTP слой и база данных
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	DBPoolOpenConnections prometheus.Gauge
	DBPoolInUse           prometheus.Gauge
	DBPoolIdle            prometheus.Gauge
	DBPoolWaitCount       prometheus.Gauge
}

// New регистрирует и возвращает метрики сервиса
// serviceName попадает в constant labels, чтобы различать инстансы в общем registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		HTTPRequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being served",
			ConstLabels: constLabels,
		}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBPoolOpenConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}),

		DBPoolInUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of pool connections currently in use",
			ConstLabels: constLabels,
		}),

		DBPoolIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle pool connections",
			ConstLabels: constLabels,
		}),

		DBPoolWaitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),
	}
}
