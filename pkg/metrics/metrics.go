package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration *prometheus.HistogramVec
	DBOpenConns     *prometheus.GaugeVec
	DBIdleConns     *prometheus.GaugeVec

	// Бизнес-метрики
	BookingsCreatedTotal *prometheus.CounterVec
	PaymentsTotal        *prometheus.CounterVec
	RefundsTotal         *prometheus.CounterVec
	SweepClaimedTotal    prometheus.Counter
}

// New регистрирует и возвращает метрики сервиса
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

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		DBOpenConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"state"}),

		DBIdleConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"state"}),

		BookingsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total number of created lesson bookings",
			ConstLabels: constLabels,
		}, []string{"lesson_type"}),

		PaymentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "payments_total",
			Help:        "Total number of payment attempts by result",
			ConstLabels: constLabels,
		}, []string{"result"}),

		RefundsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "refunds_total",
			Help:        "Total number of refund attempts by result",
			ConstLabels: constLabels,
		}, []string{"result"}),

		SweepClaimedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "payment_sweep_claimed_total",
			Help:        "Total number of bookings claimed by the payment sweep",
			ConstLabels: constLabels,
		}),
	}
}
