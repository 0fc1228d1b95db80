// Package metrics метрики Prometheus для сервиса
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики обработки webhook-событий
	WebhookEventsTotal     *prometheus.CounterVec
	WebhookProcessDuration *prometheus.HistogramVec
	WebhookDuplicatesTotal *prometheus.CounterVec
	WebhookUnhandledTotal  *prometheus.CounterVec
	WebhookOrphanedTotal   *prometheus.CounterVec

	// Метрики возвратов
	RefundsTotal *prometheus.CounterVec

	// Метрики БД
	DBQueryDuration    *prometheus.HistogramVec
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		WebhookEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_events_total",
			Help:        "Total number of processed webhook events",
			ConstLabels: labels,
		}, []string{"provider", "kind", "outcome"}),

		WebhookProcessDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "webhook_process_duration_seconds",
			Help:        "Webhook processing duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"provider", "kind"}),

		WebhookDuplicatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_duplicate_deliveries_total",
			Help:        "Total number of duplicate webhook deliveries short-circuited by the ledger",
			ConstLabels: labels,
		}, []string{"provider"}),

		WebhookUnhandledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_unhandled_events_total",
			Help:        "Total number of acknowledged but unhandled webhook event types",
			ConstLabels: labels,
		}, []string{"provider", "event_type"}),

		WebhookOrphanedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "webhook_orphaned_events_total",
			Help:        "Total number of events that could not be correlated to a booking",
			ConstLabels: labels,
		}, []string{"provider", "kind"}),

		RefundsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "refunds_total",
			Help:        "Total number of refund attempts by outcome",
			ConstLabels: labels,
		}, []string{"policy", "outcome"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBConnectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: labels,
		}),

		DBConnectionsIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_idle",
			Help:        "Number of idle database connections",
			ConstLabels: labels,
		}),

		DBConnectionsInUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_in_use",
			Help:        "Number of database connections currently in use",
			ConstLabels: labels,
		}),
	}
}

// RecordWebhookEvent учитывает обработанное webhook-событие
func (m *Metrics) RecordWebhookEvent(provider, kind, outcome string) {
	m.WebhookEventsTotal.WithLabelValues(provider, kind, outcome).Inc()
}

// RecordWebhookDuration учитывает длительность обработки события
func (m *Metrics) RecordWebhookDuration(provider, kind string, seconds float64) {
	m.WebhookProcessDuration.WithLabelValues(provider, kind).Observe(seconds)
}

// RecordDuplicateDelivery учитывает дубликат доставки, отсеченный журналом
func (m *Metrics) RecordDuplicateDelivery(provider string) {
	m.WebhookDuplicatesTotal.WithLabelValues(provider).Inc()
}

// RecordUnhandledEvent учитывает подтвержденное, но необрабатываемое событие
func (m *Metrics) RecordUnhandledEvent(provider, eventType string) {
	m.WebhookUnhandledTotal.WithLabelValues(provider, eventType).Inc()
}

// RecordOrphanedEvent учитывает событие без скоррелированного бронирования
func (m *Metrics) RecordOrphanedEvent(provider, kind string) {
	m.WebhookOrphanedTotal.WithLabelValues(provider, kind).Inc()
}

// RecordRefund учитывает попытку возврата
func (m *Metrics) RecordRefund(policy, outcome string) {
	m.RefundsTotal.WithLabelValues(policy, outcome).Inc()
}
