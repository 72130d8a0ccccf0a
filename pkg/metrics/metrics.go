// Package metrics prometheus-метрики сервиса
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор коллекторов сервиса
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	dbQueriesTotal       *prometheus.CounterVec
	dbQueryDuration      *prometheus.HistogramVec
	dbConnectionsOpen    *prometheus.GaugeVec
	dbConnectionsInUse   *prometheus.GaugeVec
	dbConnectionsIdle    *prometheus.GaugeVec
	bookingsCreatedTotal *prometheus.CounterVec
	capacityConflicts    *prometheus.CounterVec
}

// New создает и регистрирует коллекторы
func New(serviceName string) *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		dbQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),

		dbConnectionsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		}, []string{"service"}),

		dbConnectionsInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections currently in use",
		}, []string{"service"}),

		dbConnectionsIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		}, []string{"service"}),

		bookingsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of successfully created bookings",
		}, []string{"service"}),

		capacityConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_capacity_conflicts_total",
			Help: "Total number of booking attempts rejected due to capacity conflicts",
		}, []string{"service"}),
	}
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(service, method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(service, operation, status string, duration time.Duration) {
	m.dbQueriesTotal.WithLabelValues(service, operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет gauge-метрики connection pool
func (m *Metrics) SetDBPoolStats(service string, open, inUse, idle int) {
	m.dbConnectionsOpen.WithLabelValues(service).Set(float64(open))
	m.dbConnectionsInUse.WithLabelValues(service).Set(float64(inUse))
	m.dbConnectionsIdle.WithLabelValues(service).Set(float64(idle))
}

// IncBookingsCreated инкрементирует счетчик созданных бронирований
func (m *Metrics) IncBookingsCreated(service string) {
	m.bookingsCreatedTotal.WithLabelValues(service).Inc()
}

// IncCapacityConflicts инкрементирует счетчик конфликтов вместимости
func (m *Metrics) IncCapacityConflicts(service string) {
	m.capacityConflicts.WithLabelValues(service).Inc()
}

// BookingCounters счетчики бизнес-событий бронирования, привязанные
// к имени сервиса. С nil-коллектором (метрики выключены) все методы no-op.
type BookingCounters struct {
	m       *Metrics
	service string
}

// NewBookingCounters создает привязанные счетчики; collector может быть nil
func NewBookingCounters(collector *Metrics, service string) *BookingCounters {
	return &BookingCounters{m: collector, service: service}
}

// IncBookingsCreated инкрементирует счетчик созданных бронирований
func (c *BookingCounters) IncBookingsCreated() {
	if c.m == nil {
		return
	}
	c.m.IncBookingsCreated(c.service)
}

// IncCapacityConflicts инкрементирует счетчик конфликтов вместимости
func (c *BookingCounters) IncCapacityConflicts() {
	if c.m == nil {
		return
	}
	c.m.IncCapacityConflicts(c.service)
}
