package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus-метрик сервиса
// Все методы безопасны для nil-получателя: при отключенных метриках передаётся nil
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec
	DBOpenConnections   prometheus.Gauge
	DBInUseConnections  prometheus.Gauge
	DBIdleConnections   prometheus.Gauge
	DBWaitCount         prometheus.Gauge

	BookingsTotal         *prometheus.CounterVec
	AvailabilityRequests  *prometheus.CounterVec
	ScheduleConfigLookups *prometheus.CounterVec
	SideEffectFailures    *prometheus.CounterVec
	RemindersDispatched   *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в указанном реестре (используется в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open database connections",
			ConstLabels: constLabels,
		}),
		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Database connections in use",
			ConstLabels: constLabels,
		}),
		DBIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle database connections",
			ConstLabels: constLabels,
		}),
		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),

		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Booking attempts by outcome (committed, conflict, rejected, failed)",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		AvailabilityRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_requests_total",
			Help:        "Availability computations by mode (live, fallback)",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		ScheduleConfigLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "schedule_config_lookups_total",
			Help:        "Schedule configuration lookups by result (hit, remote, env)",
			ConstLabels: constLabels,
		}, []string{"result"}),
		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_side_effect_failures_total",
			Help:        "Failed post-commit side effects by name",
			ConstLabels: constLabels,
		}, []string{"name"}),
		RemindersDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "reminders_dispatched_total",
			Help:        "Dispatched reminders by status (sent, failed)",
			ConstLabels: constLabels,
		}, []string{"status"}),
	}
}

// ObserveHTTP фиксирует завершённый HTTP-запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveQuery(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// IncBooking увеличивает счётчик попыток бронирования
func (m *Metrics) IncBooking(outcome string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(outcome).Inc()
}

// IncAvailability увеличивает счётчик запросов доступности
func (m *Metrics) IncAvailability(mode string) {
	if m == nil {
		return
	}
	m.AvailabilityRequests.WithLabelValues(mode).Inc()
}

// IncScheduleConfig увеличивает счётчик обращений к конфигурации расписания
func (m *Metrics) IncScheduleConfig(result string) {
	if m == nil {
		return
	}
	m.ScheduleConfigLookups.WithLabelValues(result).Inc()
}

// IncSideEffectFailure увеличивает счётчик упавших побочных эффектов
func (m *Metrics) IncSideEffectFailure(name string) {
	if m == nil {
		return
	}
	m.SideEffectFailures.WithLabelValues(name).Inc()
}

// IncReminder увеличивает счётчик отправленных напоминаний
func (m *Metrics) IncReminder(status string) {
	if m == nil {
		return
	}
	m.RemindersDispatched.WithLabelValues(status).Inc()
}
