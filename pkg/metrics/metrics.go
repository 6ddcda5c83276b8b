package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Business metrics
	RoutesCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routes_completed_total",
			Help: "Total number of completed routes by sharing level",
		},
		[]string{"service", "sharing_level"},
	)

	RoutesAnonymizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routes_anonymized_total",
			Help: "Total number of traces passed through the anonymizer",
		},
		[]string{"service"},
	)

	PlausibilityVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_plausibility_verdicts_total",
			Help: "Total number of plausibility verdicts by outcome",
		},
		[]string{"service", "verdict"},
	)

	PlausibilityReasonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_plausibility_reasons_total",
			Help: "Total number of triggered plausibility checks by reason",
		},
		[]string{"service", "reason"},
	)

	ModeratorConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moderator_websocket_connections",
			Help: "Current number of connected moderators",
		},
		[]string{"service"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	RabbitMQMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_consumed_total",
			Help: "Total number of messages consumed from RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(service, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, queue string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesPublished.WithLabelValues(service, queue, status).Inc()
}

// RecordRabbitMQConsume records RabbitMQ consume metrics
func RecordRabbitMQConsume(service, queue string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesConsumed.WithLabelValues(service, queue, status).Inc()
}

// RecordVerdict records a plausibility verdict and every triggered reason
func RecordVerdict(service string, implausible bool, reasons []string) {
	verdict := "plausible"
	if implausible {
		verdict = "implausible"
	}
	PlausibilityVerdictsTotal.WithLabelValues(service, verdict).Inc()
	for _, r := range reasons {
		PlausibilityReasonsTotal.WithLabelValues(service, r).Inc()
	}
}
