package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "post_broadcaster"

	BotSubsystem       = "bot"
	TransportSubsystem = "transport"
)

const (
	ForwardStatusSuccess  = "success"
	ForwardStatusRejected = "rejected"
	ForwardStatusFailed   = "failed"

	DispatchResultDelivered = "delivered"
	DispatchResultNoMatch   = "no_match"
	DispatchResultError     = "error"
)

// Общие метрики.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Бот метрики.
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "commands_total",
			Help:      "Total number of chat commands processed",
		},
		[]string{"command", "status"},
	)

	ForwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "forwards_total",
			Help:      "Total number of forward attempts by outcome",
		},
		[]string{"status"},
	)

	PostsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "posts_dispatched_total",
			Help:      "Total number of channel posts dispatched",
		},
		[]string{"result"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching one post to all recipients",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	EnabledSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "enabled_subscribers",
			Help:      "Number of enabled subscribers seen by the last dispatch",
		},
	)
)

// Метрики транспорта.
var (
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: TransportSubsystem,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"service"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordCommand(command, status string) {
	CommandsTotal.WithLabelValues(command, status).Inc()
}

func RecordForward(status string) {
	ForwardsTotal.WithLabelValues(status).Inc()
}

func RecordDispatch(result string, enabled int, duration time.Duration) {
	PostsDispatchedTotal.WithLabelValues(result).Inc()
	EnabledSubscribers.Set(float64(enabled))
	DispatchDuration.Observe(duration.Seconds())
}

func SetCircuitBreakerState(service string, state float64) {
	CircuitBreakerState.WithLabelValues(service).Set(state)
}
