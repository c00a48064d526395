package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Arrange
	service := "test-service"
	method := "GET"
	endpoint := "/metrics"

	initial := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, method, endpoint, "success"))

	// Act
	metrics.RecordHTTPRequest(service, method, endpoint, 200, 10*time.Millisecond)
	metrics.RecordHTTPRequest(service, method, endpoint, 429, 10*time.Millisecond)

	// Assert
	assert.Equal(t, initial+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, method, endpoint, "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, method, endpoint, "error")))
}

func TestRecordForward(t *testing.T) {
	// Arrange
	initialSuccess := testutil.ToFloat64(metrics.ForwardsTotal.WithLabelValues(metrics.ForwardStatusSuccess))
	initialRejected := testutil.ToFloat64(metrics.ForwardsTotal.WithLabelValues(metrics.ForwardStatusRejected))

	// Act
	metrics.RecordForward(metrics.ForwardStatusSuccess)
	metrics.RecordForward(metrics.ForwardStatusSuccess)
	metrics.RecordForward(metrics.ForwardStatusRejected)

	// Assert
	assert.Equal(t, initialSuccess+2, testutil.ToFloat64(metrics.ForwardsTotal.WithLabelValues(metrics.ForwardStatusSuccess)))
	assert.Equal(t, initialRejected+1, testutil.ToFloat64(metrics.ForwardsTotal.WithLabelValues(metrics.ForwardStatusRejected)))
}

func TestRecordDispatch(t *testing.T) {
	// Arrange
	initial := testutil.ToFloat64(metrics.PostsDispatchedTotal.WithLabelValues(metrics.DispatchResultNoMatch))

	// Act
	metrics.RecordDispatch(metrics.DispatchResultNoMatch, 7, 100*time.Millisecond)

	// Assert
	assert.Equal(t, initial+1, testutil.ToFloat64(metrics.PostsDispatchedTotal.WithLabelValues(metrics.DispatchResultNoMatch)))
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.EnabledSubscribers))
}

func TestRecordCommand(t *testing.T) {
	initial := testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues("/enable", "success"))

	metrics.RecordCommand("/enable", "success")

	assert.Equal(t, initial+1, testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues("/enable", "success")))
}

func TestMetricsExist(t *testing.T) {
	// Arrange
	metrics.SetCircuitBreakerState("telegram", 0)

	// Act
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	metricNames := make(map[string]bool)
	for _, mf := range metricFamilies {
		metricNames[*mf.Name] = true
	}

	// Assert
	expectedMetrics := []string{
		"post_broadcaster_bot_commands_total",
		"post_broadcaster_bot_forwards_total",
		"post_broadcaster_bot_posts_dispatched_total",
		"post_broadcaster_bot_dispatch_duration_seconds",
		"post_broadcaster_bot_enabled_subscribers",
		"post_broadcaster_transport_circuit_breaker_state",
	}

	for _, metricName := range expectedMetrics {
		assert.True(t, metricNames[metricName], "Метрика %s должна быть зарегистрирована", metricName)
	}
}
