package metrics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	return rec
}

func TestServer_Endpoints(t *testing.T) {
	server := metrics.NewServer(0, discardLogger())

	metrics.RecordForward(metrics.ForwardStatusSuccess)

	rec := get(server.Handler(), metrics.HealthPath)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(server.Handler(), metrics.MetricsPath)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post_broadcaster_bot_forwards_total")
}

func TestServer_Readiness(t *testing.T) {
	var storageErr error

	server := metrics.NewServer(0, discardLogger(),
		metrics.WithReadinessCheck("storage", func(context.Context) error { return storageErr }),
	)

	rec := get(server.Handler(), metrics.ReadyPath)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	storageErr = errors.New("connection refused")

	rec = get(server.Handler(), metrics.ReadyPath)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "storage not ready")

	assert.Equal(t, http.StatusOK, get(server.Handler(), metrics.HealthPath).Code, "health не зависит от проверок готовности")
}

func TestServer_MiddlewareOrder(t *testing.T) {
	var order []string

	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	server := metrics.NewServer(0, discardLogger(), metrics.WithMiddleware(tag("outer"), tag("inner")))

	get(server.Handler(), metrics.HealthPath)

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := metrics.NewServer(0, discardLogger())

	done := make(chan error, 1)

	go func() {
		done <- server.Start(ctx)
	}()

	cancel()

	require.NoError(t, <-done)
}
