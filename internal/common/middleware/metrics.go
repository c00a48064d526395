package middleware

import (
	"net/http"
	"time"

	"github.com/central-university-dev/post-broadcaster/internal/common/metrics"
)

// otherRoute заменяет неизвестные пути, чтобы сканеры не раздували кардинальность меток.
const otherRoute = "other"

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}

	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}

	return r.ResponseWriter.Write(b)
}

type RequestMetrics struct {
	service string
	routes  map[string]struct{}
}

// NewRequestMetrics учитывает запросы под меткой service; пути вне routes пишутся как "other".
func NewRequestMetrics(service string, routes ...string) *RequestMetrics {
	known := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		known[route] = struct{}{}
	}

	return &RequestMetrics{service: service, routes: known}
}

func (m *RequestMetrics) route(path string) string {
	if _, ok := m.routes[path]; ok {
		return path
	}

	return otherRoute
}

func (m *RequestMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(m.service, r.Method, m.route(r.URL.Path), rec.status, time.Since(start))
	})
}
