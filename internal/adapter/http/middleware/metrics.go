package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hrkit/leaveledger/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP metrics into the shared registry.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with request metrics.
func (mw *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		mw.metrics.HTTPInFlight.Inc()
		defer mw.metrics.HTTPInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		mw.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		mw.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Collections whose second path segment is a record ID.
var idCollections = map[string]bool{
	"balances":  true,
	"requests":  true,
	"employees": true,
	"rules":     true,
}

// normalizePath replaces record IDs with a placeholder to keep label
// cardinality bounded.
// /api/v1/requests/01ABC/approve -> /api/v1/requests/:id/approve
func normalizePath(path string) string {
	const prefix = "/api/v1/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}

	segments := strings.Split(path[len(prefix):], "/")
	if len(segments) < 2 || !idCollections[segments[0]] || segments[1] == "" {
		return path
	}

	// /rules/current is a static route, not an ID lookup.
	if segments[0] == "rules" && segments[1] == "current" {
		return path
	}

	segments[1] = ":id"

	return prefix + strings.Join(segments, "/")
}
