package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// otherRoute labels requests for paths outside the known routes
const otherRoute = "other"

// Handler serves the metrics registry, or 404 when Init was never called
func Handler() http.Handler {
	m := Get()
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics disabled", http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTPMetricsMiddleware records request count, latency, size and
// concurrency. Paths not listed in routes share the "other" endpoint label;
// with no routes every path is its own label.
func HTTPMetricsMiddleware(next http.Handler, mode string, routes ...string) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		known[r] = struct{}{}
	}

	endpointLabel := func(path string) string {
		if path == "" {
			path = "/"
		}
		if len(known) == 0 {
			return path
		}
		if _, ok := known[path]; ok {
			return path
		}
		return otherRoute
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := Get()
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		endpoint := endpointLabel(r.URL.Path)

		inFlight := m.HTTPRequestsInFlight.WithLabelValues(endpoint)
		inFlight.Inc()
		defer inFlight.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		statusCode := strconv.Itoa(rw.statusCode)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, endpoint, statusCode, mode).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, endpoint, statusCode).Observe(time.Since(start).Seconds())
		m.HTTPResponseSize.WithLabelValues(r.Method, endpoint).Observe(float64(rw.size))
	})
}

// responseWriter captures status code and body size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Flush keeps streamed MCP responses flowing through the wrapper
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
