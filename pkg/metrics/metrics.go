package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "yapi_mcp"

// Metrics holds all the Prometheus metrics for the server. Every collector
// lives in its own registry, served by Handler.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP transport, sse mode only
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPResponseSize     *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// MCP tool calls
	MCPToolCallsTotal   *prometheus.CounterVec
	MCPToolCallDuration *prometheus.HistogramVec
	MCPToolErrorsTotal  *prometheus.CounterVec

	ModuleEnabled       *prometheus.GaugeVec
	ModuleRequestsTotal *prometheus.CounterVec

	// Outbound calls to YApi
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	BackendErrorsTotal     *prometheus.CounterVec

	BuildInfo *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	initOnce       sync.Once
)

// Init initializes the metrics system. Until it is called every Record
// function is a no-op.
func Init(logger *zap.Logger) *Metrics {
	initOnce.Do(func() {
		defaultMetrics = newMetrics(prometheus.NewRegistry())
		logger.Info("Metrics system initialized", zap.String("namespace", namespace))
	})
	return defaultMetrics
}

// Get returns the default metrics instance, nil before Init
func Get() *Metrics {
	return defaultMetrics
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http",
			Name: "requests_total",
			Help: "HTTP requests served, by route and status",
		}, []string{"method", "endpoint", "status_code", "mode"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http",
			Name:    "request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint", "status_code"}),
		HTTPResponseSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http",
			Name:    "response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6), // 100B to 10MB
		}, []string{"method", "endpoint"}),
		HTTPRequestsInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http",
			Name: "requests_in_flight",
			Help: "HTTP requests currently being served",
		}, []string{"endpoint"}),

		MCPToolCallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tool",
			Name: "calls_total",
			Help: "MCP tool invocations by outcome",
		}, []string{"tool_name", "module", "status"}),
		MCPToolCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "tool",
			Name:    "call_duration_seconds",
			Help:    "MCP tool latency including the YApi round trip",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool_name", "module"}),
		MCPToolErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tool",
			Name: "errors_total",
			Help: "Failed MCP tool invocations by error type",
		}, []string{"tool_name", "module", "error_type"}),

		ModuleEnabled: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "module",
			Name: "enabled",
			Help: "1 when the module is enabled",
		}, []string{"module_name"}),
		ModuleRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "module",
			Name: "requests_total",
			Help: "Tool requests routed to each module",
		}, []string{"module_name"}),

		BackendRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "backend",
			Name: "requests_total",
			Help: "Outbound backend requests by outcome",
		}, []string{"backend", "status"}),
		BackendRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "backend",
			Name:    "request_duration_seconds",
			Help:    "Outbound backend request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		BackendErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "backend",
			Name: "errors_total",
			Help: "Outbound backend failures by error type",
		}, []string{"backend", "error_type"}),

		BuildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Always 1, labelled with the running build",
		}, []string{"version", "git_commit", "build_date"}),
	}
}

// SetModuleEnabled sets the enabled status for a module
func (m *Metrics) SetModuleEnabled(moduleName string, enabled bool) {
	value := 0.0
	if enabled {
		value = 1.0
	}
	m.ModuleEnabled.WithLabelValues(moduleName).Set(value)
}

// SetBuildInfo sets the build information metric
func SetBuildInfo(version, gitCommit, buildDate string) {
	if m := Get(); m != nil {
		m.BuildInfo.WithLabelValues(version, gitCommit, buildDate).Set(1)
	}
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
