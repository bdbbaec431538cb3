package metrics

import (
	"time"
)

// RecordMCPToolCall records one tool invocation and its latency
func RecordMCPToolCall(toolName, module string, duration time.Duration, success bool) {
	if m := Get(); m != nil {
		m.MCPToolCallsTotal.WithLabelValues(toolName, module, statusLabel(success)).Inc()
		m.MCPToolCallDuration.WithLabelValues(toolName, module).Observe(duration.Seconds())
	}
}

// RecordMCPToolError records a failed tool invocation under errorType
func RecordMCPToolError(toolName, module, errorType string) {
	if m := Get(); m != nil {
		m.MCPToolErrorsTotal.WithLabelValues(toolName, module, errorType).Inc()
	}
}

// RecordModuleRequest counts a tool request routed to moduleName
func RecordModuleRequest(moduleName string) {
	if m := Get(); m != nil {
		m.ModuleRequestsTotal.WithLabelValues(moduleName).Inc()
	}
}
