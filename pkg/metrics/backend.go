package metrics

import (
	"time"
)

// BackendType labels an outbound service
type BackendType string

const (
	BackendYApi BackendType = "yapi"
)

// RecordBackendRequest records one outbound call and its latency
func RecordBackendRequest(backend BackendType, duration time.Duration, success bool) {
	if m := Get(); m != nil {
		m.BackendRequestsTotal.WithLabelValues(string(backend), statusLabel(success)).Inc()
		m.BackendRequestDuration.WithLabelValues(string(backend)).Observe(duration.Seconds())
	}
}

// RecordBackendError records a failed outbound call under errorType
func RecordBackendError(backend BackendType, errorType string) {
	if m := Get(); m != nil {
		m.BackendErrorsTotal.WithLabelValues(string(backend), errorType).Inc()
	}
}
