package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := Init(zap.NewNop())

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp/docs" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"tools":[]}`))
	})
	handler := HTTPMetricsMiddleware(inner, "sse", "/mcp", "/mcp/docs")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/random/probe", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/mcp/docs", "200", "sse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, otherRoute, "404", "sse")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight.WithLabelValues("/mcp/docs")))
}

func TestHandlerServesRegistry(t *testing.T) {
	Init(zap.NewNop())
	SetBuildInfo("v-test", "abc123", "today")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `yapi_mcp_build_info{build_date="today",git_commit="abc123",version="v-test"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
