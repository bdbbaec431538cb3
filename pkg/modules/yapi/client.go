package yapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shaowenchen/yapi-mcp-server/pkg/jsonx"
	"github.com/shaowenchen/yapi-mcp-server/pkg/metrics"
)

const (
	pathInterfaceGet     = "/api/interface/get"
	pathProjectGet       = "/api/project/get"
	pathInterfaceList    = "/api/interface/list"
	pathInterfaceListCat = "/api/interface/list_cat"
	pathInterfaceSearch  = "/api/interface/search"

	tracerName = "github.com/shaowenchen/yapi-mcp-server/pkg/modules/yapi"
)

// operation names a remote call for errors, logs and spans
type operation struct {
	name           string
	label          string
	defaultMessage string
}

var (
	opGetInterface = operation{
		name:           "get_interface",
		label:          "failed to get interface details",
		defaultMessage: "YApi rejected the interface request",
	}
	opGetProject = operation{
		name:           "get_project",
		label:          "failed to get project info",
		defaultMessage: "YApi rejected the project request",
	}
	opListInterfaces = operation{
		name:           "list_interfaces",
		label:          "failed to list interfaces",
		defaultMessage: "YApi rejected the interface list request",
	}
	opSearchInterface = operation{
		name:           "search_interface",
		label:          "failed to search interfaces",
		defaultMessage: "YApi rejected the search request",
	}
)

var emptyList = jsonx.RawMessage("[]")

// Endpoint is the configured YApi server and default access token
type Endpoint struct {
	BaseURL string
	Token   string
}

type callOptions struct {
	baseURL string
	token   string
}

// CallOption adjusts a single Client call
type CallOption func(*callOptions)

// WithToken uses token for this call instead of the configured one.
// An empty token keeps the configured token.
func WithToken(token string) CallOption {
	return func(o *callOptions) {
		if token != "" {
			o.token = token
		}
	}
}

// WithBaseURL sends this call to baseURL instead of the configured server.
// The client itself is left untouched. When baseURL is a different origin
// the configured token is not sent; pass WithToken to authenticate there.
func WithBaseURL(baseURL string) CallOption {
	return func(o *callOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// Client performs read-only calls against the YApi open API
type Client struct {
	endpoint   Endpoint
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewClient creates a YApi client. A zero timeout means DefaultTimeout and a
// zero rate limit disables throttling.
func NewClient(endpoint Endpoint, timeout time.Duration, rateLimit float64, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}
	if rateLimit > 0 {
		burst := int(rateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}
	return c
}

// Endpoint returns the configured server and token
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// GetInterfaceDetails fetches one interface by id
func (c *Client) GetInterfaceDetails(ctx context.Context, interfaceID string, opts ...CallOption) (*InterfaceRecord, error) {
	params := url.Values{}
	params.Set("id", interfaceID)

	data, err := c.get(ctx, opGetInterface, pathInterfaceGet, params, opts)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, translate(opGetInterface, fmt.Errorf("response carried no interface data"))
	}

	rec := &InterfaceRecord{}
	if err := jsonx.Unmarshal(data, rec); err != nil {
		return nil, translate(opGetInterface, fmt.Errorf("failed to decode interface: %w", err))
	}
	return rec, nil
}

// GetProjectInfo fetches a project and returns its data unmodified
func (c *Client) GetProjectInfo(ctx context.Context, projectID string, opts ...CallOption) (jsonx.RawMessage, error) {
	params := url.Values{}
	params.Set("id", projectID)

	data, err := c.get(ctx, opGetProject, pathProjectGet, params, opts)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, translate(opGetProject, fmt.Errorf("response carried no project data"))
	}
	return data, nil
}

// GetInterfaceList lists the interfaces of a category when catID is non-nil,
// otherwise the interfaces of the project. A missing payload yields [].
func (c *Client) GetInterfaceList(ctx context.Context, projectID string, catID *string, opts ...CallOption) (jsonx.RawMessage, error) {
	params := url.Values{}
	path := pathInterfaceList
	if catID != nil {
		path = pathInterfaceListCat
		params.Set("catid", *catID)
	} else {
		params.Set("project_id", projectID)
	}

	data, err := c.get(ctx, opListInterfaces, path, params, opts)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return emptyList, nil
	}
	return data, nil
}

// SearchInterface searches a project by keyword. A missing payload yields [].
func (c *Client) SearchInterface(ctx context.Context, projectID, keyword string, opts ...CallOption) (jsonx.RawMessage, error) {
	params := url.Values{}
	params.Set("project_id", projectID)
	params.Set("q", keyword)

	data, err := c.get(ctx, opSearchInterface, pathInterfaceSearch, params, opts)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return emptyList, nil
	}
	return data, nil
}

// get performs the call and funnels every failure through translate
func (c *Client) get(ctx context.Context, op operation, path string, params url.Values, opts []CallOption) (jsonx.RawMessage, error) {
	o := callOptions{baseURL: c.endpoint.BaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	// the configured token only ever goes to the configured server
	if o.token == "" && sameOrigin(o.baseURL, c.endpoint.BaseURL) {
		o.token = c.endpoint.Token
	}

	ctx, span := c.tracer.Start(ctx, "yapi."+op.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("yapi.server", o.baseURL),
			attribute.String("yapi.path", path),
			attribute.Bool("yapi.token", o.token != ""),
		))
	defer span.End()

	start := time.Now()
	data, err := c.do(ctx, o, path, params)
	duration := time.Since(start)
	metrics.RecordBackendRequest(metrics.BackendYApi, duration, err == nil)

	if err != nil {
		yerr := translate(op, err)
		metrics.RecordBackendError(metrics.BackendYApi, errorType(yerr))
		span.RecordError(yerr)
		span.SetStatus(codes.Error, yerr.Message)
		c.logger.Error("YApi request failed",
			zap.String("operation", op.name),
			zap.String("server", o.baseURL),
			zap.String("path", path),
			zap.Int("status_code", yerr.StatusCode),
			zap.Duration("duration", duration),
			zap.Error(yerr))
		return nil, yerr
	}

	c.logger.Debug("YApi request succeeded",
		zap.String("operation", op.name),
		zap.String("server", o.baseURL),
		zap.String("path", path),
		zap.Duration("duration", duration))
	return data, nil
}

func (c *Client) do(ctx context.Context, o callOptions, path string, params url.Values) (jsonx.RawMessage, error) {
	if o.token != "" {
		params.Set("token", o.token)
	}
	reqURL := strings.TrimRight(o.baseURL, "/") + path + "?" + params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, fmt.Errorf("%s %q: %w", ue.Op, redactURL(ue.URL), ue.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var env envelope
	if err := jsonx.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if env.ErrCode == nil {
		return nil, &envelopeError{code: -1, message: string(env.ErrMsg)}
	}
	if *env.ErrCode != 0 {
		return nil, &envelopeError{code: *env.ErrCode, message: string(env.ErrMsg)}
	}

	return env.Data, nil
}

// redactURL masks the token query parameter so request URLs can appear in
// errors, logs and spans
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// sameOrigin compares scheme and host, ignoring any path prefix
func sameOrigin(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}

func isNull(data jsonx.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// errorType buckets an error for the backend error metric
func errorType(err *Error) string {
	switch {
	case err.ErrCode != 0:
		return "api_error"
	case err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden:
		return "auth_error"
	case err.StatusCode >= http.StatusInternalServerError:
		return "server_error"
	case err.StatusCode != 0:
		return "client_error"
	}
	msg := strings.ToLower(err.Message)
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return "timeout"
	}
	return "network_error"
}
