package yapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingServer answers every request with body and remembers the last
// request URL.
type recordingServer struct {
	*httptest.Server
	hits    atomic.Int32
	lastURL atomic.Pointer[url.URL]
}

func newRecordingServer(t *testing.T, status int, body string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.hits.Add(1)
		u := *r.URL
		rs.lastURL.Store(&u)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) last(t *testing.T) *url.URL {
	t.Helper()
	u := rs.lastURL.Load()
	require.NotNil(t, u, "server received no request")
	return u
}

func newTestClient(t *testing.T, baseURL, token string) *Client {
	t.Helper()
	return NewClient(Endpoint{BaseURL: baseURL, Token: token}, 5*time.Second, 0, zaptest.NewLogger(t))
}

func requireYApiError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	var yerr *Error
	require.True(t, errors.As(err, &yerr), "expected *yapi.Error, got %T", err)
	return yerr
}

func TestGetInterfaceDetails(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"errmsg":"ok","data":{"_id":12,"title":"Login","method":"POST"}}`)
	client := newTestClient(t, srv.URL, "cfg-token")

	rec, err := client.GetInterfaceDetails(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, Number(12), rec.ID)
	assert.Equal(t, Text("Login"), rec.Title)
	assert.Equal(t, Text("POST"), rec.Method)

	u := srv.last(t)
	assert.Equal(t, "/api/interface/get", u.Path)
	assert.Equal(t, "12", u.Query().Get("id"))
	assert.Equal(t, "cfg-token", u.Query().Get("token"))
}

func TestTokenSelection(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":1}}`)
	ctx := context.Background()

	client := newTestClient(t, srv.URL, "cfg-token")

	_, err := client.GetInterfaceDetails(ctx, "1", WithToken("call-token"))
	require.NoError(t, err)
	assert.Equal(t, "call-token", srv.last(t).Query().Get("token"))

	_, err = client.GetInterfaceDetails(ctx, "1", WithToken(""))
	require.NoError(t, err)
	assert.Equal(t, "cfg-token", srv.last(t).Query().Get("token"))

	anonymous := newTestClient(t, srv.URL, "")
	_, err = anonymous.GetInterfaceDetails(ctx, "1")
	require.NoError(t, err)
	assert.False(t, srv.last(t).Query().Has("token"))
}

func TestBaseURLTrailingSlash(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":5}}`)
	client := newTestClient(t, srv.URL+"/", "")

	_, err := client.GetProjectInfo(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "/api/project/get", srv.last(t).Path)
}

func TestWithBaseURLDoesNotChangeClient(t *testing.T) {
	configured := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":1}}`)
	other := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":2}}`)
	client := newTestClient(t, configured.URL, "")
	ctx := context.Background()

	rec, err := client.GetInterfaceDetails(ctx, "2", WithBaseURL(other.URL))
	require.NoError(t, err)
	assert.Equal(t, Number(2), rec.ID)
	assert.Equal(t, int32(1), other.hits.Load())
	assert.Equal(t, int32(0), configured.hits.Load())

	rec, err = client.GetInterfaceDetails(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, Number(1), rec.ID)
	assert.Equal(t, int32(1), configured.hits.Load())
	assert.Equal(t, configured.URL, client.Endpoint().BaseURL)
}

func TestEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		call        func(*Client) error
		wantErrCode int
		wantError   string
	}{
		{
			name: "service message",
			body: `{"errcode":40011,"errmsg":"please login"}`,
			call: func(c *Client) error {
				_, err := c.GetInterfaceDetails(context.Background(), "1")
				return err
			},
			wantErrCode: 40011,
			wantError:   "failed to get interface details: please login",
		},
		{
			name: "default message",
			body: `{"errcode":400,"errmsg":""}`,
			call: func(c *Client) error {
				_, err := c.GetProjectInfo(context.Background(), "1")
				return err
			},
			wantErrCode: 400,
			wantError:   "failed to get project info: YApi rejected the project request",
		},
		{
			name: "missing errcode",
			body: `{"data":[]}`,
			call: func(c *Client) error {
				_, err := c.GetInterfaceList(context.Background(), "1", nil)
				return err
			},
			wantErrCode: -1,
			wantError:   "failed to list interfaces: YApi rejected the interface list request",
		},
		{
			name: "numeric errmsg",
			body: `{"errcode":500,"errmsg":42}`,
			call: func(c *Client) error {
				_, err := c.SearchInterface(context.Background(), "1", "user")
				return err
			},
			wantErrCode: 500,
			wantError:   "failed to search interfaces: 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecordingServer(t, http.StatusOK, tt.body)
			yerr := requireYApiError(t, tt.call(newTestClient(t, srv.URL, "")))

			assert.Equal(t, tt.wantErrCode, yerr.ErrCode)
			assert.Equal(t, http.StatusOK, yerr.StatusCode)
			assert.Equal(t, tt.wantError, yerr.Error())
		})
	}
}

func TestHTTPStatusErrors(t *testing.T) {
	srv := newRecordingServer(t, http.StatusBadGateway, "upstream unavailable\n")
	_, err := newTestClient(t, srv.URL, "").GetProjectInfo(context.Background(), "1")

	yerr := requireYApiError(t, err)
	assert.Equal(t, http.StatusBadGateway, yerr.StatusCode)
	assert.Equal(t, 0, yerr.ErrCode)
	assert.Equal(t, "upstream unavailable", yerr.Message)
	assert.Equal(t, "failed to get project info: upstream unavailable", yerr.Error())

	empty := newRecordingServer(t, http.StatusNotFound, "")
	_, err = newTestClient(t, empty.URL, "").GetProjectInfo(context.Background(), "1")

	yerr = requireYApiError(t, err)
	assert.Equal(t, http.StatusNotFound, yerr.StatusCode)
	assert.Equal(t, "unexpected status 404 Not Found", yerr.Message)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	_, err := newTestClient(t, baseURL, "").GetInterfaceDetails(context.Background(), "1")

	yerr := requireYApiError(t, err)
	assert.Equal(t, 0, yerr.StatusCode)
	assert.Equal(t, "failed to get interface details", yerr.Op)
	assert.NotEmpty(t, yerr.Message)
}

func TestTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := newTestClient(t, baseURL, "s3cr3t-cfg")
	ctx := context.Background()

	for _, opts := range [][]CallOption{
		{WithToken("s3cr3t-call")},
		nil,
	} {
		_, err := client.GetInterfaceDetails(ctx, "12", opts...)

		yerr := requireYApiError(t, err)
		assert.NotContains(t, yerr.Error(), "s3cr3t")
		assert.NotContains(t, errorResult(err).Content[0].(mcp.TextContent).Text, "s3cr3t")
		assert.Contains(t, yerr.Message, "token=REDACTED")
		assert.Contains(t, yerr.Message, "/api/interface/get")
	}
}

func TestConfiguredTokenStaysOnConfiguredOrigin(t *testing.T) {
	configured := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":1}}`)
	other := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":2}}`)
	client := newTestClient(t, configured.URL, "cfg-token")
	ctx := context.Background()

	_, err := client.GetInterfaceDetails(ctx, "2", WithBaseURL(other.URL))
	require.NoError(t, err)
	assert.False(t, other.last(t).Query().Has("token"))

	_, err = client.GetInterfaceDetails(ctx, "2", WithBaseURL(other.URL), WithToken("other-token"))
	require.NoError(t, err)
	assert.Equal(t, "other-token", other.last(t).Query().Get("token"))

	_, err = client.GetInterfaceDetails(ctx, "1", WithBaseURL(configured.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, "cfg-token", configured.last(t).Query().Get("token"))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "http://h/api/interface/get?id=1&token=REDACTED", redactURL("http://h/api/interface/get?id=1&token=abc"))
	assert.Equal(t, "http://h/api/project/get?id=1", redactURL("http://h/api/project/get?id=1"))
}

func TestUndecodableBody(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, "<html>login</html>")
	_, err := newTestClient(t, srv.URL, "").GetInterfaceDetails(context.Background(), "1")

	yerr := requireYApiError(t, err)
	assert.Contains(t, yerr.Message, "failed to decode response")
}

func TestMissingData(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"errmsg":"ok"}`)
	client := newTestClient(t, srv.URL, "")
	ctx := context.Background()

	_, err := client.GetInterfaceDetails(ctx, "1")
	requireYApiError(t, err)

	_, err = client.GetProjectInfo(ctx, "1")
	requireYApiError(t, err)

	list, err := client.GetInterfaceList(ctx, "1", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(list))

	found, err := client.SearchInterface(ctx, "1", "user")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(found))
}

func TestGetInterfaceList(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"count":1,"list":[{"_id":3,"title":"a"}]}}`)
	client := newTestClient(t, srv.URL, "")
	ctx := context.Background()

	list, err := client.GetInterfaceList(ctx, "5", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"list":[{"_id":3,"title":"a"}]}`, string(list))
	u := srv.last(t)
	assert.Equal(t, "/api/interface/list", u.Path)
	assert.Equal(t, "5", u.Query().Get("project_id"))
	assert.False(t, u.Query().Has("catid"))

	catID := "9"
	_, err = client.GetInterfaceList(ctx, "5", &catID)
	require.NoError(t, err)
	u = srv.last(t)
	assert.Equal(t, "/api/interface/list_cat", u.Path)
	assert.Equal(t, "9", u.Query().Get("catid"))
	assert.False(t, u.Query().Has("project_id"))

	empty := ""
	_, err = client.GetInterfaceList(ctx, "5", &empty)
	require.NoError(t, err)
	u = srv.last(t)
	assert.Equal(t, "/api/interface/list_cat", u.Path)
	assert.True(t, u.Query().Has("catid"))
	assert.Equal(t, "", u.Query().Get("catid"))
}

func TestSearchInterface(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":[{"_id":1,"title":"user login"}]}`)
	client := newTestClient(t, srv.URL, "tok")

	found, err := client.SearchInterface(context.Background(), "5", "user login")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":1,"title":"user login"}]`, string(found))

	u := srv.last(t)
	assert.Equal(t, "/api/interface/search", u.Path)
	assert.Equal(t, "5", u.Query().Get("project_id"))
	assert.Equal(t, "user login", u.Query().Get("q"))
	assert.Equal(t, "tok", u.Query().Get("token"))
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, `{"errcode":0,"data":{"_id":1}}`)
	client := NewClient(Endpoint{BaseURL: srv.URL}, time.Second, 0.001, zaptest.NewLogger(t))

	// the single burst token is spent by the first call
	_, err := client.GetInterfaceDetails(context.Background(), "1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.GetInterfaceDetails(ctx, "1")

	yerr := requireYApiError(t, err)
	assert.Contains(t, yerr.Message, "rate limit wait")
	assert.Equal(t, int32(1), srv.hits.Load())
}
