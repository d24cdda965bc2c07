package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nibblify/internal/apierr"
)

type captured struct {
	method, path, query, auth, contentType, requestID string
	body                                              string
}

func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*got = captured{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			requestID:   r.Header.Get(RequestIDHeader),
			body:        string(b),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	tr, err := New(Options{BaseURL: "http://localhost:8000/api/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", tr.BaseURL())
}

func TestDo_AttachesBearerToken(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"ok":true}`)
	tr, err := New(Options{BaseURL: srv.URL + "/api/v1", Tokens: TokenFunc(func() string { return "tok" })})
	require.NoError(t, err)

	resp, err := tr.Do(context.Background(), &Request{
		Method: http.MethodGet,
		Path:   "/knowledge/documents",
		Query:  url.Values{"limit": {"5"}},
	})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "/api/v1/knowledge/documents", got.path)
	assert.Equal(t, "limit=5", got.query)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.Equal(t, ContentTypeJSON, got.contentType)
	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, got.requestID, resp.RequestID)
}

func TestDo_AnonymousWithoutToken(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	tr, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), &Request{
		Method:      http.MethodPost,
		Path:        "/auth/login/access-token",
		Body:        []byte("username=a&password=b"),
		ContentType: "application/x-www-form-urlencoded",
	})
	require.NoError(t, err)

	assert.Empty(t, got.auth)
	assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
	assert.Equal(t, "username=a&password=b", got.body)
}

func TestDo_TokenOverride(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	tr, err := New(Options{BaseURL: srv.URL, Tokens: TokenFunc(func() string { return "stale" })})
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), &Request{Path: "/auth/me", Token: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", got.auth)
	assert.Equal(t, http.MethodGet, got.method)
}

func TestDo_AnonymousSkipsStoredToken(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	tr, err := New(Options{BaseURL: srv.URL, Tokens: TokenFunc(func() string { return "stored" })})
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), &Request{Method: http.MethodPost, Path: "/auth/login/access-token", Anonymous: true})
	require.NoError(t, err)
	assert.Empty(t, got.auth)

	_, err = tr.Do(context.Background(), &Request{Path: "/auth/me", Anonymous: true, Token: "explicit"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", got.auth)
}

func TestDo_ReturnsNon2xxAsResponse(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, `{"detail":"Document not found"}`)
	tr, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := tr.Do(context.Background(), &Request{Path: "/knowledge/documents/9"})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	tr, err := New(Options{BaseURL: base})
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), &Request{Path: "/auth/me"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrNetwork)
}

func TestDo_RecordsMetrics(t *testing.T) {
	srv, _ := newServer(t, http.StatusCreated, `{}`)
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	tr, err := New(Options{BaseURL: srv.URL, Metrics: m})
	require.NoError(t, err)

	_, err = tr.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/knowledge/documents/7",
		Route:  "/knowledge/documents/{id}",
	})
	require.NoError(t, err)

	count := testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/knowledge/documents/{id}", "201"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "second registration on the same registry fails")
}

func TestDo_ReportsUploadProgress(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	tr, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	var seen countingWriter
	_, err = tr.Do(context.Background(), &Request{
		Method:   http.MethodPost,
		Path:     "/knowledge/documents/upload",
		Body:     []byte("0123456789"),
		Progress: &seen,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, int(seen))
	assert.Equal(t, "0123456789", got.body)
}

type countingWriter int

func (c *countingWriter) Write(p []byte) (int, error) {
	*c += countingWriter(len(p))
	return len(p), nil
}
