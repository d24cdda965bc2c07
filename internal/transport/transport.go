// Package transport is the single egress point for calls to the knowledge
// API. It only moves requests and responses: it attaches the bearer token,
// stamps a request ID, and records traces, metrics and debug logs. What to
// do with a response status is decided by the caller.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"nibblify/internal/apierr"
)

const (
	// RequestIDHeader carries the per-request correlation ID.
	RequestIDHeader = "X-Request-ID"
	// ContentTypeJSON is the default request content type.
	ContentTypeJSON = "application/json"
)

// TokenSource yields the current bearer token, or "" when there is none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token returns f().
func (f TokenFunc) Token() string { return f() }

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	// Route is the path template used as the metrics label
	// (e.g. "/knowledge/documents/{id}"). Defaults to Path.
	Route       string
	Query       url.Values
	Body        []byte
	ContentType string
	// Token overrides the TokenSource for this call.
	Token string
	// Anonymous sends no Authorization header unless Token is set.
	Anonymous bool
	// Progress, when set, receives the body bytes as they are sent.
	Progress io.Writer
}

func (r *Request) route() string {
	if r.Route != "" {
		return r.Route
	}
	return r.Path
}

// Response is a fully read API response, whatever its status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Options configure a Transport.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *zap.Logger
	Metrics *Metrics
	// HTTPClient replaces the default otelhttp-instrumented client.
	HTTPClient *http.Client
}

// Transport sends requests to the API.
// It is safe for concurrent use by multiple goroutines.
type Transport struct {
	base    *url.URL
	client  *http.Client
	tokens  TokenSource
	log     *zap.Logger
	metrics *Metrics
}

// New validates the options and builds a Transport.
func New(opts Options) (*Transport, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", opts.BaseURL)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   opts.Timeout,
		}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Transport{base: base, client: client, tokens: tokens, log: log, metrics: opts.Metrics}, nil
}

// BaseURL returns the API root requests are resolved against.
func (t *Transport) BaseURL() string {
	return t.base.String()
}

// Do sends req and reads the whole response. The error is non-nil only when
// no response was received; it is then an apierr network error.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	rid := uuid.NewString()
	start := time.Now()

	httpReq, hasToken, err := t.build(ctx, req, rid)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.ErrNetwork, Err: err, RequestID: rid}
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		t.observe(req, 0, start)
		t.log.Debug("api request failed",
			zap.String("request_id", rid),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Bool("has_token", hasToken),
			zap.Error(err),
		)
		return nil, &apierr.Error{Kind: apierr.ErrNetwork, Err: err, RequestID: rid}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		t.observe(req, httpResp.StatusCode, start)
		return nil, &apierr.Error{Kind: apierr.ErrNetwork, Err: fmt.Errorf("read response: %w", err), RequestID: rid}
	}

	t.observe(req, httpResp.StatusCode, start)
	t.log.Debug("api request",
		zap.String("request_id", rid),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", httpResp.StatusCode),
		zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		zap.Bool("has_token", hasToken),
	)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		RequestID:  rid,
	}, nil
}

func (t *Transport) build(ctx context.Context, req *Request, rid string) (*http.Request, bool, error) {
	u := *t.base
	u.Path = t.base.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
		if req.Progress != nil {
			body = io.TeeReader(body, req.Progress)
		}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
	}

	ct := req.ContentType
	if ct == "" {
		ct = ContentTypeJSON
	}
	httpReq.Header.Set("Content-Type", ct)
	httpReq.Header.Set("Accept", ContentTypeJSON)
	httpReq.Header.Set(RequestIDHeader, rid)

	token := req.Token
	if token == "" && !req.Anonymous {
		token = t.tokens.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, token != "", nil
}

func (t *Transport) observe(req *Request, status int, start time.Time) {
	if t.metrics == nil {
		return
	}
	t.metrics.observe(req.Method, req.route(), status, time.Since(start))
}
