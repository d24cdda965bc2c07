// Package client applies the session policy on top of the transport: every
// response is tagged OK, Unauthorized or Failed, and an unauthorized answer
// to an authenticated call ends the local session.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"nibblify/internal/apierr"
	"nibblify/internal/transport"
)

// Outcome tags the result of a call.
type Outcome int

const (
	// OK is a 2xx response.
	OK Outcome = iota
	// Unauthorized is a 401 to an authenticated call; the session was cleared.
	Unauthorized
	// Failed is any other error, including a 401 from login or register.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Unauthorized:
		return "unauthorized"
	default:
		return "failed"
	}
}

// Result is the tagged outcome of Send.
type Result struct {
	Outcome  Outcome
	Response *transport.Response
	// Err is set for Unauthorized and Failed; it is an *apierr.Error.
	Err error
}

// Sender is the transport contract.
type Sender interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// SessionClearer ends the local session.
type SessionClearer interface {
	Logout() error
}

// Client sends API calls under the session policy.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	tr       Sender
	sessions SessionClearer
	log      *zap.Logger
}

// New wires the policy around a transport.
func New(tr Sender, sessions SessionClearer, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{tr: tr, sessions: sessions, log: log}
}

// Paths of the endpoints that answer 401 for bad credentials.
const (
	LoginPath    = "/auth/login/access-token"
	RegisterPath = "/auth/register"
)

// IsAuthEndpoint reports whether path is exactly the login or registration
// endpoint. A 401 from these is a credential rejection, not an expired session.
func IsAuthEndpoint(path string) bool {
	p := "/" + strings.Trim(path, "/")
	return p == LoginPath || p == RegisterPath
}

// Send performs req and tags the result. It never panics on a nil response
// and never swallows an error.
func (c *Client) Send(ctx context.Context, req *transport.Request) Result {
	resp, err := c.tr.Do(ctx, req)
	if err != nil {
		return Result{Outcome: Failed, Err: err}
	}
	if resp.OK() {
		return Result{Outcome: OK, Response: resp}
	}

	apiErr := apierr.FromResponse(resp.StatusCode, resp.Body, resp.RequestID)
	if resp.StatusCode != http.StatusUnauthorized || IsAuthEndpoint(req.Path) {
		return Result{Outcome: Failed, Response: resp, Err: apiErr}
	}

	c.log.Info("unauthorized response, clearing session",
		zap.String("path", req.Path),
		zap.String("request_id", resp.RequestID),
	)
	if c.sessions != nil {
		if err := c.sessions.Logout(); err != nil {
			c.log.Warn("failed to clear session", zap.Error(err))
		}
	}
	apiErr.SessionExpired = true
	return Result{Outcome: Unauthorized, Response: resp, Err: apiErr}
}

// Call sends req and decodes a successful JSON body into out (which may be
// nil). Failures are returned as *apierr.Error values.
func (c *Client) Call(ctx context.Context, req *transport.Request, out any) error {
	res := c.Send(ctx, req)
	if res.Outcome != OK {
		return res.Err
	}
	if out == nil || len(res.Response.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Response.Body, out); err != nil {
		return &apierr.Error{
			Kind:      apierr.ErrServer,
			Status:    res.Response.StatusCode,
			Detail:    "unexpected response body",
			RequestID: res.Response.RequestID,
			Err:       fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err),
		}
	}
	return nil
}

// JSON builds a request carrying v encoded as JSON.
func JSON(method, path, route string, v any) (*transport.Request, error) {
	var body []byte
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = b
	}
	return &transport.Request{
		Method:      method,
		Path:        path,
		Route:       route,
		Body:        body,
		ContentType: transport.ContentTypeJSON,
	}, nil
}
