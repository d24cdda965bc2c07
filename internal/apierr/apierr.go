// Package apierr classifies failures of calls to the knowledge API.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind sentinels. Match with errors.Is(err, apierr.ErrNotFound).
var (
	ErrNetwork    = errors.New("network error")
	ErrAuth       = errors.New("authentication error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
)

// FieldError is one field-level complaint from the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified API failure.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Status is the HTTP status code, zero for network failures.
	Status int
	// Detail is the backend-provided message, if any.
	Detail string
	Fields []FieldError
	// RequestID echoes the X-Request-ID sent with the request.
	RequestID string
	// SessionExpired is set when the failure cleared the local session.
	SessionExpired bool
	Err            error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	switch {
	case e.Detail != "":
		b.WriteString(": ")
		b.WriteString(e.Detail)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *Error) Is(target error) bool { return e.Kind == target }

// Network wraps a transport failure: the request never completed.
func Network(err error) *Error {
	return &Error{Kind: ErrNetwork, Err: err}
}

// Auth builds an authentication failure.
func Auth(status int, detail string) *Error {
	return &Error{Kind: ErrAuth, Status: status, Detail: detail}
}

// Validation builds a client- or server-side validation failure.
func Validation(detail string, fields ...FieldError) *Error {
	return &Error{Kind: ErrValidation, Status: http.StatusUnprocessableEntity, Detail: detail, Fields: fields}
}

// KindForStatus maps an HTTP status code onto an error kind. It returns nil
// for 2xx and 3xx codes.
func KindForStatus(status int) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusNotFound:
		return ErrNotFound
	case status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}

// FromResponse classifies a non-2xx response, extracting whatever detail
// the body carries.
func FromResponse(status int, body []byte, requestID string) *Error {
	kind := KindForStatus(status)
	if kind == nil {
		kind = ErrServer
	}
	detail, fields := parseDetail(body)
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &Error{Kind: kind, Status: status, Detail: detail, Fields: fields, RequestID: requestID}
}

// AsError returns the classified error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DetailOf returns the backend detail carried by err, or "".
func DetailOf(err error) string {
	if e, ok := AsError(err); ok {
		return e.Detail
	}
	return ""
}

// IsSessionExpired reports whether err cleared the local session.
func IsSessionExpired(err error) bool {
	e, ok := AsError(err)
	return ok && e.SessionExpired
}

// errorBody covers the shapes the backend answers with: FastAPI's
// {"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]}, and the
// {"error": {"code": "...", "message": "..."}} envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func parseDetail(body []byte) (string, []FieldError) {
	if len(body) == 0 {
		return "", nil
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return "", nil
	}
	if eb.Error != nil && eb.Error.Message != "" {
		return eb.Error.Message, nil
	}
	if len(eb.Detail) == 0 {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s, nil
	}

	var items []validationItem
	if err := json.Unmarshal(eb.Detail, &items); err != nil {
		return "", nil
	}
	fields := make([]FieldError, 0, len(items))
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		field := fieldName(it.Loc)
		fields = append(fields, FieldError{Field: field, Message: it.Msg})
		if field != "" {
			msgs = append(msgs, field+": "+it.Msg)
		} else {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; "), fields
}

// fieldName drops the leading location ("body", "query", ...) FastAPI puts
// in front of the field path.
func fieldName(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && len(loc) > 1 && (s == "body" || s == "query" || s == "path" || s == "form") {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}
