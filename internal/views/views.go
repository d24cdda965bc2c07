// Package views holds the terminal screens of the client. Each view issues
// resource calls, keeps its own loading/error/ready state and renders it;
// validation beyond required fields is left to the backend.
package views

import (
	"context"
	"errors"
	"sync"

	"nibblify/internal/api"
	"nibblify/internal/apierr"
	"nibblify/internal/model"
)

// Routes the navigator understands.
const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDocuments = "/documents"
	RouteNew       = "/documents/new"
	RouteUpload    = "/documents/upload"
	RouteSearch    = "/documents/search"
)

// DocumentRoute is the detail route of one document.
func DocumentRoute(id model.ID) string {
	return RouteDocuments + "/" + id.String()
}

// Navigator moves between views.
type Navigator interface {
	Current() string
	Go(route string)
}

// Status is the lifecycle of a view's last action.
type Status int

const (
	Idle Status = iota
	Loading
	Failed
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// ErrBusy rejects a submit while the previous one is still in flight.
var ErrBusy = errors.New("an action is already in progress")

// AuthAPI is what the auth views call.
type AuthAPI interface {
	SignIn(ctx context.Context, creds model.LoginCredentials) (model.User, error)
	Register(ctx context.Context, creds model.RegisterCredentials) (model.User, error)
	CurrentUser(ctx context.Context) (model.User, error)
	Logout() error
}

// DocumentsAPI is what the document views call.
type DocumentsAPI interface {
	GetAll(ctx context.Context) ([]model.Document, error)
	GetByID(ctx context.Context, id model.ID) (model.Document, error)
	Create(ctx context.Context, in model.CreateDocumentInput) (model.Document, error)
	Update(ctx context.Context, id model.ID, patch model.UpdateDocumentInput) (model.Document, error)
	Delete(ctx context.Context, id model.ID) error
	Search(ctx context.Context, query string, filters map[string]any, page, limit int) (model.SearchResult, error)
	Upload(ctx context.Context, in api.UploadInput) (model.Document, error)
}

// TagsAPI is what the tag view calls.
type TagsAPI interface {
	List(ctx context.Context) ([]model.Tag, error)
	Create(ctx context.Context, name string) (model.Tag, error)
}

// Refresher re-issues a list query after a mutation.
type Refresher interface {
	Load(ctx context.Context) error
}

var (
	_ AuthAPI      = (*api.Auth)(nil)
	_ DocumentsAPI = (*api.Documents)(nil)
	_ TagsAPI      = (*api.Tags)(nil)
)

// HandleError sends the navigator to the login view when err ended the
// session, unless login is already showing. It reports whether it redirected.
// Call it once per failed action.
func HandleError(nav Navigator, err error) bool {
	if nav == nil || !apierr.IsSessionExpired(err) {
		return false
	}
	if nav.Current() == RouteLogin {
		return false
	}
	navigate(nav, RouteLogin)
	return true
}

// navigate moves nav to route; a nil navigator stays put.
func navigate(nav Navigator, route string) {
	if nav != nil {
		nav.Go(route)
	}
}

// Message turns err into the text a view shows: the backend's detail when
// there is one, fallback otherwise.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if d := apierr.DetailOf(err); d != "" {
		return d
	}
	return fallback
}

// state is the part every view shares. The zero value is Idle.
type state struct {
	mu     sync.Mutex
	status Status
	msg    string
	busy   bool
}

// begin marks the view Loading. It fails with ErrBusy while another action runs.
func (s *state) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	s.status = Loading
	s.msg = ""
	return nil
}

func (s *state) succeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.status = Ready
	s.msg = ""
}

func (s *state) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.status = Failed
	s.msg = msg
}

// Status returns the view's current status.
func (s *state) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ErrorMessage returns the message of the last failure, or "".
func (s *state) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

// finish records the outcome of an action: on failure the message comes from
// err or fallback and the session redirect is applied.
func (s *state) finish(nav Navigator, err error, fallback string) error {
	if err == nil {
		s.succeed()
		return nil
	}
	s.fail(Message(err, fallback))
	HandleError(nav, err)
	return err
}

// required fails the view without a request when any value is blank.
func (s *state) required(msg string, values ...string) error {
	for _, v := range values {
		if isBlank(v) {
			s.fail(msg)
			return apierr.Validation(msg)
		}
	}
	return nil
}
