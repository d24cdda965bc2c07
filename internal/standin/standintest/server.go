// Package standintest starts the stand-in backend behind an httptest.Server.
package standintest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/crypto/bcrypt"

	"nibblify/internal/model"
	"nibblify/internal/standin"
)

// Seeded account available on every server.
const (
	Email    = "admin@example.com"
	Password = "admin123"
	FullName = "Admin"
)

// Server is a running stand-in with a request counter.
type Server struct {
	*httptest.Server
	requests atomic.Int64
}

// BaseURL is the API root, as the client expects it.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v1"
}

// Requests returns how many HTTP requests reached the server.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Start runs a fresh stand-in for the duration of the test.
func Start(t testing.TB) *Server {
	t.Helper()
	srv, err := standin.New(standin.Options{
		JWTSecret:  "test-secret",
		BcryptCost: bcrypt.MinCost,
		Seed:       []model.RegisterCredentials{{Email: Email, Password: Password, FullName: FullName}},
	})
	if err != nil {
		t.Fatalf("start stand-in: %v", err)
	}

	s := &Server{}
	h := adaptor.FiberApp(srv.App)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		s.Close()
		_ = srv.Shutdown(context.Background())
	})
	return s
}
