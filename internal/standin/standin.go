// Package standin assembles the in-memory REST backend used for local
// development and end-to-end tests of the client.
package standin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"nibblify/internal/http/handler"
	"nibblify/internal/http/middleware"
	"nibblify/internal/model"
	"nibblify/internal/repository/memory"
	"nibblify/internal/search"
	"nibblify/internal/service"
)

// Options configures New. Zero values pick working defaults.
type Options struct {
	// JWTSecret signs access tokens; a random secret is generated when empty.
	JWTSecret string
	TokenTTL  time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost; tests pass bcrypt.MinCost.
	BcryptCost     int
	MaxUploadBytes int64
	// Seed accounts are registered at start-up.
	Seed     []model.RegisterCredentials
	Logger   *zap.Logger
	Registry *prometheus.Registry
	// Tracing enables the otelfiber middleware.
	Tracing bool
}

// Server is an assembled stand-in backend.
type Server struct {
	App   *fiber.App
	index *search.Index
}

// New wires repositories, services, middleware and routes into a fiber app.
func New(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	secret := opts.JWTSecret
	if secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = hex.EncodeToString(b)
		log.Warn("no JWT secret configured, tokens will not survive a restart")
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = service.DefaultMaxUploadBytes
	}

	index, err := search.NewIndex()
	if err != nil {
		return nil, err
	}
	users := memory.NewUserMemory()
	tags := memory.NewTagMemory()

	authSvc, err := service.NewAuthService(users, service.AuthConfig{
		Secret:     []byte(secret),
		TokenTTL:   opts.TokenTTL,
		BcryptCost: opts.BcryptCost,
	})
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	docSvc := service.NewDocumentService(memory.NewDocumentMemory(), tags, index, maxUpload, log)
	tagSvc := service.NewTagService(tags)

	for _, cred := range opts.Seed {
		u, err := authSvc.Register(context.Background(), cred)
		if errors.Is(err, service.ErrEmailTaken) {
			continue
		}
		if err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("seed user %s: %w", cred.Email, err)
		}
		log.Info("seeded user", zap.String("email", u.Email), zap.String("id", u.ID.String()))
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler(),
		BodyLimit:             int(maxUpload) + 1<<20,
		DisableStartupMessage: true,
	})
	if opts.Tracing {
		app.Use(otelfiber.Middleware())
	}
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handler.RegisterRoutes(app, handler.Services{
		Auth:      authSvc,
		Documents: docSvc,
		Tags:      tagSvc,
		Log:       log,
		Gatherer:  reg,
	})

	return &Server{App: app, index: index}, nil
}

// Shutdown stops the app and releases the search index.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.App.ShutdownWithContext(ctx), s.index.Close())
}
