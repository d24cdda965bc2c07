package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nibblify/internal/http/middleware"
	"nibblify/internal/service"
)

// APIPrefix is the versioned mount point of the REST API.
const APIPrefix = "/api/v1"

// Services bundles what the routes call into.
type Services struct {
	Auth      service.AuthService
	Documents service.DocumentService
	Tags      service.TagService
	Log       *zap.Logger
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, s Services) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/health", HealthCheck())
	app.Get("/healthz", LivenessProbe())
	if s.Gatherer != nil {
		app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group(APIPrefix)

	auth := api.Group("/auth")
	auth.Post("/login/access-token", Login(s.Auth, log))
	auth.Post("/register", Register(s.Auth, log))
	auth.Get("/me", middleware.Authenticate(s.Auth), Me())

	kb := api.Group("/knowledge", middleware.Authenticate(s.Auth))
	kb.Get("/documents", ListDocuments(s.Documents, log))
	kb.Post("/documents", CreateDocument(s.Documents, log))
	kb.Post("/documents/upload", UploadDocument(s.Documents, log))
	kb.Post("/documents/search", SearchDocuments(s.Documents, log))
	kb.Get("/documents/:id", GetDocument(s.Documents, log))
	kb.Put("/documents/:id", UpdateDocument(s.Documents, log))
	kb.Delete("/documents/:id", DeleteDocument(s.Documents, log))
	kb.Get("/tags", ListTags(s.Tags, log))
	kb.Post("/tags", CreateTag(s.Tags, log))
}
