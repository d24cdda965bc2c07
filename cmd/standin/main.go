// Command standin serves the in-memory knowledge API for local development.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"nibblify/internal/config"
	"nibblify/internal/logger"
	"nibblify/internal/model"
	"nibblify/internal/otel"
	"nibblify/internal/standin"
)

func main() {
	// Load configuration from the environment (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		logger.Must("error").Fatal("failed to load config", zap.Error(err))
	}
	log := logger.Must(cfg.Observability.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "nibblify-standin", log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := standin.New(standin.Options{
		JWTSecret: cfg.StandIn.JWTSecret,
		TokenTTL:  time.Duration(cfg.StandIn.TokenTTLMinutes) * time.Minute,
		// Demo account for local sign-in.
		Seed:     []model.RegisterCredentials{{Email: "admin@example.com", Password: "admin123", FullName: "Admin"}},
		Logger:   log,
		Registry: reg,
		Tracing:  true,
	})
	if err != nil {
		log.Fatal("failed to build stand-in", zap.Error(err))
	}

	addr := ":" + cfg.StandIn.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("stand-in listening", zap.String("addr", addr))
		errCh <- srv.App.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("failed to start server", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown failed", zap.Error(err))
	}
}
