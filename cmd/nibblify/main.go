// Command nibblify is the terminal client for the knowledge API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"nibblify/internal/api"
	"nibblify/internal/client"
	"nibblify/internal/config"
	"nibblify/internal/logger"
	"nibblify/internal/otel"
	"nibblify/internal/session"
	"nibblify/internal/storage"
	"nibblify/internal/transport"
	"nibblify/internal/views"
)

type command struct {
	usage string
	// start is the route the navigator begins on.
	start string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login -email EMAIL [-password PASSWORD]", start: views.RouteLogin, run: runLogin},
	"register": {usage: "register -email EMAIL -name NAME [-password PASSWORD]", start: views.RouteRegister, run: runRegister},
	"logout":   {usage: "logout", start: views.RouteLogin, run: runLogout},
	"whoami":   {usage: "whoami", start: views.RouteDocuments, run: runWhoAmI},
	"list":     {usage: "list", start: views.RouteDocuments, run: runList},
	"show":     {usage: "show ID", start: views.RouteDocuments, run: runShow},
	"create":   {usage: "create -title TITLE [-content TEXT] [-url URL] [-tag ID]...", start: views.RouteNew, run: runCreate},
	"edit":     {usage: "edit ID [-title TITLE] [-content TEXT] [-archived true|false]", start: views.RouteDocuments, run: runEdit},
	"delete":   {usage: "delete ID", start: views.RouteDocuments, run: runDelete},
	"upload":   {usage: "upload [-title TITLE] [-tag ID]... FILE.pdf", start: views.RouteUpload, run: runUpload},
	"search":   {usage: "search [-page N] [-limit N] [-all] [-archived true|false] [-type pdf] QUERY", start: views.RouteSearch, run: runSearch},
	"tags":     {usage: "tags [-create NAME]", start: views.RouteDocuments, run: runTags},
}

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	sessions *session.Store
	api      *api.API
	nav      *views.Router
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage()
		os.Exit(1)
	}
	os.Exit(run(cmd, os.Args[2:]))
}

func run(cmd command, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	log := logger.Must(cfg.Observability.LogLevel)
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := otel.Init(ctx, "nibblify", log)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("tracing shutdown failed", zap.Error(err))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	a, err := newApp(cfg, log, reg, cmd.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer writeMetrics(cfg.Observability.MetricsFile, reg, log)

	if err := cmd.run(ctx, a, args); err != nil {
		if a.nav.Current() == views.RouteLogin && cmd.start != views.RouteLogin {
			color.New(color.FgYellow).Fprintln(os.Stderr, "Your session has expired. Run `nibblify login` to sign in again.")
		}
		log.Debug("command failed", zap.Error(err))
		return 1
	}
	return 0
}

func newApp(cfg *config.AppConfig, log *zap.Logger, reg prometheus.Registerer, start string) (*app, error) {
	kv, err := storage.NewFile(cfg.Session.Dir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sessions := session.NewStore(kv, log)

	metrics, err := transport.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	tr, err := transport.New(transport.Options{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.Client.Timeout(),
		Tokens:  sessions,
		Logger:  log,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	c := client.New(tr, sessions, log)

	return &app{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		api:      api.New(c, sessions, api.Options{MaxUploadBytes: cfg.Client.MaxUploadBytes, Logger: log}),
		nav:      views.NewRouter(start),
	}, nil
}

func writeMetrics(path string, g prometheus.Gatherer, log *zap.Logger) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		log.Warn("failed to write metrics file", zap.String("path", path), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println("Usage: nibblify <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s\n", commands[name].usage)
	}
}
