// Package app wires configuration, logging, metrics, the session
// manager, the analysis runner and the HTTP transport into a runnable
// dashboard server.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"salespulse/internal/analysis"
	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
	custommw "salespulse/internal/middleware"
	"salespulse/internal/session"
	handlers "salespulse/internal/transport/http"
	ws "salespulse/internal/websocket"
	"salespulse/pkg/contracts"
)

const (
	// Version is the application version
	Version = contracts.Version
	// AppName is the human-readable application name
	AppName = "SalesPulse"
)

// Application is the dashboard server container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Hub           *ws.Hub
	Sessions      *session.Manager
	Runner        *analysis.Runner
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.AppMetrics
	FrontendFS    fs.FS

	// session ids with a live hub bridge
	boundMu sync.Mutex
	bound   map[string]struct{}
}

// NewApplication builds the application with all dependencies wired
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel("salespulse-web", Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateAppMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	hub := ws.NewHub(logger)
	hub.Start()

	app := &Application{
		Config:        cfg,
		Hub:           hub,
		Sessions:      session.NewManager(cfg.Generator.Seed, logger, metrics),
		Runner:        analysis.NewRunner(analysis.DefaultRegistry(), logger, metrics),
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		FrontendFS:    frontendFS,
		bound:         make(map[string]struct{}),
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware first so the websocket upgrade is not pushed
	// through response-wrapping handlers
	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)

	r.HandleFunc("/ws", a.handleWebSocket)

	// Prometheus scrape endpoint stays outside the full stack
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(custommw.Metrics(a.Metrics))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontend(r)
	})

	a.Router = r
}

// setupAPIRoutes mounts the dashboard API
func (a *Application) setupAPIRoutes(r chi.Router) {
	dashboard := handlers.NewDashboardHandler(a.Sessions, a.Logger)
	analysisHandler := handlers.NewAnalysisHandler(a.Runner, a.Sessions, a.Logger)
	health := handlers.NewHealthHandler(Version, a.Sessions, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(a.Config.Server.ReadTimeout))
		r.Mount("/analysis", analysisHandler.Routes(dashboard.SessionCtx))
		r.Mount("/", dashboard.Routes())
	})
	r.Mount("/healthz", health.Routes())
}

// setupFrontend serves the embedded single-page dashboard
func (a *Application) setupFrontend(r chi.Router) {
	if a.FrontendFS == nil {
		return
	}
	fileServer := http.FileServer(http.FS(a.FrontendFS))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		req.URL.Path = "/"
		fileServer.ServeHTTP(w, req)
	})
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// handleWebSocket upgrades the connection and binds the client to a
// dashboard session. The session comes from the "session" query
// parameter; an unknown or missing id gets a fresh session so a page
// that connects before its first API call still works.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.WithTraceID(r.Context(), custommw.GetReqID(r.Context()))

	var s *session.Session
	if id := r.URL.Query().Get("session"); id != "" {
		if existing, err := a.Sessions.Get(id); err == nil {
			s = existing
		}
	}
	if s == nil {
		s = a.Sessions.Create(ctx)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// Same-host pages only; the dashboard is served by this
			// process
			origin := r.Header.Get("Origin")
			return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	a.bindSessionEvents(s)

	client := ws.NewClient(a.Hub, conn, s.ID(), a.Logger)
	client.Register()

	a.Hub.NotifySession(s.ID(), ws.TypeConnection, map[string]interface{}{
		"session_id": s.ID(),
		"seed":       s.Seed(),
		"records":    s.Dataset().Len(),
	})
}

// bindSessionEvents forwards session invalidation events to the hub.
// One bridge per session, kept for the session's lifetime.
func (a *Application) bindSessionEvents(s *session.Session) {
	a.boundMu.Lock()
	defer a.boundMu.Unlock()
	if _, ok := a.bound[s.ID()]; ok {
		return
	}
	a.bound[s.ID()] = struct{}{}

	sessionID := s.ID()
	s.Subscribe(func(event string) {
		if event != session.EventDatasetRefresh {
			return
		}
		ds, err := a.Sessions.Get(sessionID)
		if err != nil {
			return
		}
		a.Hub.NotifySession(sessionID, ws.TypeDatasetRefresh, map[string]interface{}{
			"seed":    ds.Seed(),
			"records": ds.Dataset().Len(),
		})
	})
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run serves until the process is interrupted or the server fails,
// then shuts down gracefully
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Detach shutdown from the cancelled run context
		return a.Stop(context.Background())
	})

	return g.Wait()
}
