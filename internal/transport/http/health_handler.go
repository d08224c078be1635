package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/session"
	"salespulse/pkg/contracts"
)

// HealthHandler serves liveness and version information
type HealthHandler struct {
	version   string
	startedAt time.Time
	sessions  *session.Manager
	logger    *slog.Logger
}

// NewHealthHandler creates a health handler
func NewHealthHandler(version string, sessions *session.Manager, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startedAt: time.Now().UTC(),
		sessions:  sessions,
		logger:    logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.HealthCheck)
	r.Get("/version", h.Version)
	return r
}

// HealthCheck reports server liveness and the live session count
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"uptime":   time.Since(h.startedAt).String(),
		"sessions": h.sessions.Count(),
	})
}

// Version reports build information
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
