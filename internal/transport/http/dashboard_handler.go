// Package http contains the HTTP handlers of the dashboard server.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/aggregate"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/session"
)

// SessionHeader carries the dashboard session id between page and
// server
const SessionHeader = "X-Session-ID"

type sessionCtxKey struct{}

// DashboardHandler serves the session-scoped dashboard views
type DashboardHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(sessions *session.Manager, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Routes returns the dashboard view routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.SessionCtx)

	r.Get("/highlights", h.GetHighlights)
	r.Get("/summary/region", h.GetRegionSummary)
	r.Get("/summary/product", h.GetProductSummary)
	r.Get("/stats", h.GetStats)
	r.Get("/series", h.GetSeries)
	r.Post("/session/restart", h.RestartSession)

	return r
}

// SessionCtx resolves the dashboard session from the request header,
// creating one when absent, and stores it in the request context. The
// session id is always echoed in the response header.
func (h *DashboardHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s *session.Session
		if id := r.Header.Get(SessionHeader); id != "" {
			if existing, err := h.sessions.Get(id); err == nil {
				s = existing
			}
		}
		if s == nil {
			s = h.sessions.Create(r.Context())
		}

		w.Header().Set(SessionHeader, s.ID())
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session stored by SessionCtx
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*session.Session)
	return s
}

// HighlightsResponse carries the dashboard value-box figures
type HighlightsResponse struct {
	SessionID    string  `json:"session_id"`
	Seed         uint64  `json:"seed"`
	RecordCount  int     `json:"record_count"`
	TotalSales   float64 `json:"total_sales"`
	AvgCustomers float64 `json:"avg_customers"`
}

// GetHighlights returns the value-box figures for the session dataset
func (h *DashboardHandler) GetHighlights(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	ds := s.Dataset()

	var customers int
	for _, rec := range ds.Records {
		customers += rec.Customers
	}

	render.JSON(w, r, HighlightsResponse{
		SessionID:    s.ID(),
		Seed:         s.Seed(),
		RecordCount:  ds.Len(),
		TotalSales:   ds.TotalSales(),
		AvgCustomers: float64(customers) / float64(ds.Len()),
	})
}

// GetRegionSummary returns the per-region aggregation of the session
// dataset
func (h *DashboardHandler) GetRegionSummary(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	render.JSON(w, r, aggregate.ByRegion(s.Dataset()))
}

// GetProductSummary returns the per-product aggregation of the session
// dataset
func (h *DashboardHandler) GetProductSummary(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	render.JSON(w, r, aggregate.ByProduct(s.Dataset()))
}

// GetStats returns descriptive statistics of the session dataset
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	render.JSON(w, r, aggregate.Describe(s.Dataset()))
}

// SeriesPoint is one chart data point
type SeriesPoint struct {
	Date      string  `json:"date"`
	Sales     float64 `json:"sales"`
	Customers int     `json:"customers"`
}

// GetSeries returns the daily series for the trend chart
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	ds := s.Dataset()

	points := make([]SeriesPoint, ds.Len())
	for i, rec := range ds.Records {
		points[i] = SeriesPoint{
			Date:      rec.Date.Format("2006-01-02"),
			Sales:     rec.Sales,
			Customers: rec.Customers,
		}
	}
	render.JSON(w, r, points)
}

// RestartRequest optionally overrides the seed of the regenerated
// dataset
type RestartRequest struct {
	Seed *uint64 `json:"seed,omitempty"`
}

// RestartSession regenerates the session dataset. This is the only
// dashboard interaction that changes session state; every other view
// reads the cached dataset.
func (h *DashboardHandler) RestartSession(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())

	var req RestartRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Render(w, r, apierrors.ErrInvalidRequest)
			return
		}
	}

	seed := s.Seed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	s.Restart(seed)

	h.logger.InfoContext(r.Context(), "session restarted via API",
		slog.String("session_id", s.ID()),
		slog.Uint64("seed", seed))
	render.JSON(w, r, map[string]interface{}{
		"session_id": s.ID(),
		"seed":       seed,
		"records":    s.Dataset().Len(),
	})
}
