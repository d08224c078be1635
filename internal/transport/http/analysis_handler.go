package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"salespulse/internal/analysis"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/session"
)

// AnalysisHandler runs analysis capabilities against the session
// dataset
type AnalysisHandler struct {
	runner   *analysis.Runner
	sessions *session.Manager
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(runner *analysis.Runner, sessions *session.Manager, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		runner:   runner,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes(sessionCtx func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(sessionCtx)

	r.Get("/", h.ListCapabilities)
	r.Post("/{capability}", h.RunCapability)

	return r
}

// ListCapabilities returns the registered capability names
func (h *AnalysisHandler) ListCapabilities(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"capabilities": h.runner.Registry().ListNames(),
	})
}

// AnalysisRequest carries caller-supplied capability parameters.
// Omitted fields fall back to the unattended-run defaults; semantic
// range checks beyond these structural bounds belong to the capability
// itself.
type AnalysisRequest struct {
	Horizon       int     `json:"horizon,omitempty" validate:"omitempty,min=1,max=730"`
	K             int     `json:"k,omitempty" validate:"omitempty,min=1"`
	Method        string  `json:"method,omitempty"`
	TrainFraction float64 `json:"train_fraction,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// RunCapability executes one capability against the session dataset
func (h *AnalysisHandler) RunCapability(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "capability")
	if !h.runner.Registry().Has(name) {
		render.Render(w, r, apierrors.NewWithDetails(
			http.StatusNotFound, "CAPABILITY_NOT_FOUND", "Analysis capability not registered", name))
		return
	}

	var req AnalysisRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Render(w, r, apierrors.ErrInvalidRequest)
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		return
	}

	params := analysis.DefaultParams()
	if req.Horizon > 0 {
		params.Horizon = req.Horizon
	}
	if req.K > 0 {
		params.K = req.K
	}
	if req.Method != "" {
		params.Method = req.Method
	}
	if req.TrainFraction > 0 {
		params.TrainFraction = req.TrainFraction
	}

	s := SessionFromContext(r.Context())
	result, err := h.runner.Run(r.Context(), s.Dataset(), name, params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "capability run failed",
			slog.String("capability", name),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.FromAppError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"capability": name,
		"result":     result,
	})
}
