package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// Runner executes registered capabilities against a dataset. Caller
// input errors from one capability are reported and its output
// omitted; the run itself never aborts on them.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *infrastructure.AppMetrics
}

// NewRunner creates a runner over the given registry. metrics may be
// nil when no meter is configured.
func NewRunner(registry *Registry, logger *slog.Logger, metrics *infrastructure.AppMetrics) *Runner {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Runner{
		registry: registry,
		logger:   logger.With(slog.String("component", "analysis.runner")),
		metrics:  metrics,
	}
}

// Registry returns the underlying capability registry
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run executes one capability by name
func (r *Runner) Run(ctx context.Context, ds *domain.Dataset, name string, params Params) (Result, error) {
	capability, err := r.registry.Get(name)
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("capability %s", name))
	}

	start := time.Now()
	result, err := capability.Run(ctx, ds, params)
	duration := time.Since(start)
	r.metrics.RecordAdapterRun(ctx, name, duration, err)

	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	r.logger.InfoContext(ctx, "capability completed",
		slog.String("capability", name),
		slog.Duration("duration", duration))
	return result, nil
}

// RunAll executes every registered capability in registration order
// with the given defaults and returns the results keyed by capability
// name. Capabilities that fail on caller input are logged and skipped.
func (r *Runner) RunAll(ctx context.Context, ds *domain.Dataset, params Params) map[string]Result {
	results := make(map[string]Result)
	for _, name := range r.registry.ListNames() {
		result, err := r.Run(ctx, ds, name, params)
		if err != nil {
			if apperrors.IsCallerInputError(err) {
				r.logger.WarnContext(ctx, "capability skipped",
					slog.String("capability", name),
					slog.String("error", err.Error()))
				continue
			}
			r.logger.ErrorContext(ctx, "capability failed",
				slog.String("capability", name),
				slog.String("error", err.Error()))
			continue
		}
		results[name] = result
	}
	return results
}
