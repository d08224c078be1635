package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/generator"
	"salespulse/pkg/contracts/domain"
)

type failingCapability struct {
	name string
	err  error
}

func (f *failingCapability) Name() string { return f.name }

func (f *failingCapability) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	return nil, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerRun(t *testing.T) {
	ds := generator.Generate(123)
	runner := NewRunner(DefaultRegistry(), testLogger(), nil)

	result, err := runner.Run(context.Background(), ds, CapabilityCorrelation, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, CapabilityCorrelation, result.Kind())
}

func TestRunnerRunUnknownCapability(t *testing.T) {
	ds := generator.Generate(1)
	runner := NewRunner(NewRegistry(), testLogger(), nil)

	_, err := runner.Run(context.Background(), ds, "missing", Params{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestRunnerRunAll(t *testing.T) {
	ds := generator.Generate(123)
	runner := NewRunner(DefaultRegistry(), testLogger(), nil)

	results := runner.RunAll(context.Background(), ds, DefaultParams())

	require.Len(t, results, 5)
	for _, name := range []string{
		CapabilityForecast, CapabilityCluster, CapabilityRegression,
		CapabilityCorrelation, CapabilityHypothesis,
	} {
		result, ok := results[name]
		require.True(t, ok, "missing result for %s", name)
		assert.Equal(t, name, result.Kind())
	}
}

func TestRunnerRunAllEmptyRegistry(t *testing.T) {
	// Graceful degradation: with nothing registered the run completes
	// with an empty result set.
	ds := generator.Generate(1)
	runner := NewRunner(NewRegistry(), testLogger(), nil)

	results := runner.RunAll(context.Background(), ds, DefaultParams())
	assert.Empty(t, results)
}

func TestRunnerRunAllSkipsFailingCapability(t *testing.T) {
	ds := generator.Generate(123)

	registry := NewRegistry()
	require.NoError(t, registry.Register(&failingCapability{
		name: "bad-input",
		err:  apperrors.NewInvalidParameterError("bad k"),
	}))
	require.NoError(t, registry.Register(&failingCapability{
		name: "broken",
		err:  errors.New("internal failure"),
	}))
	require.NoError(t, registry.Register(NewCorrelator()))

	runner := NewRunner(registry, testLogger(), nil)
	results := runner.RunAll(context.Background(), ds, DefaultParams())

	// Failing capabilities are omitted, the rest still run
	require.Len(t, results, 1)
	assert.Contains(t, results, CapabilityCorrelation)
}
