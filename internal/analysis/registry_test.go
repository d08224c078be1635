package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

type fakeCapability struct {
	name string
}

func (f *fakeCapability) Name() string { return f.name }

func (f *fakeCapability) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	return &CorrelationResult{}, nil
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&fakeCapability{name: "a"}))
	require.NoError(t, r.Register(&fakeCapability{name: "b"}))

	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, []string{"a", "b"}, r.ListNames())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeCapability{name: "a"}))
	assert.Error(t, r.Register(&fakeCapability{name: "a"}))
}

func TestRegistryRejectsNilAndUnnamed(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&fakeCapability{name: ""}))
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeCapability{name: "a"}))
	require.NoError(t, r.Register(&fakeCapability{name: "b"}))

	require.NoError(t, r.Unregister("a"))
	assert.False(t, r.Has("a"))
	assert.Equal(t, []string{"b"}, r.ListNames())

	assert.Error(t, r.Unregister("a"))
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	want := &fakeCapability{name: "a"}
	require.NoError(t, r.Register(want))

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Same(t, want, got)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestRegistryListPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		require.NoError(t, r.Register(&fakeCapability{name: n}))
	}

	var got []string
	for _, c := range r.List() {
		got = append(got, c.Name())
	}
	assert.Equal(t, names, got)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{
		CapabilityForecast,
		CapabilityCluster,
		CapabilityRegression,
		CapabilityCorrelation,
		CapabilityHypothesis,
	} {
		assert.True(t, r.Has(name), "missing capability %s", name)
	}
	assert.Equal(t, 5, r.Count())
}
