package analysis

import (
	"context"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Clusterer partitions records into k groups by k-means over the
// standardized sales and customers fields only.
type Clusterer struct{}

// NewClusterer creates the clustering capability
func NewClusterer() *Clusterer {
	return &Clusterer{}
}

// Name implements Capability
func (c *Clusterer) Name() string { return CapabilityCluster }

// Run implements Capability
func (c *Clusterer) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	k := params.K
	n := ds.Len()
	if k < 1 {
		return nil, apperrors.NewInvalidParameterError(
			fmt.Sprintf("k must be at least 1, got %d", k))
	}
	if k > n {
		return nil, apperrors.NewInvalidParameterError(
			fmt.Sprintf("k (%d) exceeds record count (%d)", k, n))
	}

	sales := standardize(ds.Sales())
	customers := standardize(ds.Customers())

	observations := make(clusters.Observations, n)
	for i := 0; i < n; i++ {
		observations[i] = clusters.Coordinates{sales[i], customers[i]}
	}

	km := kmeans.New()
	partition, err := km.Partition(observations, k)
	if err != nil {
		return nil, fmt.Errorf("k-means partition: %w", err)
	}

	assignments := make([]int, n)
	for i, obs := range observations {
		assignments[i] = partition.Nearest(obs)
	}

	centers := make([][]float64, len(partition))
	for i, cl := range partition {
		center := make([]float64, len(cl.Center))
		copy(center, cl.Center)
		centers[i] = center
	}

	return &ClusterResult{
		K:           k,
		Assignments: assignments,
		Centers:     centers,
	}, nil
}

// standardize returns the values scaled to zero mean and unit variance.
// A constant column comes back as all zeros.
func standardize(values []float64) []float64 {
	mean, sd := stat.MeanStdDev(values, nil)
	out := make([]float64, len(values))
	if sd == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out
}
