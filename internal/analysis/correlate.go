package analysis

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"salespulse/pkg/contracts/domain"
)

// Correlator computes the pairwise Pearson correlation matrix over the
// numeric fields of the dataset.
type Correlator struct{}

// NewCorrelator creates the correlation capability
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// Name implements Capability
func (c *Correlator) Name() string { return CapabilityCorrelation }

// Run implements Capability. Incomplete observations are excluded
// pairwise, not dataset-wide, and the diagonal is exactly 1.0.
func (c *Correlator) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	fields := []string{"sales", "customers"}
	columns := [][]float64{ds.Sales(), ds.Customers()}

	size := len(fields)
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
		matrix[i][i] = 1.0
	}

	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			r := pairwiseCorrelation(columns[i], columns[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	return &CorrelationResult{Fields: fields, Matrix: matrix}, nil
}

// pairwiseCorrelation computes Pearson correlation over the complete
// pairs of the two columns
func pairwiseCorrelation(a, b []float64) float64 {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	return stat.Correlation(xs, ys, nil)
}
