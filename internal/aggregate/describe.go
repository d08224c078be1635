package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"salespulse/pkg/contracts/domain"
)

// Describe computes descriptive statistics for the numeric fields of
// the dataset, one FieldStats per field in a fixed order.
func Describe(ds *domain.Dataset) []domain.FieldStats {
	return []domain.FieldStats{
		describeField("sales", ds.Sales()),
		describeField("customers", ds.Customers()),
	}
}

func describeField(name string, values []float64) domain.FieldStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return domain.FieldStats{
		Field:  name,
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
}
