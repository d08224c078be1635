// Package aggregate reduces a dataset into grouped summaries and
// descriptive statistics. All reductions are pure functions of the
// dataset and are invariant to record order.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"salespulse/pkg/contracts/domain"
)

type groupAccumulator struct {
	sales     []float64
	customers int
}

// ByRegion groups records by region and computes per-region totals.
// Regions absent from the dataset are absent from the output; the
// result is sorted lexicographically by region name for reproducible
// output.
func ByRegion(ds *domain.Dataset) []domain.RegionSummary {
	groups := make(map[domain.Region]*groupAccumulator)
	for _, r := range ds.Records {
		g, ok := groups[r.Region]
		if !ok {
			g = &groupAccumulator{}
			groups[r.Region] = g
		}
		g.sales = append(g.sales, r.Sales)
		g.customers += r.Customers
	}

	summaries := make([]domain.RegionSummary, 0, len(groups))
	for region, g := range groups {
		sort.Float64s(g.sales)
		summaries = append(summaries, domain.RegionSummary{
			Region:       region,
			RecordCount:  len(g.sales),
			TotalSales:   floats.Sum(g.sales),
			AvgCustomers: float64(g.customers) / float64(len(g.sales)),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Region < summaries[j].Region
	})
	return summaries
}

// ByProduct groups records by product line and computes per-product
// totals, sorted lexicographically by product name.
func ByProduct(ds *domain.Dataset) []domain.ProductSummary {
	groups := make(map[domain.Product]*groupAccumulator)
	for _, r := range ds.Records {
		g, ok := groups[r.Product]
		if !ok {
			g = &groupAccumulator{}
			groups[r.Product] = g
		}
		g.sales = append(g.sales, r.Sales)
		g.customers += r.Customers
	}

	summaries := make([]domain.ProductSummary, 0, len(groups))
	for product, g := range groups {
		sort.Float64s(g.sales)
		summaries = append(summaries, domain.ProductSummary{
			Product:      product,
			RecordCount:  len(g.sales),
			TotalSales:   floats.Sum(g.sales),
			AvgCustomers: float64(g.customers) / float64(len(g.sales)),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Product < summaries[j].Product
	})
	return summaries
}
