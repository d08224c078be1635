package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/generator"
	"salespulse/pkg/contracts/domain"
)

func day(n int) time.Time {
	return time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestByRegion(t *testing.T) {
	ds := &domain.Dataset{Records: []domain.Record{
		{Date: day(0), Sales: 100, Customers: 10, Region: domain.RegionNorth, Product: domain.ProductA},
		{Date: day(1), Sales: 200, Customers: 20, Region: domain.RegionSouth, Product: domain.ProductB},
		{Date: day(2), Sales: 300, Customers: 30, Region: domain.RegionNorth, Product: domain.ProductC},
	}}

	summaries := ByRegion(ds)
	require.Len(t, summaries, 2)

	// Sorted lexicographically: North before South
	assert.Equal(t, domain.RegionNorth, summaries[0].Region)
	assert.Equal(t, 2, summaries[0].RecordCount)
	assert.InDelta(t, 400.0, summaries[0].TotalSales, 1e-9)
	assert.InDelta(t, 20.0, summaries[0].AvgCustomers, 1e-9)

	assert.Equal(t, domain.RegionSouth, summaries[1].Region)
	assert.Equal(t, 1, summaries[1].RecordCount)
	assert.InDelta(t, 200.0, summaries[1].TotalSales, 1e-9)
	assert.InDelta(t, 20.0, summaries[1].AvgCustomers, 1e-9)
}

func TestByRegionOmitsEmptyRegions(t *testing.T) {
	ds := &domain.Dataset{Records: []domain.Record{
		{Date: day(0), Sales: 50, Customers: 5, Region: domain.RegionEast, Product: domain.ProductA},
	}}

	summaries := ByRegion(ds)
	require.Len(t, summaries, 1)
	assert.Equal(t, domain.RegionEast, summaries[0].Region)
}

func TestByRegionConservation(t *testing.T) {
	ds := generator.Generate(123)
	summaries := ByRegion(ds)
	require.Len(t, summaries, 4)

	var grouped float64
	for _, s := range summaries {
		grouped += s.TotalSales
	}
	assert.InDelta(t, ds.TotalSales(), grouped, 1e-6)
}

func TestByRegionPermutationInvariance(t *testing.T) {
	ds := generator.Generate(42)
	want := ByRegion(ds)

	shuffled := &domain.Dataset{Records: make([]domain.Record, len(ds.Records))}
	copy(shuffled.Records, ds.Records)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled.Records), func(i, j int) {
		shuffled.Records[i], shuffled.Records[j] = shuffled.Records[j], shuffled.Records[i]
	})

	assert.Equal(t, want, ByRegion(shuffled))
}

func TestByProduct(t *testing.T) {
	ds := &domain.Dataset{Records: []domain.Record{
		{Date: day(0), Sales: 10, Customers: 1, Region: domain.RegionNorth, Product: domain.ProductB},
		{Date: day(1), Sales: 30, Customers: 3, Region: domain.RegionWest, Product: domain.ProductA},
		{Date: day(2), Sales: 20, Customers: 2, Region: domain.RegionEast, Product: domain.ProductB},
	}}

	summaries := ByProduct(ds)
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.ProductA, summaries[0].Product)
	assert.InDelta(t, 30.0, summaries[0].TotalSales, 1e-9)
	assert.Equal(t, domain.ProductB, summaries[1].Product)
	assert.InDelta(t, 30.0, summaries[1].TotalSales, 1e-9)
	assert.Equal(t, 2, summaries[1].RecordCount)
}

func TestDescribe(t *testing.T) {
	ds := generator.Generate(123)
	stats := Describe(ds)
	require.Len(t, stats, 2)

	sales := stats[0]
	assert.Equal(t, "sales", sales.Field)
	assert.Equal(t, 365, sales.Count)
	assert.InDelta(t, 1000, sales.Mean, 50)
	assert.InDelta(t, 200, sales.StdDev, 40)
	assert.LessOrEqual(t, sales.Min, sales.Q1)
	assert.LessOrEqual(t, sales.Q1, sales.Median)
	assert.LessOrEqual(t, sales.Median, sales.Q3)
	assert.LessOrEqual(t, sales.Q3, sales.Max)

	customers := stats[1]
	assert.Equal(t, "customers", customers.Field)
	assert.InDelta(t, 50, customers.Mean, 3)
}
