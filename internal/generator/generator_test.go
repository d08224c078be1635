package generator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestGenerateDeterminism(t *testing.T) {
	seeds := []uint64{0, 1, 123, 99999}
	for _, seed := range seeds {
		first := Generate(seed)
		second := Generate(seed)
		assert.Equal(t, first, second, "seed %d must reproduce the same dataset", seed)
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	a := Generate(1)
	b := Generate(2)
	assert.NotEqual(t, a.Records, b.Records)
}

func TestGenerateDatasetShape(t *testing.T) {
	ds := Generate(123)

	require.Len(t, ds.Records, DatasetDays)
	assert.Equal(t, uint64(123), ds.Seed)

	// Dates start 2023-01-01 and are strictly increasing and contiguous
	want := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range ds.Records {
		assert.True(t, r.Date.Equal(want), "record %d: got date %s, want %s", i, r.Date, want)
		want = want.AddDate(0, 0, 1)
	}
	assert.True(t, ds.Records[len(ds.Records)-1].Date.Equal(
		time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestGenerateFieldDomains(t *testing.T) {
	ds := Generate(7)

	validRegions := map[domain.Region]bool{}
	for _, r := range domain.Regions {
		validRegions[r] = true
	}
	validProducts := map[domain.Product]bool{}
	for _, p := range domain.Products {
		validProducts[p] = true
	}

	for i, r := range ds.Records {
		assert.True(t, validRegions[r.Region], "record %d: unknown region %q", i, r.Region)
		assert.True(t, validProducts[r.Product], "record %d: unknown product %q", i, r.Product)

		// Sales are rounded to 2 decimal places
		assert.Equal(t, math.Round(r.Sales*100)/100, r.Sales,
			"record %d: sales %f not rounded to cents", i, r.Sales)
	}
}

func TestGenerateDistributionCenters(t *testing.T) {
	// With 365 samples the sample means should land well within a few
	// standard errors of the configured distribution means.
	ds := Generate(123)

	var salesSum, custSum float64
	for _, r := range ds.Records {
		salesSum += r.Sales
		custSum += float64(r.Customers)
	}
	assert.InDelta(t, salesMean, salesSum/float64(ds.Len()), 4*salesStdDev/19)
	assert.InDelta(t, customerMean, custSum/float64(ds.Len()), 4*customerStdDev/19)
}
