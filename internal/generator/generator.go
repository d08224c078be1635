// Package generator produces the synthetic sales dataset that feeds the
// batch report and the dashboard. It is the single source of truth for
// the pipeline; every downstream consumer treats its output as
// read-only.
package generator

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"salespulse/pkg/contracts/domain"
)

const (
	// DatasetDays is the fixed dataset size, one record per day of 2023
	DatasetDays = 365

	salesMean      = 1000.0
	salesStdDev    = 200.0
	customerMean   = 50.0
	customerStdDev = 10.0
)

// startDate is the first day of the simulated year
var startDate = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generate produces one simulated year of daily sales records. Given
// the same seed it produces the same dataset on every call; it performs
// no I/O and cannot fail.
func Generate(seed uint64) *domain.Dataset {
	src := rand.NewSource(seed)
	rng := rand.New(src)

	salesDist := distuv.Normal{Mu: salesMean, Sigma: salesStdDev, Src: src}
	customerDist := distuv.Normal{Mu: customerMean, Sigma: customerStdDev, Src: src}

	records := make([]domain.Record, DatasetDays)
	for i := range records {
		records[i] = domain.Record{
			Date:      startDate.AddDate(0, 0, i),
			Sales:     math.Round(salesDist.Rand()*100) / 100,
			Customers: int(math.Round(customerDist.Rand())),
			Region:    domain.Regions[rng.Intn(len(domain.Regions))],
			Product:   domain.Products[rng.Intn(len(domain.Products))],
		}
	}

	return &domain.Dataset{Seed: seed, Records: records}
}
