package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"salespulse/pkg/contracts/domain"
)

// normalitySampleCap bounds the sample size of the normality tests on
// very large datasets
const normalitySampleCap = 5000

// HypothesisTester runs the statistical test battery: per-field
// normality, one-way ANOVA of sales by region and by product, and a
// two-sample comparison between the first two distinct regions
// encountered.
type HypothesisTester struct {
	logger *slog.Logger
}

// NewHypothesisTester creates the hypothesis testing capability
func NewHypothesisTester() *HypothesisTester {
	return &HypothesisTester{logger: slog.Default()}
}

// Name implements Capability
func (h *HypothesisTester) Name() string { return CapabilityHypothesis }

// Run implements Capability. When fewer than two distinct regions
// exist the two-sample result is omitted with a logged warning rather
// than an error.
func (h *HypothesisTester) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	result := &HypothesisResult{}

	for _, fs := range []struct {
		name   string
		values []float64
	}{
		{"sales", ds.Sales()},
		{"customers", ds.Customers()},
	} {
		values := fs.values
		if len(values) > normalitySampleCap {
			values = values[:normalitySampleCap]
		}
		stat, p := jarqueBera(values)
		result.Normality = append(result.Normality, TestOutcome{
			Name:      fmt.Sprintf("normality_%s", fs.name),
			Statistic: stat,
			PValue:    p,
			Detail:    "Jarque-Bera",
		})
	}

	regionGroups := groupSalesBy(ds, func(r domain.Record) string { return string(r.Region) })
	if f, p, ok := oneWayANOVA(regionGroups); ok {
		result.ANOVA = append(result.ANOVA, TestOutcome{
			Name: "anova_sales_by_region", Statistic: f, PValue: p, Detail: "one-way ANOVA",
		})
	}
	productGroups := groupSalesBy(ds, func(r domain.Record) string { return string(r.Product) })
	if f, p, ok := oneWayANOVA(productGroups); ok {
		result.ANOVA = append(result.ANOVA, TestOutcome{
			Name: "anova_sales_by_product", Statistic: f, PValue: p, Detail: "one-way ANOVA",
		})
	}

	result.TwoSample = h.twoSampleByRegion(ctx, ds)

	return result, nil
}

// twoSampleByRegion runs Welch's t-test on sales between the first two
// distinct regions in record order. Returns nil when fewer than two
// regions exist.
func (h *HypothesisTester) twoSampleByRegion(ctx context.Context, ds *domain.Dataset) *TestOutcome {
	var first, second domain.Region
	var a, b []float64
	for _, r := range ds.Records {
		switch {
		case first == "":
			first = r.Region
		case second == "" && r.Region != first:
			second = r.Region
		}
		switch r.Region {
		case first:
			a = append(a, r.Sales)
		case second:
			b = append(b, r.Sales)
		}
	}

	if second == "" || len(a) < 2 || len(b) < 2 {
		h.logger.WarnContext(ctx, "skipping two-sample comparison",
			slog.String("reason", "fewer than two distinct regions"))
		return nil
	}

	t, p := welchT(a, b)
	return &TestOutcome{
		Name:      "welch_t_sales",
		Statistic: t,
		PValue:    p,
		Detail:    fmt.Sprintf("Welch two-sample t-test: %s vs %s", first, second),
	}
}

// jarqueBera tests departure from normality via sample skewness and
// kurtosis. The statistic is asymptotically chi-squared with 2 degrees
// of freedom.
func jarqueBera(values []float64) (statistic, pValue float64) {
	n := float64(len(values))
	skew := stat.Skew(values, nil)
	exKurt := stat.ExKurtosis(values, nil)

	statistic = n / 6 * (skew*skew + exKurt*exKurt/4)
	pValue = 1 - distuv.ChiSquared{K: 2}.CDF(statistic)
	return statistic, pValue
}

// oneWayANOVA computes the F statistic and p-value across the groups.
// Returns ok=false with fewer than two groups.
func oneWayANOVA(groups map[string][]float64) (f, p float64, ok bool) {
	k := len(groups)
	if k < 2 {
		return 0, 0, false
	}

	var n int
	var grandSum float64
	for _, g := range groups {
		n += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(n)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		gMean := stat.Mean(g, nil)
		d := gMean - grandMean
		ssBetween += float64(len(g)) * d * d
		for _, v := range g {
			dv := v - gMean
			ssWithin += dv * dv
		}
	}

	dfBetween := float64(k - 1)
	dfWithin := float64(n - k)
	if dfWithin <= 0 || ssWithin == 0 {
		return 0, 0, false
	}

	f = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	p = 1 - distuv.F{D1: dfBetween, D2: dfWithin}.CDF(f)
	return f, p, true
}

// welchT computes Welch's two-sample t statistic and two-sided p-value
// with the Welch-Satterthwaite degrees of freedom.
func welchT(a, b []float64) (t, p float64) {
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)
	n1 := float64(len(a))
	n2 := float64(len(b))

	se := math.Sqrt(v1/n1 + v2/n2)
	t = (m1 - m2) / se

	num := (v1/n1 + v2/n2) * (v1/n1 + v2/n2)
	den := (v1/n1)*(v1/n1)/(n1-1) + (v2/n2)*(v2/n2)/(n2-1)
	df := num / den

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, p
}

func groupSalesBy(ds *domain.Dataset, key func(domain.Record) string) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, r := range ds.Records {
		k := key(r)
		groups[k] = append(groups[k], r.Sales)
	}
	return groups
}
