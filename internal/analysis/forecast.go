package analysis

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// seasonPeriod is the seasonal cycle length of the daily sales series
const seasonPeriod = 7

// confidenceLevel is the two-sided coverage of the forecast interval
const confidenceLevel = 0.95

// Forecaster extrapolates the daily sales series beyond the observed
// range using a linear trend plus weekly seasonal decomposition.
type Forecaster struct{}

// NewForecaster creates the forecast capability
func NewForecaster() *Forecaster {
	return &Forecaster{}
}

// Name implements Capability
func (f *Forecaster) Name() string { return CapabilityForecast }

// Run implements Capability. It fails with an insufficient data error
// when fewer than two full seasonal cycles are present.
func (f *Forecaster) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	horizon := params.Horizon
	if horizon < 1 {
		return nil, apperrors.NewInvalidParameterError(
			fmt.Sprintf("horizon must be at least 1, got %d", horizon))
	}

	n := ds.Len()
	if n < 2*seasonPeriod {
		return nil, apperrors.NewInsufficientDataError(
			fmt.Sprintf("forecast needs at least %d observations (two seasonal cycles), got %d", 2*seasonPeriod, n)).
			WithContext("records", n)
	}

	ys := ds.Sales()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	// Trend component
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	// Seasonal component: mean detrended value per weekday position,
	// centered so the seasonal terms sum to zero
	seasonal := make([]float64, seasonPeriod)
	counts := make([]float64, seasonPeriod)
	for i, y := range ys {
		pos := i % seasonPeriod
		seasonal[pos] += y - (alpha + beta*xs[i])
		counts[pos]++
	}
	var seasonalMean float64
	for pos := range seasonal {
		seasonal[pos] /= counts[pos]
		seasonalMean += seasonal[pos]
	}
	seasonalMean /= seasonPeriod
	for pos := range seasonal {
		seasonal[pos] -= seasonalMean
	}

	// Residual spread after removing trend and season
	residuals := make([]float64, n)
	for i, y := range ys {
		residuals[i] = y - (alpha + beta*xs[i]) - seasonal[i%seasonPeriod]
	}
	sd := stat.StdDev(residuals, nil)
	z := distuv.UnitNormal.Quantile(0.5 + confidenceLevel/2)

	lastDate := ds.Records[n-1].Date
	points := make([]ForecastPoint, horizon)
	for h := 1; h <= horizon; h++ {
		t := n + h - 1
		value := alpha + beta*float64(t) + seasonal[t%seasonPeriod]
		points[h-1] = ForecastPoint{
			Date:  lastDate.AddDate(0, 0, h),
			Value: value,
			Lower: value - z*sd,
			Upper: value + z*sd,
		}
	}

	return &ForecastResult{
		Horizon: horizon,
		Season:  seasonPeriod,
		Points:  points,
	}, nil
}
