package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// stratumSize is the number of records per target-sorted stratum used
// by the train/test split
const stratumSize = 10

// Regressor fits a sales prediction model on calendar and categorical
// features and reports held-out error measures.
type Regressor struct{}

// NewRegressor creates the regression capability
func NewRegressor() *Regressor {
	return &Regressor{}
}

// Name implements Capability
func (r *Regressor) Name() string { return CapabilityRegression }

// Run implements Capability
func (r *Regressor) Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error) {
	method := params.Method
	switch method {
	case MethodRandomForest, MethodSVR, MethodLinearRegression:
	default:
		return nil, apperrors.NewUnsupportedMethodError(method)
	}

	frac := params.TrainFraction
	if frac == 0 {
		frac = 0.8
	}
	if frac <= 0 || frac >= 1 {
		return nil, apperrors.NewInvalidParameterError(
			fmt.Sprintf("train_fraction must be in (0, 1), got %g", frac))
	}

	n := ds.Len()
	if n < 2*stratumSize {
		return nil, apperrors.NewInsufficientDataError(
			fmt.Sprintf("regression needs at least %d records, got %d", 2*stratumSize, n))
	}

	features, target := buildFeatures(ds)
	trainIdx, testIdx := stratifiedSplit(target, frac, ds.Seed)
	if len(testIdx) == 0 || len(trainIdx) == 0 {
		return nil, apperrors.NewInvalidParameterError(
			fmt.Sprintf("train_fraction %g leaves an empty partition", frac))
	}

	trainX, trainY := subset(features, target, trainIdx)
	testX, testY := subset(features, target, testIdx)

	var predicted []float64
	var err error
	switch method {
	case MethodLinearRegression:
		predicted, err = fitOLS(trainX, trainY, testX)
	case MethodRandomForest:
		predicted, err = fitForest(trainX, trainY, testX, ds.Seed)
	case MethodSVR:
		predicted, err = fitLinearSVR(trainX, trainY, testX)
	}
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", method, err)
	}

	rmse, mae, r2 := holdoutMetrics(testY, predicted)

	return &RegressionResult{
		Method:    method,
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
		RMSE:      rmse,
		MAE:       mae,
		R2:        r2,
		Predicted: predicted,
		Actual:    testY,
	}, nil
}

// buildFeatures derives the model matrix from the dataset: an intercept
// column, day-of-year, and drop-first one-hot encodings of day-of-week,
// month, region and product. The target is sales.
func buildFeatures(ds *domain.Dataset) ([][]float64, []float64) {
	regionIndex := make(map[domain.Region]int, len(domain.Regions))
	for i, r := range sortedRegions() {
		regionIndex[r] = i
	}
	productIndex := make(map[domain.Product]int, len(domain.Products))
	for i, p := range sortedProducts() {
		productIndex[p] = i
	}

	// intercept + doy + dow(6) + month(11) + region(3) + product(2)
	width := 1 + 1 + 6 + 11 + (len(domain.Regions) - 1) + (len(domain.Products) - 1)

	features := make([][]float64, ds.Len())
	target := make([]float64, ds.Len())
	for i, rec := range ds.Records {
		row := make([]float64, width)
		col := 0
		row[col] = 1.0
		col++
		row[col] = float64(rec.Date.YearDay()) / 365.0
		col++
		if dow := int(rec.Date.Weekday()); dow > 0 {
			row[col+dow-1] = 1.0
		}
		col += 6
		if mon := int(rec.Date.Month()); mon > 1 {
			row[col+mon-2] = 1.0
		}
		col += 11
		if ri := regionIndex[rec.Region]; ri > 0 {
			row[col+ri-1] = 1.0
		}
		col += len(domain.Regions) - 1
		if pi := productIndex[rec.Product]; pi > 0 {
			row[col+pi-1] = 1.0
		}

		features[i] = row
		target[i] = rec.Sales
	}
	return features, target
}

// stratifiedSplit partitions record indices into train and test sets.
// Records are sorted by target, walked in fixed-size strata, and each
// stratum is split at the train fraction after a seeded shuffle, so
// both partitions cover the full target range and the split is
// reproducible per dataset.
func stratifiedSplit(target []float64, frac float64, seed uint64) (train, test []int) {
	n := len(target)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return target[indices[i]] < target[indices[j]]
	})

	rng := rand.New(rand.NewSource(seed))
	for start := 0; start < n; start += stratumSize {
		end := start + stratumSize
		if end > n {
			end = n
		}
		stratum := indices[start:end]
		rng.Shuffle(len(stratum), func(i, j int) {
			stratum[i], stratum[j] = stratum[j], stratum[i]
		})
		nTrain := int(math.Round(frac * float64(len(stratum))))
		train = append(train, stratum[:nTrain]...)
		test = append(test, stratum[nTrain:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

func subset(features [][]float64, target []float64, idx []int) ([][]float64, []float64) {
	x := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		x[i] = features[j]
		y[i] = target[j]
	}
	return x, y
}

// fitOLS solves the least-squares problem on the training partition and
// predicts the held-out rows.
func fitOLS(trainX [][]float64, trainY []float64, testX [][]float64) ([]float64, error) {
	rows := len(trainX)
	cols := len(trainX[0])

	x := mat.NewDense(rows, cols, nil)
	for i, row := range trainX {
		x.SetRow(i, row)
	}
	y := mat.NewVecDense(rows, trainY)

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	predicted := make([]float64, len(testX))
	for i, row := range testX {
		var v float64
		for j, f := range row {
			v += beta.AtVec(j) * f
		}
		predicted[i] = v
	}
	return predicted, nil
}

// holdoutMetrics computes RMSE, MAE and R-squared on the held-out
// partition
func holdoutMetrics(actual, predicted []float64) (rmse, mae, r2 float64) {
	n := float64(len(actual))
	mean := stat.Mean(actual, nil)

	var sse, sae, sst float64
	for i, a := range actual {
		diff := a - predicted[i]
		sse += diff * diff
		sae += math.Abs(diff)
		dm := a - mean
		sst += dm * dm
	}

	rmse = math.Sqrt(sse / n)
	mae = sae / n
	if sst > 0 {
		r2 = 1 - sse/sst
	}
	return rmse, mae, r2
}

func sortedRegions() []domain.Region {
	regions := make([]domain.Region, len(domain.Regions))
	copy(regions, domain.Regions)
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}

func sortedProducts() []domain.Product {
	products := make([]domain.Product, len(domain.Products))
	copy(products, domain.Products)
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}
