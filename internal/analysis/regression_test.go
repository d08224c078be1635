package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/generator"
)

func TestRegressionHoldoutSizes(t *testing.T) {
	ds := generator.Generate(123)

	result, err := NewRegressor().Run(context.Background(), ds,
		Params{Method: MethodLinearRegression, TrainFraction: 0.8})
	require.NoError(t, err)

	rr, ok := result.(*RegressionResult)
	require.True(t, ok)
	assert.Equal(t, ds.Len(), rr.TrainSize+rr.TestSize)
	assert.InDelta(t, 73, rr.TestSize, 1)
	assert.Len(t, rr.Predicted, rr.TestSize)
	assert.Len(t, rr.Actual, rr.TestSize)
}

func TestRegressionMethods(t *testing.T) {
	ds := generator.Generate(123)

	for _, method := range []string{MethodLinearRegression, MethodRandomForest, MethodSVR} {
		t.Run(method, func(t *testing.T) {
			result, err := NewRegressor().Run(context.Background(), ds,
				Params{Method: method, TrainFraction: 0.8})
			require.NoError(t, err)

			rr := result.(*RegressionResult)
			assert.Equal(t, method, rr.Method)
			assert.False(t, math.IsNaN(rr.RMSE))
			assert.False(t, math.IsInf(rr.RMSE, 0))
			assert.GreaterOrEqual(t, rr.RMSE, 0.0)
			assert.False(t, math.IsNaN(rr.MAE))
			assert.GreaterOrEqual(t, rr.MAE, 0.0)
			assert.False(t, math.IsNaN(rr.R2))

			// Pure noise target: errors should be on the order of the
			// generating standard deviation, not wildly off
			assert.Less(t, rr.RMSE, 600.0)
		})
	}
}

func TestRegressionUnsupportedMethod(t *testing.T) {
	ds := generator.Generate(1)

	for _, method := range []string{"", "gradient-boosting", "Random-Forest"} {
		_, err := NewRegressor().Run(context.Background(), ds, Params{Method: method})
		require.Error(t, err, "method %q", method)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedMethod))
	}
}

func TestRegressionInvalidTrainFraction(t *testing.T) {
	ds := generator.Generate(1)

	for _, frac := range []float64{-0.5, 1.0, 2.0} {
		_, err := NewRegressor().Run(context.Background(), ds,
			Params{Method: MethodLinearRegression, TrainFraction: frac})
		require.Error(t, err, "fraction %g", frac)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidParameter))
	}
}

func TestRegressionDefaultsTrainFraction(t *testing.T) {
	ds := generator.Generate(5)

	result, err := NewRegressor().Run(context.Background(), ds,
		Params{Method: MethodLinearRegression})
	require.NoError(t, err)
	rr := result.(*RegressionResult)
	assert.InDelta(t, 73, rr.TestSize, 1)
}

func TestStratifiedSplit(t *testing.T) {
	target := make([]float64, 365)
	for i := range target {
		target[i] = float64(i)
	}

	train, test := stratifiedSplit(target, 0.8, 42)

	assert.Len(t, train, 292)
	assert.Len(t, test, 73)

	// Partitions are disjoint and cover every index
	seen := make(map[int]int)
	for _, i := range train {
		seen[i]++
	}
	for _, i := range test {
		seen[i]++
	}
	require.Len(t, seen, 365)
	for i, count := range seen {
		assert.Equal(t, 1, count, "index %d assigned %d times", i, count)
	}

	// Deterministic per seed
	train2, test2 := stratifiedSplit(target, 0.8, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestStratifiedSplitCoversTargetRange(t *testing.T) {
	target := make([]float64, 100)
	for i := range target {
		target[i] = float64(i)
	}

	_, test := stratifiedSplit(target, 0.8, 7)

	// Every decile of the sorted target contributes to the holdout
	bucketHit := make([]bool, 10)
	for _, i := range test {
		bucketHit[i/10] = true
	}
	for b, hit := range bucketHit {
		assert.True(t, hit, "decile %d missing from holdout", b)
	}
}

func TestBuildFeatures(t *testing.T) {
	ds := generator.Generate(3)
	features, target := buildFeatures(ds)

	require.Len(t, features, ds.Len())
	require.Len(t, target, ds.Len())

	width := len(features[0])
	for i, row := range features {
		assert.Len(t, row, width)
		assert.Equal(t, 1.0, row[0], "row %d missing intercept", i)
		assert.Equal(t, ds.Records[i].Sales, target[i])
	}
}

func TestHoldoutMetrics(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	perfect := []float64{1, 2, 3, 4}

	rmse, mae, r2 := holdoutMetrics(actual, perfect)
	assert.Equal(t, 0.0, rmse)
	assert.Equal(t, 0.0, mae)
	assert.Equal(t, 1.0, r2)

	off := []float64{2, 3, 4, 5}
	rmse, mae, _ = holdoutMetrics(actual, off)
	assert.InDelta(t, 1.0, rmse, 1e-9)
	assert.InDelta(t, 1.0, mae, 1e-9)
}
