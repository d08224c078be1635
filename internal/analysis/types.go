// Package analysis provides the optional analysis capabilities that run
// against a generated dataset: forecasting, clustering, regression,
// correlation and hypothesis testing. Capabilities are registered in a
// Registry at startup; the orchestrator iterates the registry and skips
// anything not registered, so the pipeline completes even with no
// capability present.
package analysis

import (
	"context"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Capability names used as registry keys
const (
	CapabilityForecast    = "forecast"
	CapabilityCluster     = "cluster"
	CapabilityRegression  = "regression"
	CapabilityCorrelation = "correlation"
	CapabilityHypothesis  = "hypothesis"
)

// Supported regression method names
const (
	MethodRandomForest     = "random-forest"
	MethodSVR              = "support-vector-regression"
	MethodLinearRegression = "linear-regression"
)

// Params carries the caller-supplied parameters for a capability run.
// Each capability reads only the fields it needs.
type Params struct {
	Horizon       int     `json:"horizon,omitempty"`
	K             int     `json:"k,omitempty"`
	Method        string  `json:"method,omitempty"`
	TrainFraction float64 `json:"train_fraction,omitempty"`
}

// DefaultParams returns the parameters used for unattended runs, such
// as the batch report.
func DefaultParams() Params {
	return Params{
		Horizon:       30,
		K:             3,
		Method:        MethodRandomForest,
		TrainFraction: 0.8,
	}
}

// Result is the polymorphic output of a capability run. It is created
// by the capability and consumed immutably by the report renderer or
// the dashboard session.
type Result interface {
	Kind() string
}

// Capability is one independently pluggable analysis operation
type Capability interface {
	Name() string
	Run(ctx context.Context, ds *domain.Dataset, params Params) (Result, error)
}

// ForecastPoint is one predicted future observation with its
// confidence bounds
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// ForecastResult holds point and interval predictions beyond the
// observed range
type ForecastResult struct {
	Horizon int             `json:"horizon"`
	Season  int             `json:"season"`
	Points  []ForecastPoint `json:"points"`
}

// Kind implements Result
func (*ForecastResult) Kind() string { return CapabilityForecast }

// ClusterResult assigns every record exactly one cluster id in [0, K)
type ClusterResult struct {
	K           int         `json:"k"`
	Assignments []int       `json:"assignments"`
	Centers     [][]float64 `json:"centers"`
}

// Kind implements Result
func (*ClusterResult) Kind() string { return CapabilityCluster }

// RegressionResult holds held-out error measures and the fitted values
// for the held-out partition
type RegressionResult struct {
	Method    string    `json:"method"`
	TrainSize int       `json:"train_size"`
	TestSize  int       `json:"test_size"`
	RMSE      float64   `json:"rmse"`
	MAE       float64   `json:"mae"`
	R2        float64   `json:"r2"`
	Predicted []float64 `json:"predicted"`
	Actual    []float64 `json:"actual"`
}

// Kind implements Result
func (*RegressionResult) Kind() string { return CapabilityRegression }

// CorrelationResult is a symmetric pairwise Pearson correlation matrix
// over the numeric fields
type CorrelationResult struct {
	Fields []string    `json:"fields"`
	Matrix [][]float64 `json:"matrix"`
}

// Kind implements Result
func (*CorrelationResult) Kind() string { return CapabilityCorrelation }

// TestOutcome is one statistical test result
type TestOutcome struct {
	Name      string  `json:"name"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Detail    string  `json:"detail,omitempty"`
}

// HypothesisResult bundles the statistical test outcomes. TwoSample is
// nil when fewer than two distinct regions exist in the dataset.
type HypothesisResult struct {
	Normality []TestOutcome `json:"normality"`
	ANOVA     []TestOutcome `json:"anova"`
	TwoSample *TestOutcome  `json:"two_sample,omitempty"`
}

// Kind implements Result
func (*HypothesisResult) Kind() string { return CapabilityHypothesis }
