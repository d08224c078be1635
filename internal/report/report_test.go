package report

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salespulse/internal/aggregate"
	"salespulse/internal/analysis"
	"salespulse/internal/generator"
)

func TestRenderFullReport(t *testing.T) {
	ds := generator.Generate(123)
	summaries := aggregate.ByRegion(ds)
	stats := aggregate.Describe(ds)

	correlation, err := analysis.NewCorrelator().Run(context.Background(), ds, analysis.Params{})
	require.NoError(t, err)
	hypothesis, err := analysis.NewHypothesisTester().Run(context.Background(), ds, analysis.Params{})
	require.NoError(t, err)

	results := map[string]analysis.Result{
		analysis.CapabilityCorrelation: correlation,
		analysis.CapabilityHypothesis:  hypothesis,
	}

	path := filepath.Join(t.TempDir(), "reports", "statistical_report.txt")
	require.NoError(t, NewRenderer(nil).Render(ds, summaries, stats, results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	// Fixed section order
	header := strings.Index(content, "SALES DATA STATISTICAL REPORT")
	descriptive := strings.Index(content, "DESCRIPTIVE STATISTICS")
	correlationIdx := strings.Index(content, "CORRELATION MATRIX")
	tests := strings.Index(content, "STATISTICAL TESTS")
	require.GreaterOrEqual(t, header, 0)
	assert.Greater(t, descriptive, header)
	assert.Greater(t, correlationIdx, descriptive)
	assert.Greater(t, tests, correlationIdx)

	assert.Contains(t, content, "2023-01-01")
	assert.Contains(t, content, "North")
	assert.Contains(t, content, "anova_sales_by_region")
	assert.Contains(t, content, "welch_t_sales")
}

func TestRenderWithoutAdapterResults(t *testing.T) {
	ds := generator.Generate(7)
	summaries := aggregate.ByRegion(ds)
	stats := aggregate.Describe(ds)

	path := filepath.Join(t.TempDir(), "statistical_report.txt")
	require.NoError(t, NewRenderer(nil).Render(ds, summaries, stats, nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	// Header and descriptive statistics are always present
	assert.Contains(t, content, "SALES DATA STATISTICAL REPORT")
	assert.Contains(t, content, "DESCRIPTIVE STATISTICS")

	// Optional sections are omitted entirely, not rendered empty
	assert.NotContains(t, content, "CORRELATION MATRIX")
	assert.NotContains(t, content, "STATISTICAL TESTS")
}

func TestRenderCreatesDirectory(t *testing.T) {
	ds := generator.Generate(1)
	path := filepath.Join(t.TempDir(), "deeply", "nested", "dir", "report.txt")

	require.NoError(t, NewRenderer(nil).Render(ds, nil, nil, nil, path))
	assert.FileExists(t, path)
}

func TestWriteSummaryWorkbook(t *testing.T) {
	ds := generator.Generate(123)
	regions := aggregate.ByRegion(ds)
	products := aggregate.ByProduct(ds)

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, WriteSummaryWorkbook(regions, products, path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Regions")
	require.NoError(t, err)
	require.Len(t, rows, len(regions)+1)
	assert.Equal(t, "Region", rows[0][0])
	assert.Equal(t, "East", rows[1][0])

	productRows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, productRows, len(products)+1)
	assert.Equal(t, "Product A", productRows[1][0])
}

func TestWriteSalesTrend(t *testing.T) {
	ds := generator.Generate(123)
	path := filepath.Join(t.TempDir(), "plots", "sales_trend.png")

	require.NoError(t, WriteSalesTrend(ds, path, nil))

	info, err := fs.Stat(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// PNG magic bytes
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}
