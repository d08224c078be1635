// Package report serializes summaries and analysis results into the
// batch artifacts: the plain-text statistical report, the XLSX summary
// workbook and the sales trend chart.
package report

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salespulse/internal/analysis"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

const bannerWidth = 64

// Renderer writes the statistical report artifact
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a report renderer
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger.With(slog.String("component", "report.renderer"))}
}

// Render writes the text report to path. Section order is fixed:
// header, descriptive statistics, correlation matrix, statistical test
// summaries. Sections whose capability did not run are omitted
// entirely. The parent directory is created if absent, and the file is
// flushed and closed on every exit path.
func (r *Renderer) Render(ds *domain.Dataset, summaries []domain.RegionSummary,
	stats []domain.FieldStats, results map[string]analysis.Result, path string) (err error) {

	r.logger.Info("rendering statistical report",
		slog.String("path", path),
		slog.Int("result_count", len(results)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create report file", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = apperrors.NewStorageError("failed to close report file", closeErr)
		}
	}()

	w := bufio.NewWriter(file)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil && err == nil {
			err = apperrors.NewStorageError("failed to flush report file", flushErr)
		}
	}()

	writeHeader(w, ds)
	writeDescriptive(w, summaries, stats)

	if result, ok := results[analysis.CapabilityCorrelation]; ok {
		if cr, ok := result.(*analysis.CorrelationResult); ok {
			writeCorrelation(w, cr)
		}
	}
	if result, ok := results[analysis.CapabilityHypothesis]; ok {
		if hr, ok := result.(*analysis.HypothesisResult); ok {
			writeHypothesis(w, hr)
		}
	}

	return nil
}

func banner(w *bufio.Writer, title string) {
	line := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(w, "%s\n%s\n%s\n", line, title, line)
}

func writeHeader(w *bufio.Writer, ds *domain.Dataset) {
	banner(w, "SALES DATA STATISTICAL REPORT")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Records:   %d\n", ds.Len())
	if ds.Len() > 0 {
		fmt.Fprintf(w, "Range:     %s to %s\n",
			ds.Records[0].Date.Format("2006-01-02"),
			ds.Records[ds.Len()-1].Date.Format("2006-01-02"))
	}
	fmt.Fprintln(w)
}

func writeDescriptive(w *bufio.Writer, summaries []domain.RegionSummary, stats []domain.FieldStats) {
	banner(w, "DESCRIPTIVE STATISTICS")

	fmt.Fprintf(w, "%-12s %8s %12s %12s %10s %10s %10s %10s %10s\n",
		"Field", "Count", "Mean", "StdDev", "Min", "Q1", "Median", "Q3", "Max")
	for _, s := range stats {
		fmt.Fprintf(w, "%-12s %8d %12.2f %12.2f %10.2f %10.2f %10.2f %10.2f %10.2f\n",
			s.Field, s.Count, s.Mean, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-12s %8s %15s %15s\n", "Region", "Records", "TotalSales", "AvgCustomers")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-12s %8d %15.2f %15.2f\n",
			s.Region, s.RecordCount, s.TotalSales, s.AvgCustomers)
	}
	fmt.Fprintln(w)
}

func writeCorrelation(w *bufio.Writer, cr *analysis.CorrelationResult) {
	banner(w, "CORRELATION MATRIX")

	fmt.Fprintf(w, "%-12s", "")
	for _, f := range cr.Fields {
		fmt.Fprintf(w, " %12s", f)
	}
	fmt.Fprintln(w)
	for i, f := range cr.Fields {
		fmt.Fprintf(w, "%-12s", f)
		for j := range cr.Fields {
			fmt.Fprintf(w, " %12.4f", cr.Matrix[i][j])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func writeHypothesis(w *bufio.Writer, hr *analysis.HypothesisResult) {
	banner(w, "STATISTICAL TESTS")

	fmt.Fprintf(w, "%-28s %14s %12s  %s\n", "Test", "Statistic", "p-value", "Detail")
	for _, outcome := range hr.Normality {
		writeOutcome(w, outcome)
	}
	for _, outcome := range hr.ANOVA {
		writeOutcome(w, outcome)
	}
	if hr.TwoSample != nil {
		writeOutcome(w, *hr.TwoSample)
	}
	fmt.Fprintln(w)
}

func writeOutcome(w *bufio.Writer, o analysis.TestOutcome) {
	fmt.Fprintf(w, "%-28s %14.4f %12.6f  %s\n", o.Name, o.Statistic, o.PValue, o.Detail)
}
