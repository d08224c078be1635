package app

import (
	"context"
	"fmt"
	"log/slog"

	"salespulse/internal/aggregate"
	"salespulse/internal/analysis"
	"salespulse/internal/config"
	"salespulse/internal/generator"
	"salespulse/internal/infrastructure"
	"salespulse/internal/report"
	"salespulse/pkg/contracts/domain"
)

// ReportJob is the unattended batch pipeline: generate a dataset, run
// every registered analysis capability with default parameters, and
// write the plot, text report and summary workbook.
type ReportJob struct {
	cfg    *config.Config
	runner *analysis.Runner
	logger *slog.Logger
}

// NewReportJob builds the batch pipeline from loaded configuration
func NewReportJob() (*ReportJob, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	return &ReportJob{
		cfg:    cfg,
		runner: analysis.NewRunner(analysis.DefaultRegistry(), logger, nil),
		logger: logger,
	}, nil
}

// ReportOutput describes what one run produced
type ReportOutput struct {
	Dataset     *domain.Dataset
	ReportPath  string
	PlotPath    string
	XLSXPath    string
	ResultCount int
}

// Run executes the pipeline end to end. Capability failures degrade to
// omitted report sections; a failure to write any artifact aborts the
// run.
func (j *ReportJob) Run(ctx context.Context) (*ReportOutput, error) {
	seed := j.cfg.Generator.Seed
	j.logger.InfoContext(ctx, "batch run starting", slog.Uint64("seed", seed))

	ds := generator.Generate(seed)
	regions := aggregate.ByRegion(ds)
	products := aggregate.ByProduct(ds)
	stats := aggregate.Describe(ds)

	results := j.runner.RunAll(ctx, ds, analysis.DefaultParams())

	if err := report.WriteSalesTrend(ds, j.cfg.PlotPath(), j.logger); err != nil {
		return nil, fmt.Errorf("writing sales trend plot: %w", err)
	}

	renderer := report.NewRenderer(j.logger)
	if err := renderer.Render(ds, regions, stats, results, j.cfg.ReportPath()); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	if err := report.WriteSummaryWorkbook(regions, products, j.cfg.SummaryWorkbookPath(), j.logger); err != nil {
		return nil, fmt.Errorf("writing summary workbook: %w", err)
	}

	j.logger.InfoContext(ctx, "batch run complete",
		slog.Int("records", ds.Len()),
		slog.Int("results", len(results)),
		slog.String("report", j.cfg.ReportPath()))

	return &ReportOutput{
		Dataset:     ds,
		ReportPath:  j.cfg.ReportPath(),
		PlotPath:    j.cfg.PlotPath(),
		XLSXPath:    j.cfg.SummaryWorkbookPath(),
		ResultCount: len(results),
	}, nil
}
