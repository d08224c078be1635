// Command report runs the unattended analysis pipeline: it generates
// the synthetic sales dataset, runs every registered analysis
// capability, and writes the trend plot, the text report and the
// summary workbook.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"salespulse/internal/app"
	"salespulse/internal/infrastructure"
)

func main() {
	job, err := app.NewReportJob()
	if err != nil {
		slog.Error("failed to initialize report job", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	out, err := job.Run(context.Background())
	if err != nil {
		slog.Error("report run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Generated %d records (seed %d)\n", out.Dataset.Len(), out.Dataset.Seed)
	fmt.Printf("Analysis results: %d\n", out.ResultCount)
	fmt.Printf("Plot:     %s\n", out.PlotPath)
	fmt.Printf("Report:   %s\n", out.ReportPath)
	fmt.Printf("Workbook: %s\n", out.XLSXPath)
}
