package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// WriteSummaryWorkbook writes the region and product summaries to an
// XLSX workbook at path, one sheet per grouping.
func WriteSummaryWorkbook(regions []domain.RegionSummary, products []domain.ProductSummary,
	path string, logger *slog.Logger) error {

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("writing summary workbook",
		slog.String("path", path),
		slog.Int("regions", len(regions)),
		slog.Int("products", len(products)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create workbook directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const regionSheet = "Regions"
	if err := f.SetSheetName("Sheet1", regionSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	regionHeaders := []interface{}{"Region", "Records", "TotalSales", "AvgCustomers"}
	if err := f.SetSheetRow(regionSheet, "A1", &regionHeaders); err != nil {
		return fmt.Errorf("write region headers: %w", err)
	}
	for i, s := range regions {
		row := []interface{}{string(s.Region), s.RecordCount, s.TotalSales, s.AvgCustomers}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(regionSheet, cell, &row); err != nil {
			return fmt.Errorf("write region row %d: %w", i, err)
		}
	}

	const productSheet = "Products"
	if _, err := f.NewSheet(productSheet); err != nil {
		return fmt.Errorf("create product sheet: %w", err)
	}
	productHeaders := []interface{}{"Product", "Records", "TotalSales", "AvgCustomers"}
	if err := f.SetSheetRow(productSheet, "A1", &productHeaders); err != nil {
		return fmt.Errorf("write product headers: %w", err)
	}
	for i, s := range products {
		row := []interface{}{string(s.Product), s.RecordCount, s.TotalSales, s.AvgCustomers}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(productSheet, cell, &row); err != nil {
			return fmt.Errorf("write product row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err)
	}
	return nil
}
