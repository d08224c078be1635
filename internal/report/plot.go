package report

import (
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Chart dimensions: 12x8 inches rendered at 300 DPI
const (
	chartWidth  = 12 * vg.Inch
	chartHeight = 8 * vg.Inch
	chartDPI    = 300
)

// WriteSalesTrend renders the daily sales series as a PNG line chart
// at path.
func WriteSalesTrend(ds *domain.Dataset, path string, logger *slog.Logger) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("rendering sales trend chart", slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create plot directory", err)
	}

	p := plot.New()
	p.Title.Text = "Daily Sales Trend"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Sales"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	points := make(plotter.XYs, ds.Len())
	for i, r := range ds.Records {
		points[i].X = float64(r.Date.Unix())
		points[i].Y = r.Sales
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return apperrors.NewStorageError("failed to build trend line", err)
	}
	p.Add(line, plotter.NewGrid())

	canvas := vgimg.NewWith(
		vgimg.UseWH(chartWidth, chartHeight),
		vgimg.UseDPI(chartDPI),
	)
	p.Draw(draw.New(canvas))

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create plot file", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = apperrors.NewStorageError("failed to close plot file", closeErr)
		}
	}()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(file); err != nil {
		return apperrors.NewStorageError("failed to write plot file", err)
	}
	return nil
}
