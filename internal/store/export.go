package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/types"
)

// ExportColumns is the CSV header written by WriteCSV.
var ExportColumns = []string{
	"name", "address", "city", "country", "niche",
	"phone", "email", "website", "source", "scraped_at",
}

// DefaultExportFilename returns leads_export_YYYYMMDD_HHMMSS.csv for t.
func DefaultExportFilename(t time.Time) string {
	return fmt.Sprintf("leads_export_%s.csv", t.Format("20060102_150405"))
}

// ExportCSV writes all leads matching filters to filename and returns the path.
// An empty filename uses DefaultExportFilename. If nothing matches, no file is
// created and *EmptyResultError is returned.
func ExportCSV(ctx context.Context, s Store, filters Filters, filename string) (string, error) {
	leads, err := s.Query(ctx, filters, 0)
	if err != nil {
		return "", fmt.Errorf("failed to query leads for export: %w", err)
	}
	if len(leads) == 0 {
		return "", &EmptyResultError{Filters: filters}
	}

	if filename == "" {
		filename = DefaultExportFilename(time.Now())
	}

	f, err := os.Create(filename) //nolint:gosec // path chosen by the operator
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteCSV(f, leads); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	zap.L().Info("exported leads", zap.Int("count", len(leads)), zap.String("file", filename))
	return filename, nil
}

// WriteCSV writes the header and one row per lead.
func WriteCSV(w io.Writer, leads []types.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, lead := range leads {
		row := []string{
			lead.Name, lead.Address, lead.City, lead.Country, lead.Niche,
			lead.Phone, lead.Email, lead.Website, lead.Source,
			lead.ScrapedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
