package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"coralwatch-cleaner/models"
)

// SampleHeader is the CSV header, in column order.
var SampleHeader = []string{
	"Activity ID", "Latitude", "Longitude", "Site name", "Group name",
	"Participating as", "Activity", "Observation date", "Year", "Time",
	"Light condition", "Depth (m)", "Water temperature (C)", "Coral type",
	"Species", "Photo", "Lightest color code", "Darkest color code",
	"Average val", "Color Range By Letter", "Calculated average color",
}

// CSVWriter writes aggregated samples to a CSV file. The file appears only
// once every row is written: output goes to a temporary file that is
// renamed over the destination.
type CSVWriter struct {
	path string
}

// NewCSVWriter prepares a writer for path. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Write replaces the output file with the header and one row per sample.
func (c *CSVWriter) Write(samples []*models.Sample) error {
	f, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(SampleHeader); err != nil {
		return fail(fmt.Errorf("csv: write header: %w", err))
	}
	for _, s := range samples {
		if err := w.Write(SampleRecord(s)); err != nil {
			return fail(fmt.Errorf("csv: write row: %w", err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fail(fmt.Errorf("csv: flush: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("csv: close: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("csv: chmod: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("csv: rename into place: %w", err)
	}
	return nil
}

// Close is a no-op; Write owns the file for its whole lifetime.
func (c *CSVWriter) Close() error {
	return nil
}

// SampleRecord flattens s into CSV cells matching SampleHeader.
func SampleRecord(s *models.Sample) []string {
	date, year := "", ""
	if s.HasDate {
		date = s.ObservedOn.Format("2006-01-02")
		year = strconv.Itoa(s.Year)
	}
	return []string{
		s.ActivityID,
		formatFloat(s.Latitude),
		formatFloat(s.Longitude),
		s.SiteName,
		s.GroupName,
		s.Participation,
		s.Activity,
		date,
		year,
		s.Time,
		s.Light,
		s.Depth,
		s.WaterTemp,
		strings.Join(s.CoralTypes, models.ListSeparator),
		strings.Join(s.Species, models.ListSeparator),
		strings.Join(s.Photos, models.ListSeparator),
		strings.Join(s.Lightest, models.ListSeparator),
		strings.Join(s.Darkest, models.ListSeparator),
		formatFloat(s.Average),
		strings.Join(s.ColorRanges, models.ListSeparator),
		s.AverageColor,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
