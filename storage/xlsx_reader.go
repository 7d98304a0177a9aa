package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"coralwatch-cleaner/models"
)

// XLSXReader reads one named sheet of a workbook. The first row is the header.
type XLSXReader struct {
	Path  string
	Sheet string
}

// NewXLSXReader creates a reader for sheet in the workbook at path.
func NewXLSXReader(path, sheet string) *XLSXReader {
	return &XLSXReader{Path: path, Sheet: sheet}
}

// Load reads the sheet as raw cell values, so a display number format never
// rounds a stored value. Date cells come back as Excel serial numbers.
func (r *XLSXReader) Load() (*models.Table, error) {
	if _, err := os.Stat(r.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("xlsx: %w: %s", models.ErrSourceUnavailable, r.Path)
		}
		return nil, fmt.Errorf("xlsx: stat %q: %w", r.Path, err)
	}

	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", r.Path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(r.Sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("xlsx: sheet %q not found in %q", r.Sheet, r.Path)
	}

	rows, err := f.GetRows(r.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", r.Sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: sheet %q is empty", r.Sheet)
	}

	t := &models.Table{Columns: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		t.Columns[i] = strings.TrimSpace(h)
	}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
