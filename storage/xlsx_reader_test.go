package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coralwatch-cleaner/models"
)

func TestXLSXReaderLoad(t *testing.T) {
	path := writeWorkbook(t, testSheet, sourceTable())

	tbl, err := NewXLSXReader(path, testSheet).Load()
	require.NoError(t, err)

	assert.Equal(t, sourceTable().Columns, tbl.Columns)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "101", tbl.Cell(1, 1))
	assert.Equal(t, "-16.9", tbl.Cell(2, 2))
	assert.NoError(t, tbl.Validate(models.SourceColumns))
}

func TestXLSXReaderIgnoresNumberFormats(t *testing.T) {
	path := writeWorkbook(t, testSheet, sourceTable())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellFloat(testSheet, "C2", -23.456789, -1, 64))
	require.NoError(t, f.SetCellStyle(testSheet, "C2", "C2", twoDecimals))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	tbl, err := NewXLSXReader(path, testSheet).Load()
	require.NoError(t, err)
	assert.Equal(t, "-23.456789", tbl.Cell(0, 2), "display format must not round the stored value")
}

func TestXLSXReaderSkipsBlankRows(t *testing.T) {
	tbl := sourceTable()
	tbl.Rows = append(tbl.Rows, []string{"", " "})
	path := writeWorkbook(t, testSheet, tbl)

	got, err := NewXLSXReader(path, testSheet).Load()
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
}

func TestXLSXReaderMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Other", sourceTable())

	_, err := NewXLSXReader(path, testSheet).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestXLSXReaderMissingFile(t *testing.T) {
	_, err := NewXLSXReader(filepath.Join(t.TempDir(), "nope.xlsx"), testSheet).Load()
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}
