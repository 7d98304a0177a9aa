package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/utils"
)

const testSheet = "CoralWatch Random Survey"

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

// sourceTable returns a small table carrying every source column.
func sourceTable() *models.Table {
	t := &models.Table{Columns: append([]string{"Country"}, models.SourceColumns...)}
	for i := 0; i < 3; i++ {
		row := make([]string, len(t.Columns))
		row[0] = "Australia"
		row[1] = fmt.Sprintf("%d", 100+i)
		row[2] = "-16.9"
		t.Rows = append(t.Rows, row)
	}
	t.Rows[2] = t.Rows[2][:3]
	return t
}

// writeWorkbook saves t as sheet in a new xlsx file and returns its path.
func writeWorkbook(t *testing.T, sheet string, tbl *models.Table) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)

	header := make([]any, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, r := range tbl.Rows {
		row := make([]any, len(r))
		for j, c := range r {
			row[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
