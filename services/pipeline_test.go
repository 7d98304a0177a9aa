package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/palette"
)

func TestPipelineRun(t *testing.T) {
	r1 := validRow("5")
	r2 := validRow("5")
	r2[models.ColLightest], r2[models.ColDarkest], r2[models.ColAverage] = "B1", "B3", "2"
	r2[models.ColSpecies] = "Acropora"
	r3 := validRow("5")
	r3[models.ColCoralType] = "Plate"
	r4 := without(validRow("6"), models.ColDarkest)
	r5 := validRow("6")
	r5[models.ColGroupName] = "unknown"

	p := NewPipeline(newTestLogger(), palette.Default(), DefaultOptions())
	res, err := p.Run(surveyTable(r1, r2, r3, r4, r5))
	require.NoError(t, err)

	assert.Equal(t, models.RunStats{RawRows: 5, KeptRows: 4, DroppedRows: 1, Samples: 3}, res.Stats)
	require.Len(t, res.Samples, 3)

	s := res.Samples[0]
	assert.Equal(t, "5", s.ActivityID)
	assert.Equal(t, []string{"Branching"}, s.CoralTypes)
	assert.Equal(t, []string{"B2"}, s.Lightest)
	assert.Equal(t, []string{"B4"}, s.Darkest)
	assert.Equal(t, 3.0, s.Average)
	assert.Equal(t, []string{"Acropora"}, s.Species)
	assert.Equal(t, "B3", s.AverageCode)
	assert.Equal(t, 2019, s.Year)

	assert.Equal(t, models.NotRecorded, res.Samples[2].GroupName)
}

func TestPipelineSampleCountMatchesDistinctKeys(t *testing.T) {
	var rows []map[string]string
	keys := map[string]bool{}
	for i, id := range []string{"1", "2", "1", "3", "2", "1"} {
		r := validRow(id)
		r[models.ColCoralType] = []string{"Branching", "Plate"}[i%2]
		rows = append(rows, r)
		keys[id+"|"+r[models.ColCoralType]] = true
	}

	p := NewPipeline(newTestLogger(), palette.Default(), DefaultOptions())
	res, err := p.Run(surveyTable(rows...))
	require.NoError(t, err)
	assert.Len(t, res.Samples, len(keys))

	opts := DefaultOptions()
	opts.GroupBy = GroupByActivity
	res, err = NewPipeline(newTestLogger(), palette.Default(), opts).Run(surveyTable(rows...))
	require.NoError(t, err)
	assert.Len(t, res.Samples, 3)
}

func TestPipelineSchemaFailure(t *testing.T) {
	p := NewPipeline(newTestLogger(), palette.Default(), DefaultOptions())
	_, err := p.Run(&models.Table{Columns: []string{models.ColActivityID}})

	var schemaErr *models.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestPipelineValidationFailure(t *testing.T) {
	r := validRow("1")
	r[models.ColLightest] = "Z9"

	p := NewPipeline(newTestLogger(), palette.Default(), DefaultOptions())
	_, err := p.Run(surveyTable(r))
	assert.ErrorIs(t, err, models.ErrInvalidColorCode)
}
