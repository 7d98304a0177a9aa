package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coralwatch-cleaner/models"
)

func sampleResult() *Result {
	return &Result{
		Stats: models.RunStats{RunID: "run-1", RawRows: 10, KeptRows: 8, DroppedRows: 2, Samples: 3},
		Samples: []*models.Sample{
			{ActivityID: "1", Latitude: -23.4, Longitude: 151.9, HasDate: true, Year: 2019,
				CoralTypes: []string{"Branching"}, Average: 3, AverageCode: "D3"},
			{ActivityID: "2", Latitude: -16.9, Longitude: 145.8, HasDate: true, Year: 2021,
				CoralTypes: []string{"Branching", "Plate"}, Average: 4, AverageCode: "C4"},
			{ActivityID: "3", Latitude: -18.2, Longitude: 147.1, HasDate: true, Year: 2019,
				Average: 4.5, AverageCode: "D3"},
		},
	}
}

func TestReportCounts(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(sampleResult())

	assert.Equal(t, 8, r.Stats.KeptRows)
	assert.Equal(t, map[int]int{2019: 2, 2021: 1}, r.SamplesByYear)
	assert.Equal(t, map[string]int{"Branching": 2, "Plate": 1, models.NotRecorded: 1}, r.SamplesByCoralType)
	assert.Equal(t, "D3", r.TopColor)
	assert.Equal(t, 2, r.TopColorCount)
	assert.Equal(t, 3.83, r.MeanAverage)
}

func TestReportExtent(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(sampleResult())

	require.NotNil(t, r.Extent)
	assert.InDelta(t, -23.4, r.Extent.MinLat, 1e-9)
	assert.InDelta(t, -16.9, r.Extent.MaxLat, 1e-9)
	assert.InDelta(t, 145.8, r.Extent.MinLng, 1e-9)
	assert.InDelta(t, 151.9, r.Extent.MaxLng, 1e-9)
	assert.InDelta(t, -20.15, r.Extent.CenterLat, 1e-9)
}

func TestReportSkipsInvalidCoordinates(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(&Result{Samples: []*models.Sample{{ActivityID: "x", Latitude: 123, Longitude: 0, AverageCode: "B1"}}})
	assert.Nil(t, r.Extent)
}

func TestReportEmptyInput(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(&Result{})
	assert.Zero(t, r.Stats.Samples)
	assert.Nil(t, r.Extent)
	assert.Empty(t, r.TopColor)
}

func TestReportPrint(t *testing.T) {
	svc := NewReportService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "CoralWatch survey run\n")
	assert.Contains(t, out, "Samples by year\n")
	assert.Contains(t, out, "Samples by coral type\n")
	assert.Contains(t, out, "2021")
	assert.Contains(t, out, "Branching")
	assert.Contains(t, out, "D3 (2)")
}
