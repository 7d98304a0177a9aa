package services

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/palette"
)

func obs(activity, coral, light, dark string, avg float64) *models.Observation {
	return &models.Observation{
		ActivityID: activity,
		CoralType:  coral,
		Lightest:   light,
		Darkest:    dark,
		Average:    avg,
		HasAverage: true,
		Species:    models.NotRecorded,
		Photo:      models.NotRecorded,
	}
}

func newAggregator(strategy ColorStrategy, groupBy GroupBy) *Aggregator {
	opts := DefaultOptions()
	opts.Strategy = strategy
	opts.GroupBy = groupBy
	return NewAggregator(newTestLogger(), palette.Default(), opts)
}

func TestAggregateOneSamplePerKey(t *testing.T) {
	in := []*models.Observation{
		obs("10", "Branching", "B3", "B5", 4),
		obs("2", "Plate", "C2", "C4", 3),
		obs("10", "Plate", "D1", "D3", 2),
		obs("10", "Branching", "B1", "B3", 2),
		obs("2", "Plate", "C4", "C6", 5),
	}

	byCoral, err := newAggregator(StrategyPerFamily, GroupByActivityCoral).Aggregate(in)
	require.NoError(t, err)
	require.Len(t, byCoral, 3)
	assert.Equal(t, "2", byCoral[0].ActivityID, "numeric key order")
	assert.Equal(t, []string{"Branching"}, byCoral[1].CoralTypes)
	assert.Equal(t, []string{"Plate"}, byCoral[2].CoralTypes)

	byActivity, err := newAggregator(StrategyPerFamily, GroupByActivity).Aggregate(in)
	require.NoError(t, err)
	require.Len(t, byActivity, 2)
	assert.Equal(t, []string{"Branching", "Plate"}, byActivity[1].CoralTypes)
}

func TestAggregatePerFamilySample(t *testing.T) {
	in := []*models.Observation{
		obs("1", "Boulder", "B3", "B5", 4.0),
		obs("1", "Boulder", "B5", "C6", 5.0),
		obs("1", "Boulder", "C1", "B6", 6.0),
	}
	for _, o := range in {
		o.SiteName = "Heron Island"
	}
	in[0].Species, in[1].Species, in[2].Species = "Acropora", models.NotRecorded, "Acropora"
	in[0].Photo, in[1].Photo, in[2].Photo = "a.jpg", "b.jpg", models.NotRecorded

	samples, err := newAggregator(StrategyPerFamily, GroupByActivityCoral).Aggregate(in)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	s := samples[0]

	assert.Equal(t, "Heron Island", s.SiteName)
	assert.Equal(t, []string{"Acropora"}, s.Species)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, s.Photos)
	assert.Equal(t, []string{"B4", "C1"}, s.Lightest)
	assert.Equal(t, []string{"B6", "C6"}, s.Darkest)
	assert.Equal(t, 5.0, s.Average)
	assert.Equal(t, []string{"B4-B6", "C1-C6"}, s.ColorRanges)
	assert.Equal(t, "B5", s.AverageCode)
	assert.Equal(t, "#969E39", s.AverageColor)
}

func TestAggregateVaryingFields(t *testing.T) {
	in := []*models.Observation{
		obs("7", "Branching", "B2", "B4", 3),
		obs("7", "Plate", "B2", "B4", 3),
		obs("7", "Plate", "B2", "B4", 3),
	}
	times := []string{"09:15", "10:40", "09:15"}
	depths := []string{"3", "8", "8"}
	for i, o := range in {
		o.SiteName = "Heron Island"
		o.Time = times[i]
		o.Depth = depths[i]
	}

	tests := []struct {
		policy VaryingPolicy
		time   string
		depth  string
	}{
		{VaryingList, "09:15; 10:40; 09:15", "3; 8; 8"},
		{VaryingFirst, "09:15", "3"},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			opts := DefaultOptions()
			opts.GroupBy = GroupByActivity
			opts.Varying = tt.policy
			samples, err := NewAggregator(newTestLogger(), palette.Default(), opts).Aggregate(in)
			require.NoError(t, err)
			require.Len(t, samples, 1)

			s := samples[0]
			assert.Equal(t, tt.time, s.Time)
			assert.Equal(t, tt.depth, s.Depth)
			assert.Equal(t, "Heron Island", s.SiteName, "shared values stay scalar")
			assert.Equal(t, []string{"Branching", "Plate"}, s.CoralTypes)
		})
	}
}

func TestAggregateGlobalSample(t *testing.T) {
	in := []*models.Observation{
		obs("1", "", "B1", "B3", 1.333),
		obs("1", "", "C1", "C3", 1.337),
	}

	samples, err := newAggregator(StrategyGlobal, GroupByActivity).Aggregate(in)
	require.NoError(t, err)
	s := samples[0]

	want := &models.Sample{
		ActivityID:   "1",
		Lightest:     []string{"D1"},
		Darkest:      []string{"D3"},
		Average:      1.34,
		ColorRanges:  []string{"D1-D3"},
		AverageCode:  "D1",
		AverageColor: "#F8EEE1",
		CoralTypes:   []string{},
		Species:      []string{},
		Photos:       []string{},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("global sample mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateRGBFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.ColorFormat = palette.FormatRGB
	a := NewAggregator(newTestLogger(), palette.Default(), opts)

	samples, err := a.Aggregate([]*models.Observation{obs("1", "", "E2", "E6", 2)})
	require.NoError(t, err)
	assert.Equal(t, "rgb(247, 234, 192)", samples[0].AverageColor)
}

func TestAggregateSkipsMissingAverages(t *testing.T) {
	in := []*models.Observation{
		obs("1", "", "B2", "B4", 3),
		obs("1", "", "B2", "B4", 0),
	}
	in[1].HasAverage = false

	samples, err := newAggregator(StrategyPerFamily, GroupByActivity).Aggregate(in)
	require.NoError(t, err)
	assert.Equal(t, 3.0, samples[0].Average)
}

func TestAggregateValidationErrors(t *testing.T) {
	noAverage := obs("9", "", "B2", "B4", 0)
	noAverage.HasAverage = false

	tests := []struct {
		name  string
		in    *models.Observation
		field string
		want  error
	}{
		{"bad lightest", obs("9", "", "A2", "B4", 3), models.ColLightest, models.ErrInvalidColorCode},
		{"bad darkest", obs("9", "", "B2", "B9", 3), models.ColDarkest, models.ErrInvalidColorCode},
		{"brightness rounds to zero", obs("9", "", "B1", "B1", 0.4), "Calculated average color", models.ErrInvalidColorCode},
		{"brightness above chart", obs("9", "", "B6", "B6", 6.5), "Calculated average color", models.ErrInvalidColorCode},
		{"no average", noAverage, models.ColAverage, models.ErrMissingAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newAggregator(StrategyPerFamily, GroupByActivity).Aggregate([]*models.Observation{tt.in})
			require.ErrorIs(t, err, tt.want)
			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, "activity 9", vErr.Key)
		})
	}
}

func TestAggregateMissingPaletteEntry(t *testing.T) {
	p, err := palette.Parse([]byte("[hex]\nB1 = \"#FFFFFF\"\n"))
	require.NoError(t, err)
	a := NewAggregator(newTestLogger(), p, DefaultOptions())

	_, err = a.Aggregate([]*models.Observation{obs("1", "", "C2", "C4", 3)})
	assert.ErrorIs(t, err, models.ErrInvalidColorCode)
	assert.ErrorIs(t, err, palette.ErrUnknownCode)
}

func TestKeyLess(t *testing.T) {
	assert.True(t, keyLess(groupKey{activity: "9"}, groupKey{activity: "10"}))
	assert.True(t, keyLess(groupKey{activity: "A10"}, groupKey{activity: "A9"}))
	assert.True(t, keyLess(groupKey{activity: "1", coral: "Branching"}, groupKey{activity: "1", coral: "Plate"}))
}
