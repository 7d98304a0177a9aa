package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/palette"
	"coralwatch-cleaner/utils"
)

type groupKey struct {
	activity string
	coral    string
}

func (k groupKey) String() string {
	if k.coral == "" {
		return "activity " + k.activity
	}
	return "activity " + k.activity + " / " + k.coral
}

// Aggregator collapses the observations of each survey activity (or each
// activity and coral type) into one Sample.
type Aggregator struct {
	logger   *utils.Logger
	palette  *palette.Palette
	strategy ColorStrategy
	groupBy  GroupBy
	format   palette.Format
	varying  VaryingPolicy
}

// NewAggregator creates an Aggregator that renders calculated colours
// through p and reduces groups under opts.
func NewAggregator(logger *utils.Logger, p *palette.Palette, opts Options) *Aggregator {
	return &Aggregator{
		logger:   logger,
		palette:  p,
		strategy: opts.Strategy,
		groupBy:  opts.GroupBy,
		format:   opts.ColorFormat,
		varying:  opts.Varying,
	}
}

// Aggregate returns exactly one Sample per distinct grouping key, ordered
// by key.
func (a *Aggregator) Aggregate(obs []*models.Observation) ([]*models.Sample, error) {
	groups := make(map[groupKey][]*models.Observation)
	var keys []groupKey
	for _, o := range obs {
		k := groupKey{activity: o.ActivityID}
		if a.groupBy == GroupByActivityCoral {
			k.coral = o.CoralType
		}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	samples := make([]*models.Sample, 0, len(keys))
	for _, k := range keys {
		s, err := a.reduce(k, groups[k])
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	a.logger.Info("[aggregator] %d observations → %d samples (%s, %s)",
		len(obs), len(samples), a.groupBy, a.strategy)
	return samples, nil
}

// keyLess orders activity IDs numerically when both are integers, falling
// back to string order, then by coral type.
func keyLess(x, y groupKey) bool {
	if x.activity != y.activity {
		xi, xErr := strconv.ParseInt(x.activity, 10, 64)
		yi, yErr := strconv.ParseInt(y.activity, 10, 64)
		if xErr == nil && yErr == nil {
			return xi < yi
		}
		return x.activity < y.activity
	}
	return x.coral < y.coral
}

func (a *Aggregator) reduce(k groupKey, rows []*models.Observation) (*models.Sample, error) {
	first := rows[0]
	s := &models.Sample{
		ActivityID: first.ActivityID,
		Latitude:   first.Latitude,
		Longitude:  first.Longitude,
		ObservedOn: first.ObservedOn,
		HasDate:    first.HasDate,
		Year:       first.Year,

		SiteName:      a.field(rows, func(o *models.Observation) string { return o.SiteName }),
		GroupName:     a.field(rows, func(o *models.Observation) string { return o.GroupName }),
		Participation: a.field(rows, func(o *models.Observation) string { return o.Participation }),
		Activity:      a.field(rows, func(o *models.Observation) string { return o.Activity }),
		Time:          a.field(rows, func(o *models.Observation) string { return o.Time }),
		Light:         a.field(rows, func(o *models.Observation) string { return o.Light }),
		Depth:         a.field(rows, func(o *models.Observation) string { return o.Depth }),
		WaterTemp:     a.field(rows, func(o *models.Observation) string { return o.WaterTemp }),
	}

	var (
		coralTypes, species, photos []string
		lightest, darkest           []Code
		averages                    []float64
	)
	for _, r := range rows {
		coralTypes = append(coralTypes, r.CoralType)
		species = append(species, r.Species)
		photos = append(photos, r.Photo)

		l, err := ParseCode(r.Lightest)
		if err != nil {
			return nil, &models.ValidationError{Key: k.String(), Field: models.ColLightest, Value: r.Lightest, Err: err}
		}
		d, err := ParseCode(r.Darkest)
		if err != nil {
			return nil, &models.ValidationError{Key: k.String(), Field: models.ColDarkest, Value: r.Darkest, Err: err}
		}
		lightest = append(lightest, l)
		darkest = append(darkest, d)

		if r.HasAverage {
			averages = append(averages, r.Average)
		}
	}

	blank := func(v string) bool { return v == "" || v == models.NotRecorded }
	s.CoralTypes = utils.Dedupe(coralTypes, func(v string) bool { return v == "" })
	s.Species = utils.Dedupe(species, blank)
	s.Photos = utils.Dedupe(photos, blank)

	if len(averages) == 0 {
		return nil, &models.ValidationError{Key: k.String(), Field: models.ColAverage, Err: models.ErrMissingAverage}
	}
	s.Average = meanRounded2(averages)

	light := Average(a.strategy, lightest)
	dark := Average(a.strategy, darkest)
	s.Lightest = codeStrings(light)
	s.Darkest = codeStrings(dark)
	s.ColorRanges = PairRanges(light, dark)

	code, color, err := a.averageColor(light, dark, s.Average)
	if err != nil {
		return nil, &models.ValidationError{Key: k.String(), Field: "Calculated average color", Value: code, Err: err}
	}
	s.AverageCode, s.AverageColor = code, color
	return s, nil
}

// field reduces a descriptive per-row value. A value shared by the whole
// group is kept as is; under VaryingList a value that differs becomes every
// row's value in row order, joined with models.ListSeparator.
func (a *Aggregator) field(rows []*models.Observation, get func(*models.Observation) string) string {
	first := get(rows[0])
	if a.varying == VaryingFirst {
		return first
	}
	values := make([]string, len(rows))
	varies := false
	for i, r := range rows {
		values[i] = get(r)
		varies = varies || values[i] != first
	}
	if !varies {
		return first
	}
	return strings.Join(values, models.ListSeparator)
}

// averageColor pairs the dominant hue family with the rounded numeric
// average and renders the resulting code through the palette.
func (a *Aggregator) averageColor(light, dark []Code, average float64) (string, string, error) {
	family, _ := MostCommonFamily(light, dark)
	code := string(family) + strconv.Itoa(roundHalfUp(average))
	if _, err := ParseCode(code); err != nil {
		return code, "", err
	}
	color, err := a.palette.Render(code, a.format)
	if err != nil {
		return code, "", fmt.Errorf("%w: %w", models.ErrInvalidColorCode, err)
	}
	return code, color, nil
}
