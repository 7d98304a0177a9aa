package services

import (
	"strconv"
	"strings"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/utils"
)

// Cleaner projects the raw survey table onto the fixed column set, drops
// rows missing mandatory fields and fills the optional ones.
type Cleaner struct {
	logger      *utils.Logger
	requireDate bool
}

// NewCleaner creates a Cleaner. With requireDate set, a row without an
// observation date is dropped along with those missing coordinates or
// colour codes.
func NewCleaner(logger *utils.Logger, requireDate bool) *Cleaner {
	return &Cleaner{logger: logger, requireDate: requireDate}
}

// Clean runs Select, Filter and Repair in order.
func (c *Cleaner) Clean(t *models.Table) ([]models.SurveyRow, error) {
	rows, err := c.Select(t)
	if err != nil {
		return nil, err
	}
	kept := c.Filter(rows)
	c.logger.Info("[cleaner] Filtered %d → %d rows (dropped %d)",
		len(rows), len(kept), len(rows)-len(kept))
	return c.Repair(kept), nil
}

// Select copies the source columns out of t, trimming whitespace. It fails
// with a SchemaError if any source column is missing.
func (c *Cleaner) Select(t *models.Table) ([]models.SurveyRow, error) {
	if err := t.Validate(models.SourceColumns); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(models.SourceColumns))
	for _, name := range models.SourceColumns {
		idx[name], _ = t.Index(name)
	}

	rows := make([]models.SurveyRow, len(t.Rows))
	for i := range t.Rows {
		get := func(col string) string {
			return strings.TrimSpace(t.Cell(i, idx[col]))
		}
		rows[i] = models.SurveyRow{
			ActivityID:    get(models.ColActivityID),
			Latitude:      get(models.ColLatitude),
			Longitude:     get(models.ColLongitude),
			SiteName:      get(models.ColSiteName),
			GroupName:     get(models.ColGroupName),
			Participation: get(models.ColParticipation),
			ObservedOn:    get(models.ColObservedOn),
			Time:          get(models.ColTime),
			Light:         get(models.ColLight),
			Depth:         get(models.ColDepth),
			WaterTemp:     get(models.ColWaterTemp),
			Activity:      get(models.ColActivity),
			ReefPhoto:     get(models.ColReefPhoto),
			Lightest:      get(models.ColLightest),
			Darkest:       get(models.ColDarkest),
			Average:       get(models.ColAverage),
			CoralType:     get(models.ColCoralType),
			Species:       get(models.ColSpecies),
			Photo:         get(models.ColPhoto),
		}
	}
	return rows, nil
}

// Filter keeps rows that have coordinates and both colour codes, and an
// observation date when required.
func (c *Cleaner) Filter(rows []models.SurveyRow) []models.SurveyRow {
	kept := make([]models.SurveyRow, 0, len(rows))
	for _, r := range rows {
		if missing := c.missingMandatory(r); missing != "" {
			c.logger.Debug("[cleaner] Dropping activity %s row: no %s", r.ActivityID, missing)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (c *Cleaner) missingMandatory(r models.SurveyRow) string {
	switch {
	case r.Latitude == "":
		return models.ColLatitude
	case r.Longitude == "":
		return models.ColLongitude
	case r.Lightest == "":
		return models.ColLightest
	case r.Darkest == "":
		return models.ColDarkest
	case c.requireDate && r.ObservedOn == "":
		return models.ColObservedOn
	}
	return ""
}

// Repair returns copies of rows with empty descriptive fields set to
// "Not recorded". A water temperature of exactly zero and a group named
// "unknown" are data-entry defaults and are treated the same way.
func (c *Cleaner) Repair(rows []models.SurveyRow) []models.SurveyRow {
	out := make([]models.SurveyRow, len(rows))
	for i, r := range rows {
		for _, f := range []*string{&r.GroupName, &r.Participation, &r.Activity, &r.Light, &r.Species} {
			if *f == "" {
				*f = models.NotRecorded
			}
		}
		if r.WaterTemp != "" {
			if v, err := strconv.ParseFloat(r.WaterTemp, 64); err == nil && v == 0 {
				r.WaterTemp = models.NotRecorded
			}
		}
		if r.GroupName == "unknown" {
			r.GroupName = models.NotRecorded
		}
		out[i] = r
	}
	return out
}
