package models

import "time"

// Placeholders written in place of missing or unusable values.
const (
	// NotRecorded marks a value the surveyor left empty.
	NotRecorded = "Not recorded"
	// NotReported marks a value that was present but corrupted beyond repair.
	NotReported = "Not reported"
)

// ListSeparator joins the items of a multi-valued field held in one text
// value, such as a CSV cell.
const ListSeparator = "; "

// Source column names as they appear in the survey sheet.
const (
	ColActivityID    = "Activity ID"
	ColLatitude      = "Latitude"
	ColLongitude     = "Longitude"
	ColSiteName      = "Site Name"
	ColGroupName     = "Group name"
	ColParticipation = "Participating as"
	ColObservedOn    = "Observation date"
	ColTime          = "Time"
	ColLight         = "Light condition"
	ColDepth         = "Depth (metres)"
	ColWaterTemp     = "Water temperature (deg. C)"
	ColActivity      = "Activity"
	ColReefPhoto     = "Photo of the reef surveyed"
	ColLightest      = "Colour Code Lightest"
	ColDarkest       = "Colour Code Darkest"
	ColAverage       = "Average."
	ColCoralType     = "Coral Type"
	ColSpecies       = "Species"
	ColPhoto         = "Photo"
)

// SourceColumns is the fixed projection taken from the raw table. Every
// name must be present in the source or the load fails.
var SourceColumns = []string{
	ColActivityID, ColLatitude, ColLongitude, ColSiteName, ColGroupName,
	ColParticipation, ColObservedOn, ColTime, ColLight, ColDepth, ColWaterTemp,
	ColActivity, ColReefPhoto, ColLightest, ColDarkest, ColAverage,
	ColCoralType, ColSpecies, ColPhoto,
}

// Table is the raw spreadsheet content: a header row and string cells.
// Rows may be shorter than Columns; missing trailing cells are empty.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of column name.
func (t *Table) Index(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Validate fails with a SchemaError naming the first required column that
// is absent from the table header.
func (t *Table) Validate(required []string) error {
	for _, name := range required {
		if _, ok := t.Index(name); !ok {
			return &SchemaError{Column: name}
		}
	}
	return nil
}

// Cell returns the value at row, col or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// SurveyRow is one projected raw observation. Values are the untouched cell
// text; an empty string means the cell was blank.
type SurveyRow struct {
	ActivityID    string
	Latitude      string
	Longitude     string
	SiteName      string
	GroupName     string
	Participation string
	ObservedOn    string
	Time          string
	Light         string
	Depth         string
	WaterTemp     string
	Activity      string
	ReefPhoto     string
	Lightest      string
	Darkest       string
	Average       string
	CoralType     string
	Species       string
	Photo         string
}

// Observation is a standardized row ready for aggregation.
type Observation struct {
	ActivityID    string
	Latitude      float64
	Longitude     float64
	SiteName      string
	GroupName     string
	Participation string
	Activity      string
	ObservedOn    time.Time
	HasDate       bool
	Year          int
	Time          string
	Light         string
	Depth         string
	WaterTemp     string
	Lightest      string
	Darkest       string
	Average       float64
	HasAverage    bool
	CoralType     string
	Species       string
	Photo         string
}

// Sample is one aggregated survey record: one per grouping key.
type Sample struct {
	ActivityID    string
	Latitude      float64
	Longitude     float64
	SiteName      string
	GroupName     string
	Participation string
	Activity      string
	ObservedOn    time.Time
	HasDate       bool
	Year          int
	Time          string
	Light         string
	Depth         string
	WaterTemp     string
	CoralTypes    []string
	Species       []string
	Photos        []string
	Lightest      []string
	Darkest       []string
	Average       float64
	ColorRanges   []string
	// AverageCode is the derived hue/brightness code, e.g. "D3".
	AverageCode string
	// AverageColor is AverageCode rendered through the palette.
	AverageColor string
}
