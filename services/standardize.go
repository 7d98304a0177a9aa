package services

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/utils"
)

// mangledLetters only show up in group names that went through a broken
// encoding round trip.
const mangledLetters = "ÆæÄä"

// roleAliases maps title-cased participant roles onto their preferred spelling.
var roleAliases = map[string]string{
	"Dive Center": "Dive Centre",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/06",
	"01-02-06",
	"1-2-06",
	"02 Jan 2006",
	"2 January 2006",
}

var errBadDate = errors.New("unrecognised date")

// Standardizer normalises text, time, photo and date fields of cleaned
// rows into typed Observations.
type Standardizer struct {
	logger        *utils.Logger
	photoFallback PhotoFallback
	upper         cases.Caser
	lower         cases.Caser
}

// NewStandardizer creates a Standardizer that fills rows with no photo
// according to photoFallback.
func NewStandardizer(logger *utils.Logger, photoFallback PhotoFallback) *Standardizer {
	return &Standardizer{
		logger:        logger,
		photoFallback: photoFallback,
		upper:         cases.Upper(language.Und),
		lower:         cases.Lower(language.Und),
	}
}

// Standardize converts every row. Malformed times degrade quietly;
// unparseable coordinates, dates and averages fail with a ValidationError.
func (s *Standardizer) Standardize(rows []models.SurveyRow) ([]*models.Observation, error) {
	out := make([]*models.Observation, 0, len(rows))
	missingTimes := 0
	for _, r := range rows {
		obs, err := s.observation(r)
		if err != nil {
			return nil, err
		}
		if obs.Time == "" {
			missingTimes++
		}
		out = append(out, obs)
	}
	if missingTimes > 0 {
		s.logger.Debug("[standardizer] %d rows have no usable time", missingTimes)
	}
	return out, nil
}

func (s *Standardizer) observation(r models.SurveyRow) (*models.Observation, error) {
	key := "activity " + r.ActivityID
	invalid := func(field, value string, err error) error {
		return &models.ValidationError{Key: key, Field: field, Value: value, Err: err}
	}

	lat, err := strconv.ParseFloat(r.Latitude, 64)
	if err != nil {
		return nil, invalid(models.ColLatitude, r.Latitude, err)
	}
	lng, err := strconv.ParseFloat(r.Longitude, 64)
	if err != nil {
		return nil, invalid(models.ColLongitude, r.Longitude, err)
	}

	obs := &models.Observation{
		ActivityID:    r.ActivityID,
		Latitude:      lat,
		Longitude:     lng,
		SiteName:      r.SiteName,
		GroupName:     s.groupName(r.GroupName),
		Participation: s.role(r.Participation),
		Activity:      r.Activity,
		Light:         r.Light,
		Depth:         r.Depth,
		WaterTemp:     r.WaterTemp,
		Lightest:      strings.ToUpper(r.Lightest),
		Darkest:       strings.ToUpper(r.Darkest),
		CoralType:     r.CoralType,
		Species:       r.Species,
		Photo:         s.mergePhoto(r.Photo, r.ReefPhoto),
	}
	obs.Time, _ = NormalizeTime(r.Time)

	if r.ObservedOn != "" {
		d, err := ParseDate(r.ObservedOn)
		if err != nil {
			return nil, invalid(models.ColObservedOn, r.ObservedOn, err)
		}
		obs.ObservedOn, obs.HasDate, obs.Year = d, true, d.Year()
	}

	if r.Average != "" {
		avg, err := strconv.ParseFloat(r.Average, 64)
		if err != nil {
			return nil, invalid(models.ColAverage, r.Average, err)
		}
		obs.Average, obs.HasAverage = avg, true
	}
	return obs, nil
}

func (s *Standardizer) groupName(name string) string {
	if name == models.NotRecorded {
		return name
	}
	if strings.ContainsAny(name, mangledLetters) {
		return models.NotReported
	}
	return s.capwords(name)
}

func (s *Standardizer) role(role string) string {
	if role == models.NotRecorded {
		return role
	}
	role = s.capwords(role)
	if canonical, ok := roleAliases[role]; ok {
		return canonical
	}
	return role
}

// capwords upper-cases the first letter of each whitespace-separated word,
// lower-cases the rest and joins the words with single spaces. Hyphens and
// apostrophes do not start a new word: "o'neil dive-club" → "O'neil Dive-club".
func (s *Standardizer) capwords(v string) string {
	words := strings.Fields(v)
	for i, w := range words {
		_, n := utf8.DecodeRuneInString(w)
		words[i] = s.upper.String(w[:n]) + s.lower.String(w[n:])
	}
	return strings.Join(words, " ")
}

func (s *Standardizer) mergePhoto(photo, reefPhoto string) string {
	switch {
	case photo != "":
		return photo
	case reefPhoto != "":
		return reefPhoto
	case s.photoFallback == PhotoAbsent:
		return ""
	default:
		return models.NotRecorded
	}
}

// ParseDate reads an observation date written as text in one of the common
// spreadsheet layouts (month first when ambiguous) or as an Excel serial
// day number.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dateOnly(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, errBadDate
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
