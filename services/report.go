package services

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/golang/geo/s2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/utils"
)

// ReportService summarises a pipeline run for the operator.
type ReportService struct {
	logger *utils.Logger
}

// NewReportService creates a ReportService.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate computes row counts, samples per year and coral type, the most
// common calculated colour and the geographic extent of r.
func (s *ReportService) Generate(r *Result) *models.SurveyReport {
	report := &models.SurveyReport{
		Stats:              r.Stats,
		SamplesByYear:      make(map[int]int),
		SamplesByCoralType: make(map[string]int),
	}
	if len(r.Samples) == 0 {
		return report
	}

	colorCounts := make(map[string]int)
	var colorOrder []string
	bounds := s2.EmptyRect()
	averages := make([]float64, 0, len(r.Samples))

	for _, sample := range r.Samples {
		if sample.HasDate {
			report.SamplesByYear[sample.Year]++
		}
		if len(sample.CoralTypes) == 0 {
			report.SamplesByCoralType[models.NotRecorded]++
		}
		for _, c := range sample.CoralTypes {
			report.SamplesByCoralType[c]++
		}
		if colorCounts[sample.AverageCode] == 0 {
			colorOrder = append(colorOrder, sample.AverageCode)
		}
		colorCounts[sample.AverageCode]++
		averages = append(averages, sample.Average)

		ll := s2.LatLngFromDegrees(sample.Latitude, sample.Longitude)
		if ll.IsValid() {
			bounds = bounds.AddPoint(ll)
		} else {
			s.logger.Warn("[report] Sample %s has out-of-range coordinates (%v, %v)",
				sample.ActivityID, sample.Latitude, sample.Longitude)
		}
	}

	for _, code := range colorOrder {
		if colorCounts[code] > report.TopColorCount {
			report.TopColor, report.TopColorCount = code, colorCounts[code]
		}
	}
	report.MeanAverage = meanRounded2(averages)

	if !bounds.IsEmpty() {
		lo, hi, c := bounds.Lo(), bounds.Hi(), bounds.Center()
		report.Extent = &models.Extent{
			MinLat: lo.Lat.Degrees(), MinLng: lo.Lng.Degrees(),
			MaxLat: hi.Lat.Degrees(), MaxLng: hi.Lng.Degrees(),
			CenterLat: c.Lat.Degrees(), CenterLng: c.Lng.Degrees(),
		}
	}
	return report
}

// Print renders r as tables on w.
func (s *ReportService) Print(w io.Writer, r *models.SurveyReport) {
	overview := newTable("Metric", "Value")
	overview.AppendRows([]table.Row{
		{"Run ID", r.Stats.RunID},
		{"Raw rows", r.Stats.RawRows},
		{"Kept rows", r.Stats.KeptRows},
		{"Dropped rows", r.Stats.DroppedRows},
		{"Samples", r.Stats.Samples},
		{"Mean average value", fmt.Sprintf("%.2f", r.MeanAverage)},
	})
	if r.TopColor != "" {
		overview.AppendRow(table.Row{"Most common average color", fmt.Sprintf("%s (%d)", r.TopColor, r.TopColorCount)})
	}
	if e := r.Extent; e != nil {
		overview.AppendRow(table.Row{"Extent", fmt.Sprintf("%.4f,%.4f → %.4f,%.4f", e.MinLat, e.MinLng, e.MaxLat, e.MaxLng)})
		overview.AppendRow(table.Row{"Centre", fmt.Sprintf("%.4f,%.4f", e.CenterLat, e.CenterLng)})
	}
	printTable(w, "CoralWatch survey run", overview)

	if len(r.SamplesByYear) > 0 {
		years := make([]int, 0, len(r.SamplesByYear))
		for y := range r.SamplesByYear {
			years = append(years, y)
		}
		sort.Ints(years)
		t := newTable("Year", "Samples")
		for _, y := range years {
			t.AppendRow(table.Row{strconv.Itoa(y), r.SamplesByYear[y]})
		}
		printTable(w, "Samples by year", t)
	}

	if len(r.SamplesByCoralType) > 0 {
		type coralCount struct {
			coral string
			count int
		}
		var corals []coralCount
		for c, n := range r.SamplesByCoralType {
			corals = append(corals, coralCount{c, n})
		}
		sort.Slice(corals, func(i, j int) bool {
			if corals[i].count != corals[j].count {
				return corals[i].count > corals[j].count
			}
			return corals[i].coral < corals[j].coral
		})
		t := newTable("Coral type", "Samples")
		for _, c := range corals {
			t.AppendRow(table.Row{c.coral, c.count})
		}
		printTable(w, "Samples by coral type", t)
	}
}

func newTable(headers ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row(headers))
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw
}

// printTable writes the heading on its own line; go-pretty wraps titles to
// the table width, which mangles them on narrow two-column tables.
func printTable(w io.Writer, heading string, tw table.Writer) {
	fmt.Fprintln(w, heading)
	fmt.Fprintln(w, tw.Render())
}
