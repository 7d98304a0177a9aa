package models

// RunStats counts rows through the pipeline stages.
type RunStats struct {
	RunID       string
	RawRows     int
	KeptRows    int
	DroppedRows int
	Samples     int
}

// Extent is the bounding box of the sample coordinates in degrees.
type Extent struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
	// CenterLat and CenterLng are the rectangle's centre.
	CenterLat, CenterLng float64
}

// SurveyReport holds summary figures over the aggregated samples.
type SurveyReport struct {
	Stats              RunStats
	SamplesByYear      map[int]int
	SamplesByCoralType map[string]int
	// TopColor is the most frequent calculated average colour code.
	TopColor      string
	TopColorCount int
	MeanAverage   float64
	Extent        *Extent
}
