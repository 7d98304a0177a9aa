package storage

import "coralwatch-cleaner/models"

// TableSource is anything that can produce the raw survey table.
type TableSource interface {
	Load() (*models.Table, error)
}

// SampleWriter is the interface any output sink must satisfy.
type SampleWriter interface {
	Write(samples []*models.Sample) error
	Close() error
}
