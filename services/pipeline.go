package services

import (
	"coralwatch-cleaner/models"
	"coralwatch-cleaner/palette"
	"coralwatch-cleaner/utils"
)

// Result is the output of one pipeline run.
type Result struct {
	Samples []*models.Sample
	Stats   models.RunStats
}

// Pipeline runs the cleaning stages over a raw survey table: clean
// (select, filter, repair), standardize, then aggregate.
type Pipeline struct {
	logger       *utils.Logger
	cleaner      *Cleaner
	standardizer *Standardizer
	aggregator   *Aggregator
}

// NewPipeline creates a Pipeline whose stages all run under opts.
func NewPipeline(logger *utils.Logger, p *palette.Palette, opts Options) *Pipeline {
	return &Pipeline{
		logger:       logger,
		cleaner:      NewCleaner(logger, opts.RequireDate),
		standardizer: NewStandardizer(logger, opts.PhotoFallback),
		aggregator:   NewAggregator(logger, p, opts),
	}
}

// Run transforms t into aggregated samples. The first schema or validation
// failure aborts the run.
func (p *Pipeline) Run(t *models.Table) (*Result, error) {
	rows, err := p.cleaner.Clean(t)
	if err != nil {
		return nil, err
	}
	obs, err := p.standardizer.Standardize(rows)
	if err != nil {
		return nil, err
	}
	samples, err := p.aggregator.Aggregate(obs)
	if err != nil {
		return nil, err
	}

	return &Result{
		Samples: samples,
		Stats: models.RunStats{
			RawRows:     len(t.Rows),
			KeptRows:    len(rows),
			DroppedRows: len(t.Rows) - len(rows),
			Samples:     len(samples),
		},
	}, nil
}
