package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/utils"
)

// CachedLoader returns the raw survey table from the snapshot when one
// exists, otherwise imports it from source and writes the snapshot first.
type CachedLoader struct {
	snapshot *Snapshot
	source   TableSource
	logger   *utils.Logger
}

// NewCachedLoader creates a loader that prefers snapshot and falls back to
// importing source. source may be nil when only the snapshot is wanted.
func NewCachedLoader(snapshot *Snapshot, source TableSource, logger *utils.Logger) *CachedLoader {
	return &CachedLoader{snapshot: snapshot, source: source, logger: logger}
}

// Load returns the table after checking it has every source column. A
// source that fails the check is never written to the snapshot.
func (l *CachedLoader) Load() (*models.Table, error) {
	if dir := filepath.Dir(l.snapshot.Path()); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("loader: create snapshot dir: %w", err)
		}
	}

	lock := flock.New(l.snapshot.Path() + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("loader: lock snapshot: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			l.logger.Warn("[loader] Failed to release snapshot lock: %v", err)
		}
	}()

	t, err := l.load()
	if err != nil {
		return nil, err
	}
	l.logger.Info("[loader] Loaded %d raw rows, %d columns", len(t.Rows), len(t.Columns))
	return t, nil
}

func (l *CachedLoader) load() (*models.Table, error) {
	if l.snapshot.Exists() {
		l.logger.Info("[loader] Reading snapshot %s", l.snapshot.Path())
		t, err := l.snapshot.Load()
		if err != nil {
			return nil, err
		}
		return t, t.Validate(models.SourceColumns)
	}
	if l.source == nil {
		return nil, fmt.Errorf("loader: %w: no snapshot at %s", models.ErrSourceUnavailable, l.snapshot.Path())
	}

	l.logger.Info("[loader] No snapshot at %s, importing source", l.snapshot.Path())
	t, err := l.source.Load()
	if err != nil {
		return nil, err
	}
	if err := t.Validate(models.SourceColumns); err != nil {
		return nil, err
	}
	if err := l.snapshot.Save(t); err != nil {
		return nil, err
	}
	l.logger.Info("[loader] Snapshot written to %s", l.snapshot.Path())
	return t, nil
}
