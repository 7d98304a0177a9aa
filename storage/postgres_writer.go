package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"coralwatch-cleaner/models"
	"coralwatch-cleaner/utils"
)

const sampleColumns = 23

// PostgresWriter persists aggregated samples to PostgreSQL.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, retrying the initial
// ping, runs schema migrations and returns a ready-to-use PostgresWriter.
// Rows it writes are tagged with runID.
func NewPostgresWriter(dsn, runID string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw, err := newPostgresWriter(db, runID)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pw, nil
}

func newPostgresWriter(db *sql.DB, runID string) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS coral_samples (
			id             SERIAL PRIMARY KEY,
			run_id         TEXT          NOT NULL,
			activity_id    TEXT          NOT NULL,
			coral_types    TEXT[]        NOT NULL DEFAULT '{}',
			latitude       DOUBLE PRECISION NOT NULL,
			longitude      DOUBLE PRECISION NOT NULL,
			site_name      TEXT          NOT NULL DEFAULT '',
			group_name     TEXT          NOT NULL DEFAULT '',
			participation  TEXT          NOT NULL DEFAULT '',
			activity       TEXT          NOT NULL DEFAULT '',
			observed_on    DATE,
			year           INTEGER,
			obs_time       TEXT          NOT NULL DEFAULT '',
			light          TEXT          NOT NULL DEFAULT '',
			depth          TEXT          NOT NULL DEFAULT '',
			water_temp     TEXT          NOT NULL DEFAULT '',
			species        TEXT[]        NOT NULL DEFAULT '{}',
			photos         TEXT[]        NOT NULL DEFAULT '{}',
			lightest       TEXT[]        NOT NULL DEFAULT '{}',
			darkest        TEXT[]        NOT NULL DEFAULT '{}',
			average        NUMERIC(6,2)  NOT NULL,
			color_ranges   TEXT[]        NOT NULL DEFAULT '{}',
			average_code   TEXT          NOT NULL,
			average_color  TEXT          NOT NULL,
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_coral_samples_activity ON coral_samples(activity_id);
		CREATE INDEX IF NOT EXISTS idx_coral_samples_year     ON coral_samples(year);
		CREATE INDEX IF NOT EXISTS idx_coral_samples_color    ON coral_samples(average_code);
	`)
	return err
}

// Write replaces the table contents with samples in a single transaction.
func (pw *PostgresWriter) Write(samples []*models.Sample) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM coral_samples"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(samples); i += batchSize {
		end := min(i+batchSize, len(samples))
		if err := pw.insertBatch(tx, samples[i:end]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(tx *sql.Tx, batch []*models.Sample) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*sampleColumns)

	for idx, s := range batch {
		base := idx * sampleColumns
		placeholders := make([]string, sampleColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		observedOn := sql.NullTime{Time: s.ObservedOn, Valid: s.HasDate}
		year := sql.NullInt32{Int32: int32(s.Year), Valid: s.HasDate}
		valueArgs = append(valueArgs,
			pw.runID, s.ActivityID, pq.Array(s.CoralTypes), s.Latitude, s.Longitude,
			s.SiteName, s.GroupName, s.Participation, s.Activity, observedOn, year,
			s.Time, s.Light, s.Depth, s.WaterTemp, pq.Array(s.Species), pq.Array(s.Photos),
			pq.Array(s.Lightest), pq.Array(s.Darkest), s.Average, pq.Array(s.ColorRanges),
			s.AverageCode, s.AverageColor)
	}

	query := fmt.Sprintf(`
		INSERT INTO coral_samples (
			run_id, activity_id, coral_types, latitude, longitude,
			site_name, group_name, participation, activity, observed_on, year,
			obs_time, light, depth, water_temp, species, photos,
			lightest, darkest, average, color_ranges,
			average_code, average_color
		)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

// Count returns the number of stored samples.
func (pw *PostgresWriter) Count() (int, error) {
	var n int
	if err := pw.db.QueryRow("SELECT COUNT(*) FROM coral_samples").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// DefaultRetry is the connection retry policy used when none is configured.
func DefaultRetry(attempts int, logger *utils.Logger) *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: attempts, BaseDelay: 2 * time.Second, Logger: logger}
}
