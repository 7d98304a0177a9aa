package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "modernc.org/sqlite"

	"coralwatch-cleaner/models"
)

// Snapshot is a local SQLite copy of the raw survey table, so later runs
// skip the slow spreadsheet import.
type Snapshot struct {
	path string
}

// NewSnapshot returns a handle on the snapshot file at path. Nothing is
// opened until Load or Save.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) Path() string { return s.path }

// Exists reports whether a snapshot file is present.
func (s *Snapshot) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the snapshot back into a Table.
func (s *Snapshot) Load() (*models.Table, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("snapshot: %w: %s", models.ErrSourceUnavailable, s.path)
		}
		return nil, fmt.Errorf("snapshot: stat %q: %w", s.path, err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open: %w", err)
	}
	defer db.Close()

	t := &models.Table{}
	cols, err := db.Query(`SELECT name FROM raw_columns ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read columns: %w", err)
	}
	for cols.Next() {
		var name string
		if err := cols.Scan(&name); err != nil {
			cols.Close()
			return nil, fmt.Errorf("snapshot: scan column: %w", err)
		}
		t.Columns = append(t.Columns, name)
	}
	cols.Close()
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: read columns: %w", err)
	}

	rows, err := db.Query(`SELECT cells FROM raw_rows ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read rows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("snapshot: scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("snapshot: decode row: %w", err)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, rows.Err()
}

// Save writes t to a temporary file and renames it over the snapshot path,
// so a crash never leaves a half-written snapshot behind.
func (s *Snapshot) Save(t *models.Table) error {
	tmp := s.path + ".tmp"
	_ = os.Remove(tmp)

	if err := writeSnapshot(tmp, t); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}

func writeSnapshot(path string, t *models.Table) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("snapshot: open: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE raw_columns (pos INTEGER PRIMARY KEY, name TEXT NOT NULL);
		CREATE TABLE raw_rows (idx INTEGER PRIMARY KEY, cells TEXT NOT NULL);
	`); err != nil {
		return fmt.Errorf("snapshot: create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	for i, name := range t.Columns {
		if _, err := tx.Exec(`INSERT INTO raw_columns (pos, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("snapshot: insert column: %w", err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO raw_rows (idx, cells) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare: %w", err)
	}
	defer stmt.Close()
	for i, row := range t.Rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("snapshot: encode row %d: %w", i, err)
		}
		if _, err := stmt.Exec(i, string(cells)); err != nil {
			return fmt.Errorf("snapshot: insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit: %w", err)
	}
	return nil
}
