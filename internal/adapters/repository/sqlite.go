package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/okian/gatecompass/internal/domain/model"
	_ "modernc.org/sqlite"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS observations (
		id         TEXT,
		subject    TEXT NOT NULL,
		topic      TEXT NOT NULL,
		year       INTEGER NOT NULL,
		marks      REAL NOT NULL DEFAULT 1,
		difficulty TEXT NOT NULL DEFAULT 'medium'
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS observations_id ON observations(id)`,
	`CREATE INDEX IF NOT EXISTS observations_year ON observations(year)`,
}

// SQLiteStore keeps an observation snapshot in a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	opts options
}

// OpenSQLiteStore opens or creates the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func OpenSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrUnavailable, err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, stmt := range append(pragmas, sqliteMigrations...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: migrate sqlite: %w", ErrUnavailable, err)
		}
	}
	return &SQLiteStore{db: db, path: path, opts: buildOptions("sqlite", opts)}, nil
}

func (s *SQLiteStore) Name() string { return s.opts.name }

func (s *SQLiteStore) Load(ctx context.Context, window model.YearRange) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(id, ''), subject, topic, year, marks, difficulty
		 FROM observations WHERE year BETWEEN ? AND ? ORDER BY rowid`,
		window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("%w: query observations: %w", ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var raws []model.Raw
	for rows.Next() {
		var raw model.Raw
		if err := rows.Scan(&raw.ID, &raw.Subject, &raw.Topic, &raw.Year, &raw.Marks, &raw.Difficulty); err != nil {
			return nil, fmt.Errorf("%w: scan observation: %w", ErrUnavailable, err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read observations: %w", ErrUnavailable, err)
	}

	records, skipped := normalizeAll(raws)
	reportSkipped(s.opts, s.path, skipped)
	return records, nil
}

// Insert writes records in one transaction. Records whose ID already exists
// are ignored; the number actually inserted is returned. Records without an
// ID are always inserted.
func (s *SQLiteStore) Insert(ctx context.Context, records []model.Record) (int, error) {
	return s.write(ctx, records, false)
}

// Replace swaps the stored observations for records in one transaction and
// returns the number of rows written.
func (s *SQLiteStore) Replace(ctx context.Context, records []model.Record) (int, error) {
	return s.write(ctx, records, true)
}

func (s *SQLiteStore) write(ctx context.Context, records []model.Record, truncate bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if truncate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
			return 0, fmt.Errorf("clear observations: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO observations (id, subject, topic, year, marks, difficulty) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, r := range records {
		var id any
		if r.ID != "" {
			id = r.ID
		}
		res, err := stmt.ExecContext(ctx, id, r.Subject, r.Topic, r.Year, r.Marks, strings.ToLower(r.Difficulty.String()))
		if err != nil {
			return 0, fmt.Errorf("insert observation: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

// Version changes whenever rows are added or removed.
func (s *SQLiteStore) Version(ctx context.Context) (string, error) {
	var count, last int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(MAX(rowid), 0) FROM observations`).Scan(&count, &last)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Sprintf("sqlite-%d-%d", count, last), nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
