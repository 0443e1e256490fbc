package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/gatecompass/internal/domain/model"
)

// loadQuery reads the question bank. Concept category is the subject and
// concept name the topic; the bank carries no per-question marks.
const loadQuery = `SELECT q.id::text, COALESCE(c.category, ''), COALESCE(c.name, ''), q.year_appeared, COALESCE(q.difficulty, '')
FROM questions q
JOIN concepts c ON c.id = q.concept_id
WHERE q.year_appeared BETWEEN $1 AND $2
ORDER BY q.year_appeared, q.id`

// Querier is the subset of a pgx pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresStore reads observations from the question bank schema.
type PostgresStore struct {
	db    Querier
	close func()
	opts  options
}

// NewPostgresStore opens a pool for dsn and verifies it with a ping.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int32, opts ...Option) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}

	s := NewPostgresStoreWithQuerier(pool, opts...)
	s.close = pool.Close
	return s, nil
}

// NewPostgresStoreWithQuerier wraps an existing pool or a mock.
func NewPostgresStoreWithQuerier(db Querier, opts ...Option) *PostgresStore {
	return &PostgresStore{db: db, close: func() {}, opts: buildOptions("postgres", opts)}
}

func (s *PostgresStore) Name() string { return s.opts.name }

func (s *PostgresStore) Load(ctx context.Context, window model.YearRange) ([]model.Record, error) {
	rows, err := s.db.Query(ctx, loadQuery, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var raws []model.Raw
	for rows.Next() {
		var raw model.Raw
		if err := rows.Scan(&raw.ID, &raw.Subject, &raw.Topic, &raw.Year, &raw.Difficulty); err != nil {
			return nil, fmt.Errorf("%w: scan question: %w", ErrUnavailable, err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %w", ErrUnavailable, err)
	}

	records, skipped := normalizeAll(raws)
	reportSkipped(s.opts, "questions", skipped)
	return model.Filter(records, window), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close releases the pool when the store opened it.
func (s *PostgresStore) Close() { s.close() }
