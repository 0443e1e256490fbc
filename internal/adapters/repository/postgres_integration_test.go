//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const questionBankSchema = `
CREATE TABLE concepts (id SERIAL PRIMARY KEY, name TEXT NOT NULL, category TEXT);
CREATE TABLE questions (
	id SERIAL PRIMARY KEY,
	concept_id INTEGER NOT NULL REFERENCES concepts(id),
	difficulty TEXT,
	year_appeared INTEGER NOT NULL
);
INSERT INTO concepts (name, category) VALUES ('Paging', 'Operating System'), ('Sorting', 'Algorithms');
INSERT INTO questions (concept_id, difficulty, year_appeared) VALUES
	(1, 'hard', 2022), (1, NULL, 2023), (2, 'easy', 2012), (2, 'Moderate', 2020);
`

func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gatecompass"),
		tcpostgres.WithUsername("gate"),
		tcpostgres.WithPassword("gate"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, questionBankSchema)
	pool.Close()
	require.NoError(t, err)

	s, err := NewPostgresStore(ctx, dsn, 2)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Ping(ctx))

	records, err := s.Load(ctx, model.YearRange{Start: 2015, End: 2024})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Algorithms", records[0].Subject)
	assert.Equal(t, model.DifficultyMedium, records[0].Difficulty)
	assert.Equal(t, "Paging", records[1].Topic)
	assert.Equal(t, model.DifficultyHard, records[1].Difficulty)
	assert.Equal(t, model.DefaultMarks, records[2].Marks)
}
