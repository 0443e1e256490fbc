package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wide = model.YearRange{Start: 2000, End: 2030}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s, err := Seed()
	require.NoError(t, err)

	assert.Equal(t, "seed", s.Name())
	assert.Equal(t, 150, s.Len())

	records, err := s.Load(ctx, model.YearRange{Start: 2023, End: 2024})
	require.NoError(t, err)
	assert.Len(t, records, 50)

	v1, _ := s.Version(ctx)
	again, err := Seed()
	require.NoError(t, err)
	v2, _ := again.Version(ctx)
	assert.Equal(t, v1, v2)
	assert.Contains(t, v1, "gate-cse-2019-2024.1-")
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore("", nil).Load(ctx, wide)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := model.Record{Subject: "A", Topic: "x", Year: 2020, Marks: 1, Difficulty: model.DifficultyEasy}
	b := model.Record{Subject: "B", Topic: "y", Year: 2021, Marks: 2, Difficulty: model.DifficultyHard}

	assert.Equal(t, Fingerprint([]model.Record{a, b}), Fingerprint([]model.Record{b, a}))
	assert.NotEqual(t, Fingerprint([]model.Record{a}), Fingerprint([]model.Record{a, b}))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
- {id: q1, subject: Algorithms, topic: Sorting, year: 2021, marks: 2}
- {id: q2, subject: Algorithms, topic: Sorting, year: 2010}
`)
	writeFile(t, dir, "nested/b.json", `[
		{"id": "q1", "subject": "Algorithms", "topic": "Sorting", "year": 2021},
		{"id": "q3", "subject": "Operating System", "topic": "Paging", "year": 2022, "difficulty": "hard"},
		{"topic": "no subject", "year": 2022}
	]`)
	writeFile(t, dir, "broken.yaml", "invalid: yaml: content: [")
	writeFile(t, dir, "notes.txt", "ignored")

	s := NewFileStore(dir)
	records, err := s.Load(ctx, model.YearRange{Start: 2015, End: 2024})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "q1", records[0].ID)
	assert.Equal(t, 2.0, records[0].Marks)
	assert.Equal(t, "q3", records[1].ID)

	v1, err := s.Version(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, v1)
	assert.NoError(t, s.Ping(ctx))
}

func TestFileStore_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.yml", "- {subject: DBMS, year: 2020}\n")

	records, err := NewFileStore(path).Load(context.Background(), wide)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "DBMS", records[0].Subject)
}

func TestFileStore_MissingRoot(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent"))

	_, err := s.Load(context.Background(), wide)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.ErrorIs(t, s.Ping(context.Background()), ErrUnavailable)
}

func TestReadFile_Unsupported(t *testing.T) {
	_, err := ReadFile("corpus.csv")
	assert.ErrorIs(t, err, ErrDecode)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
