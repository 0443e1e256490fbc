package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Name() string { return "failing" }

func (failingStore) Load(context.Context, model.YearRange) ([]model.Record, error) {
	return nil, ErrUnavailable
}

func TestMergeStore(t *testing.T) {
	ctx := context.Background()
	first := NewMemoryStore("a", []model.Record{
		{ID: "q1", Subject: "Algorithms", Topic: "Sorting", Year: 2020, Marks: 2},
		{Subject: "Algorithms", Topic: "Sorting", Year: 2021, Marks: 1},
	}, WithName("first"))
	second := NewMemoryStore("b", []model.Record{
		{ID: "q1", Subject: "Algorithms", Topic: "Searching", Year: 2020, Marks: 5},
		{ID: "q9", Subject: "DBMS", Topic: "SQL", Year: 2022, Marks: 1},
	}, WithName("second"))

	m, err := NewMergeStore([]Store{first, second})
	require.NoError(t, err)
	assert.Equal(t, "merge(first,second)", m.Name())

	records, err := m.Load(ctx, wide)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Sorting", records[0].Topic, "first occurrence wins")
	assert.Equal(t, "q9", records[2].ID)

	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Contains(t, v, "+")
	assert.NoError(t, m.Ping(ctx))
}

func TestMergeStore_Errors(t *testing.T) {
	_, err := NewMergeStore(nil)
	assert.ErrorIs(t, err, ErrNoSources)

	m, err := NewMergeStore([]Store{NewMemoryStore("", nil), failingStore{}})
	require.NoError(t, err)

	_, err = m.Load(context.Background(), wide)
	assert.True(t, errors.Is(err, ErrUnavailable))

	v, err := m.Version(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v, "unversioned sources make the merge unversioned")
}
