package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, opts ...Option) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestReportCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	key := c.Key("v1", model.YearRange{Start: 2015, End: 2024}, "2026-10-15")
	assert.Equal(t, "gatecompass:report:v1:2015-2024:2026-10-15", key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	in := types.Report{
		Status:       types.StatusSuccess,
		AnalysisDate: "2026-10-15",
		TotalTopics:  1,
		Topics:       map[string]types.TopicDetail{"Paging": {Subject: "Operating System", Marks: 4}},
		Recommendations: types.Recommendations{
			FocusOrder: []string{"Paging"},
		},
	}
	require.NoError(t, c.Set(ctx, key, in))

	out, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestReportCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, WithTTL(time.Minute), WithPrefix("test"))

	key := c.Key("v1", model.YearRange{Start: 2020, End: 2024}, "2026-10-15")
	require.NoError(t, c.Set(ctx, key, types.Report{Status: types.StatusSuccess}))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReportCache_Errors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, mr.Set("bad", "{not json"))
	_, _, err := c.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrCorrupt)

	mr.Close()
	_, _, err = c.Get(ctx, "any")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, c.Ping(ctx), ErrUnavailable)
}

func TestParseURL(t *testing.T) {
	_, err := ParseURL("")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = ParseURL("http://not-redis")
	assert.ErrorIs(t, err, ErrInvalidURL)

	opts, err := ParseURL("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
}
