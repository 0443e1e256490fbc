// Package cache stores computed reports in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/types"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "gatecompass:report"
	defaultTTL    = time.Hour
)

// ReportCache is a Redis-backed report cache.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Option configures a ReportCache.
type Option func(*ReportCache)

// WithTTL sets how long entries live.
func WithTTL(ttl time.Duration) Option {
	return func(c *ReportCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(c *ReportCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	return opts, nil
}

// New connects to url and verifies the connection.
func New(ctx context.Context, url string, opts ...Option) (*ReportCache, error) {
	ro, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	ro.DialTimeout = 2 * time.Second
	ro.ReadTimeout = time.Second
	ro.WriteTimeout = time.Second

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return NewWithClient(client, opts...), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, opts ...Option) *ReportCache {
	c := &ReportCache{client: client, ttl: defaultTTL, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key names the entry for a corpus version, window and analysis date.
// A new corpus version never reads an older entry.
func (c *ReportCache) Key(version string, window model.YearRange, date string) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.prefix, version, window, date)
}

// Get returns the cached report. A miss is (zero, false, nil).
func (c *ReportCache) Get(ctx context.Context, key string) (types.Report, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.Report{}, false, nil
	}
	if err != nil {
		return types.Report{}, false, fmt.Errorf("%w: get %s: %w", ErrUnavailable, key, err)
	}

	var r types.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return types.Report{}, false, fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	return r, true, nil
}

// Set stores r under key for the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, r types.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrUnavailable, key, err)
	}
	return nil
}

func (c *ReportCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *ReportCache) Close() error { return c.client.Close() }
