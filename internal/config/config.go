// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Keys are flat snake_case so env vars map 1:1 (GATECOMPASS_STORE_KIND -> store_kind).
//   - New returns defaults; Load layers file and env on top and validates.
package config

import (
	"fmt"
	"math"
	"time"
)

// Store backends understood by the service.
const (
	StoreSeed     = "seed"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMerge    = "merge"
)

const weightTolerance = 1e-9

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreKind picks the record store backend.
	StoreKind string `koanf:"store_kind"`

	// MergeSources lists the backends combined when StoreKind is "merge".
	MergeSources []string `koanf:"merge_sources"`

	// CorpusPath is a file or directory of .yaml/.json/.xlsx corpora.
	CorpusPath string `koanf:"corpus_path"`

	// DatabaseURL is the Postgres DSN for the question bank.
	DatabaseURL string `koanf:"database_url"`

	// DatabaseMaxConns caps the pgx pool size.
	DatabaseMaxConns int32 `koanf:"database_max_conns"`

	// SQLitePath points at a local observations snapshot.
	SQLitePath string `koanf:"sqlite_path"`

	// StoreTimeout bounds a single record store load.
	StoreTimeout time.Duration `koanf:"store_timeout"`

	// EmptyOnUnavailable returns a degraded empty report instead of an error
	// when the store cannot be read.
	EmptyOnUnavailable bool `koanf:"empty_on_unavailable"`

	// CacheURL enables the Redis report cache when set (redis://host:6379/0).
	CacheURL string `koanf:"cache_url"`

	// CacheTTL is how long a cached report stays valid.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// WindowYears is the default analysis window length.
	WindowYears int `koanf:"window_years"`

	// WindowEndYear fixes the last year of the default window; 0 means the current year.
	WindowEndYear int `koanf:"window_end_year"`

	// MaxWindowYears caps the span a caller may request.
	MaxWindowYears int `koanf:"max_window_years"`

	// Importance coefficients; must sum to 1.
	WeightFrequency  float64 `koanf:"weight_frequency"`
	WeightMarks      float64 `koanf:"weight_marks"`
	WeightRecency    float64 `koanf:"weight_recency"`
	WeightDifficulty float64 `koanf:"weight_difficulty"`

	// Tier thresholds on the 0-100 priority score, strictly descending.
	TierVeryHigh float64 `koanf:"tier_very_high"`
	TierHigh     float64 `koanf:"tier_high"`
	TierMedium   float64 `koanf:"tier_medium"`

	// Trend multipliers applied to the early average.
	TrendIncreaseRatio float64 `koanf:"trend_increase_ratio"`
	TrendDecreaseRatio float64 `koanf:"trend_decrease_ratio"`

	// FocusCount is the length of the focus order.
	FocusCount int `koanf:"focus_count"`

	// Study-time percentages per tier; must sum to 100.
	AllocationVeryHigh int `koanf:"allocation_very_high"`
	AllocationHigh     int `koanf:"allocation_high"`
	AllocationMedium   int `koanf:"allocation_medium"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreKind:          StoreSeed,
		DatabaseMaxConns:   8,
		StoreTimeout:       3 * time.Second,
		CacheTTL:           time.Hour,
		WindowYears:        10,
		MaxWindowYears:     40,
		WeightFrequency:    0.4,
		WeightMarks:        0.3,
		WeightRecency:      0.2,
		WeightDifficulty:   0.1,
		TierVeryHigh:       70,
		TierHigh:           40,
		TierMedium:         15,
		TrendIncreaseRatio: 1.2,
		TrendDecreaseRatio: 0.8,
		FocusCount:         5,
		AllocationVeryHigh: 40,
		AllocationHigh:     35,
		AllocationMedium:   25,
	}
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !validStoreKind(c.StoreKind):
		return fmt.Errorf("%w: unknown store_kind %q", ErrInvalidConfig, c.StoreKind)
	case c.StoreKind == StoreFile && c.CorpusPath == "":
		return fmt.Errorf("%w: corpus_path is required for the file store", ErrInvalidConfig)
	case c.StoreKind == StorePostgres && c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
	case c.StoreKind == StoreSQLite && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
	case c.StoreTimeout <= 0:
		return fmt.Errorf("%w: store_timeout must be positive", ErrInvalidConfig)
	case c.WindowYears <= 0 || c.MaxWindowYears < c.WindowYears:
		return fmt.Errorf("%w: window_years must be in 1..max_window_years", ErrInvalidConfig)
	case c.FocusCount <= 0:
		return fmt.Errorf("%w: focus_count must be positive", ErrInvalidConfig)
	}

	if c.StoreKind == StoreMerge {
		if len(c.MergeSources) == 0 {
			return fmt.Errorf("%w: merge_sources must not be empty", ErrInvalidConfig)
		}
		for _, src := range c.MergeSources {
			if src == StoreMerge || !validStoreKind(src) {
				return fmt.Errorf("%w: invalid merge source %q", ErrInvalidConfig, src)
			}
		}
	}

	weights := []float64{c.WeightFrequency, c.WeightMarks, c.WeightRecency, c.WeightDifficulty}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: importance weights must not be negative", ErrInvalidConfig)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: importance weights sum to %v, want 1", ErrInvalidConfig, sum)
	}

	if !(c.TierVeryHigh > c.TierHigh && c.TierHigh > c.TierMedium && c.TierMedium >= 0) {
		return fmt.Errorf("%w: tier thresholds must be strictly descending", ErrInvalidConfig)
	}
	if c.TrendIncreaseRatio < 1 || c.TrendDecreaseRatio <= 0 || c.TrendDecreaseRatio > 1 {
		return fmt.Errorf("%w: trend ratios need increase >= 1 >= decrease > 0", ErrInvalidConfig)
	}
	if c.AllocationVeryHigh < 0 || c.AllocationHigh < 0 || c.AllocationMedium < 0 ||
		c.AllocationVeryHigh+c.AllocationHigh+c.AllocationMedium != 100 {
		return fmt.Errorf("%w: study allocation must be non-negative and sum to 100", ErrInvalidConfig)
	}
	return nil
}

func validStoreKind(kind string) bool {
	switch kind {
	case StoreSeed, StoreFile, StorePostgres, StoreSQLite, StoreMerge:
		return true
	}
	return false
}
