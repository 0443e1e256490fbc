package service

import (
	"fmt"

	"github.com/okian/gatecompass/internal/config"
	"github.com/okian/gatecompass/internal/domain/recommend"
	"github.com/okian/gatecompass/internal/domain/report"
	"github.com/okian/gatecompass/internal/domain/scoring"
	"github.com/okian/gatecompass/internal/domain/trend"
)

// NewPipeline builds the analysis pipeline described by cfg.
func NewPipeline(cfg *config.Config) (*report.Pipeline, error) {
	weights := scoring.Weights{
		Frequency:  cfg.WeightFrequency,
		Marks:      cfg.WeightMarks,
		Recency:    cfg.WeightRecency,
		Difficulty: cfg.WeightDifficulty,
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	thresholds := scoring.Thresholds{
		VeryHigh: cfg.TierVeryHigh,
		High:     cfg.TierHigh,
		Medium:   cfg.TierMedium,
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	return report.New(
		report.WithClassifier(trend.NewClassifier(
			trend.WithThresholds(cfg.TrendIncreaseRatio, cfg.TrendDecreaseRatio),
		)),
		report.WithRanker(scoring.NewRanker(
			scoring.WithWeights(weights),
			scoring.WithThresholds(thresholds),
		)),
		report.WithRecommendOptions(
			recommend.WithFocusCount(cfg.FocusCount),
			recommend.WithAllocation(recommend.Allocation{
				VeryHigh: cfg.AllocationVeryHigh,
				High:     cfg.AllocationHigh,
				Medium:   cfg.AllocationMedium,
			}),
		),
	), nil
}

// ConfigOptions maps cfg onto service options, pipeline included.
// Store and cache are wired by the caller.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithPipeline(p),
		WithStoreTimeout(cfg.StoreTimeout),
		WithWindow(cfg.WindowYears, cfg.WindowEndYear),
		WithMaxWindow(cfg.MaxWindowYears),
		WithEmptyOnUnavailable(cfg.EmptyOnUnavailable),
	}, nil
}
