package config_test

import (
	"errors"
	"testing"

	"github.com/okian/gatecompass/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then the defaults are valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.WeightFrequency+cfg.WeightMarks+cfg.WeightRecency+cfg.WeightDifficulty, convey.ShouldAlmostEqual, 1.0)
			convey.So(cfg.AllocationVeryHigh+cfg.AllocationHigh+cfg.AllocationMedium, convey.ShouldEqual, 100)
			convey.So(cfg.TrendIncreaseRatio, convey.ShouldEqual, 1.2)
			convey.So(cfg.TrendDecreaseRatio, convey.ShouldEqual, 0.8)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		cases := map[string]func(c *config.Config){
			"store_kind":    func(c *config.Config) { c.StoreKind = "mongo" },
			"corpus_path":   func(c *config.Config) { c.StoreKind = config.StoreFile },
			"database_url":  func(c *config.Config) { c.StoreKind = config.StorePostgres },
			"sqlite_path":   func(c *config.Config) { c.StoreKind = config.StoreSQLite },
			"merge_sources": func(c *config.Config) { c.StoreKind = config.StoreMerge },
			"merge source":  func(c *config.Config) { c.StoreKind, c.MergeSources = config.StoreMerge, []string{"merge"} },
			"store_timeout": func(c *config.Config) { c.StoreTimeout = 0 },
			"window_years":  func(c *config.Config) { c.WindowYears = 0 },
			"focus_count":   func(c *config.Config) { c.FocusCount = 0 },
			"negative":      func(c *config.Config) { c.WeightFrequency, c.WeightMarks = -0.1, 0.8 },
			"sum to":        func(c *config.Config) { c.WeightRecency = 0.3 },
			"descending":    func(c *config.Config) { c.TierHigh = 80 },
			"trend ratios":  func(c *config.Config) { c.TrendIncreaseRatio = 0.9 },
			"allocation":    func(c *config.Config) { c.AllocationMedium = 30 },
		}

		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}
