package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/gatecompass/internal/domain/aggregate"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/scoring"
	"github.com/okian/gatecompass/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

var window = model.YearRange{Start: 2015, End: 2024}

func inputsFrom(records []model.Record) []scoring.Input {
	topics := aggregate.Aggregate(records, aggregate.BySubject|aggregate.ByTopic)
	years := aggregate.ByGroup(aggregate.Aggregate(records, aggregate.BySubject|aggregate.ByTopic|aggregate.ByYear),
		aggregate.BySubject|aggregate.ByTopic)
	out := make([]scoring.Input, 0, len(topics))
	for k, b := range topics {
		out = append(out, scoring.Input{Topic: b, Years: years[k]})
	}
	return out
}

func repeat(subject, topic string, marks float64, years ...int) []model.Record {
	out := make([]model.Record, 0, len(years))
	for _, y := range years {
		out = append(out, model.Record{Subject: subject, Topic: topic, Year: y, Marks: marks, Difficulty: model.DifficultyMedium})
	}
	return out
}

func position(ranked []scoring.RankedTopic, topic string) int {
	for i, r := range ranked {
		if r.Topic == topic {
			return i
		}
	}
	return -1
}

func TestRanker(t *testing.T) {
	Convey("Given the default ranker", t, func() {
		r := scoring.NewRanker()

		Convey("A single topic observed for five years lands in the top tier", func() {
			ranked := r.Rank(inputsFrom(repeat("Algorithms", "Graph Algorithms", 5, 2020, 2021, 2022, 2023, 2024)), window)

			So(len(ranked), ShouldEqual, 1)
			g := ranked[0]
			So(g.Count, ShouldEqual, 5)
			So(g.TotalMarks, ShouldEqual, 25.0)
			So(g.YearsObserved, ShouldEqual, 5)
			So(g.RecencyWeight, ShouldAlmostEqual, 3.5, 1e-9)
			So(g.DifficultyWeight, ShouldEqual, 2.5)
			So(g.ImportanceScore, ShouldAlmostEqual, 10.45, 1e-9)
			So(g.PriorityScore, ShouldEqual, 100.0)
			So(g.Tier, ShouldEqual, scoring.TierVeryHigh)
		})

		Convey("Ties are broken by subject then topic", func() {
			records := append(repeat("DS", "Trees", 2, 2020), repeat("Algorithms", "Sorting", 2, 2020)...)
			records = append(records, repeat("Algorithms", "Hashing", 2, 2020)...)
			ranked := r.Rank(inputsFrom(records), window)

			So(ranked[0].Topic, ShouldEqual, "Hashing")
			So(ranked[1].Topic, ShouldEqual, "Sorting")
			So(ranked[2].Topic, ShouldEqual, "Trees")
		})

		Convey("Raising one topic's marks never lowers its position", func() {
			base := append(repeat("TOC", "Regular Languages", 4, 2021, 2022),
				repeat("OS", "Paging", 3, 2020, 2023, 2024)...)
			base = append(base, repeat("CN", "Routing", 2, 2019, 2024)...)

			prev := len(base)
			for _, extra := range []float64{0, 1, 2, 5, 10, 50} {
				records := append([]model.Record(nil), base...)
				records = append(records, repeat("CN", "Routing", extra+1, 2022)...)
				pos := position(r.Rank(inputsFrom(records), window), "Routing")
				So(pos, ShouldBeLessThanOrEqualTo, prev)
				prev = pos
			}
			So(prev, ShouldEqual, 0)
		})

		Convey("Tiers follow the priority thresholds", func() {
			records := append(repeat("A", "top", 10, 2024, 2024, 2024, 2024), repeat("B", "mid", 1, 2016)...)
			ranked := r.Rank(inputsFrom(records), window)
			So(ranked[0].Tier, ShouldEqual, scoring.TierVeryHigh)
			So(ranked[1].Tier, ShouldEqual, scoring.TierLow)
		})

		Convey("Trend results are carried through", func() {
			in := inputsFrom(repeat("X", "Y", 1, 2020))
			in[0].Trend = trend.Result{Classification: trend.Increasing}
			So(r.Rank(in, window)[0].Trend.Classification, ShouldEqual, trend.Increasing)
		})

		Convey("Empty input ranks nothing", func() {
			So(r.Rank(nil, window), ShouldBeEmpty)
		})
	})
}

func TestWeightsAndThresholds(t *testing.T) {
	Convey("Given weight and threshold settings", t, func() {
		So(scoring.DefaultWeights().Validate(), ShouldBeNil)
		So(errors.Is(scoring.Weights{Frequency: 0.5, Marks: 0.5, Recency: 0.5}.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)
		So(errors.Is(scoring.Weights{Frequency: 1.5, Marks: -0.5}.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)

		th := scoring.DefaultThresholds()
		So(th.Validate(), ShouldBeNil)
		So(th.Tier(100), ShouldEqual, scoring.TierVeryHigh)
		So(th.Tier(70), ShouldEqual, scoring.TierVeryHigh)
		So(th.Tier(69.99), ShouldEqual, scoring.TierHigh)
		So(th.Tier(15), ShouldEqual, scoring.TierMedium)
		So(th.Tier(14.9), ShouldEqual, scoring.TierLow)
		So(errors.Is(scoring.Thresholds{VeryHigh: 10, High: 20}.Validate(), scoring.ErrInvalidThresholds), ShouldBeTrue)

		Convey("Frequency-only weights rank by count", func() {
			r := scoring.NewRanker(scoring.WithWeights(scoring.Weights{Frequency: 1}))
			So(r.Weights().Frequency, ShouldEqual, 1.0)
			records := append(repeat("A", "many", 1, 2016, 2016, 2016), repeat("B", "heavy", 9, 2024)...)
			So(r.Rank(inputsFrom(records), window)[0].Topic, ShouldEqual, "many")
		})

		Convey("Invalid options are ignored", func() {
			r := scoring.NewRanker(scoring.WithWeights(scoring.Weights{}), scoring.WithThresholds(scoring.Thresholds{}))
			So(r.Weights(), ShouldResemble, scoring.DefaultWeights())
		})

		Convey("Confidence is clamped to 60-95", func() {
			So(scoring.Confidence(0), ShouldEqual, 60.0)
			So(scoring.Confidence(7), ShouldEqual, 70.0)
			So(scoring.Confidence(9), ShouldEqual, 90.0)
			So(scoring.Confidence(12), ShouldEqual, 95.0)
		})

		Convey("Tier labels", func() {
			So(scoring.TierVeryHigh.String(), ShouldEqual, "Very High")
			So(scoring.TierLow.String(), ShouldEqual, "Low")
		})
	})
}
