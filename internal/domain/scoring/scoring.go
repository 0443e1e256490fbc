// Package scoring ranks topics by a weighted importance score and assigns
// priority tiers.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/gatecompass/internal/domain/aggregate"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/trend"
)

const (
	weightTolerance = 1e-9
	maxPriority     = 100
)

// Weights are the importance coefficients. They must sum to 1.
type Weights struct {
	Frequency  float64
	Marks      float64
	Recency    float64
	Difficulty float64
}

// DefaultWeights returns 0.4/0.3/0.2/0.1.
func DefaultWeights() Weights {
	return Weights{Frequency: 0.4, Marks: 0.3, Recency: 0.2, Difficulty: 0.1}
}

// Validate checks that no weight is negative and that they sum to 1.
func (w Weights) Validate() error {
	if w.Frequency < 0 || w.Marks < 0 || w.Recency < 0 || w.Difficulty < 0 {
		return fmt.Errorf("%w: negative weight", ErrInvalidWeights)
	}
	sum := w.Frequency + w.Marks + w.Recency + w.Difficulty
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: sum is %v", ErrInvalidWeights, sum)
	}
	return nil
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWeights replaces the importance coefficients. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(r *Ranker) {
		if w.Validate() == nil {
			r.weights = w
		}
	}
}

// WithThresholds replaces the tier cut-offs. Invalid thresholds are ignored.
func WithThresholds(t Thresholds) Option {
	return func(r *Ranker) {
		if t.Validate() == nil {
			r.thresholds = t
		}
	}
}

// Input is everything the ranker needs about one (subject, topic).
type Input struct {
	Topic *aggregate.Bucket   // subject+topic bucket
	Years []*aggregate.Bucket // the same topic split by year
	Trend trend.Result
}

// RankedTopic is a topic with its score components, score and tier.
type RankedTopic struct {
	Subject    string
	Topic      string
	Count      int
	TotalMarks float64
	Difficulty model.Difficulty

	RecencyWeight    float64
	DifficultyWeight float64
	YearsObserved    int
	Trend            trend.Result

	ImportanceScore float64
	PriorityScore   float64 // importance relative to the top topic, 0-100
	Tier            Tier
}

// Ranker computes importance scores. It holds no mutable state.
type Ranker struct {
	weights    Weights
	thresholds Thresholds
}

// NewRanker creates a ranker with default weights and thresholds unless overridden.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{weights: DefaultWeights(), thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Weights returns the coefficients in use.
func (r *Ranker) Weights() Weights { return r.weights }

// Rank scores every input and returns topics by importance descending,
// ties broken by subject then topic.
func (r *Ranker) Rank(inputs []Input, window model.YearRange) []RankedTopic {
	out := make([]RankedTopic, 0, len(inputs))
	best := 0.0
	for _, in := range inputs {
		if in.Topic == nil || in.Topic.Count == 0 {
			continue
		}
		t := RankedTopic{
			Subject:          in.Topic.Subject,
			Topic:            in.Topic.Topic,
			Count:            in.Topic.Count,
			TotalMarks:       in.Topic.TotalMarks(),
			Difficulty:       in.Topic.DominantDifficulty(),
			RecencyWeight:    Recency(in.Years, window),
			DifficultyWeight: in.Topic.MeanDifficulty(),
			YearsObserved:    len(in.Years),
			Trend:            in.Trend,
		}
		t.ImportanceScore = r.weights.Frequency*float64(t.Count) +
			r.weights.Marks*t.TotalMarks +
			r.weights.Recency*t.RecencyWeight +
			r.weights.Difficulty*t.DifficultyWeight
		best = math.Max(best, t.ImportanceScore)
		out = append(out, t)
	}

	for i := range out {
		if best > 0 {
			out[i].PriorityScore = out[i].ImportanceScore / best * maxPriority
		}
		out[i].Tier = r.thresholds.Tier(out[i].PriorityScore)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ImportanceScore != b.ImportanceScore {
			return a.ImportanceScore > b.ImportanceScore
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Topic < b.Topic
	})
	return out
}

// Confidence grows ten points per observed question and stays within 60-95.
func Confidence(count int) float64 {
	return math.Min(95, math.Max(60, float64(count)*10))
}

// Recency sums, per record, how far into the window its year lies:
// max(0, (year - start) / length).
func Recency(years []*aggregate.Bucket, window model.YearRange) float64 {
	n := window.Len()
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range years {
		w := float64(b.Year-window.Start) / float64(n)
		if w > 0 {
			sum += w * float64(b.Count)
		}
	}
	return sum
}
