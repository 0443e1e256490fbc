// Package recommend turns ranked topics into a study plan.
package recommend

import (
	"math"
	"sort"

	"github.com/okian/gatecompass/internal/domain/scoring"
	"github.com/okian/gatecompass/internal/domain/trend"
)

const (
	defaultFocusCount = 5
	planBlocks        = 4
	minPrepHours      = 5
	maxPrepHours      = 50
	percent           = 100
)

var planLabels = [planBlocks]string{"Week 1-2", "Week 3-4", "Week 5-6", "Week 7-8"}

// Allocation is the share of study time, in whole percent, per tier.
type Allocation struct {
	VeryHigh int
	High     int
	Medium   int
}

// DefaultAllocation returns 40/35/25.
func DefaultAllocation() Allocation {
	return Allocation{VeryHigh: 40, High: 35, Medium: 25}
}

// Sum adds the three shares.
func (a Allocation) Sum() int { return a.VeryHigh + a.High + a.Medium }

func (a Allocation) valid() bool {
	return a.VeryHigh >= 0 && a.High >= 0 && a.Medium >= 0 && a.Sum() == percent
}

// PlanBlock is a two-week slice of the study plan.
type PlanBlock struct {
	Label  string
	Topics []string
}

// Recommendation is the study guidance derived from a ranking.
type Recommendation struct {
	FocusOrder          []string
	StudyTimeAllocation Allocation
	ImmediateAction     []string
	TrendingWatch       []string
	DecliningReview     []string
	WeeklyPlan          []PlanBlock
}

// Namer returns the display name of a ranked topic.
type Namer func(scoring.RankedTopic) string

// TopicName is the default Namer.
func TopicName(t scoring.RankedTopic) string { return t.Topic }

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithFocusCount sets how many topics the focus order lists.
func WithFocusCount(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.focus = n
		}
	}
}

// WithAllocation sets the base per-tier study shares. Shares that do not sum
// to 100 are ignored.
func WithAllocation(a Allocation) Option {
	return func(b *Builder) {
		if a.valid() {
			b.alloc = a
		}
	}
}

// WithNamer sets how topics are named in the output lists.
func WithNamer(n Namer) Option {
	return func(b *Builder) {
		if n != nil {
			b.name = n
		}
	}
}

// Builder produces recommendations. It holds no mutable state.
type Builder struct {
	focus int
	alloc Allocation
	name  Namer
}

// NewBuilder returns a builder with a focus of five and 40/35/25 shares.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{focus: defaultFocusCount, alloc: DefaultAllocation(), name: TopicName}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Recommend expects ranked to be ordered by importance descending.
func (b *Builder) Recommend(ranked []scoring.RankedTopic) Recommendation {
	rec := Recommendation{
		FocusOrder:      []string{},
		ImmediateAction: []string{},
	}

	var populated [3]bool
	for i, t := range ranked {
		if i < b.focus {
			rec.FocusOrder = append(rec.FocusOrder, b.name(t))
		}
		switch t.Tier {
		case scoring.TierVeryHigh:
			populated[0] = true
			rec.ImmediateAction = append(rec.ImmediateAction, b.name(t))
		case scoring.TierHigh:
			populated[1] = true
		case scoring.TierMedium:
			populated[2] = true
		}
	}

	rec.StudyTimeAllocation = Redistribute(b.alloc, populated)
	rec.TrendingWatch = b.byMarks(ranked, trend.Increasing)
	rec.DecliningReview = b.byMarks(ranked, trend.Decreasing)
	rec.WeeklyPlan = b.plan(ranked)
	return rec
}

// byMarks lists topics with the given direction, most marks first.
func (b *Builder) byMarks(ranked []scoring.RankedTopic, dir trend.Classification) []string {
	picked := make([]scoring.RankedTopic, 0)
	for _, t := range ranked {
		if t.Trend.Classification == dir {
			picked = append(picked, t)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].TotalMarks != picked[j].TotalMarks {
			return picked[i].TotalMarks > picked[j].TotalMarks
		}
		return b.name(picked[i]) < b.name(picked[j])
	})
	out := make([]string, len(picked))
	for i, t := range picked {
		out[i] = b.name(t)
	}
	return out
}

func (b *Builder) plan(ranked []scoring.RankedTopic) []PlanBlock {
	size := (len(ranked) + planBlocks - 1) / planBlocks
	blocks := make([]PlanBlock, planBlocks)
	for i := range blocks {
		blocks[i] = PlanBlock{Label: planLabels[i], Topics: []string{}}
		for j := i * size; j < (i+1)*size && j < len(ranked); j++ {
			blocks[i].Topics = append(blocks[i].Topics, b.name(ranked[j]))
		}
	}
	return blocks
}

// Redistribute gives the shares of empty tiers to the populated ones in
// proportion to their base shares, using largest-remainder rounding so the
// result sums to exactly 100. With nothing populated the base is returned.
func Redistribute(base Allocation, populated [3]bool) Allocation {
	shares := [3]int{base.VeryHigh, base.High, base.Medium}
	idx := make([]int, 0, len(shares))
	total := 0
	for i, ok := range populated {
		if ok {
			idx = append(idx, i)
			total += shares[i]
		}
	}
	if len(idx) == 0 {
		return base
	}
	if total == 0 {
		// Populated tiers had no base share: split evenly.
		for _, i := range idx {
			shares[i] = 1
		}
		total = len(idx)
	}

	var out, rem [3]int
	assigned := 0
	for _, i := range idx {
		num := shares[i] * percent
		out[i] = num / total
		rem[i] = num % total
		assigned += out[i]
	}
	sort.SliceStable(idx, func(a, b int) bool { return rem[idx[a]] > rem[idx[b]] })
	for k := 0; assigned < percent; k++ {
		out[idx[k%len(idx)]]++
		assigned++
	}
	return Allocation{VeryHigh: out[0], High: out[1], Medium: out[2]}
}

// PreparationHours estimates study hours for a topic from its average marks
// per observed year and its tier, clamped to 5..50.
func PreparationHours(t scoring.RankedTopic) int {
	avg := 0.0
	if t.YearsObserved > 0 {
		avg = t.TotalMarks / float64(t.YearsObserved)
	}
	h := int(math.Round(avg*3 + float64(tierWeight(t.Tier))*2))
	return min(max(h, minPrepHours), maxPrepHours)
}

func tierWeight(t scoring.Tier) int {
	switch t {
	case scoring.TierVeryHigh:
		return 5
	case scoring.TierHigh:
		return 4
	case scoring.TierMedium:
		return 3
	default:
		return 2
	}
}
