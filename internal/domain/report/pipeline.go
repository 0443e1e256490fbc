// Package report composes aggregation, trend classification, ranking and
// recommendations into the topic-wise analysis report.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/gatecompass/internal/domain/aggregate"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/recommend"
	"github.com/okian/gatecompass/internal/domain/scoring"
	"github.com/okian/gatecompass/internal/domain/trend"
	"github.com/okian/gatecompass/internal/domain/types"
)

// DateLayout formats the analysis date.
const DateLayout = "2006-01-02"

const topicDims = aggregate.BySubject | aggregate.ByTopic

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithClassifier sets the trend classifier.
func WithClassifier(c *trend.Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithRanker sets the priority ranker.
func WithRanker(r *scoring.Ranker) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.ranker = r
		}
	}
}

// WithRecommendOptions configures the recommendation builder. The namer is
// always set by the pipeline.
func WithRecommendOptions(opts ...recommend.Option) Option {
	return func(p *Pipeline) {
		p.recommendOpts = append(p.recommendOpts, opts...)
	}
}

// Pipeline is stateless; Run is a pure function of its arguments.
type Pipeline struct {
	classifier    *trend.Classifier
	ranker        *scoring.Ranker
	recommendOpts []recommend.Option
}

// New builds a pipeline with default components unless overridden.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: trend.NewClassifier(),
		ranker:     scoring.NewRanker(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rank runs aggregation, trend classification and ranking over the records
// inside window.
func (p *Pipeline) Rank(records []model.Record, window model.YearRange) []scoring.RankedTopic {
	in := model.Filter(records, window)
	topics := aggregate.Aggregate(in, topicDims)
	years := aggregate.ByGroup(aggregate.Aggregate(in, topicDims|aggregate.ByYear), topicDims)

	inputs := make([]scoring.Input, 0, len(topics))
	for _, b := range aggregate.Sorted(topics) {
		ys := years[b.Key]
		inputs = append(inputs, scoring.Input{
			Topic: b,
			Years: ys,
			Trend: p.classifier.Classify(marksSeries(ys)),
		})
	}
	return p.ranker.Rank(inputs, window)
}

// Run produces the full report for records inside window.
func (p *Pipeline) Run(records []model.Record, window model.YearRange, date time.Time) types.Report {
	ranked := p.Rank(records, window)
	names := displayNames(ranked)
	namer := func(t scoring.RankedTopic) string { return names[keyOf(t)] }

	opts := append(append([]recommend.Option(nil), p.recommendOpts...), recommend.WithNamer(namer))
	rec := recommend.NewBuilder(opts...).Recommend(ranked)

	r := p.Empty(window, date, types.StatusSuccess)
	r.TotalRecords = countInWindow(records, window)
	assemble(&r, ranked, namer, rec)
	return r
}

// Empty returns a well-formed report with no topics.
func (p *Pipeline) Empty(window model.YearRange, date time.Time, status string) types.Report {
	return types.Report{
		Status:       status,
		AnalysisDate: date.Format(DateLayout),
		Window:       types.Window{StartYear: window.Start, EndYear: window.End},
		Topics:       map[string]types.TopicDetail{},
		Rankings: types.Rankings{
			AllTopics:        []types.RankingEntry{},
			VeryHighPriority: []types.RankingEntry{},
			HighPriority:     []types.RankingEntry{},
			MediumPriority:   []types.RankingEntry{},
			LowPriority:      []types.RankingEntry{},
			Trending:         []types.RankingEntry{},
			Declining:        []types.RankingEntry{},
		},
		Recommendations: recommendations(recommend.NewBuilder(p.recommendOpts...).Recommend(nil)),
	}
}

func marksSeries(years []*aggregate.Bucket) []trend.Point {
	pts := make([]trend.Point, len(years))
	for i, b := range years {
		pts[i] = trend.Point{Year: b.Year, Value: b.TotalMarks()}
	}
	return pts
}

func keyOf(t scoring.RankedTopic) aggregate.Key {
	return aggregate.Key{Subject: t.Subject, Topic: t.Topic}
}

// displayNames uses the bare topic label unless it appears under more than
// one subject, in which case every occurrence is qualified with its subject.
// Names are unique: a qualified name that is already taken gets a numeric
// suffix, assigned in ranking order.
func displayNames(ranked []scoring.RankedTopic) map[aggregate.Key]string {
	seen := make(map[string]int, len(ranked))
	for _, t := range ranked {
		seen[t.Topic]++
	}
	taken := make(map[string]bool, len(ranked))
	out := make(map[aggregate.Key]string, len(ranked))
	for _, t := range ranked {
		if seen[t.Topic] == 1 {
			out[keyOf(t)] = t.Topic
			taken[t.Topic] = true
		}
	}
	for _, t := range ranked {
		if seen[t.Topic] == 1 {
			continue
		}
		base := t.Subject + " / " + t.Topic
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s (%d)", base, n)
		}
		out[keyOf(t)] = name
		taken[name] = true
	}
	return out
}

func countInWindow(records []model.Record, window model.YearRange) int {
	n := 0
	for _, r := range records {
		if window.Contains(r.Year) {
			n++
		}
	}
	return n
}

// sortedKeys returns map keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
