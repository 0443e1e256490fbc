package report

import (
	"sort"
	"strconv"

	"github.com/okian/gatecompass/internal/domain/aggregate"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/internal/domain/types"
)

// Subjects summarises every subject observed inside window, sorted by name.
func (p *Pipeline) Subjects(records []model.Record, window model.YearRange) []types.SubjectSummary {
	in := model.Filter(records, window)
	subjects := aggregate.Aggregate(in, aggregate.BySubject)
	topics := aggregate.ByGroup(aggregate.Aggregate(in, topicDims), aggregate.BySubject)
	years := aggregate.ByGroup(aggregate.Aggregate(in, aggregate.BySubject|aggregate.ByYear), aggregate.BySubject)

	out := make([]types.SubjectSummary, 0, len(subjects))
	for k, b := range subjects {
		names := make([]string, 0, len(topics[k]))
		for _, t := range topics[k] {
			names = append(names, t.Topic)
		}
		sort.Strings(names)

		ys := years[k]
		active := make([]int, len(ys))
		for i, y := range ys {
			active[i] = y.Year
		}
		tr := p.classifier.Classify(marksSeries(ys))

		density := 0.0
		if len(active) > 0 {
			density = float64(b.Count) / float64(len(active))
		}

		out = append(out, types.SubjectSummary{
			Subject:             k.Subject,
			QuestionCount:       b.Count,
			TotalMarks:          round2(b.TotalMarks()),
			UniqueTopics:        len(names),
			Topics:              names,
			YearsActive:         active,
			QuestionDensity:     round2(density),
			AverageDifficulty:   round2(b.MeanDifficulty()),
			DifficultyBreakdown: difficultyBreakdown(b),
			Trend:               tr.Classification.String(),
			GrowthRate:          round2(tr.GrowthRate),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// Year describes one exam year. ok is false when no record falls in year.
func (p *Pipeline) Year(records []model.Record, year int) (stats types.YearStatistics, ok bool) {
	in := model.Filter(records, model.YearRange{Start: year, End: year})
	stats = types.YearStatistics{
		Year:                   year,
		SubjectDistribution:    map[string]int{},
		TopicDistribution:      map[string]int{},
		DifficultyDistribution: map[string]int{},
		MarksDistribution:      map[string]int{},
		SubjectMarks:           map[string]float64{},
	}
	if len(in) == 0 {
		return stats, false
	}

	all := aggregate.Aggregate(in, 0)[aggregate.Key{}]
	stats.QuestionCount = all.Count
	stats.TotalMarks = round2(all.TotalMarks())
	stats.AverageDifficulty = round2(all.MeanDifficulty())
	stats.DifficultyDistribution = difficultyBreakdown(all)

	for k, b := range aggregate.Aggregate(in, aggregate.BySubject) {
		stats.SubjectDistribution[k.Subject] = b.Count
		stats.SubjectMarks[k.Subject] = round2(b.TotalMarks())
	}
	for k, b := range aggregate.Aggregate(in, aggregate.ByTopic) {
		stats.TopicDistribution[k.Topic] = b.Count
	}
	for _, r := range in {
		stats.MarksDistribution[strconv.FormatFloat(r.Marks, 'f', -1, 64)]++
	}
	stats.MostFrequentSubject = mostFrequent(stats.SubjectDistribution)
	stats.MostFrequentTopic = mostFrequent(stats.TopicDistribution)
	return stats, true
}

func difficultyBreakdown(b *aggregate.Bucket) map[string]int {
	out := make(map[string]int, len(model.Difficulties))
	for _, d := range model.Difficulties {
		out[d.String()] = b.Difficulty.Count(d)
	}
	return out
}

// mostFrequent picks the highest count, ties going to the smallest key.
func mostFrequent(dist map[string]int) string {
	best, bestN := "", -1
	for _, k := range sortedKeys(dist) {
		if dist[k] > bestN {
			best, bestN = k, dist[k]
		}
	}
	return best
}
