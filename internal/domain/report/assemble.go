package report

import (
	"math"
	"sort"

	"github.com/okian/gatecompass/internal/domain/recommend"
	"github.com/okian/gatecompass/internal/domain/scoring"
	"github.com/okian/gatecompass/internal/domain/trend"
	"github.com/okian/gatecompass/internal/domain/types"
)

// assemble fills r from a ranking already sorted by importance.
func assemble(r *types.Report, ranked []scoring.RankedTopic, name recommend.Namer, rec recommend.Recommendation) {
	total := 0.0
	var trending, declining []scoring.RankedTopic

	for _, t := range ranked {
		n := name(t)
		total += t.TotalMarks
		r.Topics[n] = detail(t)

		e := entry(n, t)
		r.Rankings.AllTopics = append(r.Rankings.AllTopics, e)
		switch t.Tier {
		case scoring.TierVeryHigh:
			r.Rankings.VeryHighPriority = append(r.Rankings.VeryHighPriority, e)
			r.Statistics.VeryHighCount++
			r.Statistics.VeryHighMarks += t.TotalMarks
		case scoring.TierHigh:
			r.Rankings.HighPriority = append(r.Rankings.HighPriority, e)
			r.Statistics.HighCount++
			r.Statistics.HighMarks += t.TotalMarks
		case scoring.TierMedium:
			r.Rankings.MediumPriority = append(r.Rankings.MediumPriority, e)
			r.Statistics.MediumCount++
			r.Statistics.MediumMarks += t.TotalMarks
		default:
			r.Rankings.LowPriority = append(r.Rankings.LowPriority, e)
			r.Statistics.LowCount++
			r.Statistics.LowMarks += t.TotalMarks
		}

		switch t.Trend.Classification {
		case trend.Increasing:
			trending = append(trending, t)
		case trend.Decreasing:
			declining = append(declining, t)
		}
	}

	r.Rankings.Trending = byMarks(trending, name)
	r.Rankings.Declining = byMarks(declining, name)
	r.Statistics.TrendingCount = len(trending)
	r.Statistics.DecliningCount = len(declining)
	r.Statistics.VeryHighMarks = round2(r.Statistics.VeryHighMarks)
	r.Statistics.HighMarks = round2(r.Statistics.HighMarks)
	r.Statistics.MediumMarks = round2(r.Statistics.MediumMarks)
	r.Statistics.LowMarks = round2(r.Statistics.LowMarks)

	r.TotalTopics = len(ranked)
	r.TotalMarks = round2(total)
	r.Recommendations = recommendations(rec)
}

func detail(t scoring.RankedTopic) types.TopicDetail {
	series := make([]types.SeriesPoint, len(t.Trend.Series))
	for i, p := range t.Trend.Series {
		series[i] = types.SeriesPoint{Year: p.Year, Marks: round2(p.Value)}
	}
	return types.TopicDetail{
		Subject:          t.Subject,
		Marks:            round2(t.TotalMarks),
		QuestionCount:    t.Count,
		Difficulty:       t.Difficulty.String(),
		Priority:         t.Tier.String(),
		Trend:            t.Trend.Classification.String(),
		YearsObserved:    t.YearsObserved,
		ImportanceScore:  round2(t.ImportanceScore),
		Confidence:       scoring.Confidence(t.Count),
		PriorityScore:    round2(t.PriorityScore),
		GrowthRate:       round2(t.Trend.GrowthRate),
		ConsistencyScore: round2(t.Trend.Consistency),
		ProjectedMarks:   round2(t.Trend.Projection),
		PreparationHours: recommend.PreparationHours(t),
		Series:           series,
	}
}

func entry(name string, t scoring.RankedTopic) types.RankingEntry {
	return types.RankingEntry{
		Name:            name,
		Subject:         t.Subject,
		Marks:           round2(t.TotalMarks),
		Difficulty:      t.Difficulty.String(),
		Priority:        t.Tier.String(),
		Trend:           t.Trend.Classification.String(),
		ImportanceScore: round2(t.ImportanceScore),
	}
}

func byMarks(list []scoring.RankedTopic, name recommend.Namer) []types.RankingEntry {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TotalMarks != list[j].TotalMarks {
			return list[i].TotalMarks > list[j].TotalMarks
		}
		return name(list[i]) < name(list[j])
	})
	out := make([]types.RankingEntry, len(list))
	for i, t := range list {
		out[i] = entry(name(t), t)
	}
	return out
}

func recommendations(rec recommend.Recommendation) types.Recommendations {
	plan := make([]types.PlanBlock, len(rec.WeeklyPlan))
	for i, b := range rec.WeeklyPlan {
		plan[i] = types.PlanBlock{Period: b.Label, Topics: b.Topics}
	}
	return types.Recommendations{
		FocusOrder: rec.FocusOrder,
		StudyTimeAllocation: types.StudyTimeAllocation{
			VeryHighPriority: rec.StudyTimeAllocation.VeryHigh,
			HighPriority:     rec.StudyTimeAllocation.High,
			MediumPriority:   rec.StudyTimeAllocation.Medium,
		},
		ImmediateAction: rec.ImmediateAction,
		TrendingWatch:   rec.TrendingWatch,
		DecliningReview: rec.DecliningReview,
		WeeklyPlan:      plan,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
