package corpustool

import (
	"context"
	"fmt"

	"github.com/okian/gatecompass/internal/domain/types"
)

const scoreTolerance = 1e-6

// Verify fetches a report and checks it. The violations are returned along
// with the report; err is set only when the report could not be fetched.
func Verify(ctx context.Context, c *HTTPClient, from, to int) (types.Report, []string, error) {
	r, err := c.Report(ctx, from, to)
	if err != nil {
		return types.Report{}, nil, err
	}
	return r, Check(r), nil
}

// Check lists every invariant r breaks. A consistent report gives nil.
func Check(r types.Report) []string {
	var out []string
	fail := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	rk := r.Rankings
	if len(rk.AllTopics) != r.TotalTopics || len(r.Topics) != r.TotalTopics {
		fail("totalTopics %d but %d ranked and %d detailed", r.TotalTopics, len(rk.AllTopics), len(r.Topics))
	}

	for i, e := range rk.AllTopics {
		if i > 0 && e.ImportanceScore > rk.AllTopics[i-1].ImportanceScore+scoreTolerance {
			fail("allTopics not sorted by importance at %d (%s)", i, e.Name)
		}
		d, ok := r.Topics[e.Name]
		if !ok {
			fail("ranked topic %q has no detail", e.Name)
			continue
		}
		if d.PriorityScore < 0 || d.PriorityScore > 100 {
			fail("priority score of %q out of range: %v", e.Name, d.PriorityScore)
		}
		if d.Priority != e.Priority || d.Trend != e.Trend {
			fail("detail of %q disagrees with its ranking entry", e.Name)
		}
	}

	tiers := []struct {
		label string
		list  []types.RankingEntry
		count int
	}{
		{"Very High", rk.VeryHighPriority, r.Statistics.VeryHighCount},
		{"High", rk.HighPriority, r.Statistics.HighCount},
		{"Medium", rk.MediumPriority, r.Statistics.MediumCount},
		{"Low", rk.LowPriority, r.Statistics.LowCount},
	}
	inTiers := 0
	for _, t := range tiers {
		inTiers += len(t.list)
		if len(t.list) != t.count {
			fail("%s tier lists %d topics but statistics count %d", t.label, len(t.list), t.count)
		}
		for i, e := range t.list {
			if e.Priority != t.label {
				fail("%q listed under %s but has priority %s", e.Name, t.label, e.Priority)
			}
			if i > 0 && e.ImportanceScore > t.list[i-1].ImportanceScore+scoreTolerance {
				fail("%s tier not sorted by importance at %d", t.label, i)
			}
		}
	}
	if inTiers != len(rk.AllTopics) {
		fail("tier lists hold %d topics, allTopics %d", inTiers, len(rk.AllTopics))
	}

	checkDirection(rk.Trending, "Increasing", r.Statistics.TrendingCount, fail)
	checkDirection(rk.Declining, "Decreasing", r.Statistics.DecliningCount, fail)

	alloc := r.Recommendations.StudyTimeAllocation
	if sum := alloc.VeryHighPriority + alloc.HighPriority + alloc.MediumPriority; sum != 100 {
		fail("study time allocation sums to %d", sum)
	}
	if r.TotalTopics > 0 && len(rk.VeryHighPriority)+len(rk.HighPriority)+len(rk.MediumPriority) > 0 {
		for _, t := range []struct {
			label string
			list  []types.RankingEntry
			share int
		}{
			{"very high", rk.VeryHighPriority, alloc.VeryHighPriority},
			{"high", rk.HighPriority, alloc.HighPriority},
			{"medium", rk.MediumPriority, alloc.MediumPriority},
		} {
			if len(t.list) == 0 && t.share != 0 {
				fail("empty %s tier still gets %d%% of study time", t.label, t.share)
			}
		}
	}

	for _, name := range r.Recommendations.FocusOrder {
		if _, ok := r.Topics[name]; !ok {
			fail("focus topic %q is not in the report", name)
		}
	}
	return out
}

func checkDirection(list []types.RankingEntry, trend string, count int, fail func(string, ...any)) {
	if len(list) != count {
		fail("%s list has %d topics but statistics count %d", trend, len(list), count)
	}
	for i, e := range list {
		if e.Trend != trend {
			fail("%q listed as %s but trend is %s", e.Name, trend, e.Trend)
		}
		if i > 0 && e.Marks > list[i-1].Marks {
			fail("%s list not sorted by marks at %d", trend, i)
		}
	}
}
