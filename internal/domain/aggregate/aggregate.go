// Package aggregate groups observation records into count/marks/difficulty buckets.
package aggregate

import (
	"math"
	"sort"

	"github.com/okian/gatecompass/internal/domain/model"
)

// Dimension selects which record fields form a bucket key.
type Dimension uint8

const (
	BySubject Dimension = 1 << iota
	ByTopic
	ByYear
)

// marksScale fixes marks to thousandths so sums do not depend on record order.
const marksScale = 1000

// Key identifies a bucket; fields outside the requested dimensions are zero.
type Key struct {
	Subject string
	Topic   string
	Year    int
}

// Project keeps only the fields named by dims.
func Project(r model.Record, dims Dimension) Key {
	var k Key
	if dims&BySubject != 0 {
		k.Subject = r.Subject
	}
	if dims&ByTopic != 0 {
		k.Topic = r.Topic
	}
	if dims&ByYear != 0 {
		k.Year = r.Year
	}
	return k
}

// Histogram counts records per difficulty level.
type Histogram [3]int

func (h *Histogram) add(d model.Difficulty) {
	if d >= model.DifficultyEasy && d <= model.DifficultyHard {
		h[d-1]++
	}
}

// Count returns the number of records at level d.
func (h Histogram) Count(d model.Difficulty) int {
	if d < model.DifficultyEasy || d > model.DifficultyHard {
		return 0
	}
	return h[d-1]
}

// Bucket accumulates the records sharing a key.
type Bucket struct {
	Key
	Count      int
	Difficulty Histogram
	marksMilli int64
}

func (b *Bucket) add(r model.Record) {
	b.Count++
	b.marksMilli += int64(math.Round(r.Marks * marksScale))
	b.Difficulty.add(r.Difficulty)
}

// TotalMarks is the sum of record marks.
func (b *Bucket) TotalMarks() float64 {
	return float64(b.marksMilli) / marksScale
}

// MeanDifficulty averages the difficulty weights of the bucket's records.
func (b *Bucket) MeanDifficulty() float64 {
	if b.Count == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range model.Difficulties {
		sum += float64(b.Difficulty.Count(d)) * d.Weight()
	}
	return sum / float64(b.Count)
}

// DominantDifficulty is the level nearest the mean difficulty.
func (b *Bucket) DominantDifficulty() model.Difficulty {
	if b.Count == 0 {
		return model.DifficultyMedium
	}
	return model.DifficultyFromWeight(b.MeanDifficulty())
}

// Aggregate folds records into buckets keyed by dims. The result does not
// depend on the order of records.
func Aggregate(records []model.Record, dims Dimension) map[Key]*Bucket {
	out := make(map[Key]*Bucket)
	for _, r := range records {
		k := Project(r, dims)
		b, ok := out[k]
		if !ok {
			b = &Bucket{Key: k}
			out[k] = b
		}
		b.add(r)
	}
	return out
}

// Sorted orders buckets by count and marks descending, then by key.
func Sorted(buckets map[Key]*Bucket) []*Bucket {
	out := make([]*Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.marksMilli != b.marksMilli {
			return a.marksMilli > b.marksMilli
		}
		return a.Key.less(b.Key)
	})
	return out
}

func (k Key) less(o Key) bool {
	if k.Subject != o.Subject {
		return k.Subject < o.Subject
	}
	if k.Topic != o.Topic {
		return k.Topic < o.Topic
	}
	return k.Year < o.Year
}

// ByGroup splits buckets produced with dims|ByYear into per-group yearly
// series, each sorted by year ascending.
func ByGroup(yearBuckets map[Key]*Bucket, dims Dimension) map[Key][]*Bucket {
	dims &^= ByYear
	out := make(map[Key][]*Bucket)
	for k, b := range yearBuckets {
		var g Key
		if dims&BySubject != 0 {
			g.Subject = k.Subject
		}
		if dims&ByTopic != 0 {
			g.Topic = k.Topic
		}
		out[g] = append(out[g], b)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].Year < list[j].Year })
	}
	return out
}
