// Package trend classifies yearly series as increasing, stable or decreasing.
package trend

import (
	"math"
	"sort"
)

const (
	defaultIncreaseRatio = 1.2
	defaultDecreaseRatio = 0.8
	edgeWindow           = 3
	singlePointScore     = 50
)

// Classification is the direction of a series.
type Classification int

const (
	Stable Classification = iota
	Increasing
	Decreasing
)

func (c Classification) String() string {
	switch c {
	case Increasing:
		return "Increasing"
	case Decreasing:
		return "Decreasing"
	default:
		return "Stable"
	}
}

// Point is one (year, value) observation.
type Point struct {
	Year  int
	Value float64
}

// Result describes a classified series.
type Result struct {
	Series         []Point
	GrowthRate     float64 // percent, first to last point
	Classification Classification
	Consistency    float64 // 0-100, higher is steadier
	Projection     float64 // expected value for the year after the last point
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithThresholds sets the multipliers applied to the early average.
// A recent average above early*increase is Increasing, below early*decrease
// is Decreasing.
func WithThresholds(increase, decrease float64) Option {
	return func(c *Classifier) {
		if increase >= 1 && decrease > 0 && decrease <= 1 {
			c.increase = increase
			c.decrease = decrease
		}
	}
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	increase float64
	decrease float64
}

// NewClassifier returns a classifier with the 1.2/0.8 multipliers unless overridden.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{increase: defaultIncreaseRatio, decrease: defaultDecreaseRatio}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify computes growth, direction, consistency and a next-year projection.
// The series is ordered by year before anything is computed.
func (c *Classifier) Classify(series []Point) Result {
	pts := append([]Point(nil), series...)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Year < pts[j].Year })

	res := Result{
		Series:      pts,
		Consistency: Consistency(pts),
		Projection:  Project(pts),
	}
	if len(pts) < 2 {
		return res
	}

	res.GrowthRate = GrowthRate(pts[0].Value, pts[len(pts)-1].Value)

	// Short series compare the single first and last points.
	w := edgeWindow
	if len(pts) < edgeWindow {
		w = 1
	}
	early := mean(pts[:w])
	recent := mean(pts[len(pts)-w:])

	switch {
	case recent > early*c.increase:
		res.Classification = Increasing
	case recent < early*c.decrease:
		res.Classification = Decreasing
	}
	return res
}

// GrowthRate is the percent change from first to last. A zero start counts
// as 100% growth when anything was observed later.
func GrowthRate(first, last float64) float64 {
	if first == 0 {
		if last > 0 {
			return 100
		}
		return 0
	}
	return (last - first) / first * 100
}

// Consistency is 100 minus the coefficient of variation in percent, floored at 0.
func Consistency(pts []Point) float64 {
	switch len(pts) {
	case 0:
		return 0
	case 1:
		return singlePointScore
	}
	m := mean(pts)
	if m == 0 {
		return 0
	}
	variance := 0.0
	for _, p := range pts {
		d := p.Value - m
		variance += d * d
	}
	cv := math.Sqrt(variance/float64(len(pts))) / m * 100
	return math.Max(0, 100-cv)
}

// Project fits a least-squares line through the series and evaluates it one
// year past the last point. Series shorter than three points project their
// last value. Negative projections are clamped to zero.
func Project(pts []Point) float64 {
	n := len(pts)
	if n == 0 {
		return 0
	}
	if n < edgeWindow {
		return pts[n-1].Value
	}

	// Years are offset from the first point to keep the sums small.
	base := pts[0].Year
	var sx, sy, sxx, sxy float64
	for _, p := range pts {
		x := float64(p.Year - base)
		sx += x
		sy += p.Value
		sxx += x * x
		sxy += x * p.Value
	}
	fn := float64(n)
	den := fn*sxx - sx*sx
	if den == 0 {
		return math.Max(0, sy/fn)
	}
	slope := (fn*sxy - sx*sy) / den
	intercept := (sy - slope*sx) / fn
	next := float64(pts[n-1].Year + 1 - base)
	return math.Max(0, intercept+slope*next)
}

func mean(pts []Point) float64 {
	if len(pts) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pts {
		sum += p.Value
	}
	return sum / float64(len(pts))
}
