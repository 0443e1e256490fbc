package scoring

import "fmt"

// Tier is a priority band.
type Tier int

const (
	TierVeryHigh Tier = iota
	TierHigh
	TierMedium
	TierLow
)

// Tiers lists every tier from highest to lowest.
var Tiers = []Tier{TierVeryHigh, TierHigh, TierMedium, TierLow}

func (t Tier) String() string {
	switch t {
	case TierVeryHigh:
		return "Very High"
	case TierHigh:
		return "High"
	case TierMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// Thresholds are the minimum priority scores for each tier; anything below
// Medium is Low.
type Thresholds struct {
	VeryHigh float64
	High     float64
	Medium   float64
}

// DefaultThresholds returns 70/40/15.
func DefaultThresholds() Thresholds {
	return Thresholds{VeryHigh: 70, High: 40, Medium: 15}
}

// Validate requires strictly descending, non-negative cut-offs.
func (t Thresholds) Validate() error {
	if !(t.VeryHigh > t.High && t.High > t.Medium && t.Medium >= 0) {
		return fmt.Errorf("%w: %v/%v/%v", ErrInvalidThresholds, t.VeryHigh, t.High, t.Medium)
	}
	return nil
}

// Tier maps a priority score to its band.
func (t Thresholds) Tier(score float64) Tier {
	switch {
	case score >= t.VeryHigh:
		return TierVeryHigh
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}
