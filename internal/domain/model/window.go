package model

import (
	"fmt"
)

// YearRange is an inclusive range of exam years.
type YearRange struct {
	Start int
	End   int
}

// NewYearRange validates and returns [start, end].
func NewYearRange(start, end int) (YearRange, error) {
	r := YearRange{Start: start, End: end}
	if !r.Valid() {
		return YearRange{}, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}
	return r, nil
}

// LastYears returns the n-year range ending at end.
func LastYears(end, n int) YearRange {
	if n < 1 {
		n = 1
	}
	return YearRange{Start: end - n + 1, End: end}
}

// Valid reports whether the range is non-empty and starts after year zero.
func (r YearRange) Valid() bool { return r.Start > 0 && r.Start <= r.End }

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool { return year >= r.Start && year <= r.End }

// Len is the number of years covered.
func (r YearRange) Len() int {
	if !r.Valid() {
		return 0
	}
	return r.End - r.Start + 1
}

// Years lists every year in ascending order.
func (r YearRange) Years() []int {
	out := make([]int, 0, r.Len())
	for y := r.Start; y <= r.End && r.Valid(); y++ {
		out = append(out, y)
	}
	return out
}

func (r YearRange) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Filter returns the records whose year falls inside r, preserving order.
func Filter(records []Record, r YearRange) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Year) {
			out = append(out, rec)
		}
	}
	return out
}
