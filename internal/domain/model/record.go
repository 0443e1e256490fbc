// Package model contains the observation records passed between layers.
package model

import (
	"math"
	"strings"
)

// Defaults substituted for missing or malformed fields.
const (
	DefaultTopic = "Unknown"
	DefaultMarks = 1.0
)

// Difficulty is the ordinal difficulty of a question.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
)

// Difficulties lists every level in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty maps a label to a level, case-insensitively.
// Unknown or empty labels report false.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium", "moderate":
		return DifficultyMedium, true
	case "hard", "difficult":
		return DifficultyHard, true
	}
	return DifficultyMedium, false
}

// Weight is the numeric value used when averaging difficulty.
func (d Difficulty) Weight() float64 {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 4
	default:
		return 2.5
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyHard:
		return "Hard"
	default:
		return "Medium"
	}
}

// DifficultyFromWeight returns the level whose weight is nearest to w.
func DifficultyFromWeight(w float64) Difficulty {
	switch {
	case w < 1.75:
		return DifficultyEasy
	case w < 3.25:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Record is one observation: a question (or mark share) of a topic in an exam year.
type Record struct {
	ID         string // optional source identifier, used for de-duplication only
	Subject    string
	Topic      string
	Year       int
	Marks      float64
	Difficulty Difficulty
}

// Raw is a record as decoded from a source, before defaults are applied.
// Zero values mean "missing".
type Raw struct {
	ID         string
	Subject    string
	Topic      string
	Year       int
	Marks      float64
	Difficulty string
}

// Normalize applies defaults to r. Records without a subject or year cannot
// be placed and are rejected.
func Normalize(r Raw) (Record, error) {
	subject := CleanLabel(r.Subject)
	if subject == "" {
		return Record{}, ErrMissingSubject
	}
	if r.Year <= 0 {
		return Record{}, ErrMissingYear
	}

	topic := CleanLabel(r.Topic)
	if topic == "" {
		topic = DefaultTopic
	}

	marks := r.Marks
	if marks <= 0 || math.IsNaN(marks) || math.IsInf(marks, 0) {
		marks = DefaultMarks
	}

	difficulty, _ := ParseDifficulty(r.Difficulty)

	return Record{
		ID:         strings.TrimSpace(r.ID),
		Subject:    subject,
		Topic:      topic,
		Year:       r.Year,
		Marks:      marks,
		Difficulty: difficulty,
	}, nil
}

// CleanLabel trims s and collapses inner whitespace.
func CleanLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
