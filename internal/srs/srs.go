// Package srs implements the spaced-repetition scheduler: a pure
// transition function from (current state, review rating) to the next
// scheduling state. It is a simplified single-pass SuperMemo-2 variant;
// there is no multi-day lookahead or batching.
package srs

import (
	"fmt"
	"math"
	"time"
)

// Rating is a user's self-reported recall quality for one review.
type Rating string

const (
	RatingAgain Rating = "Again"
	RatingHard  Rating = "Hard"
	RatingGood  Rating = "Good"
	RatingEasy  Rating = "Easy"
	RatingKnown Rating = "Known"
)

// ParseRating accepts exactly the five literal rating strings.
func ParseRating(s string) (Rating, error) {
	switch Rating(s) {
	case RatingAgain, RatingHard, RatingGood, RatingEasy, RatingKnown:
		return Rating(s), nil
	}
	return "", fmt.Errorf("invalid rating %q", s)
}

const (
	// DefaultInterval is the interval seeded on a question's first review.
	DefaultInterval = 1.0
	// DefaultEaseFactor is the initial ease, also the upper clamp.
	DefaultEaseFactor = 2.5

	// MinEaseFactor and MaxEaseFactor bound every transition.
	MinEaseFactor = 1.3
	MaxEaseFactor = 2.5

	// AgainInterval is roughly five minutes expressed as a day fraction.
	AgainInterval = 0.00347

	// KnownInterval and KnownRepetitions park a question ten years out.
	KnownInterval    = 3650.0
	KnownRepetitions = 100

	millisPerDay = 86_400_000
)

// State is one question's scheduling state. It is embedded into the
// Question model (column prefix srs_) so NextReview stays queryable.
type State struct {
	Interval    float64    `json:"interval"`
	Repetitions int        `json:"repetitions"`
	EaseFactor  float64    `json:"easeFactor"`
	LastReview  *time.Time `json:"lastReview,omitempty"`
	NextReview  *time.Time `gorm:"index" json:"nextReview,omitempty"`
	IsLearned   bool       `json:"isLearned"`
}

// withDefaults fills zero-valued fields the way a first review would see
// them. A zero State is valid input to Apply.
func (s State) withDefaults() State {
	if s.Interval == 0 {
		s.Interval = DefaultInterval
	}
	if s.EaseFactor == 0 {
		s.EaseFactor = DefaultEaseFactor
	}
	return s
}

// Apply computes the next scheduling state for one review. The input is
// copied, never mutated. lastReview is set to now and nextReview to
// now + interval days (millisecond precision).
func Apply(current State, rating Rating, now time.Time) State {
	next := current.withDefaults()

	switch rating {
	case RatingKnown:
		next.Interval = KnownInterval
		next.Repetitions = KnownRepetitions
		next.EaseFactor = MaxEaseFactor
		next.IsLearned = true
	case RatingAgain:
		next.Interval = AgainInterval
		if next.Repetitions > 0 {
			next.Repetitions--
		} else {
			next.Repetitions = 0
		}
		next.EaseFactor = math.Max(MinEaseFactor, next.EaseFactor-0.15)
	case RatingHard:
		next.Interval = math.Round(next.Interval)
		next.Repetitions++
		next.EaseFactor = math.Max(MinEaseFactor, next.EaseFactor-0.05)
	case RatingGood:
		next.Interval = math.Round(next.Interval * next.EaseFactor)
		next.Repetitions++
	case RatingEasy:
		next.Interval = math.Round(next.Interval * next.EaseFactor * 1.5)
		next.Repetitions++
		next.EaseFactor = math.Min(MaxEaseFactor, next.EaseFactor+0.1)
	}

	last := now
	due := now.Add(time.Duration(next.Interval*millisPerDay) * time.Millisecond)
	next.LastReview = &last
	next.NextReview = &due
	return next
}
