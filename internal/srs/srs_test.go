package srs

import (
	"math"
	"testing"
	"time"
)

var allRatings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy, RatingKnown}

func TestParseRating(t *testing.T) {
	for _, r := range allRatings {
		got, err := ParseRating(string(r))
		if err != nil {
			t.Fatalf("ParseRating(%q) returned error: %v", r, err)
		}
		if got != r {
			t.Fatalf("ParseRating(%q) = %q", r, got)
		}
	}

	for _, bad := range []string{"", "again", "GOOD", "Unknown", "easy "} {
		if _, err := ParseRating(bad); err == nil {
			t.Errorf("ParseRating(%q) should fail", bad)
		}
	}
}

func TestApply_FirstReviewGood(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next := Apply(State{}, RatingGood, now)

	if next.Interval != 3 {
		t.Errorf("interval = %v, want 3 (round(1*2.5))", next.Interval)
	}
	if next.Repetitions != 1 {
		t.Errorf("repetitions = %d, want 1", next.Repetitions)
	}
	if next.EaseFactor != 2.5 {
		t.Errorf("easeFactor = %v, want 2.5 unchanged", next.EaseFactor)
	}
	if next.LastReview == nil || !next.LastReview.Equal(now) {
		t.Errorf("lastReview = %v, want %v", next.LastReview, now)
	}
	want := now.Add(3 * 24 * time.Hour)
	if next.NextReview == nil || !next.NextReview.Equal(want) {
		t.Errorf("nextReview = %v, want %v", next.NextReview, want)
	}
}

func TestApply_Known(t *testing.T) {
	now := time.Now()
	for _, prior := range []State{
		{},
		{Interval: 42, Repetitions: 7, EaseFactor: 1.3},
	} {
		next := Apply(prior, RatingKnown, now)
		if next.Interval != KnownInterval {
			t.Errorf("interval = %v, want %v", next.Interval, KnownInterval)
		}
		if next.Repetitions != KnownRepetitions {
			t.Errorf("repetitions = %d, want %d", next.Repetitions, KnownRepetitions)
		}
		if next.EaseFactor != MaxEaseFactor {
			t.Errorf("easeFactor = %v, want %v", next.EaseFactor, MaxEaseFactor)
		}
		if !next.IsLearned {
			t.Error("isLearned should be set")
		}
	}
}

func TestApply_Again(t *testing.T) {
	now := time.Now()

	next := Apply(State{Interval: 10, Repetitions: 3, EaseFactor: 2.0}, RatingAgain, now)
	if next.Interval != AgainInterval {
		t.Errorf("interval = %v, want %v", next.Interval, AgainInterval)
	}
	if next.Repetitions != 2 {
		t.Errorf("repetitions = %d, want 2", next.Repetitions)
	}
	if got, want := next.EaseFactor, 1.85; math.Abs(got-want) > 1e-9 {
		t.Errorf("easeFactor = %v, want %v", got, want)
	}

	// Repetitions floor at zero.
	next = Apply(State{}, RatingAgain, now)
	if next.Repetitions != 0 {
		t.Errorf("repetitions = %d, want floor at 0", next.Repetitions)
	}
}

func TestApply_TransitionTable(t *testing.T) {
	now := time.Now()
	prior := State{Interval: 6, Repetitions: 2, EaseFactor: 2.0}

	tests := []struct {
		rating   Rating
		interval float64
		reps     int
		ease     float64
	}{
		{RatingHard, 6, 3, 1.95},            // round(6), ease-0.05
		{RatingGood, 12, 3, 2.0},            // round(6*2.0)
		{RatingEasy, 18, 3, 2.1},            // round(6*2.0*1.5), ease+0.1
		{RatingAgain, AgainInterval, 1, 1.85},
	}

	for _, tt := range tests {
		next := Apply(prior, tt.rating, now)
		if next.Interval != tt.interval {
			t.Errorf("%s: interval = %v, want %v", tt.rating, next.Interval, tt.interval)
		}
		if next.Repetitions != tt.reps {
			t.Errorf("%s: repetitions = %d, want %d", tt.rating, next.Repetitions, tt.reps)
		}
		if math.Abs(next.EaseFactor-tt.ease) > 1e-9 {
			t.Errorf("%s: easeFactor = %v, want %v", tt.rating, next.EaseFactor, tt.ease)
		}
	}
}

func TestApply_RoundsHalfAwayFromZero(t *testing.T) {
	now := time.Now()

	// 1 * 2.5 = 2.5 rounds to 3, not 2.
	next := Apply(State{Interval: 1, Repetitions: 0, EaseFactor: 2.5}, RatingGood, now)
	if next.Interval != 3 {
		t.Errorf("interval = %v, want 3", next.Interval)
	}
}

func TestApply_EaseFactorAlwaysClamped(t *testing.T) {
	now := time.Now()
	priors := []State{
		{},
		{Interval: 1, Repetitions: 0, EaseFactor: 1.3},
		{Interval: 1, Repetitions: 0, EaseFactor: 2.5},
		{Interval: 400, Repetitions: 50, EaseFactor: 1.31},
		{Interval: 400, Repetitions: 50, EaseFactor: 2.49},
	}

	for _, prior := range priors {
		for _, rating := range allRatings {
			next := Apply(prior, rating, now)
			if next.EaseFactor < MinEaseFactor-1e-9 || next.EaseFactor > MaxEaseFactor+1e-9 {
				t.Errorf("rating %s from ease %v: easeFactor %v out of [%v, %v]",
					rating, prior.EaseFactor, next.EaseFactor, MinEaseFactor, MaxEaseFactor)
			}
		}
	}
}

func TestApply_RepetitionIncrements(t *testing.T) {
	now := time.Now()
	prior := State{Interval: 4, Repetitions: 5, EaseFactor: 2.2}

	for _, rating := range []Rating{RatingHard, RatingGood, RatingEasy} {
		next := Apply(prior, rating, now)
		if next.Repetitions != prior.Repetitions+1 {
			t.Errorf("%s: repetitions = %d, want %d", rating, next.Repetitions, prior.Repetitions+1)
		}
	}

	if next := Apply(prior, RatingAgain, now); next.Repetitions >= prior.Repetitions {
		t.Errorf("Again: repetitions = %d, should decrease from %d", next.Repetitions, prior.Repetitions)
	}
}

func TestApply_NextReviewMatchesInterval(t *testing.T) {
	now := time.Now()
	prior := State{Interval: 7, Repetitions: 2, EaseFactor: 1.8}

	for _, rating := range allRatings {
		next := Apply(prior, rating, now)
		if next.LastReview == nil || next.NextReview == nil {
			t.Fatalf("%s: review timestamps not set", rating)
		}
		gapDays := next.NextReview.Sub(*next.LastReview).Hours() / 24
		if math.Abs(gapDays-next.Interval) > 1e-6 {
			t.Errorf("%s: nextReview-lastReview = %v days, want interval %v", rating, gapDays, next.Interval)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	prior := State{Interval: 6, Repetitions: 2, EaseFactor: 2.0}
	saved := prior
	_ = Apply(prior, RatingEasy, time.Now())
	if prior != saved {
		t.Errorf("input state mutated: %+v", prior)
	}
}
