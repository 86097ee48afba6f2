package storage

import (
	"testing"
)

func TestComputeRatingUpdate_FirstSolveSeeds(t *testing.T) {
	if got := computeRatingUpdate(0, 100, 0); got != 100 {
		t.Errorf("first solve should seed rating with the score: got %d, want 100", got)
	}
	if got := computeRatingUpdate(0, -50, 0); got != -50 {
		t.Errorf("first solve seeds negative scores too: got %d, want -50", got)
	}
}

func TestComputeRatingUpdate_MovesTowardScore(t *testing.T) {
	// Rating below the round score should rise, but not all the way
	got := computeRatingUpdate(100, 200, 5)
	if got <= 100 || got >= 200 {
		t.Errorf("rating should move between old rating and score: got %d", got)
	}
	// Rating above the round score should fall
	got = computeRatingUpdate(200, 100, 5)
	if got >= 200 || got <= 100 {
		t.Errorf("rating should fall toward a lower score: got %d", got)
	}
}

func TestComputeRatingUpdate_StableAtScore(t *testing.T) {
	if got := computeRatingUpdate(120, 120, 3); got != 120 {
		t.Errorf("rating equal to score should not move: got %d", got)
	}
}

func TestComputeRatingUpdate_NegativeScores(t *testing.T) {
	// A blown round drags the rating down
	got := computeRatingUpdate(100, -100, 10)
	if got >= 100 {
		t.Errorf("negative score should lower the rating: got %d", got)
	}
}
