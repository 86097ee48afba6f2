package storage

// ratingSmoothing is the divisor of the EWMA step: a higher value makes the
// rating move more slowly toward recent round scores.
const ratingSmoothing = 4

// computeRatingUpdate folds a round score into a player's rating as an
// exponentially weighted moving average. The first solve seeds the rating
// with the raw score; after that each round pulls the rating a quarter of
// the way toward it. Scores (and therefore ratings) may be negative.
func computeRatingUpdate(oldRating, roundScore, solvesBefore int) int {
	if solvesBefore <= 0 {
		return roundScore
	}
	return oldRating + (roundScore-oldRating)/ratingSmoothing
}
