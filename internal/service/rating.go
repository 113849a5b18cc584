package service

import "math"

const (
	ratingKFactor = 32
	ratingFloor   = 100
)

// expectedScore is the standard logistic expectation for a rating gap, with
// 400 points meaning roughly 10:1 odds.
func expectedScore(rating, opponent int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponent-rating)/400.0))
}

// nextRating returns a player's rating after a game. score is 1 for a win,
// 0.5 for a draw and 0 for a loss. Ratings never drop below the floor.
func nextRating(rating, opponent int, score float64) int {
	next := int(math.Round(float64(rating) + ratingKFactor*(score-expectedScore(rating, opponent))))
	if next < ratingFloor {
		next = ratingFloor
	}
	return next
}
