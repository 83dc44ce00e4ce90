// Package health derives an equipment's rolling health score from its
// inspection history.
package health

import (
	"math"
)

// DefaultScore is the health score of equipment with no completed
// inspections.
const DefaultScore = 100

// window is how many recent inspections contribute to the score.
const window = 5

// Compute returns the 0-100 health score for an equipment given its
// completed inspection scores ordered most recent first.
//
// Policy: weighted mean of the last up-to-5 scores with linear weights
// 5,4,3,2,1 (most recent heaviest), rounded half-up to an integer. No
// history yields DefaultScore.
func Compute(recentScores []float64) int {
	if len(recentScores) == 0 {
		return DefaultScore
	}
	n := len(recentScores)
	if n > window {
		n = window
	}
	var sum, weights float64
	for i := 0; i < n; i++ {
		w := float64(window - i)
		sum += recentScores[i] * w
		weights += w
	}
	score := int(math.Floor(sum/weights + 0.5))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
