package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeNoHistory(t *testing.T) {
	assert.Equal(t, DefaultScore, Compute(nil))
	assert.Equal(t, DefaultScore, Compute([]float64{}))
}

func TestComputeSingleInspection(t *testing.T) {
	assert.Equal(t, 80, Compute([]float64{80}))
	assert.Equal(t, 67, Compute([]float64{66.7}))
}

func TestComputeWeightsRecentHeavier(t *testing.T) {
	// (100*5 + 50*4) / 9 = 77.78 -> 78
	assert.Equal(t, 78, Compute([]float64{100, 50}))
	// Reversed history: (50*5 + 100*4) / 9 = 72.22 -> 72
	assert.Equal(t, 72, Compute([]float64{50, 100}))
}

func TestComputeUsesAtMostFiveScores(t *testing.T) {
	withSix := Compute([]float64{90, 80, 70, 60, 50, 0})
	withFive := Compute([]float64{90, 80, 70, 60, 50})
	assert.Equal(t, withFive, withSix)
}

func TestComputeClampsToRange(t *testing.T) {
	assert.Equal(t, 0, Compute([]float64{0, 0, 0}))
	assert.Equal(t, 100, Compute([]float64{100, 100, 100, 100, 100}))
}
