package feedback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"profile-pulse-backend/internal/feedback"
)

func categoriesWithAverage(avg float64) []feedback.CategoryScore {
	return []feedback.CategoryScore{
		{Label: "One", Score: avg},
		{Label: "Two", Score: avg},
	}
}

func TestGrade_Letters(t *testing.T) {
	cases := []struct {
		average float64
		letter  string
		tone    feedback.Tone
	}{
		{10, "A+", feedback.ToneGood},
		{9.7, "A+", feedback.ToneGood},
		{9.69, "A", feedback.ToneGood},
		{9.3, "A", feedback.ToneGood},
		{9.0, "A-", feedback.ToneGood},
		{8.7, "B+", feedback.ToneGood},
		{8.3, "B", feedback.ToneGood},
		{8.0, "B-", feedback.ToneGood},
		{7.7, "C+", feedback.ToneCaution},
		{7.3, "C", feedback.ToneCaution},
		{7.0, "C-", feedback.ToneCaution},
		{6.99, "D+", feedback.ToneCaution},
		{6.7, "D+", feedback.ToneCaution},
		{6.3, "D", feedback.ToneCaution},
		{6.0, "D-", feedback.ToneCaution},
		{5.99, "F", feedback.TonePoor},
		{0, "F", feedback.TonePoor},
	}

	for _, tc := range cases {
		summary := feedback.Grade(categoriesWithAverage(tc.average))
		assert.Equal(t, tc.letter, summary.Letter, "average %v", tc.average)
		assert.Equal(t, tc.tone, summary.Tone, "average %v", tc.average)
		assert.InDelta(t, tc.average, summary.Average, 1e-9)
	}
}

func TestGrade_AveragesMixedScores(t *testing.T) {
	summary := feedback.Grade([]feedback.CategoryScore{
		{Label: "One", Score: 6},
		{Label: "Two", Score: 8},
	})

	assert.Equal(t, 7.0, summary.Average)
	assert.Equal(t, "C-", summary.Letter)
	assert.Equal(t, feedback.ToneCaution, summary.Tone)
}

func TestGrade_Empty(t *testing.T) {
	summary := feedback.Grade(nil)

	assert.Equal(t, 0.0, summary.Average)
	assert.Equal(t, "F", summary.Letter)
	assert.Equal(t, feedback.TonePoor, summary.Tone)
}
