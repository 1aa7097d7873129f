package feedback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"profile-pulse-backend/internal/feedback"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, feedback.Clamp(-100))
	assert.Equal(t, 0.0, feedback.Clamp(-0.01))
	assert.Equal(t, 0.0, feedback.Clamp(0))
	assert.Equal(t, 5.0, feedback.Clamp(5))
	assert.Equal(t, 10.0, feedback.Clamp(10))
	assert.Equal(t, 10.0, feedback.Clamp(10.01))
	assert.Equal(t, 10.0, feedback.Clamp(1000))
}

func TestMergeScores_EmptyPayloadUsesDefaults(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	merged := feedback.MergeScores(canonical, "")

	assert.Len(t, merged, len(canonical))
	for i, c := range canonical {
		assert.Equal(t, c.Label, merged[i].Label)
		assert.Equal(t, c.Default, merged[i].Score)
		assert.NotEmpty(t, merged[i].Description)
	}
}

func TestMergeScores_InvalidJSONDegradesToDefaults(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	merged := feedback.MergeScores(canonical, "not json at all")

	assert.Len(t, merged, len(canonical))
	for i, c := range canonical {
		assert.Equal(t, c.Default, merged[i].Score)
	}
}

func TestMergeScores_CaseInsensitiveOverride(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	merged := feedback.MergeScores(canonical, `[{"label":"LEAD photo QUALITY","score":9.5}]`)

	assert.Equal(t, "Lead Photo Quality", merged[0].Label)
	assert.Equal(t, 9.5, merged[0].Score)
	// The rest keep their defaults.
	for i := 1; i < len(canonical); i++ {
		assert.Equal(t, canonical[i].Default, merged[i].Score)
	}
}

func TestMergeScores_OverrideIsClamped(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	merged := feedback.MergeScores(canonical, `[{"label":"Bio Clarity","score":42},{"label":"Variety of Photos","score":-3}]`)

	byLabel := map[string]float64{}
	for _, m := range merged {
		byLabel[m.Label] = m.Score
	}
	assert.Equal(t, 10.0, byLabel["Bio Clarity"])
	assert.Equal(t, 0.0, byLabel["Variety of Photos"])
}

func TestMergeScores_UnknownLabelsAppendInOrder(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	merged := feedback.MergeScores(canonical, `[{"label":"Humor","score":8},{"label":"Pet Photos","score":7.2}]`)

	assert.Len(t, merged, len(canonical)+2)
	assert.Equal(t, "Humor", merged[len(canonical)].Label)
	assert.Equal(t, 8.0, merged[len(canonical)].Score)
	assert.Equal(t, "Pet Photos", merged[len(canonical)+1].Label)
	assert.Equal(t, 7.2, merged[len(canonical)+1].Score)
}

func TestMergeScores_CanonicalOrderIsStable(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	// Payload lists canonical categories in reverse; output order must not
	// follow the payload.
	merged := feedback.MergeScores(canonical, `[{"label":"Swipe-Worthy Factor","score":1},{"label":"Lead Photo Quality","score":2}]`)

	assert.Len(t, merged, len(canonical))
	for i, c := range canonical {
		assert.Equal(t, c.Label, merged[i].Label)
	}
	assert.Equal(t, 2.0, merged[0].Score)
	assert.Equal(t, 1.0, merged[len(canonical)-1].Score)
}

func TestMergeScores_BlankLabelsDropped(t *testing.T) {
	canonical := feedback.CanonicalCategories()

	merged := feedback.MergeScores(canonical, `[{"label":"   ","score":5},{"label":"","score":5}]`)

	assert.Len(t, merged, len(canonical))
}
