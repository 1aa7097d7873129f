package feedback

import (
	"encoding/json"
	"strings"
)

// CategoryScore is one scored dimension of profile quality as shown on the
// rating breakdown.
type CategoryScore struct {
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// CanonicalCategory is an entry in the fixed category list. The default score
// is used when the backend response does not cover the category.
type CanonicalCategory struct {
	Label   string
	Default float64
}

const genericDescription = "How this part of your profile comes across to people swiping."

// The canonical breakdown always rendered for a result set, in display order.
// Defaults are the reference placeholder values; a real scoring model would
// supply all of these.
var canonicalCategories = []CanonicalCategory{
	{Label: "Lead Photo Quality", Default: 7},
	{Label: "Variety of Photos", Default: 6},
	{Label: "Prompt Creativity", Default: 6},
	{Label: "Bio Clarity", Default: 6},
	{Label: "Interests & Tags", Default: 7},
	{Label: "Profile Cohesion", Default: 6},
	{Label: "First-Photo Impact", Default: 7},
	{Label: "Swipe-Worthy Factor", Default: 6},
}

var categoryDescriptions = map[string]string{
	"lead photo quality":  "Sharpness, lighting, and framing of your main photo.",
	"variety of photos":   "Mix of settings, activities, and shot types across the set.",
	"prompt creativity":   "How memorable and specific your prompt answers are.",
	"bio clarity":         "Whether your bio reads clearly and says something concrete.",
	"interests & tags":    "How well your listed interests invite a conversation.",
	"profile cohesion":    "Whether photos, bio, and prompts tell one consistent story.",
	"first-photo impact":  "The split-second impression your opening photo makes.",
	"swipe-worthy factor": "Overall pull of the profile at a glance.",
}

// CanonicalCategories returns a copy of the fixed category list so callers
// cannot reorder the shared table.
func CanonicalCategories() []CanonicalCategory {
	out := make([]CanonicalCategory, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}

// Clamp bounds a score into the [0,10] scoring domain.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func describe(label string) string {
	if d, ok := categoryDescriptions[strings.ToLower(strings.TrimSpace(label))]; ok {
		return d
	}
	return genericDescription
}

type incomingScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// MergeScores folds a raw backend scores payload into the canonical category
// list. Canonical labels come first in fixed order, each overridden by a
// case-insensitive label match from the payload or falling back to its
// default. Entries the canonical list does not know are appended afterward in
// the order received. A payload that is not a JSON array degrades to the
// canonical defaults; this function never fails.
func MergeScores(canonical []CanonicalCategory, rawJSON string) []CategoryScore {
	var incoming []incomingScore
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &incoming); err != nil {
			incoming = nil
		}
	}

	for i := range incoming {
		incoming[i].Label = strings.TrimSpace(incoming[i].Label)
		incoming[i].Score = Clamp(incoming[i].Score)
	}

	isCanonical := func(label string) bool {
		for _, c := range canonical {
			if strings.EqualFold(label, c.Label) {
				return true
			}
		}
		return false
	}

	out := make([]CategoryScore, 0, len(canonical)+len(incoming))

	for _, c := range canonical {
		score := c.Default
		for _, in := range incoming {
			if strings.EqualFold(in.Label, c.Label) {
				score = in.Score
				break
			}
		}
		out = append(out, CategoryScore{
			Label:       c.Label,
			Score:       score,
			Description: describe(c.Label),
		})
	}

	for _, in := range incoming {
		if in.Label == "" || isCanonical(in.Label) {
			continue
		}
		out = append(out, CategoryScore{
			Label:       in.Label,
			Score:       in.Score,
			Description: genericDescription,
		})
	}

	return out
}
