package feedback

// Tone is the qualitative bucket a letter grade falls into, used by the
// client purely for presentation.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneCaution Tone = "caution"
	TonePoor    Tone = "poor"
)

// GradeSummary is the overall rating derived from a category breakdown.
type GradeSummary struct {
	Average float64 `json:"average"`
	Letter  string  `json:"letter"`
	Tone    Tone    `json:"tone"`
}

// Fixed thresholds, highest first. Every finite average maps to exactly one
// letter; anything below 6.0 is an F.
var gradeThresholds = []struct {
	min    float64
	letter string
	tone   Tone
}{
	{9.7, "A+", ToneGood},
	{9.3, "A", ToneGood},
	{9.0, "A-", ToneGood},
	{8.7, "B+", ToneGood},
	{8.3, "B", ToneGood},
	{8.0, "B-", ToneGood},
	{7.7, "C+", ToneCaution},
	{7.3, "C", ToneCaution},
	{7.0, "C-", ToneCaution},
	{6.7, "D+", ToneCaution},
	{6.3, "D", ToneCaution},
	{6.0, "D-", ToneCaution},
}

// Grade computes the arithmetic mean of all category scores and maps it to a
// letter grade. An empty breakdown grades as 0 / F.
func Grade(categories []CategoryScore) GradeSummary {
	var average float64
	if len(categories) > 0 {
		var total float64
		for _, c := range categories {
			total += c.Score
		}
		average = total / float64(len(categories))
	}

	for _, t := range gradeThresholds {
		if average >= t.min {
			return GradeSummary{Average: average, Letter: t.letter, Tone: t.tone}
		}
	}
	return GradeSummary{Average: average, Letter: "F", Tone: TonePoor}
}
