package types

import "math"

// SumTolerance is the maximum allowed difference between TotalScore and the
// sum of the entries' weighted scores.
const SumTolerance = 1e-6

// ScoreEntry is the grade of a resume against one requirement.
type ScoreEntry struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Score         int     `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weightedScore"`
}

// ScoreEvaluation is the full grade of one resume for one job.
type ScoreEvaluation struct {
	JobTitle   string       `json:"jobTitle"`
	Scores     []ScoreEntry `json:"scores"`
	TotalScore float64      `json:"totalScore"`
}

// SumWeighted returns the sum of the entries' weighted scores.
func (e *ScoreEvaluation) SumWeighted() float64 {
	var sum float64
	for _, s := range e.Scores {
		sum += s.WeightedScore
	}
	return sum
}

// Consistent reports whether TotalScore matches the sum of weighted scores.
func (e *ScoreEvaluation) Consistent() bool {
	return math.Abs(e.TotalScore-e.SumWeighted()) < SumTolerance
}

// Recompute sets every WeightedScore to Score*Weight and TotalScore to their
// sum. It reports whether any stored value differed from the recomputed one.
func (e *ScoreEvaluation) Recompute() bool {
	adjusted := false
	var total float64
	for i := range e.Scores {
		entry := &e.Scores[i]
		want := float64(entry.Score) * entry.Weight
		if math.Abs(entry.WeightedScore-want) >= SumTolerance {
			adjusted = true
		}
		entry.WeightedScore = want
		total += want
	}
	if math.Abs(e.TotalScore-total) >= SumTolerance {
		adjusted = true
	}
	e.TotalScore = total
	return adjusted
}
