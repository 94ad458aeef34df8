package parsing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/jonathan/hr-assistant/internal/schemas"
	"github.com/jonathan/hr-assistant/internal/types"
)

// rawScoreEntry accepts fractional scores such as 85.0, which models emit often.
type rawScoreEntry struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weightedScore"`
}

type rawScoreEvaluation struct {
	JobTitle   string          `json:"jobTitle"`
	Scores     []rawScoreEntry `json:"scores"`
	TotalScore float64         `json:"totalScore"`
}

// ParseScoreEvaluation extracts a ScoreEvaluation from an LLM answer.
// Scores are rounded to integers and the weighted scores and total are
// recomputed, so the returned evaluation always satisfies
// |TotalScore - Σ WeightedScore| < types.SumTolerance. The boolean reports
// whether the model's own arithmetic had to be corrected.
func ParseScoreEvaluation(raw string) (*types.ScoreEvaluation, bool, error) {
	var decoded rawScoreEvaluation
	err := decodeFirst(raw, "evaluation", func(block string) error {
		if err := schemas.Validate(schemas.ScoreEvaluation, block); err != nil {
			return &ParseError{Message: "evaluation response does not match schema", Raw: raw, Cause: err}
		}
		if err := json.Unmarshal([]byte(block), &decoded); err != nil {
			return &ParseError{Message: "failed to decode evaluation", Raw: raw, Cause: err}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	eval := &types.ScoreEvaluation{
		JobTitle:   strings.TrimSpace(decoded.JobTitle),
		Scores:     make([]types.ScoreEntry, 0, len(decoded.Scores)),
		TotalScore: decoded.TotalScore,
	}
	rounded := false
	for _, s := range decoded.Scores {
		score := int(math.Round(s.Score))
		if float64(score) != s.Score {
			rounded = true
		}
		eval.Scores = append(eval.Scores, types.ScoreEntry{
			Name:          strings.TrimSpace(s.Name),
			Description:   strings.TrimSpace(s.Description),
			Score:         score,
			Weight:        s.Weight,
			WeightedScore: s.WeightedScore,
		})
	}

	adjusted := eval.Recompute()
	return eval, adjusted || rounded, nil
}
