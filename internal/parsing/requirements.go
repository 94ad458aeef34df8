package parsing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/jonathan/hr-assistant/internal/schemas"
	"github.com/jonathan/hr-assistant/internal/types"
)

// ParseRequirements extracts a JobRequirements document from an LLM answer.
// Prose and code fences around the JSON are ignored, and so are JSON blocks
// in the prose that are not requirements. A bare array of requirements is
// accepted as well.
func ParseRequirements(raw string) (*types.JobRequirements, error) {
	var reqs *types.JobRequirements
	err := decodeFirst(raw, "requirements", func(block string) error {
		if strings.HasPrefix(block, "[") {
			block = `{"requirements":` + block + `}`
		}

		if err := schemas.Validate(schemas.Requirements, block); err != nil {
			return &ParseError{Message: "requirements response does not match schema", Raw: raw, Cause: err}
		}

		var decoded types.JobRequirements
		if err := json.Unmarshal([]byte(block), &decoded); err != nil {
			return &ParseError{Message: "failed to decode requirements", Raw: raw, Cause: err}
		}

		decoded.JobTitle = strings.TrimSpace(decoded.JobTitle)
		decoded.Requirements = NormalizeRequirements(decoded.Requirements)
		if len(decoded.Requirements) == 0 {
			return &ParseError{Message: "requirements response contains no named requirement", Raw: raw}
		}
		reqs = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// CheckWeights returns a *WeightWarning when the requirement weights do not
// sum to 1.0 within tolerance, and nil otherwise.
func CheckWeights(reqs *types.JobRequirements, tolerance float64) *WeightWarning {
	if tolerance <= 0 {
		tolerance = types.WeightTolerance
	}
	sum := reqs.WeightSum()
	if math.Abs(sum-1.0) <= tolerance {
		return nil
	}
	return &WeightWarning{Sum: sum, Tolerance: tolerance}
}
