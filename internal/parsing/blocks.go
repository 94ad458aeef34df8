package parsing

import "github.com/jonathan/hr-assistant/internal/llm"

// decodeFirst feeds the JSON blocks of raw to decode in order and stops at
// the first one it accepts. When none is accepted the error of the last
// attempt is returned; what names the response in the no-JSON error.
func decodeFirst(raw, what string, decode func(block string) error) error {
	blocks := llm.ExtractJSONCandidates(raw)
	if len(blocks) == 0 {
		return &ParseError{Message: "no JSON found in " + what + " response", Raw: raw}
	}

	var err error
	for _, block := range blocks {
		if err = decode(block); err == nil {
			return nil
		}
	}
	return err
}
