package fetch

import (
	"context"
	"strings"
)

// MinPostingChars is the shortest text accepted as a job posting.
const MinPostingChars = 50

// JobPage fetches a job posting and returns its text. HTML pages are reduced
// to the posting body using the selectors of the detected platform; plain
// text responses are returned as they are.
func JobPage(ctx context.Context, urlStr string, opts *Options) (string, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}

	if !result.IsHTML() {
		return cleanWhitespace(result.Body), nil
	}

	platform := DetectPlatform(urlStr)
	text, err := ExtractMainText(result.Body, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}

	if len(strings.TrimSpace(text)) < MinPostingChars {
		return "", &Error{URL: urlStr, Message: "page contains no job posting text"}
	}
	return text, nil
}
