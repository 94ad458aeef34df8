package resume

import (
	"html"
	"regexp"
	"strings"
)

var (
	spaceRun       = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRun   = regexp.MustCompile(`\n{3,}`)
	docxParagraph  = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab        = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag         = regexp.MustCompile(`<[^>]+>`)
	bulletPrefixes = []string{"•", "·", "▪", "●", "◦"}
)

// CleanText normalizes extracted resume text: line endings become LF, runs
// of spaces collapse, bullet glyphs become "- " and at most one blank line
// separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankLineRun.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	if line == "" {
		return ""
	}
	for _, bullet := range bulletPrefixes {
		if rest, ok := strings.CutPrefix(line, bullet); ok {
			return "- " + strings.TrimSpace(rest)
		}
	}
	return line
}

// stripDocxMarkup turns WordprocessingML into plain text, one paragraph per line.
func stripDocxMarkup(xml string) string {
	xml = docxParagraph.ReplaceAllString(xml, "\n")
	xml = docxTab.ReplaceAllString(xml, "\t")
	xml = xmlTag.ReplaceAllString(xml, "")
	return html.UnescapeString(xml)
}
