package markdown

import (
	"regexp"
	"strings"
)

// DefaultSummaryLength is the rune budget for generated excerpts.
const DefaultSummaryLength = 200

var (
	imageRe   = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	headingRe = regexp.MustCompile(`(?m)^#+ `)
	linkRe    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	markerRe  = regexp.MustCompile("[*_`~]")
	newlineRe = regexp.MustCompile(`\n+`)
)

// Summary reduces a Markdown body to a plain-text excerpt of at most
// maxLen runes. Images are removed outright, links keep their text,
// heading and emphasis markers are stripped, and newlines collapse to
// spaces. Text longer than maxLen is cut at exactly maxLen runes with a
// literal "..." appended; shorter text comes back untouched.
func Summary(content string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSummaryLength
	}

	// Images go first so their alt text does not survive as link text.
	text := imageRe.ReplaceAllString(content, "")
	text = headingRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = markerRe.ReplaceAllString(text, "")
	text = newlineRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return text
}
