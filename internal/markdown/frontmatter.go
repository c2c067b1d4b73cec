// Package markdown extracts front matter and derives slugs, summaries, and
// rendered HTML from Markdown documents.
package markdown

import "strings"

const delim = "---"

// ParseFrontMatter splits a document into its metadata block and body.
//
// The metadata block sits between the first two "---" delimiters and holds
// one "key: value" pair per line; keys are trimmed and lower-cased, values
// are trimmed and may contain further colons. A document that does not
// start with the delimiter, or never closes it, is returned unchanged with
// empty metadata. Parsing never fails.
func ParseFrontMatter(content string) (map[string]string, string) {
	meta := map[string]string{}
	if !strings.HasPrefix(content, delim) {
		return meta, content
	}

	parts := strings.SplitN(content, delim, 3)
	if len(parts) < 3 {
		// Unterminated block: the whole document is body.
		return meta, content
	}

	for _, line := range strings.Split(parts[1], "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		meta[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	return meta, strings.TrimSpace(parts[2])
}
