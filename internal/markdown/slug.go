package markdown

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	slugDropRe = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugWsRe   = regexp.MustCompile(`\s+`)
)

// Slug derives a URL-safe identifier from a title. Word characters in any
// script (including CJK) and hyphens survive; runs of whitespace collapse
// to a single hyphen; the result is lower-cased with outer hyphens
// stripped. A title made entirely of punctuation yields the first 12 hex
// characters of its MD5 digest so the slug is still deterministic.
func Slug(title string) string {
	s := slugDropRe.ReplaceAllString(title, "")
	s = slugWsRe.ReplaceAllString(s, "-")
	s = strings.ToLower(strings.Trim(s, "-"))
	if s == "" {
		sum := md5.Sum([]byte(title))
		return hex.EncodeToString(sum[:])[:12]
	}
	return s
}
