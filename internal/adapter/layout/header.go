package layout

import (
	"regexp"
	"strings"
	"unicode"
)

// Matches numbered headings like "3.1 Technology Stack" or "4. Results".
var numberedHeading = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\w`)

// IsHeader reports whether a text span looks like a section heading rather
// than body content. Best-effort heuristic: short line, no trailing
// punctuation, numbered or title-cased or fully upper-case. False positives
// and negatives are acceptable.
func IsHeader(text string) bool {
	if text == "" || len(text) > 120 {
		return false
	}
	t := strings.TrimSpace(text)
	if t == "" || strings.HasSuffix(t, ".") || strings.HasSuffix(t, ":") {
		return false
	}
	if numberedHeading.MatchString(t) {
		return true
	}
	if isAllUpper(t) && len(t) < 80 {
		return true
	}
	words := strings.Fields(t)
	if len(words) <= 8 && len(words) > 0 {
		first := []rune(words[0])
		if unicode.IsUpper(first[0]) {
			return true
		}
	}
	return false
}

// isAllUpper reports whether s contains at least one letter and no
// lower-case letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
