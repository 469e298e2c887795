package heuristics

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// lineMatch is the first match of a pattern on one line of a prompt.
type lineMatch struct {
	line int // absolute document line
	text string
}

// findPatternLines reports the first match of re on each line of content.
// Line numbers are offset by startLine so they point into the source document.
func findPatternLines(content string, re *regexp.Regexp, startLine int) []lineMatch {
	var matches []lineMatch
	for idx, line := range strings.Split(content, "\n") {
		if m := re.FindString(line); m != "" {
			matches = append(matches, lineMatch{line: startLine + idx, text: m})
		}
	}
	return matches
}

// wordPattern builds a case-insensitive whole-word pattern for a literal term.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

// hasAnyMarker reports whether any marker occurs in the already lowercased text.
func hasAnyMarker(lower string, markers []string) bool {
	for _, m := range markers {
		m = strings.ToLower(m)
		if m != "" && strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// truncate shortens s to n runes, appending "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
