// Package layout repairs raw page text and classifies its lines.
package layout

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRe  = regexp.MustCompile(`([\p{L}\p{N}_]+)-[^\S\n]*\n\s*([\p{L}\p{N}_]+)`)
	lineEdgeRe     = regexp.MustCompile(`[^\S\n]*\n[^\S\n]*`)
	blankLinesRe   = regexp.MustCompile(`\n+`)
	horizontalWsRe = regexp.MustCompile(`[^\S\n]{2,}`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"–", "-", "—", "-",
	)
)

// Normalize joins words hyphenated across line breaks, collapses blank lines
// and whitespace runs, and folds typographic quotes and dashes to ASCII.
// Line breaks survive so the layout cleaner and heading detector can work
// line by line. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = quoteReplacer.Replace(text)
	// A word can be split over several consecutive lines; repeat until stable.
	for {
		next := hyphenBreakRe.ReplaceAllString(text, "$1$2")
		if next == text {
			break
		}
		text = next
	}
	text = lineEdgeRe.ReplaceAllString(text, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n")
	text = horizontalWsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
