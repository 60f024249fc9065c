package layout

import (
	"regexp"
	"strings"
)

var (
	pageNumberRe = regexp.MustCompile(`^\d{1,3}$`)
	bulletRe     = regexp.MustCompile(`[•▪►●■]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// CleanLines strips standalone page numbers and bullet glyphs and squeezes
// whitespace inside each line. Empty lines are dropped.
func CleanLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if pageNumberRe.MatchString(line) {
			continue
		}
		line = bulletRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Clean is CleanLines joined back with newlines.
func Clean(text string) string {
	return strings.Join(CleanLines(text), "\n")
}
