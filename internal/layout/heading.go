package layout

import (
	"regexp"
	"strings"
)

// DefaultChapterWords are the words recognised as chapter markers.
var DefaultChapterWords = []string{"chapter", "chương"}

var (
	romanHeadingRe   = regexp.MustCompile(`^[IVXLCDM]+\.\s+\S`)
	numericHeadingRe = regexp.MustCompile(`^(\d+(?:\.\d+){0,2})\s+\S`)
)

// HeadingDetector classifies lines as headings. The zero value is not
// usable; build one with NewHeadingDetector.
type HeadingDetector struct {
	chapterRe *regexp.Regexp
}

// NewHeadingDetector builds a detector for the given chapter marker words.
// An empty list falls back to DefaultChapterWords.
func NewHeadingDetector(chapterWords []string) *HeadingDetector {
	var quoted []string
	for _, w := range chapterWords {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		for _, w := range DefaultChapterWords {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return &HeadingDetector{
		chapterRe: regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)\s+\d+`),
	}
}

// Level returns the outline depth of a trimmed line: 1 for chapter markers
// and roman-numeral headings, the segment count for numeric outlines such
// as "2.1.3 Title", and 0 for body text.
func (d *HeadingDetector) Level(line string) int {
	switch {
	case d.chapterRe.MatchString(line):
		return 1
	case romanHeadingRe.MatchString(line):
		return 1
	}
	if m := numericHeadingRe.FindStringSubmatch(line); m != nil {
		return strings.Count(m[1], ".") + 1
	}
	return 0
}

var defaultDetector = NewHeadingDetector(nil)

// HeadingLevel classifies a line with the default chapter words.
func HeadingLevel(line string) int {
	return defaultDetector.Level(line)
}
