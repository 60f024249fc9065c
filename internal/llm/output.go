package llm

import (
	"regexp"
	"strings"
)

var (
	codeBlockRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*(.*?)\\s*```$")
	labelRe     = regexp.MustCompile(`(?i)^(question|distractors?|answer)\s*:\s*`)

	// Completions that echo instructions instead of answering.
	injectionPattern = regexp.MustCompile(
		`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
			`generate\s+(a\s+question|plausible)|correct\s+answer\s*:|context\s*:)`,
	)
)

// maxOutputLen bounds a usable question or distractor.
const maxOutputLen = 300

// CleanOutput trims a decoded completion to its first non-empty line,
// stripping code fences and a leading "Question:" style label.
func CleanOutput(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(labelRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			return line
		}
	}
	return ""
}

// Usable reports whether a cleaned completion can be shown to a reader.
func Usable(s string) bool {
	if len(s) == 0 || len(s) > maxOutputLen {
		return false
	}
	return !injectionPattern.MatchString(s)
}
