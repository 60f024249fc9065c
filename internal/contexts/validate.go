package contexts

import (
	"regexp"
	"strings"
)

// MinWords is the shortest body accepted as reading content.
const MinWords = 30

// EmailRe matches an email address in lowercased text.
var EmailRe = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

// bannedKeywords mark front matter and metadata rather than reading content.
var bannedKeywords = []string{
	"introduction",
	"author",
	"student",
	"supervisor",
	"email",
	"lecturer",
	"university",
	"faculty",
	"course",
	"chapter",
	"table of contents",
}

// Body strips a title line: only text after the first line break is
// returned. Text without a line break is returned unchanged.
func Body(context string) string {
	if _, body, ok := strings.Cut(context, "\n"); ok {
		return body
	}
	return context
}

// Rejection names why Check refused a context. The empty Rejection means
// the context is accepted.
type Rejection string

const (
	Accepted      Rejection = ""
	RejectEmail   Rejection = "email"
	RejectKeyword Rejection = "keyword"
	RejectShort   Rejection = "short"
)

// Check applies the content filters to the body of context.
func Check(context string) Rejection {
	text := strings.ToLower(Body(context))
	if EmailRe.MatchString(text) {
		return RejectEmail
	}
	for _, k := range bannedKeywords {
		if strings.Contains(text, k) {
			return RejectKeyword
		}
	}
	if WordCount(text) < MinWords {
		return RejectShort
	}
	return Accepted
}

// Valid reports whether context passes every filter.
func Valid(context string) bool {
	return Check(context) == Accepted
}

// Filter keeps the valid contexts, in order.
func Filter(ctxs []string) []string {
	out := make([]string, 0, len(ctxs))
	for _, c := range ctxs {
		if Valid(c) {
			out = append(out, c)
		}
	}
	return out
}
