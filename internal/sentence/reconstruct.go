package sentence

import "strings"

// Reconstruct merges wrapped lines into blocks that end at terminal
// punctuation and splits each block with tok. A trailing block without
// terminal punctuation is kept.
func Reconstruct(lines []string, tok Tokenizer) []string {
	var (
		out []string
		buf []string
	)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		out = append(out, tok.Split(strings.Join(buf, " "))...)
		buf = buf[:0]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		buf = append(buf, line)
		if endsSentence(line) {
			flush()
		}
	}
	flush()
	return out
}

func endsSentence(line string) bool {
	switch line[len(line)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
