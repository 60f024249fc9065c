package parser

import (
	"context"
	"io"
	"strings"

	"github.com/dgallion1/docquiz/internal/doctree"
)

// TextParser handles plain text files. The whole file is one page; heading
// levels are left to the pattern detector.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &doctree.Document{Title: titleFromFilename(filename)}
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	doc.Pages = []doctree.Page{{Number: 1, Text: text, HasText: true}}
	return doc, nil
}
