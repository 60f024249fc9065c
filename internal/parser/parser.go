package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docquiz/internal/doctree"
)

// Parser converts raw document bytes into a Document of pages.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error)
}

// PageOCR recognizes the text of a single PDF page that has no text layer.
type PageOCR interface {
	PageText(ctx context.Context, pdfPath string, pageNr int) (string, error)
}

// Options configures parsers that need external tools.
type Options struct {
	FallbackPdftotext bool
	OCR               PageOCR // nil leaves image-only pages empty
	Log               *slog.Logger
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext, OCR: opts.OCR, Log: opts.Log}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outline accumulates heading-levelled lines for structured formats.
type outline struct {
	lines []doctree.Line
}

func (o *outline) heading(text string, level int) {
	if text = strings.TrimSpace(text); text != "" {
		o.lines = append(o.lines, doctree.Line{Text: text, Level: level})
	}
}

func (o *outline) body(text string) {
	if text = strings.TrimSpace(text); text != "" {
		o.lines = append(o.lines, doctree.Line{Text: text})
	}
}

// document wraps the outline as a single structured page. An empty outline
// yields a document with no pages.
func (o *outline) document(title string) *doctree.Document {
	doc := &doctree.Document{Title: title}
	if len(o.lines) == 0 {
		return doc
	}
	texts := make([]string, len(o.lines))
	for i, l := range o.lines {
		texts[i] = l.Text
	}
	doc.Pages = []doctree.Page{{
		Number:  1,
		Text:    strings.Join(texts, "\n"),
		HasText: true,
		Lines:   o.lines,
	}}
	return doc
}
