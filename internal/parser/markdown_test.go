package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/docquiz/internal/doctree"
)

func TestMarkdownParser_HeadingLevels(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content
wraps here.

### Subsection A1

- first item
- second item

## Section B

Section B content.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(context.Background(), strings.NewReader(input), "notes/doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}

	want := []doctree.Line{
		{Text: "Title", Level: 1},
		{Text: "Intro text."},
		{Text: "Section A", Level: 2},
		{Text: "Section A content\nwraps here."},
		{Text: "Subsection A1", Level: 3},
		{Text: "first item"},
		{Text: "second item"},
		{Text: "Section B", Level: 2},
		{Text: "Section B content."},
	}
	got := doc.Pages[0].Lines
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestMarkdownParser_InlineMarkup(t *testing.T) {
	input := "# The **Cell** Cycle\n\nCells *divide* by [mitosis](https://example.com).\n"
	doc, err := (&MarkdownParser{}).Parse(context.Background(), strings.NewReader(input), "a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := doc.Pages[0].Lines
	if lines[0].Text != "The Cell Cycle" {
		t.Errorf("expected heading without markup, got %q", lines[0].Text)
	}
	if lines[1].Text != "Cells divide by mitosis." {
		t.Errorf("expected paragraph without markup, got %q", lines[1].Text)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "# API Reference\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	doc, err := (&MarkdownParser{}).Parse(context.Background(), strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := doc.Pages[0].Text
	if !strings.Contains(text, "GET /api/users\nPOST /api/users") {
		t.Errorf("expected code block content in text, got %q", text)
	}
	if !strings.HasSuffix(text, "More text after code.") {
		t.Errorf("expected post-code text last, got %q", text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(context.Background(), strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(doc.Pages))
	}
}
