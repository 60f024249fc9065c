package parser

import (
	"context"
	"io"
	"strings"

	"github.com/dgallion1/docquiz/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX and setext
// headings become levelled lines; every other block is body text.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var o outline
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Heading:
				o.heading(inlineText(node, src), node.Level)
			case *ast.Paragraph, *ast.TextBlock:
				o.body(inlineText(node, src))
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				o.body(blockLines(node, src))
			case *ast.HTMLBlock, *ast.ThematicBreak:
			default:
				// Lists, list items, blockquotes.
				walk(node)
			}
		}
	}
	walk(root)

	return o.document(titleFromFilename(filename)), nil
}

// inlineText concatenates the text segments below n. Line breaks become newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return strings.TrimSpace(buf.String())
}

func blockLines(n ast.Node, src []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSpace(buf.String())
}
