package chunker

import (
	"strings"

	"github.com/dgallion1/docquiz/internal/doctree"
	"github.com/dgallion1/docquiz/internal/layout"
)

// TitleSeparator joins the heading path into a chunk title.
const TitleSeparator = " / "

// DefaultTitle is used for body text that appears before any heading when
// the document itself has no title.
const DefaultTitle = "Untitled"

// Config controls chunking behavior.
type Config struct {
	DefaultTitle string   // Title for content before the first heading.
	ChapterWords []string // Chapter marker words for heading detection.
}

// Chunker groups body lines under the nearest heading path.
type Chunker struct {
	defaultTitle string
	detector     *layout.HeadingDetector
}

// New builds a Chunker.
func New(cfg Config) *Chunker {
	title := strings.TrimSpace(cfg.DefaultTitle)
	if title == "" {
		title = DefaultTitle
	}
	return &Chunker{
		defaultTitle: title,
		detector:     layout.NewHeadingDetector(cfg.ChapterWords),
	}
}

// Lines normalizes and cleans every page of doc and assigns heading levels.
// Pages from structured formats keep the levels their parser assigned.
func (c *Chunker) Lines(doc *doctree.Document) []doctree.Line {
	var lines []doctree.Line
	for _, page := range doc.Pages {
		if page.Lines != nil {
			for _, l := range page.Lines {
				for _, text := range layout.CleanLines(layout.Normalize(l.Text)) {
					lines = append(lines, doctree.Line{Text: text, Level: l.Level})
				}
			}
			continue
		}
		for _, text := range layout.CleanLines(layout.Normalize(page.Text)) {
			lines = append(lines, doctree.Line{Text: text, Level: c.detector.Level(text)})
		}
	}
	return lines
}

// ChunkDocument runs Lines and Chunk over doc. The document title, when
// present, replaces the default title.
func (c *Chunker) ChunkDocument(doc *doctree.Document) []doctree.Chunk {
	title := c.defaultTitle
	if t := strings.TrimSpace(doc.Title); t != "" {
		title = t
	}
	return chunk(c.Lines(doc), title)
}

// Chunk groups levelled lines into titled chunks.
func (c *Chunker) Chunk(lines []doctree.Line) []doctree.Chunk {
	return chunk(lines, c.defaultTitle)
}

func chunk(lines []doctree.Line, defaultTitle string) []doctree.Chunk {
	var (
		chunks []doctree.Chunk
		stack  []string
		buf    []string
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		c := doctree.Chunk{
			Title:      defaultTitle,
			Breadcrumb: copyBreadcrumb(stack),
			Lines:      buf,
			Content:    strings.Join(buf, " "),
			Index:      len(chunks),
		}
		if len(stack) > 0 {
			c.Title = strings.Join(stack, TitleSeparator)
		}
		chunks = append(chunks, c)
		buf = nil
	}

	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		if line.Level > 0 {
			flush()
			// A heading at level L replaces every ancestor at depth >= L.
			if len(stack) > line.Level-1 {
				stack = stack[:line.Level-1]
			}
			stack = append(stack, text)
			continue
		}
		buf = append(buf, text)
	}
	flush()

	return chunks
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
