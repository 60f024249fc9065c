package doctree

// Document is the parsed form of an uploaded file.
type Document struct {
	Title string // Document title (from metadata or filename)
	Pages []Page
}

// Page is the raw text of one source page. Pages are not modified once extracted.
type Page struct {
	Number  int    // 1-indexed source page (0 if N/A)
	Text    string // Raw page text
	HasText bool   // Embedded text layer present; false means the text came from OCR
	Lines   []Line // Optional: pre-levelled lines from structured formats (md/html/docx)
}

// Line is a single normalized text line. Level is the heading depth
// (0 = body text); Line values are consumed during chunking.
type Line struct {
	Text  string
	Level int
}

// Chunk is a titled run of body text under one heading path.
type Chunk struct {
	Title      string   // Heading path joined by " / "
	Breadcrumb []string // Heading path, e.g. ["Chapter 1", "1.2 Cells"]
	Lines      []string // Body lines in source order
	Content    string   // Body lines joined by spaces
	Index      int      // Sequence number within document
}

// Text concatenates page text, one page per line block.
func (d *Document) Text() string {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, p := range d.Pages {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, p.Text...)
	}
	return string(buf)
}
