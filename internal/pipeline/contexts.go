package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docquiz/internal/chunker"
	"github.com/dgallion1/docquiz/internal/config"
	"github.com/dgallion1/docquiz/internal/contexts"
	"github.com/dgallion1/docquiz/internal/doctree"
	"github.com/dgallion1/docquiz/internal/embed"
	"github.com/dgallion1/docquiz/internal/sentence"
)

// ErrNoText is returned for documents without any extractable text.
var ErrNoText = errors.New("document has no extractable text")

// ContextModels supplies the models needed to build contexts.
type ContextModels interface {
	Tokenizer() (sentence.Tokenizer, error)
	Encoder(ctx context.Context) (embed.Encoder, error)
}

// ContextOptions tune context building.
type ContextOptions struct {
	MaxWords     int
	MinSentences int
	WindowSize   int // 0 packs each chunk's sentences directly
	Threshold    float64
	TitlePrefix  bool
	DefaultTitle string
	ChapterWords []string
}

// ContextOptionsFrom reads context options from cfg.
func ContextOptionsFrom(cfg config.Config) ContextOptions {
	return ContextOptions{
		MaxWords:     cfg.MaxWords,
		MinSentences: cfg.MinSentences,
		WindowSize:   cfg.WindowSize,
		Threshold:    cfg.DedupThreshold,
		TitlePrefix:  cfg.TitlePrefix,
		DefaultTitle: cfg.DefaultTitle,
		ChapterWords: cfg.ChapterWords,
	}
}

// ContextBuilder turns a parsed document into validated reading contexts.
type ContextBuilder struct {
	models  ContextModels
	opts    ContextOptions
	chunker *chunker.Chunker
	log     *slog.Logger
}

func NewContextBuilder(m ContextModels, opts ContextOptions, log *slog.Logger) *ContextBuilder {
	if opts.Threshold <= 0 {
		opts.Threshold = sentence.DefaultThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &ContextBuilder{
		models:  m,
		opts:    opts,
		chunker: chunker.New(chunker.Config{DefaultTitle: opts.DefaultTitle, ChapterWords: opts.ChapterWords}),
		log:     log,
	}
}

// Stats counts what each stage produced for one document.
type Stats struct {
	Chunks    int `json:"chunks"`
	Sentences int `json:"sentences"`
	Kept      int `json:"kept"` // sentences left after deduplication
	Packed    int `json:"packed"`
	Rejected  int `json:"rejected"`
	Contexts  int `json:"contexts"`
}

// Build runs chunking, sentence reconstruction, deduplication, packing and
// validation over doc. Identical contexts produced by overlapping windows
// are emitted once.
func (b *ContextBuilder) Build(ctx context.Context, doc *doctree.Document) ([]string, Stats, error) {
	var st Stats
	if !hasText(doc) {
		return nil, st, ErrNoText
	}

	tok, err := b.models.Tokenizer()
	if err != nil {
		return nil, st, err
	}
	enc, err := b.models.Encoder(ctx)
	if err != nil {
		return nil, st, err
	}

	chunks := b.chunker.ChunkDocument(doc)
	st.Chunks = len(chunks)

	var out []string
	seen := make(map[string]bool)
	for _, c := range chunks {
		sents := sentence.Reconstruct(c.Lines, tok)
		st.Sentences += len(sents)

		sents, err = sentence.Dedup(ctx, sents, b.opts.Threshold, enc)
		if err != nil {
			return nil, st, fmt.Errorf("chunk %d: %w", c.Index, err)
		}
		st.Kept += len(sents)

		for _, body := range b.pack(sents, tok, b.budget(c.Title)) {
			st.Packed++
			text := body
			if b.opts.TitlePrefix {
				text = contexts.WithTitle(c.Title, body)
			}
			if r := contexts.Check(text); r != contexts.Accepted {
				st.Rejected++
				continue
			}
			if seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, text)
		}
	}
	st.Contexts = len(out)

	b.log.Info("contexts built",
		"chunks", st.Chunks,
		"sentences", st.Sentences,
		"kept", st.Kept,
		"rejected", st.Rejected,
		"contexts", st.Contexts,
	)
	return out, st, nil
}

// budget is the body word budget for a chunk: MaxWords less the title
// line when titles are prefixed, at least one word.
func (b *ContextBuilder) budget(title string) int {
	if !b.opts.TitlePrefix || title == "" {
		return b.opts.MaxWords
	}
	return max(1, b.opts.MaxWords-contexts.WordCount(title))
}

// pack windows the sentences when a window size is set and repacks each
// window under maxWords.
func (b *ContextBuilder) pack(sents []string, tok sentence.Tokenizer, maxWords int) []string {
	if b.opts.WindowSize <= 0 {
		return contexts.Pack(sents, maxWords, b.opts.MinSentences)
	}
	var out []string
	for _, w := range contexts.Windows(sents, b.opts.WindowSize, contexts.DefaultStep(b.opts.WindowSize)) {
		out = append(out, contexts.Pack(tok.Split(w), maxWords, b.opts.MinSentences)...)
	}
	return out
}

func hasText(doc *doctree.Document) bool {
	for _, p := range doc.Pages {
		if len(p.Lines) > 0 {
			return true
		}
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
