package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/docquiz/internal/config"
	"github.com/dgallion1/docquiz/internal/doctree"
	"github.com/dgallion1/docquiz/internal/parser"
	"github.com/dgallion1/docquiz/internal/quiz"
)

// Pipeline runs document → contexts → questions. The CLI calls the stages
// directly; the Worker wraps them in a job.
type Pipeline struct {
	parseOpts parser.Options
	contexts  *ContextBuilder
	quiz      *quiz.Service
	log       *slog.Logger
}

// New wires the stages from cfg. ocr may be nil, leaving scanned pages empty.
func New(cfg config.Config, m quiz.Models, ocr parser.PageOCR, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		parseOpts: parser.Options{
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
			OCR:               ocr,
			Log:               log,
		},
		contexts: NewContextBuilder(m, ContextOptionsFrom(cfg), log),
		quiz: quiz.NewService(m, quiz.Options{
			MaxAnswers:    cfg.MaxAnswers,
			MaxPerContext: cfg.MaxPerContext,
			Seed:          cfg.RandomSeed,
		}, log),
		log: log,
	}
}

// Parse reads r with the parser for filename's extension.
func (p *Pipeline) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	ps, err := parser.ForFile(filename, p.parseOpts)
	if err != nil {
		return nil, err
	}
	doc, err := ps.Parse(ctx, r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// Contexts builds validated contexts from doc.
func (p *Pipeline) Contexts(ctx context.Context, doc *doctree.Document) ([]string, Stats, error) {
	return p.contexts.Build(ctx, doc)
}

// Questions generates exactly max(total, 3) items from ctxs.
func (p *Pipeline) Questions(ctx context.Context, ctxs []string, total int) ([]quiz.Item, error) {
	return p.quiz.Generate(ctx, ctxs, total)
}
