package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/dgallion1/docquiz/internal/config"
	"github.com/dgallion1/docquiz/internal/contexts"
	"github.com/dgallion1/docquiz/internal/doctree"
	"github.com/dgallion1/docquiz/internal/llm"
	"github.com/dgallion1/docquiz/internal/models"
	"github.com/dgallion1/docquiz/internal/ocr"
	"github.com/dgallion1/docquiz/internal/parser"
	"github.com/dgallion1/docquiz/internal/pipeline"
	"github.com/dgallion1/docquiz/internal/quiz"
)

const version = "v0.1.0"

type contextsCmd struct {
	Input  string `arg:"positional,required" help:"document to read (txt, md, html, pdf, docx)"`
	Output string `arg:"-o,--output" default:"-" help:"contexts file to write, - for stdout"`
	Title  string `arg:"--title" help:"override the document title"`
}

type quizCmd struct {
	Input  string `arg:"positional,required" help:"document to read (txt, md, html, pdf, docx)"`
	Output string `arg:"-o,--output" default:"-" help:"quiz JSON file to write, - for stdout"`
	Title  string `arg:"--title" help:"override the document title"`
	Total  int    `arg:"-n,--total" help:"number of questions (default TOTAL_QUESTIONS)"`
}

type args struct {
	Contexts *contextsCmd `arg:"subcommand:contexts" help:"split a document into reading contexts"`
	Quiz     *quizCmd     `arg:"subcommand:quiz" help:"generate a quiz from a document"`
	Verbose  bool         `arg:"-v,--verbose" help:"debug logging"`
}

func (args) Version() string {
	return "docquiz " + version
}

func (args) Description() string {
	return "docquiz turns documents into reading contexts and quiz questions.\nConfiguration is read from DOCQUIZ_CONFIG and the environment."
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.WriteUsage(os.Stdout)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if a.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	switch cmd := p.Subcommand().(type) {
	case *contextsCmd:
		err = app.runContexts(ctx, cmd)
	case *quizCmd:
		err = app.runQuiz(ctx, cmd)
	default:
		p.FailSubcommand("unrecognized command", p.SubcommandNames()...)
	}
	if err != nil {
		log.Error("command failed", "command", p.SubcommandNames()[0], "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      config.Config
	log      *slog.Logger
	stats    *llm.LLMStats
	registry *models.Registry
	ocr      *ocr.Service
	pipeline *pipeline.Pipeline
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	stats := llm.NewLLMStats(24 * time.Hour)
	registry := models.New(cfg, stats, log)

	var pageOCR parser.PageOCR
	svc, err := ocr.New(ctx, cfg, log)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("ocr: %w", err)
	}
	if svc != nil {
		pageOCR = svc
	}

	return &app{
		cfg:      cfg,
		log:      log,
		stats:    stats,
		registry: registry,
		ocr:      svc,
		pipeline: pipeline.New(cfg, registry, pageOCR, log),
	}, nil
}

func (a *app) close() {
	a.registry.Close()
	if a.ocr != nil {
		a.ocr.Close()
	}
}

func (a *app) parse(ctx context.Context, path, title string) (*doctree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := a.pipeline.Parse(ctx, f, path)
	if err != nil {
		return nil, err
	}
	if title != "" {
		doc.Title = title
	}
	a.log.Info("document parsed", "file", path, "title", doc.Title, "pages", len(doc.Pages))
	return doc, nil
}

func (a *app) runContexts(ctx context.Context, cmd *contextsCmd) error {
	doc, err := a.parse(ctx, cmd.Input, cmd.Title)
	if err != nil {
		return err
	}
	ctxs, _, err := a.pipeline.Contexts(ctx, doc)
	if err != nil {
		return err
	}
	return writeOutput(cmd.Output, func(w io.Writer) error {
		return contexts.Write(w, ctxs)
	})
}

type quizOutput struct {
	Title     string      `json:"title"`
	Filename  string      `json:"filename"`
	Contexts  []string    `json:"contexts"`
	Questions []quiz.Item `json:"questions"`
}

func (a *app) runQuiz(ctx context.Context, cmd *quizCmd) error {
	doc, err := a.parse(ctx, cmd.Input, cmd.Title)
	if err != nil {
		return err
	}
	ctxs, _, err := a.pipeline.Contexts(ctx, doc)
	if err != nil {
		return err
	}

	total := cmd.Total
	if total <= 0 {
		total = a.cfg.TotalQuestions
	}
	items, err := a.pipeline.Questions(ctx, ctxs, total)
	if err != nil {
		return err
	}

	snap := a.stats.Snapshot()
	a.log.Info("quiz generated", "questions", len(items), "llm_calls", snap.Count, "llm_p50_ms", snap.P50Ms)

	return writeOutput(cmd.Output, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(quizOutput{
			Title:     doc.Title,
			Filename:  cmd.Input,
			Contexts:  ctxs,
			Questions: items,
		})
	})
}

// writeOutput runs write against stdout for "-" and against a new file otherwise.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" || path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
