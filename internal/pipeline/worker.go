package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/docquiz/internal/store"
)

// QuizStore persists finished quizzes. *store.Store implements it.
type QuizStore interface {
	SaveQuiz(ctx context.Context, q *store.Quiz) error
	FindByHash(ctx context.Context, hash string) (string, error)
}

// Worker processes a single quiz job.
type Worker struct {
	pipeline *Pipeline
	store    QuizStore
	log      *slog.Logger
}

func NewWorker(p *Pipeline, s QuizStore, log *slog.Logger) *Worker {
	return &Worker{pipeline: p, store: s, log: log}
}

// Process runs parse → contexts → questions → store for a job. Any stage
// error fails the job; there is no partial result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "quiz_id", job.QuizID)
	defer job.release()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.pipeline.Parse(ctx, bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", err)
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	job.SetPages(len(doc.Pages))

	// Hash the parsed text so re-encoded copies of a document match.
	job.ContentHash = ContentHashHex([]byte(doc.Text()))

	// Phase 1.5: Dedup check
	existing, err := w.store.FindByHash(ctx, job.ContentHash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if existing != "" {
		log.Info("duplicate document, skipping", "existing_quiz_id", existing)
		job.MarkDuplicate(existing)
		return
	}

	// Phase 2: Contexts
	job.SetStatus(StatusContexts, "contexts")
	ctxs, st, err := w.pipeline.Contexts(ctx, doc)
	job.SetContextStats(st)
	if err != nil {
		log.Error("context building failed", "error", err)
		job.Fail("contexts", err)
		return
	}

	// Phase 3: Questions
	job.SetStatus(StatusGenerating, "generating")
	items, err := w.pipeline.Questions(ctx, ctxs, job.Total)
	if err != nil {
		log.Error("question generation failed", "error", err)
		job.Fail("generating", err)
		return
	}
	job.SetQuestions(len(items))

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	q := &store.Quiz{
		ID:          job.QuizID,
		Title:       doc.Title,
		Filename:    job.Filename,
		ContentHash: job.ContentHash,
		Contexts:    ctxs,
		Items:       items,
	}
	if err := w.store.SaveQuiz(ctx, q); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("store cancelled", "error", err)
		} else {
			log.Error("store failed", "error", err)
		}
		job.Fail("storing", err)
		return
	}

	log.Info("quiz stored", "contexts", len(ctxs), "questions", len(items))
	job.SetStatus(StatusCompleted, "done")
}
