package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docquiz/internal/quiz"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuiz(id, hash string, created time.Time) *Quiz {
	return &Quiz{
		ID:          id,
		Title:       "Biology",
		Filename:    "bio.pdf",
		ContentHash: hash,
		CreatedAt:   created,
		Contexts:    []string{"Cells\nCells divide by mitosis.", "Genes\nDarwin studied finches."},
		Items: []quiz.Item{
			{Context: "Cells\nCells divide by mitosis.", Type: quiz.Short, Question: "How do cells divide?", Answer: "mitosis"},
			{Context: "Genes\nDarwin studied finches.", Type: quiz.Cloze, Question: "____ studied finches.", Answer: "Darwin"},
			{
				Context: "Genes\nDarwin studied finches.", Type: quiz.MCQ, Question: "Who studied finches?", Answer: "Darwin",
				Choices: &quiz.Choices{Options: []string{"Mendel", "Darwin", "Watson"}, AnswerIndex: 1, Distractors: []string{"Mendel", "Watson"}},
			},
			{Context: "Cells\nCells divide by mitosis.", Type: quiz.Short, Question: "What is Cells?", Answer: "Cells", Placeholder: true},
		},
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.SaveQuiz(ctx, sampleQuiz("q1", "abc", created)); err != nil {
		t.Fatalf("SaveQuiz: %v", err)
	}

	got, err := s.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != "Biology" || got.Filename != "bio.pdf" || got.ContentHash != "abc" {
		t.Errorf("unexpected header: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created %v, got %v", created, got.CreatedAt)
	}
	if len(got.Contexts) != 2 || got.Contexts[1] != "Genes\nDarwin studied finches." {
		t.Errorf("unexpected contexts: %q", got.Contexts)
	}
	if len(got.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got.Items))
	}
	mcq := got.Items[2]
	if mcq.Type != quiz.MCQ || mcq.Choices == nil {
		t.Fatalf("expected mcq with choices, got %+v", mcq)
	}
	if mcq.AnswerIndex != 1 || mcq.Options[1] != "Darwin" || len(mcq.Distractors) != 2 {
		t.Errorf("unexpected choices: %+v", mcq.Choices)
	}
	if got.Items[0].Choices != nil {
		t.Error("expected no choices on short item")
	}
	if !got.Items[3].Placeholder {
		t.Error("expected placeholder flag to survive")
	}
}

func TestGetMissing(t *testing.T) {
	s := openMemory(t)
	if _, err := s.GetQuiz(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateID(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	if err := s.SaveQuiz(ctx, sampleQuiz("q1", "a", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveQuiz(ctx, sampleQuiz("q1", "b", time.Now())); err == nil {
		t.Error("expected error for duplicate quiz ID")
	}
	// The failed transaction must not leave partial rows behind.
	got, err := s.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ContentHash != "a" || len(got.Items) != 4 {
		t.Errorf("expected original quiz intact, got hash %q with %d items", got.ContentHash, len(got.Items))
	}
}

func TestListQuizzes(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.SaveQuiz(ctx, sampleQuiz(id, id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListQuizzes(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "mid" {
		t.Fatalf("expected [new mid], got %+v", list)
	}
	if list[0].Questions != 4 {
		t.Errorf("expected 4 questions, got %d", list[0].Questions)
	}

	rest, err := s.ListQuizzes(ctx, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].ID != "old" {
		t.Errorf("expected [old], got %+v", rest)
	}
}

func TestListEmpty(t *testing.T) {
	s := openMemory(t)
	list, err := s.ListQuizzes(context.Background(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
}

func TestDeleteCascades(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	if err := s.SaveQuiz(ctx, sampleQuiz("q1", "h", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteQuiz(ctx, "q1"); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	if err := s.DeleteQuiz(ctx, "q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected questions removed with quiz, got %d", n)
	}
}

func TestFindByHash(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	id, err := s.FindByHash(ctx, "h1")
	if err != nil || id != "" {
		t.Fatalf("expected no match, got %q, %v", id, err)
	}
	if err := s.SaveQuiz(ctx, sampleQuiz("q1", "h1", time.Now())); err != nil {
		t.Fatal(err)
	}
	id, err = s.FindByHash(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if id != "q1" {
		t.Errorf("expected q1, got %q", id)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quiz.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
