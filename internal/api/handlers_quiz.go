package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docquiz/internal/parser"
	"github.com/dgallion1/docquiz/internal/pipeline"
	"github.com/dgallion1/docquiz/internal/store"
	"github.com/go-chi/chi/v5"
)

// maxQuestions bounds total_questions per request.
const maxQuestions = 500

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	total, err := s.totalQuestions(r.FormValue("total_questions"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	s.submit(w, pipeline.NewJob(filename, strings.TrimSpace(r.FormValue("title")), data, total))
}

type textRequest struct {
	Title          string `json:"title"`
	Text           string `json:"text"`
	TotalQuestions int    `json:"total_questions"`
}

func (s *Server) handleCreateQuizText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+64*1024)

	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	total := req.TotalQuestions
	if total == 0 {
		total = s.cfg.TotalQuestions
	}
	if total < 1 || total > maxQuestions {
		jsonError(w, fmt.Sprintf("total_questions must be between 1 and %d", maxQuestions), http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	filename := "text.txt"
	if title != "" {
		filename = sanitizeFilename(title) + ".txt"
	}
	s.submit(w, pipeline.NewJob(filename, title, []byte(req.Text), total))
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"quiz_id":  snap.QuizID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/quiz/%s/status", snap.ID),
	})
}

func (s *Server) totalQuestions(v string) (int, error) {
	if v == "" {
		return s.cfg.TotalQuestions, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxQuestions {
		return 0, fmt.Errorf("total_questions must be between 1 and %d", maxQuestions)
	}
	return n, nil
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":   snap.ID,
		"quiz_id":  snap.QuizID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	}
	switch snap.Status {
	case pipeline.StatusCompleted:
		resp["quiz_url"] = "/api/quizzes/" + snap.QuizID
	case pipeline.StatusDupSkipped:
		resp["existing_quiz_id"] = snap.ExistingID
		resp["quiz_url"] = "/api/quizzes/" + snap.ExistingID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit < 0 || offset < 0 {
		jsonError(w, "limit and offset must not be negative", http.StatusBadRequest)
		return
	}
	quizzes, err := s.store.ListQuizzes(r.Context(), min(limit, 200), offset)
	if err != nil {
		s.log.Error("list quizzes failed", "error", err)
		jsonError(w, "failed to list quizzes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "quiz not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get quiz failed", "error", err)
		jsonError(w, "failed to load quiz", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quizID")
	err := s.store.DeleteQuiz(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "quiz not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete quiz failed", "quiz_id", id, "error", err)
		jsonError(w, "failed to delete quiz", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz_id": id, "deleted": true})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
