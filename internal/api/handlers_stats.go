package api

import "net/http"

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question_model":   s.cfg.QuestionModel,
		"distractor_model": s.cfg.DistractorModel,
		"stats":            s.stats.Snapshot(),
		"by_role":          s.stats.SnapshotByRole(),
	})
}
