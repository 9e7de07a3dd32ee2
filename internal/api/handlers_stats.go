package api

import (
	"net/http"
)

func (s *Server) handleValidationStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "validation stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.stats.Snapshot(),
	})
}
