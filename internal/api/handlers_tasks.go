package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/go-chi/chi/v5"
)

// handleTaskStatus returns the current snapshot of a task. Tasks evicted
// from the tracker are served from the result store when one is wired.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	res, err := s.proc.Tracker().Snapshot(taskID)
	if err != nil {
		if s.results == nil {
			jsonError(w, "task not found", http.StatusNotFound)
			return
		}
		res, err = s.results.GetResult(r.Context(), taskID)
		if err != nil {
			jsonError(w, "task not found", http.StatusNotFound)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// handleTaskCancel requests cancellation of an in-flight task. The task
// fails at its next checkpoint; cancelling a terminal task is a no-op.
func (s *Server) handleTaskCancel(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if err := s.proc.Tracker().Cancel(taskID); err != nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"task_id": taskID, "status": "cancelling"})
}

// handleTaskEvict removes a terminal task from the tracker and returns
// its final result. In-flight tasks cannot be evicted.
func (s *Server) handleTaskEvict(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	res, err := s.proc.Tracker().Evict(taskID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			jsonError(w, "task not found", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// handleStats reports queue depth, tracked task count and processing
// latency over the recent window.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth":   s.orch.QueueDepth(),
		"tracked_tasks": s.proc.Tracker().Len(),
		"processing":    s.orch.Stats(),
	})
}
