package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/google/uuid"
)

// handleSubmit accepts a document upload and queues it for chunking.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	doc, task, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	taskID, err := s.orch.Submit(processor.Task{
		Document: doc,
		Strategy: task.Strategy,
		Config:   task.Config,
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"task_id":     taskID,
		"document_id": doc.ID,
		"status":      document.StatusPending,
		"poll_url":    fmt.Sprintf("/api/tasks/%s", taskID),
	})
}

// handleValidate runs the pre-flight document check without chunking.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	if err := s.proc.Validate(doc); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"valid":  false,
			"reason": document.ReasonFor(err),
			"error":  err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"valid":       true,
		"document_id": doc.ID,
		"format":      doc.Format,
	})
}

// handleListResults lists persisted results for a document, newest first.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		jsonError(w, "result store is disabled", http.StatusServiceUnavailable)
		return
	}
	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		jsonError(w, "document_id query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := s.results.ListResults(r.Context(), docID, limit)
	if err != nil {
		jsonError(w, "failed to list results: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}

// uploadTask carries the per-request chunking parameters.
type uploadTask struct {
	Strategy string
	Config   chunker.Config
}

// readUpload parses a multipart document upload into a raw document plus
// chunking parameters. On failure it writes the error response and
// returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (document.Document, uploadTask, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return document.Document{}, uploadTask{}, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return document.Document{}, uploadTask{}, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	format, err := document.FormatForFilename(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return document.Document{}, uploadTask{}, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return document.Document{}, uploadTask{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return document.Document{}, uploadTask{}, false
	}

	docID := r.FormValue("document_id")
	if docID == "" {
		docID = uuid.NewString()
	}

	task := uploadTask{
		Strategy: s.cfg.DefaultStrategy,
		Config: chunker.Config{
			MaxChunkTokens:    s.cfg.DefaultMaxTokens,
			OverlapTokens:     s.cfg.DefaultOverlap,
			MinChunkTokens:    s.cfg.DefaultMinTokens,
			CohesionThreshold: s.cfg.CohesionThreshold,
		},
	}
	if v := r.FormValue("strategy"); v != "" {
		task.Strategy = v
	}
	if v := r.FormValue("max_tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			task.Config.MaxChunkTokens = n
		}
	}
	if v := r.FormValue("overlap"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			task.Config.OverlapTokens = n
		}
	}
	if v := r.FormValue("min_tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			task.Config.MinChunkTokens = n
		}
	}

	return document.NewRaw(docID, filename, format, data), task, true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
