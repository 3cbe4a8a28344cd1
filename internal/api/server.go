package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/dgallion1/docchunk/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docchunk.
type Server struct {
	router  chi.Router
	orch    *processor.Orchestrator
	proc    *processor.Processor
	results *store.ResultStore
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. results may be nil
// when persistence is disabled.
func NewServer(orch *processor.Orchestrator, proc *processor.Processor, results *store.ResultStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orch:    orch,
		proc:    proc,
		results: results,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleSubmit)
		r.Post("/api/documents/validate", s.handleValidate)
		r.Get("/api/documents", s.handleListResults)

		r.Get("/api/tasks/{taskID}", s.handleTaskStatus)
		r.Post("/api/tasks/{taskID}/cancel", s.handleTaskCancel)
		r.Delete("/api/tasks/{taskID}", s.handleTaskEvict)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
