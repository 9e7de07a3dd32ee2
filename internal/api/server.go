package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xylographe/SE-WordListValidator/internal/config"
	"github.com/xylographe/SE-WordListValidator/internal/pipeline"
	"github.com/xylographe/SE-WordListValidator/internal/stats"
)

// Server is the HTTP API for validating dictionary files.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *stats.Window
	log          *slog.Logger
	cfg          config.Config

	// validateSem bounds synchronous validations.
	validateSem chan struct{}
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        orch.Stats(),
		log:          log,
		cfg:          cfg,
		validateSem:  make(chan struct{}, max(cfg.MaxConcurrentValidate, 1)),
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/validate", s.handleValidate)
		r.Post("/api/validate/batch", s.handleBatchValidate)

		r.Route("/api/jobs/{jobID}", func(r chi.Router) {
			r.Get("/status", s.handleJobStatus)
			r.Get("/output", s.handleJobOutput)
			r.Get("/report", s.handleJobReport)
		})

		r.Get("/api/stats/validation", s.handleValidationStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
