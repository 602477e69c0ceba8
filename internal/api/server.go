package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"schemalens/app"
	"schemalens/internal"
	"schemalens/internal/config"
)

// Server exposes the analyzer over HTTP. The core stays pure; this layer
// only decodes requests and renders results.
type Server struct {
	router   *chi.Mux
	analyzer *app.Analyzer
	defaults config.AnalysisConfig
	log      *internal.Logger
}

// NewServer creates the API server
func NewServer(analyzer *app.Analyzer, defaults config.AnalysisConfig, log *internal.Logger) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		analyzer: analyzer,
		defaults: defaults,
		log:      log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/schema/infer", s.handleInferSchema)
		r.Post("/schema/export", s.handleExportSchema)
		r.Post("/schema/describe", s.handleDescribeSchema)
		r.Post("/quality/analyze", s.handleAnalyzeQuality)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server on the given port
func (s *Server) ListenAndServe(port string) error {
	s.log.Info("API server listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
