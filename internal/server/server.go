package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/config"
	"github.com/jsantori/tickerlens/internal/database"
	"github.com/jsantori/tickerlens/internal/modules/analysis"
	"github.com/jsantori/tickerlens/internal/modules/marketdata"
	"github.com/jsantori/tickerlens/internal/modules/prediction"
	"github.com/jsantori/tickerlens/internal/modules/workflows"
)

// Deps bundles everything the HTTP layer serves.
type Deps struct {
	Config     *config.Config
	DB         *database.DB
	Log        zerolog.Logger
	Prediction *prediction.Handlers
	Analysis   *analysis.Handlers
	Workflows  *workflows.Handlers
	MarketData *marketdata.Handlers
}

// Server is the HTTP front of the prediction engine.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	deps   Deps
	start  time.Time
}

// New creates a new HTTP server
func New(deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    deps.Log.With().Str("component", "server").Logger(),
		deps:   deps,
		start:  time.Now().UTC(),
	}

	s.setupMiddleware(deps.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", deps.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/predictions", func(r chi.Router) {
			r.Get("/weights", s.deps.Prediction.HandleGetWeights)
			r.Post("/scan", s.deps.Prediction.HandleScan)
			r.Get("/{symbol}", s.deps.Prediction.HandleGetPrediction)
		})

		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", s.deps.Analysis.HandleCreate)
			r.Get("/", s.deps.Analysis.HandleList)
			r.Get("/{id}", s.deps.Analysis.HandleGet)
			r.Delete("/{id}", s.deps.Analysis.HandleDelete)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", s.deps.Workflows.HandleCreate)
			r.Get("/", s.deps.Workflows.HandleList)
			r.Get("/{id}", s.deps.Workflows.HandleGet)
			r.Put("/{id}", s.deps.Workflows.HandleUpdate)
			r.Delete("/{id}", s.deps.Workflows.HandleDelete)
			r.Post("/{id}/run", s.deps.Workflows.HandleRun)
		})

		r.Route("/symbols/{symbol}", func(r chi.Router) {
			r.Get("/history", s.deps.MarketData.HandleGetBars)
			r.Post("/history/import", s.deps.MarketData.HandleImportCSV)
			r.Put("/signals", s.deps.MarketData.HandleUpsertSignal)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.deps.Config.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
