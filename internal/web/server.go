package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// DefaultAllowedOrigins are the local front-end dev servers allowed to call the API.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// Options configures NewServer.
type Options struct {
	Version        string
	Host           string
	Port           int
	AllowedOrigins []string
}

// NewServer creates and configures the HTTP server for the prompteval API and report page.
func NewServer(db *sql.DB, cfg *config.Config, jobs *ops.JobRunner, opts Options) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           NewRouter(db, cfg, jobs, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the route tree. It is separate from NewServer so tests can
// drive it with httptest.
func NewRouter(db *sql.DB, cfg *config.Config, jobs *ops.JobRunner, opts Options) http.Handler {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create template sub-FS")
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create static sub-FS")
	}

	origins := opts.AllowedOrigins
	if origins == nil {
		origins = DefaultAllowedOrigins
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		jobs:     jobs,
		renderer: NewRenderer(templateSub, opts.Version),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(securityHeaders)
	r.Use(cors(origins))

	r.Get("/", h.HandleReport)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", h.HandleListPrompts)
			r.Post("/parse", h.HandleParseUpload)
			r.Post("/parse/text", h.HandleParseText)
			r.Post("/inline", h.HandleInline)
			r.Post("/export", h.HandleExport)
			r.Get("/{id}", h.HandleGetPrompt)
			r.Put("/{id}", h.HandleUpdatePrompt)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Post("/heuristics", h.HandleRunHeuristics)
			r.Get("/heuristics/{id}", h.HandleGetHeuristics)
			r.Post("/llm", h.HandleStartLLM)
			r.Get("/llm/{jobID}/status", h.HandleLLMStatus)
			r.Get("/llm/{promptID}/result", h.HandleLLMResult)
			r.Post("/suggestions", h.HandleSuggest)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			renderAPIError(w, notFoundRoute(r))
		})
	})

	return r
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// cors answers cross-origin requests from an allowlist of origins.
func cors(allowed []string) func(http.Handler) http.Handler {
	allow := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allow[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !(allow[origin] || allow["*"]) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
// Background LLM jobs are given the shutdown window to finish.
func Run(srv *http.Server, jobs *ops.JobRunner) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info().Msgf("prompteval running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn().Msg("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		waitJobs(ctx, jobs)
		return nil
	}
}

// waitJobs waits for running LLM jobs until ctx expires.
func waitJobs(ctx context.Context, jobs *ops.JobRunner) {
	if jobs == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("LLM jobs still running at shutdown")
	}
}
