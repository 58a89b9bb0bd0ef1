// Package api serves the catalog over HTTP under /api/v1.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/library"
	"github.com/Nomadcxx/coverflow/internal/logging"
	"github.com/Nomadcxx/coverflow/internal/search"
)

// Library is what the API needs from the catalog owner.
type Library interface {
	Catalog() *catalog.Catalog
	Search(query string) search.View
	Lookup(key string) (*catalog.Entry, bool)
	Resolver() catalog.CoverResolver
	LastStats() (library.Stats, bool)
	Populate(ctx context.Context) (library.Stats, error)
}

// Options configures the server.
type Options struct {
	CORSOrigins []string
	Logger      *logging.Logger
	Version     string
}

// Server implements the API
type Server struct {
	lib       Library
	logger    *logging.Logger
	origins   []string
	version   string
	startTime time.Time
}

// NewServer creates a new API server
func NewServer(lib Library, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		lib:       lib,
		logger:    logger,
		origins:   opts.CORSOrigins,
		version:   opts.Version,
		startTime: time.Now(),
	}
}

// Handler returns the router with middleware and the API mounted at /api/v1
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logSink{logger: s.logger},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Mount("/api/v1", s.apiRouter())
	return r
}

func (s *Server) apiRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/rescan", s.handleRescan)
	r.Get("/jump", s.handleJump)

	r.Route("/titles", func(r chi.Router) {
		r.Get("/", s.handleListTitles)
		r.Get("/{key}", s.handleGetTitle)
		r.Get("/{key}/cover", s.handleGetCover)
	})

	return r
}

// logSink adapts the shared logger to chi's request logger.
type logSink struct {
	logger *logging.Logger
}

func (l logSink) Print(v ...any) {
	l.logger.Debug("api", strings.TrimSpace(fmt.Sprint(v...)))
}

// HTTPServer wraps the handler in an http.Server with the usual timeouts
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
