// Package server exposes the geometry codec, the tool catalog and the
// feature store over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/featurestore"
	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/parsecache"
	"github.com/linnea-strand/wkt-spatial-tools/internal/health"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hitevents"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hotness"
	"github.com/linnea-strand/wkt-spatial-tools/internal/index"
	"github.com/linnea-strand/wkt-spatial-tools/internal/middleware"
	"github.com/linnea-strand/wkt-spatial-tools/pkg/adaptive"
)

type Server struct {
	log        *slog.Logger
	store      featurestore.Store
	parsed     *parsecache.Cache
	idx        *index.Index
	hot        hotness.Interface
	ttl        *adaptive.TTLDecider
	ttlOvr     map[string]time.Duration
	nearRings  int
	readiness  map[string]health.Check
	publishHit func(hitevents.Event)
}

type Options struct {
	Store      featurestore.Store
	ParseCache *parsecache.Cache
	Index      *index.Index
	Hotness    hotness.Interface
	TTL        *adaptive.TTLDecider
	// TTLOverrides pins per-table store TTLs, bypassing the adaptive decider.
	TTLOverrides map[string]time.Duration
	NearRings    int
	Readiness    map[string]health.Check
	PublishHit   func(hitevents.Event)
}

func New(logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NearRings <= 0 {
		opts.NearRings = 1
	}
	return &Server{
		log:        logger,
		store:      opts.Store,
		parsed:     opts.ParseCache,
		idx:        opts.Index,
		hot:        opts.Hotness,
		ttl:        opts.TTL,
		ttlOvr:     opts.TTLOverrides,
		nearRings:  opts.NearRings,
		readiness:  opts.Readiness,
		publishHit: opts.PublishHit,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(s.log))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(s.readiness))

	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.Metrics("/v1/geometry/parse")).
			Post("/geometry/parse", s.handleParse)
		r.With(middleware.Metrics("/v1/geometry/wkt")).
			Post("/geometry/wkt", s.handleToWKT)

		r.With(middleware.Metrics("/v1/tools")).
			Get("/tools", s.handleListTools)
		r.With(middleware.Metrics("/v1/tools/available")).
			Post("/tools/available", s.handleAvailable)
		r.With(middleware.Metrics("/v1/tools/{id}/formula")).
			Post("/tools/{id}/formula", s.handleFormula)

		r.With(middleware.Metrics("/v1/features")).
			Put("/features/{table}/{id}", s.handlePutFeature)
		r.With(middleware.Metrics("/v1/features")).
			Get("/features/{table}/{id}", s.handleGetFeature)
		r.With(middleware.Metrics("/v1/features/near")).
			Get("/features/near", s.handleNear)
	})

	return r
}

// Run serves the router until ctx is cancelled.
func Run(ctx context.Context, addr string, logger *slog.Logger, s *Server) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
