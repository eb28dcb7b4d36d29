package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jpfielding/dicometa/internal/config"
	"github.com/jpfielding/dicometa/internal/service"
	"github.com/jpfielding/dicometa/pkg/dicom"
)

// Extractor is the service surface the handlers need
type Extractor interface {
	ExtractFile(ctx context.Context, name string, data []byte) (*service.FileResult, error)
	ExtractPackage(ctx context.Context, files []dicom.File) (*service.PackageResult, error)
	GetPackage(ctx context.Context, id string) (*service.PackageResult, error)
	ListPackages(ctx context.Context, limit, offset int) ([]service.PackageResult, error)
}

// Check reports whether a dependency is usable
type Check func(ctx context.Context) error

// Options configures the router
type Options struct {
	Server config.ServerConfig
	CORS   config.CORSConfig
	// Metrics is mounted at /metrics when set
	Metrics http.Handler
	// Checks are run by /health and /ready, keyed by service name
	Checks map[string]Check
}

// New builds the HTTP API
func New(x Extractor, opts Options) http.Handler {
	h := &handler{
		x:         x,
		maxUpload: opts.Server.MaxUploadMB << 20,
	}
	health := &healthHandler{checks: opts.Checks, now: time.Now}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logging)
	r.Use(Recovery)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORS.AllowedOrigins,
		AllowedMethods:   opts.CORS.AllowedMethods,
		AllowedHeaders:   opts.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if opts.Server.RequestsPerSecond > 0 {
			r.Use(httprate.LimitByIP(opts.Server.RequestsPerSecond, time.Second))
		}

		r.Post("/files", h.ExtractFile)
		r.Post("/packages", h.ExtractPackage)
		r.Get("/packages", h.ListPackages)
		r.Get("/packages/{id}", h.GetPackage)
	})

	return r
}
