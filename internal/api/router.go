// Package api exposes the intake flows and the run log over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/intake"
	"github.com/ampco/intake-cli/internal/model"
	"github.com/ampco/intake-cli/internal/store"
)

// Flows runs the intake pipelines.
type Flows interface {
	PurchaseOrder(ctx context.Context, filename string, pdf []byte, salesperson string) (*intake.Result, error)
	Photometric(ctx context.Context, filename string, pdf []byte) (*intake.Result, error)
	Weekly(ctx context.Context, text string) (*intake.Result, error)
}

// RunReader reads the run log.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Options configures the router.
type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
}

type handler struct {
	flows     Flows
	runs      RunReader
	maxUpload int64
}

// NewRouter builds the HTTP handler.
func NewRouter(flows Flows, runs RunReader, opts Options) http.Handler {
	h := &handler{flows: flows, runs: runs, maxUpload: opts.MaxUploadBytes}
	if h.maxUpload <= 0 {
		h.maxUpload = 32 << 20
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/po", h.purchaseOrder)
		r.Post("/photometric", h.photometric)
		r.Post("/weekly", h.weekly)
		r.Get("/runs", h.listRuns)
		r.Get("/runs/export", h.exportRuns)
		r.Get("/runs/{id}", h.getRun)
	})
	return r
}

// requestLogger logs each request with its status and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("api: request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}
