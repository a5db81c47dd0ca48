package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/pkg/api/handlers"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/metrics"
	"github.com/marmos91/hdrive/pkg/session"
)

// Deps are the components the router serves.
type Deps struct {
	Session *session.Session
	Cache   *asset.Cache
	Source  asset.Source
}

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET    /health                   liveness
//   - GET    /health/ready             readiness
//   - GET    /api/v1/batch             current batch
//   - PUT    /api/v1/batch/selection   select a record
//   - DELETE /api/v1/batch/selection   clear the selection
//   - POST   /api/v1/batch/confirm     confirm and advance
//   - GET    /api/v1/prefetch          next batch status
//   - GET    /api/v1/assets/{key}      loaded asset bytes
//   - GET    /api/v1/picks             confirmed records
//   - GET    /metrics                  Prometheus, when enabled
func NewRouter(deps Deps, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	health := handlers.NewHealthHandler(deps.Session, deps.Source)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	if deps.Session != nil {
		sh := handlers.NewSessionHandler(deps.Session, deps.Cache)
		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/batch", func(r chi.Router) {
				r.Get("/", sh.Batch)
				r.Put("/selection", sh.Select)
				r.Delete("/selection", sh.ClearSelection)
				r.Post("/confirm", sh.Confirm)
			})
			r.Get("/prefetch", sh.Prefetch)
			r.Get("/assets/{key}", sh.Asset)
			r.Get("/picks", sh.Picks)
		})
	}

	r.Handle("/metrics", metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/batch", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger logs requests through the internal logger: start at DEBUG,
// completion at INFO (or DEBUG for health probes).
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		lc := logger.NewLogContext("api").WithRequestID(requestID)
		ctx := logger.WithContext(r.Context(), lc)
		r = r.WithContext(ctx)

		logger.DebugCtx(ctx, "API request started",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyAddress, r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log := logger.InfoCtx
		if r.URL.Path == "/health" || r.URL.Path == "/health/ready" || r.URL.Path == "/api/v1/prefetch" {
			log = logger.DebugCtx
		}
		log(ctx, "API request completed",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(start),
		)
	})
}
