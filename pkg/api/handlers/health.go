package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/session"
)

// HealthHandler handles health check endpoints.
//
//   - Liveness: is the process serving HTTP?
//   - Readiness: is a batch on screen and is the asset source reachable?
type HealthHandler struct {
	session *session.Session
	source  asset.Source
}

// NewHealthHandler creates a new health handler. Either argument may be nil,
// in which case readiness reports unhealthy.
func NewHealthHandler(s *session.Session, source asset.Source) *HealthHandler {
	return &HealthHandler{session: s, source: source}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "hdrive",
	}))
}

// Readiness handles GET /health/ready. It returns 503 until the first batch
// has loaded or while the asset source fails its health check.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.session == nil || h.session.Current() == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("no batch loaded"))
		return
	}
	if h.source == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("asset source not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.source.HealthCheck(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("asset source: "+err.Error()))
		return
	}

	view := h.session.View()
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"generation":     view.Generation,
		"prefetch":       view.Prefetch.String(),
		"source_latency": time.Since(start).String(),
	}))
}
