package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/catalog"
	"github.com/marmos91/hdrive/pkg/session"
)

// IngredientView is one ingredient line of a record.
type IngredientView struct {
	Name  string  `json:"name"`
	Nb    float64 `json:"nb"`
	Asset string  `json:"asset"`
}

// RecordView is one card of the batch.
type RecordView struct {
	Index   int              `json:"index"`
	Name    string           `json:"name"`
	Product string           `json:"product"`
	Asset   string           `json:"asset"`
	Input   []IngredientView `json:"input"`
	Rate    float64          `json:"rate"`
}

// BatchView is the GET /api/v1/batch payload. Asset fields hold the cache
// state of the key: "loaded" or "failed".
type BatchView struct {
	ID         string       `json:"id"`
	Generation uint64       `json:"generation"`
	Selected   *int         `json:"selected"`
	Prefetch   string       `json:"prefetch"`
	Records    []RecordView `json:"records"`
}

// PickView is one confirmed choice.
type PickView struct {
	Generation uint64    `json:"generation"`
	BatchID    string    `json:"batch_id"`
	Record     string    `json:"record"`
	Product    string    `json:"product"`
	At         time.Time `json:"at"`
}

// ConfirmView is the POST /api/v1/batch/confirm payload.
type ConfirmView struct {
	Pick  PickView  `json:"pick"`
	Batch BatchView `json:"batch"`
}

// SelectionRequest is the body of PUT /api/v1/batch/selection.
type SelectionRequest struct {
	Index *int `json:"index"`
}

// SessionHandler exposes the selection session over HTTP.
type SessionHandler struct {
	session *session.Session
	cache   *asset.Cache
}

// NewSessionHandler creates a handler for s, reading assets from cache.
func NewSessionHandler(s *session.Session, cache *asset.Cache) *SessionHandler {
	return &SessionHandler{session: s, cache: cache}
}

// Batch handles GET /api/v1/batch.
func (h *SessionHandler) Batch(w http.ResponseWriter, r *http.Request) {
	OK(w, h.batchView(h.session.View()))
}

// Select handles PUT /api/v1/batch/selection.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Index == nil {
		BadRequest(w, "index is required")
		return
	}

	if err := h.session.Select(*req.Index); err != nil {
		if errors.Is(err, session.ErrInvalidSelection) {
			BadRequest(w, err.Error())
			return
		}
		InternalServerError(w, "Failed to select record")
		return
	}
	OK(w, h.batchView(h.session.View()))
}

// ClearSelection handles DELETE /api/v1/batch/selection.
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.session.ClearSelection()
	OK(w, h.batchView(h.session.View()))
}

// Confirm handles POST /api/v1/batch/confirm. It may block until the next
// batch finishes loading.
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	pick, err := h.session.Confirm(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoSelection):
			Conflict(w, "No record selected")
		case r.Context().Err() != nil:
			ServiceUnavailable(w, "Request cancelled while waiting for next batch")
		default:
			logger.ErrorCtx(r.Context(), "Confirm failed", logger.Err(err))
			ServiceUnavailable(w, "Next batch unavailable")
		}
		return
	}

	OK(w, ConfirmView{
		Pick:  pickView(pick),
		Batch: h.batchView(h.session.View()),
	})
}

// Prefetch handles GET /api/v1/prefetch. It never blocks.
func (h *SessionHandler) Prefetch(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]any{
		"status":     h.session.Tick().String(),
		"generation": h.session.Generation() + 1,
	})
}

// Picks handles GET /api/v1/picks.
func (h *SessionHandler) Picks(w http.ResponseWriter, r *http.Request) {
	picks := h.session.Picks()
	out := make([]PickView, 0, len(picks))
	for _, p := range picks {
		out = append(out, pickView(p))
	}
	OK(w, out)
}

// Asset handles GET /api/v1/assets/{key}. Only already loaded assets are
// served; this endpoint never starts a load.
func (h *SessionHandler) Asset(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "key")
	key, err := url.PathUnescape(raw)
	if err != nil {
		key = raw
	}

	a, ok := h.cache.Get(asset.Key(key))
	if !ok {
		NotFound(w, "Asset not loaded")
		return
	}

	w.Header().Set("Content-Type", a.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

func (h *SessionHandler) batchView(v session.View) BatchView {
	out := BatchView{
		ID:         v.Batch.ID.String(),
		Generation: v.Generation,
		Prefetch:   v.Prefetch.String(),
		Records:    make([]RecordView, 0, v.Batch.Len()),
	}
	if v.Selected >= 0 {
		sel := v.Selected
		out.Selected = &sel
	}

	states := h.cache.States(v.Batch.Keys())
	for i, rec := range v.Batch.Records {
		out.Records = append(out.Records, recordView(i, rec, states))
	}
	return out
}

func recordView(i int, rec catalog.Record, states map[asset.Key]asset.State) RecordView {
	rv := RecordView{
		Index:   i,
		Name:    rec.Name,
		Product: string(rec.Product),
		Asset:   states[rec.Product].String(),
		Input:   make([]IngredientView, 0, len(rec.Input)),
		Rate:    rec.Rate,
	}
	for _, in := range rec.Input {
		rv.Input = append(rv.Input, IngredientView{
			Name:  string(in.Name),
			Nb:    in.Nb,
			Asset: states[in.Name].String(),
		})
	}
	return rv
}

func pickView(p session.Pick) PickView {
	return PickView{
		Generation: p.Generation,
		BatchID:    p.BatchID,
		Record:     p.Record.Name,
		Product:    string(p.Record.Product),
		At:         p.At,
	}
}
