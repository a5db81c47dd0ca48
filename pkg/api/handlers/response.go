package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/marmos91/hdrive/internal/logger"
)

// Response is the envelope of every JSON response.
//
//   - Status is "healthy", "unhealthy", "ok" or "error"
//   - Data carries the payload
//   - Error carries a message when Status is "error" or "unhealthy"
type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; all we can do is log.
		logger.Warn("Failed to encode response", logger.Err(err))
	}
}

func healthyResponse(data any) Response {
	return Response{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthyResponse(msg string) Response {
	return Response{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: msg}
}

func okResponse(data any) Response {
	return Response{Status: "ok", Timestamp: time.Now().UTC(), Data: data}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Status: "error", Timestamp: time.Now().UTC(), Error: msg})
}

// OK writes a 200 response wrapping data.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, okResponse(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusConflict, msg)
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusServiceUnavailable, msg)
}

// InternalServerError writes a 500 error response.
func InternalServerError(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusInternalServerError, msg)
}

// decodeJSONBody decodes a JSON request body into v. On failure it writes a
// 400 and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}
