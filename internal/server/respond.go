package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/replica"
	"github.com/roach88/expertlog/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type writeResponse struct {
	Success    bool       `json:"success"`
	LogID      *record.ID `json:"logId,omitempty"`
	CampID     *record.ID `json:"campId,omitempty"`
	Replicated bool       `json:"replicated"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case record.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, replica.ErrNotFound):
		return http.StatusNotFound
	case store.IsUnique(err):
		return http.StatusConflict
	case store.IsForeignKey(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
