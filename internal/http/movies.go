package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/movies-service/internal/upstream"
)

// statusClientClosedRequest is recorded when the caller disconnects before
// the aggregation finishes. No body is written.
const statusClientClosedRequest = 499

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movieID := strings.TrimSpace(chi.URLParam(r, "id"))
	if movieID == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing movie id")
		return
	}

	movie, err := s.movies.GetMovieByID(r.Context(), movieID)
	if err != nil {
		s.respondAggregationError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

// respondAggregationError maps the upstream error taxonomy onto HTTP statuses.
// The upstream message is passed through verbatim.
func (s *Server) respondAggregationError(w http.ResponseWriter, r *http.Request, err error) {
	var upErr *upstream.Error
	var decodeErr *upstream.DecodeError
	switch {
	case errors.As(err, &upErr):
		switch upErr.Kind {
		case upstream.KindNotFound:
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", upErr.Message)
		case upstream.KindClientError:
			s.respondError(w, statusInRange(upErr.StatusCode, 400, http.StatusBadRequest), "CLIENT_ERROR", upErr.Message)
		default:
			s.respondError(w, statusInRange(upErr.StatusCode, 500, http.StatusInternalServerError), "UPSTREAM_ERROR", upErr.Message)
		}
	case errors.As(err, &decodeErr):
		s.logger.Error("upstream contract mismatch", "error", err)
		s.respondError(w, http.StatusBadGateway, "BAD_GATEWAY", "Upstream returned an unexpected payload")
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		s.logger.Info("client went away before aggregation completed", "path", r.URL.Path)
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "TIMEOUT", "Timed out waiting for upstream services")
	default:
		s.logger.Error("get movie failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve movie")
	}
}

// statusInRange returns status when it belongs to the hundred-block starting at
// base, otherwise fallback.
func statusInRange(status, base, fallback int) int {
	if status >= base && status < base+100 {
		return status
	}
	return fallback
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
