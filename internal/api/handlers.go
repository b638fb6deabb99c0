package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/history"
)

// HealthData is the payload of the health endpoint.
type HealthData struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Triggers int    `json:"triggers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), HealthData{
		Status:   "healthy",
		Uptime:   time.Since(s.startTime).Truncate(time.Second).String(),
		Triggers: len(s.triggers.Statuses()),
	})
}

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), s.triggers.Statuses())
}

func (s *Server) handleGetTrigger(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	status, err := s.triggers.Status(id)
	if err != nil {
		s.respondLookupError(w, reqID, err)
		return
	}
	respondOK(w, reqID, status)
}

func (s *Server) handleDisableTrigger(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.triggers.Disable(id); err != nil {
		s.respondLookupError(w, reqID, err)
		return
	}
	s.logger.Info("trigger disabled via api", "trigger_id", id, "request_id", reqID)

	status, err := s.triggers.Status(id)
	if err != nil {
		s.respondLookupError(w, reqID, err)
		return
	}
	respondOK(w, reqID, status)
}

// handleSetActive pauses or resumes a trigger's coordinator. A coordinator
// that cannot be paused is a 400.
func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestIDFromContext(r.Context())
		id := chi.URLParam(r, "id")

		if err := s.triggers.SetActive(id, active); err != nil {
			var verr *errors.ValidationError
			if errors.As(err, &verr) {
				respondError(w, reqID, http.StatusBadRequest, CodeValidation, err.Error())
				return
			}
			s.respondLookupError(w, reqID, err)
			return
		}
		s.logger.Info("trigger activity changed via api", "trigger_id", id, "active", active, "request_id", reqID)

		status, err := s.triggers.Status(id)
		if err != nil {
			s.respondLookupError(w, reqID, err)
			return
		}
		respondOK(w, reqID, status)
	}
}

func (s *Server) handleListAdaptations(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, reqID, http.StatusBadRequest, CodeValidation, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if s.history == nil {
		respondOK(w, reqID, []history.Record{})
		return
	}
	records, err := s.history.List(limit)
	if err != nil {
		s.logger.Error("list adaptations failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError, CodeInternal, "failed to list adaptations")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	respondOK(w, reqID, records)
}

func (s *Server) respondLookupError(w http.ResponseWriter, reqID string, err error) {
	if errors.IsNotFound(err) {
		respondError(w, reqID, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	s.logger.Error("trigger lookup failed", "error", err, "request_id", reqID)
	respondError(w, reqID, http.StatusInternalServerError, CodeInternal, err.Error())
}
