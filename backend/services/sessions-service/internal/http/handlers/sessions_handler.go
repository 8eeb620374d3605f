package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"chargestats/backend/services/sessions-service/internal/models"
	"chargestats/backend/services/sessions-service/internal/service"
	"chargestats/backend/services/sessions-service/internal/stats"
)

const maxBodyBytes = 1 << 20

// SessionsService is the subset of the session service used by the HTTP layer.
type SessionsService interface {
	Start(ctx context.Context, stationID string) (*models.Session, error)
	Stop(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context) ([]models.Session, error)
	Summary() stats.Summary
}

// SessionsHandlers serves the /chargingSessions resource.
type SessionsHandlers struct {
	svc    SessionsService
	logger *zap.Logger
}

// NewSessionsHandlers builds handler set.
func NewSessionsHandlers(svc SessionsService, logger *zap.Logger) *SessionsHandlers {
	return &SessionsHandlers{svc: svc, logger: logger}
}

type startRequest struct {
	StationID *string `json:"stationId"`
}

type sessionResponse struct {
	ID        uuid.UUID     `json:"id"`
	StationID string        `json:"stationId"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Status    models.Status `json:"status"`
}

func toResponse(s *models.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		StationID: s.StationID,
		UpdatedAt: s.UpdatedAt,
		Status:    s.Status,
	}
}

// Start handles POST /chargingSessions.
func (h *SessionsHandlers) Start(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err != nil || mediaType != "application/json" {
			WriteError(w, http.StatusUnsupportedMediaType, "Unsupported content type: "+ct+". Supported content types: application/json")
			return
		}
	}

	var req startRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.StationID == nil {
		WriteError(w, http.StatusBadRequest, "stationId, must not be null")
		return
	}

	session, err := h.svc.Start(r.Context(), *req.StationID)
	if err != nil {
		h.writeServiceError(w, "start session failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(session))
}

// Stop handles PUT /chargingSessions/{id}.
func (h *SessionsHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Stop(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, "stop session failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(session))
}

// List handles GET /chargingSessions.
func (h *SessionsHandlers) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "list sessions failed", err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toResponse(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Summary handles GET /chargingSessions/summary.
func (h *SessionsHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Summary())
}

func (h *SessionsHandlers) writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStationID), errors.Is(err, service.ErrInvalidSessionID):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(msg, zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
