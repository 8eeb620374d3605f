package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"chargestats/backend/services/sessions-service/internal/models"
)

// ErrSessionNotFound indicates a missing session, or one that is not in progress when finishing.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists charging sessions.
type SessionRepository interface {
	// Save inserts or replaces a session.
	Save(ctx context.Context, session *models.Session) error
	// Finish atomically moves an IN_PROGRESS session to FINISHED and returns the updated copy.
	Finish(ctx context.Context, id uuid.UUID, at time.Time) (*models.Session, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	FindAll(ctx context.Context) ([]models.Session, error)
}
