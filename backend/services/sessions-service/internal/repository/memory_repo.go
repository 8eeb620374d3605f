package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chargestats/backend/services/sessions-service/internal/models"
)

// MemorySessionRepository keeps sessions in a process-local map.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

// NewMemorySessionRepository returns an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]*models.Session)}
}

// Save stores a copy of session.
func (r *MemorySessionRepository) Save(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

// Finish completes an in-progress session.
func (r *MemorySessionRepository) Finish(_ context.Context, id uuid.UUID, at time.Time) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.Status != models.StatusInProgress {
		return nil, ErrSessionNotFound
	}
	session.Finish(at)
	return session.Clone(), nil
}

// FindByID returns a copy of the session with id.
func (r *MemorySessionRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// FindAll returns every session ordered by start time.
func (r *MemorySessionRepository) FindAll(_ context.Context) ([]models.Session, error) {
	r.mu.RLock()
	sessions := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, *s.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions, nil
}
