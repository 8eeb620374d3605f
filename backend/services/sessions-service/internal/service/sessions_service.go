package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chargestats/backend/services/sessions-service/internal/models"
	"chargestats/backend/services/sessions-service/internal/repository"
	"chargestats/backend/services/sessions-service/internal/stats"
)

var (
	// ErrSessionNotFound means there is no in-progress session with the given id.
	ErrSessionNotFound = repository.ErrSessionNotFound
	// ErrInvalidStationID is returned for a blank station id.
	ErrInvalidStationID = errors.New("stationId must not be blank")
	// ErrInvalidSessionID is returned when the session id is not a UUID.
	ErrInvalidSessionID = errors.New("session id must be a UUID")
)

// ActiveCache mirrors in-progress sessions outside the repository.
type ActiveCache interface {
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// EventCounter receives lifecycle events for the rolling summary.
type EventCounter interface {
	RecordStarted(t time.Time)
	RecordStopped(t time.Time)
	Summary() stats.Summary
}

// Recorder is notified after a lifecycle event is persisted.
type Recorder interface {
	SessionStarted()
	SessionStopped()
}

// SessionsService ties the repository, the active cache and the event counter.
type SessionsService struct {
	repo     repository.SessionRepository
	cache    ActiveCache
	counter  EventCounter
	recorder Recorder
	now      func() time.Time
	logger   *zap.Logger
}

// Option customises a SessionsService.
type Option func(*SessionsService)

// WithActiveCache enables the active-session cache.
func WithActiveCache(cache ActiveCache) Option {
	return func(s *SessionsService) { s.cache = cache }
}

// WithRecorder attaches a lifecycle recorder such as metrics.
func WithRecorder(r Recorder) Option {
	return func(s *SessionsService) { s.recorder = r }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *SessionsService) { s.now = now }
}

// NewSessionsService builds service.
func NewSessionsService(repo repository.SessionRepository, counter EventCounter, logger *zap.Logger, opts ...Option) *SessionsService {
	s := &SessionsService{
		repo:    repo,
		counter: counter,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates an in-progress session for stationID.
func (s *SessionsService) Start(ctx context.Context, stationID string) (*models.Session, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, ErrInvalidStationID
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.New(),
		StationID: stationID,
		StartedAt: now,
		UpdatedAt: now,
		Status:    models.StatusInProgress,
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.counter.RecordStarted(now)
	if s.recorder != nil {
		s.recorder.SessionStarted()
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, session); err != nil {
			s.logger.Warn("failed to cache active session", zap.String("session_id", session.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("charging session started",
		zap.String("session_id", session.ID.String()),
		zap.String("station_id", stationID),
	)
	return session, nil
}

// Stop finishes the in-progress session with id.
func (s *SessionsService) Stop(ctx context.Context, id string) (*models.Session, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrInvalidSessionID
	}

	now := s.now().UTC()
	session, err := s.repo.Finish(ctx, sessionID, now)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("no active session found with id %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("stop session: %w", err)
	}

	s.counter.RecordStopped(now)
	if s.recorder != nil {
		s.recorder.SessionStopped()
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, sessionID.String()); err != nil {
			s.logger.Warn("failed to delete active session cache", zap.String("session_id", sessionID.String()), zap.Error(err))
		}
	}

	s.logger.Info("charging session stopped",
		zap.String("session_id", sessionID.String()),
		zap.String("station_id", session.StationID),
	)
	return session, nil
}

// List returns every known session.
func (s *SessionsService) List(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Summary returns the rolling one-minute counts.
func (s *SessionsService) Summary() stats.Summary {
	return s.counter.Summary()
}
