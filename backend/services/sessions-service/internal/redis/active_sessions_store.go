package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chargestats/backend/services/sessions-service/internal/models"
)

// ActiveSession is the cached view of an in-progress session.
type ActiveSession struct {
	SessionID string    `json:"session_id"`
	StationID string    `json:"station_id"`
	StartedAt time.Time `json:"started_at"`
}

// Store caches in-progress sessions with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(sessionID string) string {
	return fmt.Sprintf("sessions:active:%s", sessionID)
}

// Save caches an in-progress session.
func (s *Store) Save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(ActiveSession{
		SessionID: session.ID.String(),
		StationID: session.StationID,
		StartedAt: session.StartedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.ID.String()), data, s.ttl).Err()
}

// Get returns a cached session. A miss yields redis.Nil.
func (s *Store) Get(ctx context.Context, sessionID string) (*ActiveSession, error) {
	result, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	var session ActiveSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a cached session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
