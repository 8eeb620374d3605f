package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a charging session.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
)

// Session represents a charging session at a station.
type Session struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	StationID string     `db:"station_id" json:"stationId"`
	StartedAt time.Time  `db:"started_at" json:"startedAt"`
	StoppedAt *time.Time `db:"stopped_at" json:"stoppedAt,omitempty"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
	Status    Status     `db:"status" json:"status"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	if s.StoppedAt != nil {
		stopped := *s.StoppedAt
		c.StoppedAt = &stopped
	}
	return &c
}

// Finish moves an in-progress session to FINISHED at the given time.
func (s *Session) Finish(at time.Time) {
	s.Status = StatusFinished
	s.StoppedAt = &at
	s.UpdatedAt = at
}
