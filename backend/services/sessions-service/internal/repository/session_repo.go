package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chargestats/backend/services/sessions-service/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS charging_sessions (
	id          UUID PRIMARY KEY,
	station_id  TEXT        NOT NULL,
	status      TEXT        NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	stopped_at  TIMESTAMPTZ,
	updated_at  TIMESTAMPTZ NOT NULL
)`

const selectColumns = `id, station_id, status, started_at, stopped_at, updated_at`

// PostgresSessionRepository stores charging sessions in Postgres.
type PostgresSessionRepository struct {
	db *sql.DB
}

// NewPostgresSessionRepository returns repository.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// EnsureSchema creates the sessions table when missing.
func (r *PostgresSessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save upserts session by id.
func (r *PostgresSessionRepository) Save(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO charging_sessions (id, station_id, status, started_at, stopped_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			station_id = EXCLUDED.station_id,
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			stopped_at = EXCLUDED.stopped_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.StationID,
		string(session.Status),
		session.StartedAt,
		session.StoppedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Finish completes an in-progress session in a single conditional update.
func (r *PostgresSessionRepository) Finish(ctx context.Context, id uuid.UUID, at time.Time) (*models.Session, error) {
	const query = `
		UPDATE charging_sessions
		SET status = $2,
		    stopped_at = $3,
		    updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + selectColumns
	row := r.db.QueryRowContext(ctx, query, id, string(models.StatusFinished), at, string(models.StatusInProgress))
	return scanSession(row)
}

// FindByID returns the session with id.
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + selectColumns + ` FROM charging_sessions WHERE id = $1`
	return scanSession(r.db.QueryRowContext(ctx, query, id))
}

// FindAll returns every session ordered by start time.
func (r *PostgresSessionRepository) FindAll(ctx context.Context) ([]models.Session, error) {
	query := `SELECT ` + selectColumns + ` FROM charging_sessions ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		s         models.Session
		status    string
		stoppedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.StationID, &status, &s.StartedAt, &stoppedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Status = models.Status(status)
	if stoppedAt.Valid {
		t := stoppedAt.Time.UTC()
		s.StoppedAt = &t
	}
	s.StartedAt = s.StartedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
