package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, role, created_at, expires_at)
VALUES (?, ?, ?, ?, ?)`,
		s.ID,
		s.UserID,
		string(s.Role),
		s.CreatedAt.UTC(),
		s.ExpiresAt.UTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session %s", repository.ErrAlreadyExists, s.ID)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s    domain.Session
		role string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, role, created_at, expires_at
FROM sessions
WHERE id = ?`, id).Scan(&s.ID, &s.UserID, &role, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Role = domain.Role(role)

	if s.Expired(time.Now()) {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, fmt.Errorf("session expired: %w", repository.ErrNotFound)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every session past its expiry and reports how many were removed.
func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
