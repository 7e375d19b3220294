package repository

import (
	"context"

	"mentor-connect/internal/domain"
)

// SessionRepository stores authenticated sessions. Get returns ErrNotFound
// for unknown or expired sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) (int64, error)
	List(ctx context.Context, limit int) ([]domain.ContactMessage, error)
}
