package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) repository.ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) (int64, error) {
	msg.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO contact_messages (name, email, subject, message, created_at)
VALUES (?, ?, ?, ?, ?)`,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
		msg.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert contact message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("contact message last insert id: %w", err)
	}
	msg.ID = id
	return id, nil
}

// List returns the newest messages first.
func (r *ContactRepository) List(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, subject, message, created_at
FROM contact_messages
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ContactMessage
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}
