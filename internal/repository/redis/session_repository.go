// Package redis stores sessions in Redis so several server processes can share them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

const keyPrefix = "session:"

type SessionRepository struct {
	client *goredis.Client
}

func NewSessionRepository(client *goredis.Client) repository.SessionRepository {
	return &SessionRepository{client: client}
}

// NewClient builds a client and verifies the server is reachable.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

type sessionRecord struct {
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func encodeSession(s *domain.Session) ([]byte, error) {
	return json.Marshal(sessionRecord{
		UserID:    s.UserID,
		Role:      string(s.Role),
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	})
}

func decodeSession(id string, data []byte) (*domain.Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		ID:        id,
		UserID:    rec.UserID,
		Role:      domain.Role(rec.Role),
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, sessionKey(s.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: session %s", repository.ErrAlreadyExists, s.ID)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	s, err := decodeSession(id, data)
	if err != nil {
		return nil, err
	}
	if s.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired: %w", repository.ErrNotFound)
	}
	return s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
