package storage

import (
	"context"
	"io"
	"time"
)

// Service stores uploaded files (profile pictures) and resolves the
// references it hands out back into URLs.
type Service interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ctx context.Context, ref string, expires time.Duration) (string, error)
}
