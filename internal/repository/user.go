package repository

import (
	"context"
	"errors"

	"mentor-connect/internal/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness conflict, e.g. a registered email.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrProfileMissing indicates a user row without its profile row.
	ErrProfileMissing = errors.New("profile missing for user")
	// ErrRoleMismatch indicates a profile variant that does not match the user's role.
	ErrRoleMismatch = errors.New("profile variant does not match user role")
)

// AccountRepository persists users together with their profile variant.
// Create and Update write both rows in a single transaction.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetAccount(ctx context.Context, userID int64) (*domain.Account, error)
}
