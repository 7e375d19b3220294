package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the account kind fixed at registration.
type Role string

const (
	RoleStudent   Role = "student"
	RoleVolunteer Role = "volunteer"
)

// Roles lists every role a user can register with.
var Roles = []Role{RoleStudent, RoleVolunteer}

// ParseRole normalizes and validates a role tag.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleVolunteer
}

func (r Role) String() string {
	return string(r)
}

// User represents a registered account. Email doubles as the login handle.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	FirstName    string
	LastName     string
	Phone        string
	AvatarRef    string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
