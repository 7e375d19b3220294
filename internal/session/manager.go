// Package session ties server-side sessions to the browser cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

const CookieName = "mc_session"

type Options struct {
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

type Manager struct {
	repo repository.SessionRepository
	opts Options
}

func NewManager(repo repository.SessionRepository, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 14 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{repo: repo, opts: opts}
}

// Start issues a fresh session for user, dropping any session the request
// already carried.
func (m *Manager) Start(c *gin.Context, user *domain.User) (*domain.Session, error) {
	if old, err := c.Cookie(CookieName); err == nil && old != "" {
		if err := m.repo.Delete(c.Request.Context(), old); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("delete previous session: %w", err)
		}
	}

	now := m.opts.Now().UTC()
	s := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.repo.Create(c.Request.Context(), s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.setCookie(c, s.ID, int(m.opts.TTL.Seconds()))
	return s, nil
}

// Load returns the session named by the request cookie, or nil when there is
// none. Stale cookies are cleared.
func (m *Manager) Load(c *gin.Context) (*domain.Session, error) {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		m.setCookie(c, "", -1)
		return nil, nil
	}

	s, err := m.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			m.setCookie(c, "", -1)
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.Expired(m.opts.Now()) {
		_ = m.repo.Delete(c.Request.Context(), id)
		m.setCookie(c, "", -1)
		return nil, nil
	}
	return s, nil
}

// Destroy deletes the current session, if any, and expires the cookie.
func (m *Manager) Destroy(c *gin.Context) error {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		return nil
	}
	m.setCookie(c, "", -1)
	if err := m.repo.Delete(c.Request.Context(), id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", m.opts.Secure, true)
}
