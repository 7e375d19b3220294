package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Student ")
	require.NoError(t, err)
	require.Equal(t, RoleStudent, r)

	_, err = ParseRole("admin")
	require.Error(t, err)
}

func TestNewProfileMatchesRole(t *testing.T) {
	for _, role := range Roles {
		p, err := NewProfile(role, 9)
		require.NoError(t, err)
		require.Equal(t, role, p.Role())
		require.Equal(t, int64(9), p.Owner())
	}

	_, err := NewProfile(Role("mentor"), 1)
	require.Error(t, err)
}

func TestAccountCheckProfile(t *testing.T) {
	account := Account{User: User{ID: 1, Role: RoleStudent}, Profile: &StudentProfile{UserID: 1}}
	require.NoError(t, account.CheckProfile())
	require.NotNil(t, account.Student())
	require.Nil(t, account.Volunteer())

	account.Profile = &VolunteerProfile{UserID: 1}
	require.Error(t, account.CheckProfile())

	account.Profile = nil
	require.Error(t, account.CheckProfile())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Minute)}
	require.False(t, s.Expired(now))
	require.True(t, s.Expired(now.Add(time.Minute)))
}
