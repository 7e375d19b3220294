package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mentor-connect/internal/mailer"
)

var testResetSecret = []byte("test-reset-secret")

type resetFixture struct {
	*fixture
	dispatcher *recordingDispatcher
	passwords  PasswordService
	now        time.Time
}

func newResetFixture(t *testing.T, disclose bool) *resetFixture {
	t.Helper()
	rf := &resetFixture{
		fixture:    newFixture(t),
		dispatcher: &recordingDispatcher{},
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	passwords, err := NewPasswordService(rf.accounts, rf.dispatcher, PasswordConfig{
		Secret:               testResetSecret,
		TokenTTL:             time.Hour,
		BaseURL:              "http://mentor.test/",
		DiscloseUnknownEmail: disclose,
		BcryptCost:           bcrypt.MinCost,
		Logger:               quietLogger(),
		Now:                  func() time.Time { return rf.now },
	})
	require.NoError(t, err)
	rf.passwords = passwords
	return rf
}

func tokenFrom(t *testing.T, n mailer.Notification) string {
	t.Helper()
	require.Equal(t, mailer.TemplatePasswordReset, n.Template)
	link, err := url.Parse(n.Data["ResetURL"].(string))
	require.NoError(t, err)
	require.Equal(t, "mentor.test", link.Host)
	require.Equal(t, PasswordResetPath, link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func TestNewPasswordService_RequiresSecret(t *testing.T) {
	_, err := NewPasswordService(nil, &recordingDispatcher{}, PasswordConfig{})
	require.Error(t, err)
}

func TestRequestReset_UnknownEmailDisclosed(t *testing.T) {
	rf := newResetFixture(t, true)

	err := rf.passwords.RequestReset(context.Background(), "nobody@x.com")
	requireFieldError(t, err, "email", MsgUnknownEmail)
	require.Empty(t, rf.dispatcher.notifications())
}

func TestRequestReset_UnknownEmailSilent(t *testing.T) {
	rf := newResetFixture(t, false)

	require.NoError(t, rf.passwords.RequestReset(context.Background(), "nobody@x.com"))
	require.Empty(t, rf.dispatcher.notifications())
}

func TestRequestReset_InvalidEmail(t *testing.T) {
	rf := newResetFixture(t, true)

	err := rf.passwords.RequestReset(context.Background(), "nope")
	requireFieldError(t, err, "email", "Enter a valid email address.")
}

func TestRequestReset_DeliveryFailureStillSucceeds(t *testing.T) {
	rf := newResetFixture(t, true)
	_, err := rf.svc.Register(context.Background(), studentInput("a@x.com"))
	require.NoError(t, err)

	rf.dispatcher.err = errors.New("dispatcher stopped")
	require.NoError(t, rf.passwords.RequestReset(context.Background(), "a@x.com"))
}

func TestPasswordReset_FullFlow(t *testing.T) {
	rf := newResetFixture(t, true)
	ctx := context.Background()

	account, err := rf.svc.Register(ctx, studentInput("a@x.com"))
	require.NoError(t, err)

	require.NoError(t, rf.passwords.RequestReset(ctx, "A@x.com"))
	sent := rf.dispatcher.notifications()
	require.Len(t, sent, 1)
	require.Equal(t, "a@x.com", sent[0].To)
	require.Equal(t, "Ada Lovelace", sent[0].Data["Name"])
	token := tokenFrom(t, sent[0])

	user, err := rf.passwords.VerifyResetToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, account.User.ID, user.ID)

	err = rf.passwords.ConfirmReset(ctx, token, "brand-new-pass", "brand-new-typo")
	requireFieldError(t, err, "password_confirm", MsgPasswordMismatch)

	require.NoError(t, rf.passwords.ConfirmReset(ctx, token, "brand-new-pass", "brand-new-pass"))

	_, err = rf.svc.Authenticate(ctx, "a@x.com", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = rf.svc.Authenticate(ctx, "a@x.com", "brand-new-pass")
	require.NoError(t, err)

	// the password hash changed, so the link is spent
	err = rf.passwords.ConfirmReset(ctx, token, "another-pass1", "another-pass1")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	rf := newResetFixture(t, true)
	ctx := context.Background()

	_, err := rf.svc.Register(ctx, studentInput("a@x.com"))
	require.NoError(t, err)
	require.NoError(t, rf.passwords.RequestReset(ctx, "a@x.com"))
	token := tokenFrom(t, rf.dispatcher.notifications()[0])

	rf.now = rf.now.Add(2 * time.Hour)
	_, err = rf.passwords.VerifyResetToken(ctx, token)
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_RejectsForeignTokens(t *testing.T) {
	rf := newResetFixture(t, true)
	ctx := context.Background()

	account, err := rf.svc.Register(ctx, studentInput("a@x.com"))
	require.NoError(t, err)

	sign := func(secret []byte, purpose string) string {
		claims := resetClaims{
			Purpose: purpose,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(rf.now.Add(time.Hour)),
			},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		return s
	}
	require.Equal(t, int64(1), account.User.ID)

	for name, token := range map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"wrong secret":   sign([]byte("other-secret"), resetPurpose),
		"wrong purpose":  sign(testResetSecret, "session"),
		"no fingerprint": sign(testResetSecret, resetPurpose),
	} {
		_, err := rf.passwords.VerifyResetToken(ctx, token)
		require.ErrorIs(t, err, ErrInvalidResetToken, name)
	}
}
