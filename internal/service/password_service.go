package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/mailer"
	"mentor-connect/internal/repository"
)

const resetPurpose = "password_reset"

// PasswordResetPath is where reset links point to.
const PasswordResetPath = "/auth/password-reset/confirm"

type resetRequest struct {
	Email string `form:"email" validate:"required,email"`
}

type newPassword struct {
	Password        string `form:"password" validate:"required,min=8,notnumeric"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

type resetClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// PasswordService issues and redeems password reset links.
type PasswordService interface {
	RequestReset(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) (*domain.User, error)
	ConfirmReset(ctx context.Context, token, password, confirm string) error
}

type PasswordConfig struct {
	Secret   []byte
	TokenTTL time.Duration
	BaseURL  string
	// DiscloseUnknownEmail reports unknown addresses as a field error
	// instead of answering with the generic success.
	DiscloseUnknownEmail bool
	BcryptCost           int
	Logger               logrus.FieldLogger
	Now                  func() time.Time
}

type passwordService struct {
	accounts   repository.AccountRepository
	dispatcher mailer.Dispatcher
	cfg        PasswordConfig
}

func NewPasswordService(accounts repository.AccountRepository, dispatcher mailer.Dispatcher, cfg PasswordConfig) (PasswordService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("password reset secret is not configured")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &passwordService{accounts: accounts, dispatcher: dispatcher, cfg: cfg}, nil
}

// RequestReset sends a reset link to a registered address. The outcome of the
// delivery itself is never reported to the caller.
func (s *passwordService) RequestReset(ctx context.Context, email string) error {
	in := resetRequest{Email: domain.NormalizeEmail(email)}
	verr := &ValidationError{}
	if err := check(verr, in); err != nil {
		return err
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	user, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.cfg.DiscloseUnknownEmail {
				return fieldError("email", MsgUnknownEmail)
			}
			s.cfg.Logger.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return err
	}

	name := user.FullName()
	if name == "" {
		name = user.Email
	}
	n := mailer.Notification{
		To:       user.Email,
		ToName:   name,
		Template: mailer.TemplatePasswordReset,
		Data: map[string]any{
			"Name":      name,
			"ResetURL":  s.cfg.BaseURL + PasswordResetPath + "?token=" + url.QueryEscape(token),
			"ExpiresIn": s.cfg.TokenTTL.String(),
		},
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.cfg.Logger.WithError(err).WithField("user_id", user.ID).Error("failed to dispatch password reset email")
	}
	return nil
}

func (s *passwordService) VerifyResetToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.verifyToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *passwordService) ConfirmReset(ctx context.Context, token, password, confirm string) error {
	user, err := s.verifyToken(ctx, token)
	if err != nil {
		return err
	}

	verr := &ValidationError{}
	if err := check(verr, newPassword{Password: password, PasswordConfirm: confirm}); err != nil {
		return err
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.cfg.Logger.WithField("user_id", user.ID).Info("password reset completed")
	return nil
}

func (s *passwordService) issueToken(user *domain.User) (string, error) {
	now := s.cfg.Now()
	claims := resetClaims{
		Purpose:     resetPurpose,
		Fingerprint: s.fingerprint(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// verifyToken checks signature, expiry and purpose, then binds the token to
// the current password hash so it stops working once the password changes.
func (s *passwordService) verifyToken(ctx context.Context, raw string) (*domain.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidResetToken
	}

	var claims resetClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.cfg.Now),
	)
	if err != nil {
		return nil, ErrInvalidResetToken
	}
	if claims.Purpose != resetPurpose {
		return nil, ErrInvalidResetToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidResetToken
	}

	user, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}
	if !hmac.Equal([]byte(claims.Fingerprint), []byte(s.fingerprint(user.PasswordHash))) {
		return nil, ErrInvalidResetToken
	}
	return user, nil
}

func (s *passwordService) fingerprint(passwordHash string) string {
	mac := hmac.New(sha256.New, s.cfg.Secret)
	mac.Write([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
}
