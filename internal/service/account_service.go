package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
	"mentor-connect/internal/storage"
)

const defaultMaxAvatarBytes = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type RegisterInput struct {
	Email           string  `form:"email" json:"email" validate:"required,email,max=254"`
	Role            string  `form:"role" json:"role" validate:"required,oneof=student volunteer"`
	Password        string  `form:"password" json:"password" validate:"required,min=8,notnumeric"`
	PasswordConfirm string  `form:"password_confirm" json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string  `form:"first_name" json:"first_name" validate:"required,max=150"`
	LastName        string  `form:"last_name" json:"last_name" validate:"required,max=150"`
	Phone           string  `form:"phone" json:"phone" validate:"max=15"`
	Avatar          *Upload `form:"-" json:"-" validate:"-"`
}

type UserUpdateInput struct {
	FirstName string  `form:"first_name" json:"first_name" validate:"required,max=150"`
	LastName  string  `form:"last_name" json:"last_name" validate:"required,max=150"`
	Email     string  `form:"email" json:"email" validate:"omitempty,email"`
	Phone     string  `form:"phone" json:"phone" validate:"max=15"`
	Bio       string  `form:"bio" json:"bio" validate:"max=500"`
	Avatar    *Upload `form:"-" json:"-" validate:"-"`
}

type StudentProfileInput struct {
	Institution    string `form:"institution" json:"institution" validate:"required,max=100"`
	FieldOfStudy   string `form:"field_of_study" json:"field_of_study" validate:"required,max=100"`
	GraduationYear int    `form:"graduation_year" json:"graduation_year" validate:"required,min=1900,max=2100"`
	Skills         string `form:"skills" json:"skills"`
	Interests      string `form:"interests" json:"interests"`
}

type VolunteerProfileInput struct {
	Organization      string `form:"organization" json:"organization" validate:"required,max=100"`
	Position          string `form:"position" json:"position" validate:"required,max=100"`
	Expertise         string `form:"expertise" json:"expertise" validate:"required"`
	Availability      string `form:"availability" json:"availability" validate:"required"`
	YearsOfExperience int    `form:"years_of_experience" json:"years_of_experience" validate:"min=0,max=80"`
}

// ProfileUpdate carries both forms of the profile page. Only the variant
// matching the stored role is used.
type ProfileUpdate struct {
	User      UserUpdateInput
	Student   *StudentProfileInput
	Volunteer *VolunteerProfileInput
}

// AccountService covers registration, login and the profile page.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetAccount(ctx context.Context, userID int64) (*domain.Account, error)
	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*domain.Account, error)
	AvatarURL(ctx context.Context, user *domain.User) (string, error)
}

type AccountConfig struct {
	MaxAvatarBytes int64
	BcryptCost     int
	Logger         logrus.FieldLogger
}

type accountService struct {
	accounts  repository.AccountRepository
	files     storage.Service
	cfg       AccountConfig
	dummyHash []byte
}

func NewAccountService(accounts repository.AccountRepository, files storage.Service, cfg AccountConfig) AccountService {
	if cfg.MaxAvatarBytes <= 0 {
		cfg.MaxAvatarBytes = defaultMaxAvatarBytes
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return &accountService{
		accounts:  accounts,
		files:     files,
		cfg:       cfg,
		dummyHash: dummy,
	}
}

func (s *accountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)

	verr := &ValidationError{}
	if err := check(verr, in); err != nil {
		return nil, err
	}
	if in.Avatar != nil {
		s.checkAvatar(verr, "avatar", in.Avatar)
	}
	if !verr.Has("email") {
		exists, err := s.accounts.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			verr.Add("email", MsgEmailTaken)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, fieldError("role", "Select a valid choice.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	profile, err := domain.NewProfile(role, 0)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		User: domain.User{
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         role,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Phone:        in.Phone,
		},
		Profile: profile,
	}

	if in.Avatar != nil {
		ref, err := s.storeAvatar(ctx, in.Avatar)
		if err != nil {
			return nil, err
		}
		account.User.AvatarRef = ref
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		s.discardAvatar(ctx, account.User.AvatarRef)
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fieldError("email", MsgEmailTaken)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.cfg.Logger.WithFields(logrus.Fields{
		"user_id": account.User.ID,
		"role":    role,
	}).Info("account registered")

	return sanitizeAccount(account), nil
}

func (s *accountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *accountService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *accountService) GetAccount(ctx context.Context, userID int64) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeAccount(account), nil
}

func (s *accountService) loadAccount(ctx context.Context, userID int64) (*domain.Account, error) {
	account, err := s.accounts.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileMissing) || errors.Is(err, repository.ErrRoleMismatch) {
			return nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile validates both forms before writing anything, then saves the
// user fields and the profile in a single transaction.
func (s *accountService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	in := upd.User
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Bio = strings.TrimSpace(in.Bio)

	verr := &ValidationError{}
	if err := check(verr, in); err != nil {
		return nil, err
	}
	if in.Email != "" && !verr.Has("email") && domain.NormalizeEmail(in.Email) != account.User.Email {
		verr.Add("email", MsgEmailImmutable)
	}
	if in.Avatar != nil {
		s.checkAvatar(verr, "avatar", in.Avatar)
	}

	switch p := account.Profile.(type) {
	case *domain.StudentProfile:
		form := upd.Student
		if form == nil {
			form = &StudentProfileInput{}
		}
		if err := check(verr, *form); err != nil {
			return nil, err
		}
		p.Institution = strings.TrimSpace(form.Institution)
		p.FieldOfStudy = strings.TrimSpace(form.FieldOfStudy)
		p.GraduationYear = form.GraduationYear
		p.Skills = strings.TrimSpace(form.Skills)
		p.Interests = strings.TrimSpace(form.Interests)
	case *domain.VolunteerProfile:
		form := upd.Volunteer
		if form == nil {
			form = &VolunteerProfileInput{}
		}
		if err := check(verr, *form); err != nil {
			return nil, err
		}
		p.Organization = strings.TrimSpace(form.Organization)
		p.Position = strings.TrimSpace(form.Position)
		p.Expertise = strings.TrimSpace(form.Expertise)
		p.Availability = strings.TrimSpace(form.Availability)
		p.YearsOfExperience = form.YearsOfExperience
	default:
		return nil, fmt.Errorf("%w: user %d has profile %T", ErrIntegrity, userID, account.Profile)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	account.User.FirstName = in.FirstName
	account.User.LastName = in.LastName
	account.User.Phone = in.Phone
	account.User.Bio = in.Bio

	oldAvatar := account.User.AvatarRef
	if in.Avatar != nil {
		ref, err := s.storeAvatar(ctx, in.Avatar)
		if err != nil {
			return nil, err
		}
		account.User.AvatarRef = ref
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if in.Avatar != nil {
			s.discardAvatar(ctx, account.User.AvatarRef)
		}
		if errors.Is(err, repository.ErrProfileMissing) || errors.Is(err, repository.ErrRoleMismatch) {
			return nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	if in.Avatar != nil && oldAvatar != "" {
		s.discardAvatar(ctx, oldAvatar)
	}

	return sanitizeAccount(account), nil
}

func (s *accountService) AvatarURL(ctx context.Context, user *domain.User) (string, error) {
	if user == nil || user.AvatarRef == "" || s.files == nil {
		return "", nil
	}
	return s.files.URL(ctx, user.AvatarRef, 15*time.Minute)
}

func (s *accountService) checkAvatar(verr *ValidationError, field string, up *Upload) {
	if len(up.Data) == 0 {
		verr.Add(field, "The submitted file is empty.")
		return
	}
	if int64(len(up.Data)) > s.cfg.MaxAvatarBytes {
		verr.Add(field, fmt.Sprintf("The file is too large. The maximum size is %d bytes.", s.cfg.MaxAvatarBytes))
		return
	}
	if _, ok := avatarExtensions[http.DetectContentType(up.Data)]; !ok {
		verr.Add(field, MsgInvalidImage)
	}
}

func (s *accountService) storeAvatar(ctx context.Context, up *Upload) (string, error) {
	if s.files == nil {
		return "", fmt.Errorf("avatar storage is not configured")
	}
	contentType := http.DetectContentType(up.Data)
	key := "avatars/" + uuid.NewString() + avatarExtensions[contentType]
	ref, err := s.files.Put(ctx, key, bytes.NewReader(up.Data), contentType)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return ref, nil
}

func (s *accountService) discardAvatar(ctx context.Context, ref string) {
	if ref == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(context.WithoutCancel(ctx), ref); err != nil {
		s.cfg.Logger.WithError(err).WithField("ref", ref).Warn("failed to delete avatar")
	}
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	u := *user
	u.PasswordHash = ""
	return &u
}

func sanitizeAccount(account *domain.Account) *domain.Account {
	if account == nil {
		return nil
	}
	return &domain.Account{User: *sanitizeUser(&account.User), Profile: account.Profile}
}
