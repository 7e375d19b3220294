package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

const userColumns = `id, email, password_hash, role, first_name, last_name, phone, avatar_ref, bio, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts the user row and its profile row atomically. On success the
// generated id is written back to both the user and the profile.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := account.CheckProfile(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrRoleMismatch, err)
	}

	now := time.Now().UTC()
	user := &account.User
	user.Email = domain.NormalizeEmail(user.Email)

	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users (email, password_hash, role, first_name, last_name, phone, avatar_ref, bio, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.Email,
			user.PasswordHash,
			string(user.Role),
			user.FirstName,
			user.LastName,
			user.Phone,
			user.AvatarRef,
			user.Bio,
			now,
			now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: email %s", repository.ErrAlreadyExists, user.Email)
			}
			return fmt.Errorf("insert user: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user last insert id: %w", err)
		}

		return insertProfile(ctx, tx, id, account.Profile)
	})
	if err != nil {
		return err
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	setProfileOwner(account.Profile, id)
	return nil
}

func insertProfile(ctx context.Context, tx *sql.Tx, userID int64, profile domain.Profile) error {
	switch p := profile.(type) {
	case *domain.StudentProfile:
		if _, err := tx.ExecContext(ctx, `
INSERT INTO student_profiles (user_id, institution, field_of_study, graduation_year, skills, interests)
VALUES (?, ?, ?, ?, ?, ?)`,
			userID, p.Institution, p.FieldOfStudy, p.GraduationYear, p.Skills, p.Interests,
		); err != nil {
			return fmt.Errorf("insert student profile: %w", err)
		}
	case *domain.VolunteerProfile:
		if _, err := tx.ExecContext(ctx, `
INSERT INTO volunteer_profiles (user_id, organization, position, expertise, availability, years_of_experience)
VALUES (?, ?, ?, ?, ?, ?)`,
			userID, p.Organization, p.Position, p.Expertise, p.Availability, p.YearsOfExperience,
		); err != nil {
			return fmt.Errorf("insert volunteer profile: %w", err)
		}
	default:
		return fmt.Errorf("%w: unsupported profile %T", repository.ErrRoleMismatch, profile)
	}
	return nil
}

func setProfileOwner(profile domain.Profile, userID int64) {
	switch p := profile.(type) {
	case *domain.StudentProfile:
		p.UserID = userID
	case *domain.VolunteerProfile:
		p.UserID = userID
	}
}

// Update writes the editable user fields and the profile row in one
// transaction. Email and role are never rewritten.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if err := account.CheckProfile(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrRoleMismatch, err)
	}
	if account.Profile.Owner() != account.User.ID {
		return fmt.Errorf("%w: profile owner %d, user %d", repository.ErrRoleMismatch, account.Profile.Owner(), account.User.ID)
	}

	now := time.Now().UTC()
	user := &account.User

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE users
SET first_name=?, last_name=?, phone=?, avatar_ref=?, bio=?, updated_at=?
WHERE id=?`,
			user.FirstName,
			user.LastName,
			user.Phone,
			user.AvatarRef,
			user.Bio,
			now,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if err := expectOneRow(res, "user"); err != nil {
			return err
		}

		switch p := account.Profile.(type) {
		case *domain.StudentProfile:
			res, err = tx.ExecContext(ctx, `
UPDATE student_profiles
SET institution=?, field_of_study=?, graduation_year=?, skills=?, interests=?
WHERE user_id=?`,
				p.Institution, p.FieldOfStudy, p.GraduationYear, p.Skills, p.Interests, user.ID,
			)
		case *domain.VolunteerProfile:
			res, err = tx.ExecContext(ctx, `
UPDATE volunteer_profiles
SET organization=?, position=?, expertise=?, availability=?, years_of_experience=?
WHERE user_id=?`,
				p.Organization, p.Position, p.Expertise, p.Availability, p.YearsOfExperience, user.ID,
			)
		default:
			return fmt.Errorf("%w: unsupported profile %T", repository.ErrRoleMismatch, account.Profile)
		}
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("profile rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("user %d: %w", user.ID, repository.ErrProfileMissing)
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.UpdatedAt = now
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash=?, updated_at=? WHERE id=?`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectOneRow(res, "user")
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		domain.NormalizeEmail(email))
	return scanUser(row)
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`,
		domain.NormalizeEmail(email)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

// GetAccount loads the user and the profile variant selected by its role.
func (r *AccountRepository) GetAccount(ctx context.Context, userID int64) (*domain.Account, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var profile domain.Profile
	switch user.Role {
	case domain.RoleStudent:
		var p domain.StudentProfile
		err = r.db.QueryRowContext(ctx, `
SELECT user_id, institution, field_of_study, graduation_year, skills, interests
FROM student_profiles
WHERE user_id = ?`, userID).Scan(
			&p.UserID, &p.Institution, &p.FieldOfStudy, &p.GraduationYear, &p.Skills, &p.Interests,
		)
		profile = &p
	case domain.RoleVolunteer:
		var p domain.VolunteerProfile
		err = r.db.QueryRowContext(ctx, `
SELECT user_id, organization, position, expertise, availability, years_of_experience
FROM volunteer_profiles
WHERE user_id = ?`, userID).Scan(
			&p.UserID, &p.Organization, &p.Position, &p.Expertise, &p.Availability, &p.YearsOfExperience,
		)
		profile = &p
	default:
		return nil, fmt.Errorf("%w: user %d has role %q", repository.ErrRoleMismatch, userID, user.Role)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, repository.ErrProfileMissing)
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	return &domain.Account{User: *user, Profile: profile}, nil
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.AvatarRef,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}
