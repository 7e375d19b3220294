package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mentor-connect/internal/domain"
	"mentor-connect/internal/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db, nil))
	return db
}

func newStudentAccount(email string) *domain.Account {
	return &domain.Account{
		User: domain.User{
			Email:        email,
			PasswordHash: "hash",
			Role:         domain.RoleStudent,
			FirstName:    "Ada",
			LastName:     "Lovelace",
		},
		Profile: &domain.StudentProfile{},
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM `+table).Scan(&n))
	return n
}

func TestAccountRepository_CreateAndLoad(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := newStudentAccount("Ada@Example.com ")
	require.NoError(t, repo.Create(ctx, account))
	require.NotZero(t, account.User.ID)
	require.Equal(t, "ada@example.com", account.User.Email)
	require.Equal(t, account.User.ID, account.Profile.Owner())

	loaded, err := repo.GetAccount(ctx, account.User.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, loaded.User.Role)
	require.NotNil(t, loaded.Student())
	require.Nil(t, loaded.Volunteer())
	require.Equal(t, 1, countRows(t, db, "student_profiles"))
	require.Equal(t, 0, countRows(t, db, "volunteer_profiles"))

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, account.User.ID, byEmail.ID)

	exists, err := repo.EmailExists(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStudentAccount("dup@example.com")))

	err := repo.Create(ctx, newStudentAccount("DUP@example.com"))
	require.ErrorIs(t, err, repository.ErrAlreadyExists)
	require.Equal(t, 1, countRows(t, db, "users"))
	require.Equal(t, 1, countRows(t, db, "student_profiles"))
}

func TestAccountRepository_RejectsMismatchedProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	account := newStudentAccount("mix@example.com")
	account.Profile = &domain.VolunteerProfile{}

	err := repo.Create(context.Background(), account)
	require.ErrorIs(t, err, repository.ErrRoleMismatch)
	require.Equal(t, 0, countRows(t, db, "users"))
}

func TestAccountRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &domain.Account{
		User: domain.User{
			Email:        "vol@example.com",
			PasswordHash: "hash",
			Role:         domain.RoleVolunteer,
			FirstName:    "Grace",
			LastName:     "Hopper",
		},
		Profile: &domain.VolunteerProfile{},
	}
	require.NoError(t, repo.Create(ctx, account))

	account.User.Bio = "Compiler pioneer"
	account.User.Phone = "+15550100"
	p := account.Volunteer()
	p.Organization = "Navy"
	p.Position = "Rear Admiral"
	p.Expertise = "COBOL"
	p.Availability = "Weekends"
	p.YearsOfExperience = 40
	require.NoError(t, repo.Update(ctx, account))

	loaded, err := repo.GetAccount(ctx, account.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Compiler pioneer", loaded.User.Bio)
	require.Equal(t, "+15550100", loaded.User.Phone)
	require.Equal(t, *p, *loaded.Volunteer())
}

func TestAccountRepository_MissingProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := newStudentAccount("orphan@example.com")
	require.NoError(t, repo.Create(ctx, account))
	_, err := db.Exec(`DELETE FROM student_profiles WHERE user_id = ?`, account.User.ID)
	require.NoError(t, err)

	_, err = repo.GetAccount(ctx, account.User.ID)
	require.ErrorIs(t, err, repository.ErrProfileMissing)

	err = repo.Update(ctx, account)
	require.ErrorIs(t, err, repository.ErrProfileMissing)
}

func TestAccountRepository_CascadeDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := newStudentAccount("gone@example.com")
	require.NoError(t, repo.Create(ctx, account))

	_, err := db.Exec(`DELETE FROM users WHERE id = ?`, account.User.ID)
	require.NoError(t, err)
	require.Equal(t, 0, countRows(t, db, "student_profiles"))
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := newStudentAccount("pw@example.com")
	require.NoError(t, repo.Create(ctx, account))
	require.NoError(t, repo.UpdatePassword(ctx, account.User.ID, "new-hash"))

	user, err := repo.GetByID(ctx, account.User.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", user.PasswordHash)

	err = repo.UpdatePassword(ctx, 9999, "x")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetAccount(context.Background(), 12345)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
