package service

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mentor-connect/internal/mailer"
	"mentor-connect/internal/repository"
	"mentor-connect/internal/repository/sqlite"
	"mentor-connect/internal/storage"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type fixture struct {
	db       *sql.DB
	accounts repository.AccountRepository
	files    *storage.DiskService
	svc      AccountService
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(context.Background(), db, nil))

	f := &fixture{
		db:       db,
		accounts: sqlite.NewAccountRepository(db),
		files:    storage.NewDiskService(t.TempDir(), "/media"),
	}
	f.svc = NewAccountService(f.accounts, f.files, AccountConfig{
		MaxAvatarBytes: 1024,
		BcryptCost:     bcrypt.MinCost,
		Logger:         quietLogger(),
	})
	return f
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(1) FROM `+table).Scan(&n))
	return n
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(f.files.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func studentInput(email string) RegisterInput {
	return RegisterInput{
		Email:           email,
		Role:            "student",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
		FirstName:       "Ada",
		LastName:        "Lovelace",
	}
}

func volunteerInput(email string) RegisterInput {
	in := studentInput(email)
	in.Role = "volunteer"
	in.FirstName = "Grace"
	in.LastName = "Hopper"
	return in
}

func requireFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, field)
	if msg != "" {
		require.Equal(t, msg, verr.Fields[field])
	}
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []mailer.Notification
	err  error
}

func (d *recordingDispatcher) Start(context.Context) error { return nil }
func (d *recordingDispatcher) Shutdown()                   {}

func (d *recordingDispatcher) Dispatch(_ context.Context, n mailer.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

func (d *recordingDispatcher) notifications() []mailer.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]mailer.Notification(nil), d.sent...)
}
