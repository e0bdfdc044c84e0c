package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/gophcms/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthMock(t *testing.T) (*PostgresAuthRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresAuthRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

const selectUser = `SELECT password_hash FROM users WHERE username = $1`

func TestPostgresGetUser_Found(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectUser)).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow("$2a$10$hash"))

	user, ok, err := repo.GetUser(context.Background(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected user to be found")
	}
	if user.Username != "admin" || string(user.PasswordHash) != "$2a$10$hash" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresGetUser_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectUser)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}))

	_, ok, err := repo.GetUser(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected user to be missing")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresGetUser_Error(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectUser)).
		WithArgs("admin").
		WillReturnError(errors.New("query failed"))

	_, _, err := repo.GetUser(context.Background(), "admin")
	if err == nil || !regexp.MustCompile(`GetUser`).MatchString(err.Error()) {
		t.Errorf("expected GetUser error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSaveUser(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password_hash) VALUES ($1, $2)`)).
		WithArgs("admin", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveUser(context.Background(), models.User{Username: "admin", PasswordHash: []byte("$2a$10$hash")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSaveUser_Error(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("admin", "h").
		WillReturnError(errors.New("insert failed"))

	err := repo.SaveUser(context.Background(), models.User{Username: "admin", PasswordHash: []byte("h")})
	if err == nil {
		t.Error("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFileAuthRepository_GetUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yml")
	require.NoError(t, os.WriteFile(path, []byte("admin: $2a$10$abc\nbob: $2a$10$def\n"), 0o600))
	repo := NewFileAuthRepository(path)
	ctx := context.Background()

	user, ok, err := repo.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "$2a$10$def", string(user.PasswordHash))

	_, ok, err = repo.GetUser(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileAuthRepository_MissingFile(t *testing.T) {
	repo := NewFileAuthRepository(filepath.Join(t.TempDir(), "absent.yml"))
	_, ok, err := repo.GetUser(context.Background(), "admin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileAuthRepository_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o600))
	_, _, err := NewFileAuthRepository(path).GetUser(context.Background(), "admin")
	assert.Error(t, err)
}

func TestFileAuthRepository_SaveUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yml")
	require.NoError(t, os.WriteFile(path, []byte("admin: old\n"), 0o600))
	repo := NewFileAuthRepository(path)
	ctx := context.Background()

	require.NoError(t, repo.SaveUser(ctx, models.User{Username: "admin", PasswordHash: []byte("new")}))
	require.NoError(t, repo.SaveUser(ctx, models.User{Username: "bob", PasswordHash: []byte("$2a$10$x")}))

	user, ok, err := repo.GetUser(ctx, "admin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", string(user.PasswordHash))

	user, ok, err = repo.GetUser(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "$2a$10$x", string(user.PasswordHash))
}
