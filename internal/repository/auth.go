package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/atinyakov/gophcms/internal/models"
	"gopkg.in/yaml.v3"
)

// FileAuthRepository reads user credentials from a YAML file mapping
// usernames to bcrypt hashes:
//
//	admin: $2a$10$...
//
// The file is re-read on every lookup so edits apply without a restart.
type FileAuthRepository struct {
	// Path is the location of the credentials file.
	Path string
}

// NewFileAuthRepository returns a repository backed by the YAML file at path.
func NewFileAuthRepository(path string) *FileAuthRepository {
	return &FileAuthRepository{Path: path}
}

func (s *FileAuthRepository) load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	users := map[string]string{}
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return users, nil
}

// GetUser looks up a user by name. The boolean is false when the user is unknown.
func (s *FileAuthRepository) GetUser(ctx context.Context, username string) (models.User, bool, error) {
	users, err := s.load()
	if err != nil {
		return models.User{}, false, err
	}
	hash, ok := users[username]
	if !ok {
		return models.User{}, false, nil
	}
	return models.User{Username: username, PasswordHash: []byte(hash)}, true, nil
}

// SaveUser adds the user or replaces its password hash.
func (s *FileAuthRepository) SaveUser(ctx context.Context, user models.User) error {
	users, err := s.load()
	if err != nil {
		return err
	}
	users[user.Username] = string(user.PasswordHash)

	data, err := yaml.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// PostgresAuthRepository reads user credentials from the users table.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// GetUser looks up a user by name. The boolean is false when no row matches.
func (s *PostgresAuthRepository) GetUser(ctx context.Context, username string) (models.User, bool, error) {
	var hash string
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("GetUser: %w", err)
	}
	return models.User{Username: username, PasswordHash: []byte(hash)}, true, nil
}

// SaveUser inserts the user, replacing the password hash on conflict.
func (s *PostgresAuthRepository) SaveUser(ctx context.Context, user models.User) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		user.Username, string(user.PasswordHash),
	)
	if err != nil {
		return fmt.Errorf("SaveUser: %w", err)
	}
	return nil
}
