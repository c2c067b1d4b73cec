package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mengfw/inkwell/internal/apperr"
	"github.com/mengfw/inkwell/internal/models"
)

const userColumns = `id, username, email, password_hash, avatar, bio, is_admin, theme, created_at`

// CreateUser inserts a user and fills in its ID. A username or email that
// is already taken maps to apperr.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, avatar, bio, is_admin, theme)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.Avatar, u.Bio, u.IsAdmin, u.Theme)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: user id: %w", err)
	}
	return nil
}

// UserByID returns a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.oneUser(ctx, `WHERE id = ?`, id)
}

// UserByUsername returns a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.oneUser(ctx, `WHERE username = ?`, username)
}

func (s *Store) oneUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &u.Bio,
			&u.IsAdmin, &u.Theme, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar,
			&u.Bio, &u.IsAdmin, &u.Theme, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}

// UpdateProfile overwrites a user's self-editable fields.
func (s *Store) UpdateProfile(ctx context.Context, id int64, avatar, bio string) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE users SET avatar = ?, bio = ? WHERE id = ?`, avatar, bio, id)
	if err != nil {
		return fmt.Errorf("store: update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetTheme persists a user's theme preference.
func (s *Store) SetTheme(ctx context.Context, id int64, theme string) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE users SET theme = ? WHERE id = ?`, theme, id)
	if err != nil {
		return fmt.Errorf("store: set theme: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetAdmin grants or revokes admin rights.
func (s *Store) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE id = ?`, isAdmin, id)
	if err != nil {
		return fmt.Errorf("store: set admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
