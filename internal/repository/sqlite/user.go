package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores users in the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, username, email, github_id, access_token, application_count, applied`

// Create inserts a new user and sets user.ID.
// github_id is UNIQUE, so a second account for the same GitHub identity fails.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	applied, err := encodeList(user.Applied)
	if err != nil {
		return fmt.Errorf("sqlite: encoding applied: %w", err)
	}

	_, err = u.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.GitHubID,
		user.AccessToken,
		user.ApplicationCount,
		applied,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%s): %w", user.GitHubID, err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.getOne(ctx, `WHERE id = ?`, id, "user", id)
}

func (u *UserDB) GetByGitHubID(ctx context.Context, githubID string) (*model.User, error) {
	return u.getOne(ctx, `WHERE github_id = ?`, githubID, "user", githubID)
}

// GetByUsername returns the first user with that username.
func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.getOne(ctx, `WHERE username = ? ORDER BY rowid LIMIT 1`, username, "user", username)
}

func (u *UserDB) getOne(ctx context.Context, where string, arg any, resource, key string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(resource, key)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", key, err)
	}
	return user, nil
}

// UpdateAccessToken overwrites the stored provider token.
func (u *UserDB) UpdateAccessToken(ctx context.Context, id, accessToken string) error {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET access_token = ? WHERE id = ?`, accessToken, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating access token for user %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (u *UserDB) List(ctx context.Context) ([]model.User, error) {
	rows, err := u.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		user    model.User
		applied string
	)
	if err := s.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.GitHubID,
		&user.AccessToken,
		&user.ApplicationCount,
		&applied,
	); err != nil {
		return nil, err
	}
	list, err := decodeList(applied)
	if err != nil {
		return nil, fmt.Errorf("decoding applied: %w", err)
	}
	user.Applied = list
	return &user, nil
}
