package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

var _ repository.RolePostRepository = (*RolePostDB)(nil)

// RolePostDB stores role posts in the role_posts table.
type RolePostDB struct {
	conn *sql.DB
}

const rolePostColumns = `id, p_name, repo_link, tech_stack, tech_public, roles, address,
	description, duration, deadline, user_id, created_at`

// Create inserts post and sets post.ID. CreatedAt is written as given; the
// service stamps it.
func (r *RolePostDB) Create(ctx context.Context, post *model.RolePost) error {
	post.ID = xid.New().String()

	techStack, roles, err := encodeRolePostLists(post)
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO role_posts (`+rolePostColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.ProjectName,
		post.RepoLink,
		techStack,
		post.TechPublic,
		roles,
		post.Address,
		post.Description,
		post.Duration,
		post.Deadline,
		post.UserID,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating role post: %w", err)
	}
	return nil
}

func (r *RolePostDB) GetByID(ctx context.Context, id string) (*model.RolePost, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+rolePostColumns+` FROM role_posts WHERE id = ?`, id)
	post, err := scanRolePost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("role post", id)
		}
		return nil, fmt.Errorf("sqlite: getting role post %s: %w", id, err)
	}
	return post, nil
}

// List applies the filter as an AND of the supplied dimensions.
// Membership filters use json_each over the stored arrays.
func (r *RolePostDB) List(ctx context.Context, filter repository.RolePostFilter) ([]model.RolePost, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.TechStack) > 0 {
		where = append(where, anyOf("tech_stack", len(filter.TechStack)))
		for _, v := range filter.TechStack {
			args = append(args, v)
		}
	}
	if len(filter.Roles) > 0 {
		where = append(where, anyOf("roles", len(filter.Roles)))
		for _, v := range filter.Roles {
			args = append(args, v)
		}
	}

	query := `SELECT ` + rolePostColumns + ` FROM role_posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rowid`

	// LIMIT -1 means "no limit" in SQLite.
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return r.query(ctx, query, args...)
}

func (r *RolePostDB) ListByUser(ctx context.Context, userID string) ([]model.RolePost, error) {
	return r.query(ctx,
		`SELECT `+rolePostColumns+` FROM role_posts WHERE user_id = ? ORDER BY rowid`, userID)
}

// Update replaces every mutable field. user_id and created_at are left alone.
func (r *RolePostDB) Update(ctx context.Context, post *model.RolePost) error {
	techStack, roles, err := encodeRolePostLists(post)
	if err != nil {
		return err
	}

	result, err := r.conn.ExecContext(ctx,
		`UPDATE role_posts
		 SET p_name = ?, repo_link = ?, tech_stack = ?, tech_public = ?, roles = ?,
		     address = ?, description = ?, duration = ?, deadline = ?
		 WHERE id = ?`,
		post.ProjectName,
		post.RepoLink,
		techStack,
		post.TechPublic,
		roles,
		post.Address,
		post.Description,
		post.Duration,
		post.Deadline,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating role post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("role post", post.ID)
	}
	return nil
}

func (r *RolePostDB) query(ctx context.Context, query string, args ...any) ([]model.RolePost, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing role posts: %w", err)
	}
	defer rows.Close()

	posts := []model.RolePost{}
	for rows.Next() {
		post, err := scanRolePost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning role post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating role posts: %w", err)
	}
	return posts, nil
}

// anyOf builds "EXISTS (SELECT 1 FROM json_each(col) WHERE value IN (?, ?))".
func anyOf(column string, n int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM json_each(role_posts.%s) WHERE json_each.value IN (%s))",
		column, placeholders)
}

func encodeRolePostLists(post *model.RolePost) (string, string, error) {
	techStack, err := encodeList(post.TechStack)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding techStack: %w", err)
	}
	roles, err := encodeList(post.Roles)
	if err != nil {
		return "", "", fmt.Errorf("sqlite: encoding roles: %w", err)
	}
	return techStack, roles, nil
}

func scanRolePost(s scanner) (*model.RolePost, error) {
	var (
		post             model.RolePost
		techStack, roles string
	)
	if err := s.Scan(
		&post.ID,
		&post.ProjectName,
		&post.RepoLink,
		&techStack,
		&post.TechPublic,
		&roles,
		&post.Address,
		&post.Description,
		&post.Duration,
		&post.Deadline,
		&post.UserID,
		&post.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if post.TechStack, err = decodeList(techStack); err != nil {
		return nil, fmt.Errorf("decoding techStack: %w", err)
	}
	if post.Roles, err = decodeList(roles); err != nil {
		return nil, fmt.Errorf("decoding roles: %w", err)
	}
	return &post, nil
}
