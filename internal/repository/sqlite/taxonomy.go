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

var (
	_ repository.RoleRepository      = (*RoleDB)(nil)
	_ repository.TechStackRepository = (*TechStackDB)(nil)
)

// RoleDB stores canonical roles.
type RoleDB struct {
	conn *sql.DB
}

func (r *RoleDB) Create(ctx context.Context, role *model.Role) error {
	role.ID = xid.New().String()
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO roles (id, role_id, name) VALUES (?, ?, ?)`,
		role.ID, role.RoleID, role.Name)
	if err != nil {
		return fmt.Errorf("sqlite: creating role: %w", err)
	}
	return nil
}

func (r *RoleDB) GetByID(ctx context.Context, id string) (*model.Role, error) {
	var role model.Role
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, role_id, name FROM roles WHERE id = ?`, id,
	).Scan(&role.ID, &role.RoleID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("role", id)
		}
		return nil, fmt.Errorf("sqlite: getting role %s: %w", id, err)
	}
	return &role, nil
}

func (r *RoleDB) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT id, role_id, name FROM roles ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing roles: %w", err)
	}
	defer rows.Close()

	roles := []model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.RoleID, &role.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating roles: %w", err)
	}
	return roles, nil
}

func (r *RoleDB) Update(ctx context.Context, role *model.Role) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE roles SET role_id = ?, name = ? WHERE id = ?`,
		role.RoleID, role.Name, role.ID)
	if err != nil {
		return fmt.Errorf("sqlite: updating role %s: %w", role.ID, err)
	}
	return requireAffected(result, "role", role.ID)
}

func (r *RoleDB) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting role %s: %w", id, err)
	}
	return requireAffected(result, "role", id)
}

// TechStackDB stores canonical tech stacks.
type TechStackDB struct {
	conn *sql.DB
}

func (t *TechStackDB) Create(ctx context.Context, stack *model.TechStack) error {
	stack.ID = xid.New().String()
	_, err := t.conn.ExecContext(ctx,
		`INSERT INTO tech_stacks (id, stack_id, name) VALUES (?, ?, ?)`,
		stack.ID, stack.StackID, stack.Name)
	if err != nil {
		return fmt.Errorf("sqlite: creating tech stack: %w", err)
	}
	return nil
}

func (t *TechStackDB) List(ctx context.Context) ([]model.TechStack, error) {
	rows, err := t.conn.QueryContext(ctx, `SELECT id, stack_id, name FROM tech_stacks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tech stacks: %w", err)
	}
	defer rows.Close()

	stacks := []model.TechStack{}
	for rows.Next() {
		var stack model.TechStack
		if err := rows.Scan(&stack.ID, &stack.StackID, &stack.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tech stack row: %w", err)
		}
		stacks = append(stacks, stack)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tech stacks: %w", err)
	}
	return stacks, nil
}

// requireAffected turns a zero-row UPDATE/DELETE into apperror.NotFound.
func requireAffected(result sql.Result, resource, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
