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

var _ repository.ApplicationRepository = (*ApplicationDB)(nil)

// ApplicationDB stores applications in the applications table.
type ApplicationDB struct {
	conn *sql.DB
}

// applicationColumns excludes the résumé columns; only GetResume reads them.
const applicationColumns = `id, username, created_by, role_post_id, message, role, applied_on, status`

// Submit inserts app and links it to its user in one transaction.
//
// Every statement inside the transaction goes through tx. With an in-memory
// database the pool holds a single connection, so touching u.conn here would
// block forever.
func (a *ApplicationDB) Submit(ctx context.Context, app *model.Application) (applied []string, err error) {
	tx, err := a.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning submit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	app.ID = xid.New().String()

	var resume model.Resume
	if app.Resume != nil {
		resume = *app.Resume
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`,
			resume_data, resume_content_type, resume_filename)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID,
		app.Username,
		app.CreatedBy,
		app.RolePostID,
		app.Message,
		app.Role,
		app.AppliedOn,
		string(app.Status),
		resume.Data,
		resume.ContentType,
		resume.Filename,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting application: %w", err)
	}

	var (
		userID     string
		appliedRaw string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, applied FROM users WHERE username = ? ORDER BY rowid LIMIT 1`,
		app.Username,
	).Scan(&userID, &appliedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		// No user with that name: the application stands on its own.
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("sqlite: committing submit: %w", err)
		}
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading user %q: %w", app.Username, err)
	}

	applied, err = decodeList(appliedRaw)
	if err != nil {
		return nil, fmt.Errorf("sqlite: decoding applied for user %s: %w", userID, err)
	}
	applied = append(applied, app.ID)

	encoded, err := encodeList(applied)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding applied: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET application_count = application_count + 1, applied = ? WHERE id = ?`,
		encoded, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: linking application to user %s: %w", userID, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing submit: %w", err)
	}
	return applied, nil
}

func (a *ApplicationDB) GetByID(ctx context.Context, id string) (*model.Application, error) {
	row := a.conn.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting application %s: %w", id, err)
	}
	return app, nil
}

func (a *ApplicationDB) GetResume(ctx context.Context, id string) (*model.Application, error) {
	var (
		app    = model.Application{ID: id}
		resume model.Resume
	)
	err := a.conn.QueryRowContext(ctx,
		`SELECT resume_data, resume_content_type, resume_filename
		 FROM applications WHERE id = ?`, id,
	).Scan(&resume.Data, &resume.ContentType, &resume.Filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting resume for application %s: %w", id, err)
	}
	app.Resume = &resume
	return &app, nil
}

func (a *ApplicationDB) Exists(ctx context.Context, username, rolePostID string) (bool, error) {
	var found int
	err := a.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE username = ? AND role_post_id = ?)`,
		username, rolePostID,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking application for %q on %q: %w", username, rolePostID, err)
	}
	return found == 1, nil
}

// ListByRolePostPrefix matches role_post_id values that start with prefix.
// substr avoids LIKE so '%' and '_' in the prefix are matched literally.
func (a *ApplicationDB) ListByRolePostPrefix(ctx context.Context, prefix string) ([]model.Application, error) {
	return a.query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE substr(role_post_id, 1, length(?)) = ?
		 ORDER BY rowid`,
		prefix, prefix)
}

func (a *ApplicationDB) ListByCreator(ctx context.Context, userID string) ([]model.Application, error) {
	return a.query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE created_by = ? ORDER BY rowid`,
		userID)
}

func (a *ApplicationDB) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	result, err := a.conn.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("sqlite: updating status of application %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", id)
	}
	return nil
}

func (a *ApplicationDB) query(ctx context.Context, query string, args ...any) ([]model.Application, error) {
	rows, err := a.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing applications: %w", err)
	}
	defer rows.Close()

	apps := []model.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}
	return apps, nil
}

func scanApplication(s scanner) (*model.Application, error) {
	var (
		app    model.Application
		status string
	)
	if err := s.Scan(
		&app.ID,
		&app.Username,
		&app.CreatedBy,
		&app.RolePostID,
		&app.Message,
		&app.Role,
		&app.AppliedOn,
		&status,
	); err != nil {
		return nil, err
	}
	app.Status = model.NormalizeStatus(status)
	return &app, nil
}
