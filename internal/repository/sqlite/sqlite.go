// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no CGo).
//
// It mirrors the document layout of the MongoDB backend: list-valued fields
// (techStack, roles, applied) are stored as JSON arrays and queried with
// SQLite's json_each. Rows are returned in rowid order, which is insertion
// order, matching the document store's natural order.
//
// Use ":memory:" for an in-memory database (tests). An in-memory database
// only exists on the connection that created it, so the pool is pinned to a
// single connection in that case.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sujiiiiit/collabhub-backend/internal/repository"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The per-collection repositories share it.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and creates the schema if needed.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Users() *UserDB               { return &UserDB{conn: db.conn} }
func (db *DB) RolePosts() *RolePostDB       { return &RolePostDB{conn: db.conn} }
func (db *DB) Applications() *ApplicationDB { return &ApplicationDB{conn: db.conn} }
func (db *DB) Roles() *RoleDB               { return &RoleDB{conn: db.conn} }
func (db *DB) TechStacks() *TechStackDB     { return &TechStackDB{conn: db.conn} }

// Store returns every repository backed by this database. Closing the store
// closes the database.
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Users:        db.Users(),
		RolePosts:    db.RolePosts(),
		Applications: db.Applications(),
		Roles:        db.Roles(),
		TechStacks:   db.TechStacks(),
		Closer:       db,
	}
}

// migrate creates every table. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			username          TEXT NOT NULL,
			email             TEXT NOT NULL DEFAULT '',
			github_id         TEXT NOT NULL UNIQUE,
			access_token      TEXT NOT NULL DEFAULT '',
			application_count INTEGER NOT NULL DEFAULT 0,
			applied           TEXT NOT NULL DEFAULT '[]'
		);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS role_posts (
			id          TEXT PRIMARY KEY,
			p_name      TEXT NOT NULL DEFAULT '',
			repo_link   TEXT NOT NULL DEFAULT '',
			tech_stack  TEXT NOT NULL DEFAULT '[]',
			tech_public INTEGER NOT NULL DEFAULT 0,
			roles       TEXT NOT NULL DEFAULT '[]',
			address     TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			duration    TEXT NOT NULL DEFAULT '',
			deadline    TEXT NOT NULL DEFAULT '',
			user_id     TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_role_posts_user_id ON role_posts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating role_posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id                  TEXT PRIMARY KEY,
			username            TEXT NOT NULL DEFAULT '',
			created_by          TEXT NOT NULL DEFAULT '',
			role_post_id        TEXT NOT NULL DEFAULT '',
			message             TEXT NOT NULL DEFAULT '',
			role                TEXT NOT NULL DEFAULT '',
			resume_data         BLOB,
			resume_content_type TEXT NOT NULL DEFAULT '',
			resume_filename     TEXT NOT NULL DEFAULT '',
			applied_on          TEXT NOT NULL,
			status              TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_applications_role_post_id ON applications(role_post_id);
		CREATE INDEX IF NOT EXISTS idx_applications_created_by ON applications(created_by);
	`)
	if err != nil {
		return fmt.Errorf("creating applications table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			id      TEXT PRIMARY KEY,
			role_id TEXT NOT NULL DEFAULT '',
			name    TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS tech_stacks (
			id       TEXT PRIMARY KEY,
			stack_id TEXT NOT NULL DEFAULT '',
			name     TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating taxonomy tables: %w", err)
	}

	return nil
}

// encodeList stores a nil slice as "[]" so json_each always sees an array.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}
