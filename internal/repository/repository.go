// Package repository declares the storage interfaces the services depend on.
//
// Two backends implement them: internal/repository/mongodb (the production
// document store) and internal/repository/sqlite (embedded, used for local
// development and tests). Both translate "no such record" into
// apperror.NotFound so services never inspect driver errors.
package repository

import (
	"context"
	"io"

	"github.com/sujiiiiit/collabhub-backend/internal/model"
)

// RolePostFilter selects role posts for the paginated listing.
// Empty fields are not applied; TechStack and Roles match "any of".
type RolePostFilter struct {
	UserID    string
	TechStack []string
	Roles     []string
	Limit     int
	Offset    int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateAccessToken(ctx context.Context, id, accessToken string) error
	List(ctx context.Context) ([]model.User, error)
}

type RolePostRepository interface {
	Create(ctx context.Context, post *model.RolePost) error
	GetByID(ctx context.Context, id string) (*model.RolePost, error)
	List(ctx context.Context, filter RolePostFilter) ([]model.RolePost, error)
	ListByUser(ctx context.Context, userID string) ([]model.RolePost, error)
	// Update replaces every mutable field; UserID and CreatedAt are ignored.
	Update(ctx context.Context, post *model.RolePost) error
}

type ApplicationRepository interface {
	// Submit inserts app and, in the same transaction, links it to the user
	// whose username equals app.Username (applicationCount+1, id appended to
	// applied). It returns the user's applied list after the update, or an
	// empty list when no such user exists.
	Submit(ctx context.Context, app *model.Application) ([]string, error)
	// GetByID never loads the résumé payload.
	GetByID(ctx context.Context, id string) (*model.Application, error)
	// GetResume loads only the id and résumé.
	GetResume(ctx context.Context, id string) (*model.Application, error)
	Exists(ctx context.Context, username, rolePostID string) (bool, error)
	ListByRolePostPrefix(ctx context.Context, prefix string) ([]model.Application, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Application, error)
	UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error
}

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id string) error
}

type TechStackRepository interface {
	Create(ctx context.Context, stack *model.TechStack) error
	List(ctx context.Context) ([]model.TechStack, error)
}

// Store bundles one implementation of every repository with the resource
// that owns them. It is built once at startup and passed by reference.
type Store struct {
	Users        UserRepository
	RolePosts    RolePostRepository
	Applications ApplicationRepository
	Roles        RoleRepository
	TechStacks   TechStackRepository

	io.Closer
}
