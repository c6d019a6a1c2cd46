package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/auth"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

var _ auth.AdminChecker = (*UserService)(nil)

type UserService struct {
	users  repository.UserRepository
	admins map[string]struct{}
	logger *slog.Logger
}

// NewUserService builds a UserService. admins are GitHub usernames allowed to
// manage canonical roles.
func NewUserService(users repository.UserRepository, admins []string, logger *slog.Logger) *UserService {
	set := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &UserService{users: users, admins: set, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing: %w", err)
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{UserID: u.ID, Username: u.Username})
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*UserApplications, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/user: getting %s: %w", id, err)
	}
	applied := u.Applied
	if applied == nil {
		applied = []string{}
	}
	return &UserApplications{UserID: u.ID, Username: u.Username, Applied: applied}, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*UserContact, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/user: getting %q: %w", username, err)
	}
	return &UserContact{ID: u.ID, Username: u.Username, Email: u.Email}, nil
}

// IsAdmin reports whether the user's username is on the admin list. A user
// id that no longer resolves is simply not an admin.
func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if len(s.admins) == 0 {
		return false, nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("service/user: checking admin %s: %w", userID, err)
	}
	_, ok := s.admins[u.Username]
	return ok, nil
}
