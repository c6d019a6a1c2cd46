// Package service: authentication business logic.
//
// AuthService sits between the auth HTTP handlers and the identity provider
// and user store:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ IdentityProvider (GitHub)
//	                   ↘ Sealer (access tokens at rest)
//
// KEY RESPONSIBILITIES:
//   - Complete the OAuth callback: exchange the code, fetch the profile, then
//     create the user or refresh their stored token
//   - Keep provider tokens sealed in the store and unsealed everywhere else
//   - Forward the user's token to the provider on their behalf
//
// Session cookies are not handled here. The handler asks auth.Authenticator
// to start a session once CompleteLogin has returned a user.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/auth"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

// IdentityProvider is the OAuth provider the service signs users in with.
// auth.GitHubProvider implements it; tests inject a mock.
type IdentityProvider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*auth.GitHubProfile, error)
	FetchRepositories(ctx context.Context, accessToken string) (json.RawMessage, error)
}

var _ IdentityProvider = (*auth.GitHubProvider)(nil)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user records
//   - provider  IdentityProvider          → OAuth exchange and profile calls
//   - sealer    *auth.Sealer              → encrypt tokens before storing them
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users    repository.UserRepository
	provider IdentityProvider
	sealer   *auth.Sealer
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	provider IdentityProvider,
	sealer *auth.Sealer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		provider: provider,
		sealer:   sealer,
		logger:   logger,
	}
}

// AuthURL returns the provider URL the browser is redirected to. state is
// echoed back on the callback and must be checked by the caller.
func (s *AuthService) AuthURL(state string) string {
	return s.provider.AuthURL(state)
}

// CompleteLogin handles the OAuth callback.
//
//  1. Exchange the one-time code for an access token
//  2. Fetch the GitHub profile with that token
//  3. Look the user up by githubId:
//     found     → overwrite the stored access token, nothing else
//     not found → create the user with zero applications
//
// The returned user carries the plaintext token. Only the stored copy is
// sealed.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, apperror.ValidationFailed("code", "Missing authorization code")
	}

	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/auth: exchanging code: %w", err)
	}

	profile, err := s.provider.FetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching profile: %w", err)
	}

	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return nil, fmt.Errorf("service/auth: sealing token: %w", err)
	}

	user, err := s.users.GetByGitHubID(ctx, profile.ID)
	switch {
	case err == nil:
		if err := s.users.UpdateAccessToken(ctx, user.ID, sealed); err != nil {
			return nil, fmt.Errorf("service/auth: refreshing token for %s: %w", user.ID, err)
		}
		s.logger.Info("user signed in",
			slog.String("userID", user.ID),
			slog.String("username", user.Username),
		)

	case errors.Is(err, apperror.ErrNotFound):
		email := profile.Email
		if email == "" {
			email = model.EmailPlaceholder
		}
		user = &model.User{
			Username:    profile.Login,
			Email:       email,
			GitHubID:    profile.ID,
			AccessToken: sealed,
			Applied:     []string{},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating user %q: %w", profile.Login, err)
		}
		s.logger.Info("user registered",
			slog.String("userID", user.ID),
			slog.String("username", user.Username),
		)

	default:
		return nil, fmt.Errorf("service/auth: looking up github id %s: %w", profile.ID, err)
	}

	user.AccessToken = token
	return user, nil
}

// CurrentUser returns the full stored user with the access token unsealed.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}

	token, err := s.sealer.Open(user.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: opening token for %s: %w", userID, err)
	}
	user.AccessToken = token
	if user.Applied == nil {
		user.Applied = []string{}
	}
	return user, nil
}

// AccessToken returns the user's plaintext provider token.
func (s *AuthService) AccessToken(ctx context.Context, userID string) (string, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.AccessToken, nil
}

// Repositories lists the user's repositories on the provider. The body is
// passed through untouched.
func (s *AuthService) Repositories(ctx context.Context, userID string) (json.RawMessage, error) {
	token, err := s.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	repos, err := s.provider.FetchRepositories(ctx, token)
	if err != nil {
		s.logger.Warn("listing repositories failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: listing repositories for %s: %w", userID, err)
	}
	return repos, nil
}
