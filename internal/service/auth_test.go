package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/auth"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

// =========================================================================
// MOCK PROVIDER
// =========================================================================

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) FetchProfile(ctx context.Context, accessToken string) (*auth.GitHubProfile, error) {
	args := m.Called(ctx, accessToken)
	profile, _ := args.Get(0).(*auth.GitHubProfile)
	return profile, args.Error(1)
}

func (m *mockProvider) FetchRepositories(ctx context.Context, accessToken string) (json.RawMessage, error) {
	args := m.Called(ctx, accessToken)
	repos, _ := args.Get(0).(json.RawMessage)
	return repos, args.Error(1)
}

type authFixture struct {
	store    *repository.Store
	provider *mockProvider
	sealer   *auth.Sealer
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := newTestStore(t)
	sealer, err := auth.NewSealer("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	provider := &mockProvider{}
	t.Cleanup(func() { provider.AssertExpectations(t) })
	return &authFixture{
		store:    store,
		provider: provider,
		sealer:   sealer,
		svc:      NewAuthService(store.Users, provider, sealer, discardLogger()),
	}
}

// =========================================================================
// CompleteLogin TESTS
// =========================================================================

func TestCompleteLogin_NewUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.provider.On("ExchangeCode", ctx, "code-1").Return("gho_first", nil)
	f.provider.On("FetchProfile", ctx, "gho_first").
		Return(&auth.GitHubProfile{ID: "42", Login: "octocat", Email: "octocat@github.com"}, nil)

	user, err := f.svc.CompleteLogin(ctx, "code-1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, "octocat", user.Username)
	assert.Equal(t, "gho_first", user.AccessToken)

	stored, err := f.store.Users.GetByGitHubID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, 0, stored.ApplicationCount)
	assert.True(t, strings.HasPrefix(stored.AccessToken, "v1:"), "token must be sealed at rest")
	assert.NotContains(t, stored.AccessToken, "gho_first")
}

func TestCompleteLogin_ExistingUserRefreshesTokenOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	existing := &model.User{Username: "octocat", Email: "old@example.com", GitHubID: "42", AccessToken: "legacy"}
	require.NoError(t, f.store.Users.Create(ctx, existing))

	f.provider.On("ExchangeCode", ctx, "code-2").Return("gho_second", nil)
	f.provider.On("FetchProfile", ctx, "gho_second").
		Return(&auth.GitHubProfile{ID: "42", Login: "renamed", Email: "new@example.com"}, nil)

	user, err := f.svc.CompleteLogin(ctx, "code-2")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "octocat", user.Username)
	assert.Equal(t, "old@example.com", user.Email)

	got, err := f.svc.AccessToken(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "gho_second", got)
}

func TestCompleteLogin_PrivateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.provider.On("ExchangeCode", ctx, "code").Return("gho_x", nil)
	f.provider.On("FetchProfile", ctx, "gho_x").Return(&auth.GitHubProfile{ID: "7", Login: "quiet"}, nil)

	user, err := f.svc.CompleteLogin(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, model.EmailPlaceholder, user.Email)
}

func TestCompleteLogin_ProviderFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.provider.On("ExchangeCode", ctx, "bad").
		Return("", apperror.UpstreamTimeout("GitHub did not respond in time", context.DeadlineExceeded))

	_, err := f.svc.CompleteLogin(ctx, "bad")
	require.ErrorIs(t, err, apperror.ErrUpstreamTimeout)

	users, err := f.store.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCompleteLogin_MissingCode(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.CompleteLogin(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

// =========================================================================
// SESSION USER TESTS
// =========================================================================

func TestCurrentUser_LegacyPlaintextToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	legacy := &model.User{Username: "old", Email: "old@example.com", GitHubID: "9", AccessToken: "gho_plain"}
	require.NoError(t, f.store.Users.Create(ctx, legacy))

	user, err := f.svc.CurrentUser(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "gho_plain", user.AccessToken)
	assert.NotNil(t, user.Applied)
}

func TestCurrentUser_Errors(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.CurrentUser(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.svc.CurrentUser(context.Background(), "gone")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRepositories(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sealed, err := f.sealer.Seal("gho_repo")
	require.NoError(t, err)
	user := &model.User{Username: "dev", Email: "dev@example.com", GitHubID: "11", AccessToken: sealed}
	require.NoError(t, f.store.Users.Create(ctx, user))

	body := json.RawMessage(`[{"id":1,"name":"hello-world"}]`)
	f.provider.On("FetchRepositories", ctx, "gho_repo").Return(body, nil).Once()

	got, err := f.svc.Repositories(ctx, user.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(got))

	upstream := apperror.Upstream("GitHub request failed", errors.New("502"))
	f.provider.On("FetchRepositories", ctx, "gho_repo").Return(nil, upstream).Once()

	_, err = f.svc.Repositories(ctx, user.ID)
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestAuthURL_Delegates(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.On("AuthURL", "state-1").Return("https://github.com/login/oauth/authorize?state=state-1")

	assert.Equal(t, "https://github.com/login/oauth/authorize?state=state-1", f.svc.AuthURL("state-1"))
}
