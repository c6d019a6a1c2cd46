package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubProfile is the part of the GitHub identity the app stores.
//
// ID is GitHub's numeric user id rendered as a decimal string; it is stable
// even when the user renames their account. Email is empty when GitHub
// returned no address at all.
type GitHubProfile struct {
	ID    string
	Login string
	Email string
}

// githubUser is the subset of GET /user we decode.
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"` // empty when hidden in the user's GitHub settings
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow and makes the few REST calls the app needs with the user's token.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. The server redirects the user to GitHub's authorization endpoint with
//     the ClientID and the requested scopes.
//  2. The user approves (or denies) the request on GitHub.
//  3. GitHub redirects back to the callback URL with a short-lived "code".
//  4. The server exchanges the code for an access token (server-to-server,
//     using the ClientSecret).
//  5. The server uses the access token to call the GitHub API.
//
// Every outbound call is bounded by timeout. A call that runs past it is
// reported as apperror.UpstreamTimeout; any other failure as apperror.Upstream.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
	timeout time.Duration
}

// NewGitHubProvider creates a GitHubProvider.
//
// callbackURL must match the "Authorization callback URL" configured on the
// GitHub OAuth App exactly.
//
// Scopes:
//   - "user:email": read the user's email addresses, including private ones
//   - "repo": list the user's repositories for GET /auth/github/repos
func NewGitHubProvider(clientID, clientSecret, callbackURL string, timeout time.Duration) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"user:email", "repo"},
			Endpoint:     github.Endpoint,
		},
		apiBase: defaultGitHubAPI,
		timeout: timeout,
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// STATE PARAMETER:
// The state is a random string stored in a cookie before redirecting. The
// callback verifies the returned state matches the cookie, so an attacker
// cannot trick a browser into completing a login for the attacker's account.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode trades the authorization code for an access token.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", upstreamError(ctx, "GitHub code exchange failed", err)
	}
	return token.AccessToken, nil
}

// FetchProfile loads the user behind accessToken.
//
// GitHub leaves "email" empty on /user when the user keeps it private. In
// that case the primary address from /user/emails is used (the user:email
// scope allows reading it), then the first listed address.
func (p *GitHubProvider) FetchProfile(ctx context.Context, accessToken string) (*GitHubProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var user githubUser
	if err := p.getJSON(ctx, accessToken, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, apperror.Upstream("GitHub returned an invalid user", errors.New("auth: GitHub user id is 0"))
	}

	profile := &GitHubProfile{
		ID:    strconv.FormatInt(user.ID, 10),
		Login: user.Login,
		Email: user.Email,
	}
	if profile.Email != "" {
		return profile, nil
	}

	var emails []githubEmail
	if err := p.getJSON(ctx, accessToken, "/user/emails", &emails); err != nil {
		return nil, err
	}
	for _, e := range emails {
		if e.Primary {
			profile.Email = e.Email
			return profile, nil
		}
	}
	if len(emails) > 0 {
		profile.Email = emails[0].Email
	}
	return profile, nil
}

// FetchRepositories returns the body of GET /user/repos untouched.
func (p *GitHubProvider) FetchRepositories(ctx context.Context, accessToken string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := p.get(ctx, accessToken, "/user/repos")
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, apperror.Upstream("GitHub returned malformed JSON", errors.New("auth: /user/repos body is not JSON"))
	}
	return json.RawMessage(body), nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, accessToken, path string, out any) error {
	body, err := p.get(ctx, accessToken, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperror.Upstream("GitHub returned malformed JSON", fmt.Errorf("auth: decoding %s: %w", path, err))
	}
	return nil
}

// get performs an authenticated GET. oauth2.NewClient returns an
// *http.Client that adds "Authorization: Bearer <token>" to every request.
func (p *GitHubProvider) get(ctx context.Context, accessToken, path string) ([]byte, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, upstreamError(ctx, "GitHub API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(ctx, "GitHub API request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("GitHub API request failed",
			fmt.Errorf("auth: GitHub %s returned status %d", path, resp.StatusCode))
	}
	return body, nil
}

// upstreamError classifies a transport failure as a timeout or not. ctx is
// checked too because not every layer wraps the deadline error with %w.
func upstreamError(ctx context.Context, message string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.UpstreamTimeout("GitHub did not respond in time", err)
	}
	return apperror.Upstream(message, err)
}
