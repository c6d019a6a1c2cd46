package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
)

// newTestProvider points a GitHubProvider at a fake GitHub served by mux.
func newTestProvider(t *testing.T, mux *http.ServeMux, timeout time.Duration) *GitHubProvider {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback", timeout)
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.apiBase = srv.URL
	return p
}

func requireBearer(t *testing.T, r *http.Request, token string) {
	t.Helper()
	assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
}

func TestAuthURL_CarriesStateAndScopes(t *testing.T) {
	p := NewGitHubProvider("client-id", "secret", "http://localhost/cb", time.Second)
	u := p.AuthURL("state-123")

	assert.True(t, strings.HasPrefix(u, "https://github.com/login/oauth/authorize?"))
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "scope=user%3Aemail+repo")
}

func TestExchangeCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gho_exchanged","token_type":"bearer","scope":"user:email,repo"}`))
	})
	p := newTestProvider(t, mux, time.Second)

	token, err := p.ExchangeCode(t.Context(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_exchanged", token)
}

func TestFetchProfile_PublicEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "gho_tok")
		w.Write([]byte(`{"id":583231,"login":"octocat","email":"octo@github.com"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		t.Error("/user/emails should not be called when /user has an email")
	})
	p := newTestProvider(t, mux, time.Second)

	profile, err := p.FetchProfile(t.Context(), "gho_tok")
	require.NoError(t, err)
	assert.Equal(t, &GitHubProfile{ID: "583231", Login: "octocat", Email: "octo@github.com"}, profile)
}

func TestFetchProfile_PrivateEmailFallsBackToPrimary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"login":"hidden","email":null}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"email":"old@example.com","primary":false,"verified":true},
			{"email":"main@example.com","primary":true,"verified":true}
		]`))
	})
	p := newTestProvider(t, mux, time.Second)

	profile, err := p.FetchProfile(t.Context(), "gho_tok")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", profile.Email)
}

func TestFetchProfile_NoEmailAnywhere(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"login":"hidden"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	p := newTestProvider(t, mux, time.Second)

	profile, err := p.FetchProfile(t.Context(), "gho_tok")
	require.NoError(t, err)
	assert.Empty(t, profile.Email)
}

func TestFetchProfile_UpstreamStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	})
	p := newTestProvider(t, mux, time.Second)

	_, err := p.FetchProfile(t.Context(), "revoked")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}

func TestFetchRepositories_RelaysBodyVerbatim(t *testing.T) {
	const body = `[{"id":1,"name":"hello-world","private":false}]`
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r, "gho_tok")
		w.Write([]byte(body))
	})
	p := newTestProvider(t, mux, time.Second)

	repos, err := p.FetchRepositories(t.Context(), "gho_tok")
	require.NoError(t, err)
	assert.Equal(t, body, string(repos))
}

func TestFetchRepositories_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	p := newTestProvider(t, mux, 50*time.Millisecond)

	_, err := p.FetchRepositories(t.Context(), "gho_tok")
	assert.ErrorIs(t, err, apperror.ErrUpstreamTimeout)
}
