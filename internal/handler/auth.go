package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sujiiiiit/collabhub-backend/internal/auth"
	"github.com/sujiiiiit/collabhub-backend/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler manages the GitHub OAuth login flow and the session endpoints.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → receive the code, sign the user in, start a session
//   - HandleCurrentUser    → return the signed-in user's stored record
//   - HandleAccessToken    → return the signed-in user's GitHub token
//   - HandleRepositories   → relay the user's repository list from GitHub
//   - HandleLogout         → end the session and clear the cookie
//
// DEPENDENCY CHAIN:
//   - svc      *service.AuthService  → OAuth exchange and user upsert
//   - sessions *auth.Authenticator   → session store and cookie
type AuthHandler struct {
	svc        *service.AuthService
	sessions   *auth.Authenticator
	clientURL  string
	failureURL string
	secure     bool
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler. clientURL is where a successful
// login lands; failureURL is where every failed callback lands.
func NewAuthHandler(
	svc *service.AuthService,
	sessions *auth.Authenticator,
	clientURL, failureURL string,
	secure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		sessions:   sessions,
		clientURL:  clientURL,
		failureURL: failureURL,
		secure:     secure,
		logger:     logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github
//
// CSRF PROTECTION VIA STATE:
// A random state string goes into a short-lived cookie and into the
// authorization URL. GitHub echoes it on the callback, where it must match
// the cookie. That proves the callback belongs to a login this browser
// started.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.svc.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code and create or refresh the user
//  3. Start a session and set its cookie
//  4. Redirect to the client app
//
// Any failure redirects to the configured failure URL; the browser is
// mid-navigation here, so a JSON error body would never be seen.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || q.Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		h.fail(w, r)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		h.fail(w, r)
		return
	}

	user, err := h.svc.CompleteLogin(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		h.fail(w, r)
		return
	}

	if err := h.sessions.Login(r.Context(), w, user.ID); err != nil {
		h.logger.Error("auth callback: starting session failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		h.fail(w, r)
		return
	}

	http.Redirect(w, r, h.clientURL, http.StatusSeeOther)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.failureURL, http.StatusSeeOther)
}

// HandleCurrentUser returns the signed-in user's full stored record.
//
// HTTP: GET /auth/user
// Auth: Required
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleAccessToken returns {"accessToken": "..."} for the signed-in user.
//
// HTTP: GET /auth/access-token
// Auth: Required
func (h *AuthHandler) HandleAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	token, err := h.svc.AccessToken(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
}

// HandleRepositories relays GitHub's repository list for the signed-in user.
//
// HTTP: GET /auth/github/repos
// Auth: Required
func (h *AuthHandler) HandleRepositories(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	repos, err := h.svc.Repositories(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, repos)
}

// HandleLogout ends the session and clears the cookie.
//
// HTTP: POST /auth/logout
//
// The session is deleted from the store, not just from the browser, so a
// copied cookie stops working immediately.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Logout failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
