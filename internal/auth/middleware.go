package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sujiiiiit/collabhub-backend/internal/session"
)

// CookieName is the HttpOnly cookie that carries the signed session token.
const CookieName = "collabhub_session"

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue accepts any key. A plain string like "userID" could be
// read or shadowed by any package that knows the string. A package-private
// type means only this package can create, and so read, these keys.
type contextKey string

const userIDKey contextKey = "userID"

// AdminChecker decides whether a user may use the admin surface.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Authenticator ties the cookie (TokenService) to the server-side session
// (session.Store). It starts and ends sessions and provides the middleware
// that resolves them.
type Authenticator struct {
	tokens   *TokenService
	sessions session.Store
	ttl      time.Duration
	secure   bool
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator. secure sets the cookie's Secure
// flag and should be true whenever the site is served over HTTPS.
func NewAuthenticator(tokens *TokenService, sessions session.Store, ttl time.Duration, secure bool, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		sessions: sessions,
		ttl:      ttl,
		secure:   secure,
		logger:   logger,
	}
}

// Login starts a session for userID and sets the cookie on w.
func (a *Authenticator) Login(ctx context.Context, w http.ResponseWriter, userID string) error {
	sessionID, err := a.sessions.Create(ctx, userID)
	if err != nil {
		return fmt.Errorf("auth: creating session: %w", err)
	}
	token, err := a.tokens.Generate(userID, sessionID, a.ttl)
	if err != nil {
		return err
	}

	// HttpOnly: JavaScript cannot read the cookie (XSS protection).
	// SameSite=Lax: sent on top-level navigations, not on cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout destroys the session named by the request's cookie, if any, and
// clears the cookie. Only a failing session store is an error; a missing or
// invalid cookie already means "logged out".
func (a *Authenticator) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if claims, err := a.tokens.Validate(cookie.Value); err == nil {
			if err := a.sessions.Destroy(ctx, claims.SessionID); err != nil {
				return fmt.Errorf("auth: destroying session: %w", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// RequireAuth rejects requests without a live session with 401 and stores
// the userID in the request context otherwise.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware takes an http.Handler and returns a new http.Handler that
// wraps it. Chi applies them in a chain: req → M1 → M2 → Handler → M2 → M1.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.resolve(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// OptionalAuth resolves the session when there is one but never blocks the
// request. Handlers check UserIDFromContext to tell the two cases apart.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := a.resolve(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin must run after RequireAuth. It answers 403 when checker says
// the user is not an admin.
func RequireAdmin(checker AdminChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "Not authenticated")
				return
			}
			admin, err := checker.IsAdmin(r.Context(), userID)
			if err != nil {
				logger.Error("admin check failed", slog.String("userID", userID), slog.Any("error", err))
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				return
			}
			if !admin {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the authenticated user's ID, or ("", false) for
// an anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a copy of ctx carrying userID, as RequireAuth does.
// Tests use it to call handlers directly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// resolve validates the cookie and checks that its session is still live and
// belongs to the same user.
func (a *Authenticator) resolve(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	claims, err := a.tokens.Validate(cookie.Value)
	if err != nil {
		return "", err
	}

	userID, err := a.sessions.UserID(r.Context(), claims.SessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			a.logger.Error("session lookup failed", slog.Any("error", err))
		}
		return "", err
	}
	if userID != claims.UserID {
		return "", errors.New("auth: session belongs to another user")
	}
	return userID, nil
}

func writeAuthError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": errorType, "message": message})
}
