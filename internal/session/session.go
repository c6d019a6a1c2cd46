// Package session keeps server-side login sessions.
//
// A session maps an opaque id (rs/xid) to the id of the user who logged in.
// The cookie issued by internal/auth only carries that id, signed; the
// session itself lives here, so destroying it logs the browser out at once
// even though the cookie may not have expired.
//
// Two implementations exist: RedisStore for deployments with more than one
// process, and MemoryStore for a single process or tests.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by UserID when the session never existed, expired,
// or was destroyed.
var ErrNotFound = errors.New("session: not found")

// Store is the contract both implementations satisfy.
type Store interface {
	// Create starts a session for userID and returns its id.
	Create(ctx context.Context, userID string) (string, error)
	// UserID resolves a live session.
	UserID(ctx context.Context, sessionID string) (string, error)
	// Destroy ends a session. Destroying an unknown id is not an error.
	Destroy(ctx context.Context, sessionID string) error
}
