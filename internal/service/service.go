// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the document store
//
// Services take repository interfaces, never a concrete store, so the same
// code runs on MongoDB in production and on in-memory SQLite in tests.
//
// Services also own the response projections (view.go). Which fields of a
// RolePost or Application leave the server, and when techStack may be shown,
// are business rules; the handlers only encode what they are given.
package service

import (
	"time"
)

// clock is replaced in tests to get stable timestamps.
type clock func() time.Time
