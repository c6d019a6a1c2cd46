package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sujiiiiit/collabhub-backend/internal/repository"
	"github.com/sujiiiiit/collabhub-backend/internal/repository/sqlite"
)

// The services are tested against the real SQLite backend in memory rather
// than hand-written fakes, so repository semantics (prefix matching, the
// submit transaction) are exercised end to end.

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.Store()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedTime = time.Date(2024, 11, 3, 14, 5, 9, 123_000_000, time.FixedZone("IST", 5*3600+1800))

func fixedClock() time.Time { return fixedTime }
