package testsupport

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"kinokod/internal/sqlite"
)

// MustOpenRepository opens a Repository on a per-test temp database and
// registers cleanup.
func MustOpenRepository(t testing.TB) *sqlite.Repository {
	t.Helper()

	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "kinokod.db"))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
