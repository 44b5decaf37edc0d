// Package testutil provides shared test helpers for setting up output
// directories and catalog databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically
// cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "perthro-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestOutputDir creates a temporary output directory with a storage.Provider.
func TestOutputDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	outDir := t.TempDir()
	store, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	return outDir, store
}
