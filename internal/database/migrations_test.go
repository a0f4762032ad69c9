package database

import (
	"os"
	"slices"
	"testing"
	"testing/fstest"
)

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"003_event_audit.sql":       {Data: []byte("SELECT 1;")},
		"001_snapshots.sql":         {Data: []byte("SELECT 1;")},
		"README.md":                 {Data: []byte("docs")},
		"002_restock_requests.sql":  {Data: []byte("SELECT 1;")},
		"archive/000_bootstrap.txt": {Data: []byte("old")},
	}

	got, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	want := []string{"001_snapshots.sql", "002_restock_requests.sql", "003_event_audit.sql"}
	if !slices.Equal(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
}

func TestRepositoryMigrations(t *testing.T) {
	got, err := migrationFiles(os.DirFS("../../migrations"))
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("files = %v", got)
	}
}
