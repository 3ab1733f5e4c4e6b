package storage

import (
	"path/filepath"
	"testing"
)

func TestNewMetadataDBCreatesParentDir(t *testing.T) {
	// The configured database path nests under a directory that does
	// not exist on a fresh checkout.
	dbPath := filepath.Join(t.TempDir(), "data", "transcripts.db")

	db, err := NewMetadataDB(dbPath)
	if err != nil {
		t.Fatalf("NewMetadataDB failed for a nested path: %v", err)
	}
	defer db.Close()

	if err := db.SaveTranscript("job1", "v.mp4", 3, 1, "results/job1.json", ""); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	row, err := db.GetTranscript("job1")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if row["line_count"] != 3 || row["failed_count"] != 1 {
		t.Errorf("row mismatch: %+v", row)
	}
}

func TestListTranscriptsOrdering(t *testing.T) {
	db, err := NewMetadataDB(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("NewMetadataDB failed: %v", err)
	}
	defer db.Close()

	db.SaveTranscript("a", "a.mp4", 1, 0, "results/a.json", "")
	db.SaveTranscript("b", "b.mp4", 2, 0, "results/b.json", "")

	rows, err := db.ListTranscripts(10)
	if err != nil {
		t.Fatalf("ListTranscripts failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}
