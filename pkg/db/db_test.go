package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"text2audio/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	d.Close()
}

func TestDB_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	d.Close()

	d, err = db.Init(path)
	if err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	defer d.Close()

	var n int
	if err := d.QueryRow("SELECT count(*) FROM narrations").Scan(&n); err != nil {
		t.Fatalf("narrations table missing after reopen: %v", err)
	}
}

func TestPruneHistory(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "db_test.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	stale := time.Now().Add(-72 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	fresh := time.Now().UTC().Format("2006-01-02 15:04:05")
	for uuid, createdAt := range map[string]string{"old-run": stale, "new-run": fresh} {
		if _, err := d.Exec("INSERT INTO narrations (uuid, source_file, created_at) VALUES (?, ?, ?)",
			uuid, "notes.md", createdAt); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	if err := d.PruneHistory(24 * time.Hour); err != nil {
		t.Fatalf("PruneHistory failed: %v", err)
	}

	var uuids []string
	rows, err := d.Query("SELECT uuid FROM narrations")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatal(err)
		}
		uuids = append(uuids, id)
	}
	if len(uuids) != 1 || uuids[0] != "new-run" {
		t.Errorf("expected only new-run to survive, got %v", uuids)
	}
}
