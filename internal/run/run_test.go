package run

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadAndList(t *testing.T) {
	root := t.TempDir()

	older := New(root, "movies.csv", "analyze")
	older.StartedAt = time.Now().Add(-time.Hour)
	older.RowsLoaded = 7668
	older.HighPairs = []PairInfo{{A: "budget", B: "gross", R: 0.74}}
	if err := older.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	newer := New(root, "movies.csv", "corr")
	if err := newer.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(newer.Dir(), "run.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}

	got, err := Load(older.Dir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != older.ID || got.RowsLoaded != 7668 || len(got.HighPairs) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	runs, err := List(root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID {
		t.Fatalf("list order wrong: %d runs, first %s", len(runs), runs[0].ID)
	}

	m, err := Find(root, older.ID[:8])
	if err != nil || m.ID != older.ID {
		t.Fatalf("find by prefix: %v", err)
	}
	if _, err := Find(root, "zzzz"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestListMissingRoot(t *testing.T) {
	runs, err := List(filepath.Join(t.TempDir(), "absent"))
	if err != nil || len(runs) != 0 {
		t.Fatalf("runs=%v err=%v", runs, err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected error")
	}
}
