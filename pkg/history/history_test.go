package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inputs := []struct {
		input  string
		output string
		isErr  bool
	}{
		{"+ 1 2", "3", false},
		{"head {}", "Error: Function 'head' passed {} for argument 0.", true},
		{"list 1 2", "{1 2}", false},
	}
	for _, in := range inputs {
		if _, err := store.Record(ctx, Entry{Session: "s1", Input: in.input, Output: in.output, IsError: in.isErr}); err != nil {
			t.Fatalf("Record %q: %v", in.input, err)
		}
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	for i, in := range inputs {
		if all[i].Input != in.input || all[i].Output != in.output || all[i].IsError != in.isErr {
			t.Fatalf("entry %d = %#v", i, all[i])
		}
		if all[i].Session != "s1" || all[i].CreatedAt.IsZero() {
			t.Fatalf("entry %d missing metadata: %#v", i, all[i])
		}
	}

	last, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent(2): %v", err)
	}
	if len(last) != 2 || last[0].Input != "head {}" || last[1].Input != "list 1 2" {
		t.Fatalf("Recent(2) = %#v", last)
	}
}

func TestRecordKeepsTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.Record(ctx, Entry{Session: "s", Input: "1", Output: "1", CreatedAt: stamp}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || !entries[0].CreatedAt.Equal(stamp) {
		t.Fatalf("timestamp not preserved: %#v", entries)
	}
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Record(context.Background(), Entry{Session: "a", Input: "x", Output: "1"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].Input != "x" {
		t.Fatalf("entries after reopen = %#v", entries)
	}
}

func TestRecordRespectsCancelledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Record(ctx, Entry{Session: "s", Input: "1", Output: "1"}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
