package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store, path
}

func TestFileStoreKeepsTopEntriesSorted(t *testing.T) {
	t.Parallel()

	store, _ := newTestFileStore(t)
	ctx := context.Background()
	for _, score := range []int{40, 120, 5, 77} {
		if err := store.Record(ctx, fmt.Sprintf("player-%d", score), score); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.TopEntries(ctx, MaxEntries)
	if err != nil {
		t.Fatalf("TopEntries: %v", err)
	}
	want := []int{120, 77, 40, 5}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Score != want[i] {
			t.Fatalf("entry %d: got score %d, want %d", i, e.Score, want[i])
		}
	}
}

func TestFileStoreTruncatesToMaxEntries(t *testing.T) {
	t.Parallel()

	store, _ := newTestFileStore(t)
	ctx := context.Background()
	for i := 0; i < MaxEntries+10; i++ {
		if err := store.Record(ctx, "p", i); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.TopEntries(ctx, MaxEntries+10)
	if err != nil {
		t.Fatalf("TopEntries: %v", err)
	}
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries after truncation, got %d", MaxEntries, len(entries))
	}
	// The lowest scores were evicted, so the tail is the 10th best.
	if entries[len(entries)-1].Score != 10 {
		t.Fatalf("expected lowest surviving score 10, got %d", entries[len(entries)-1].Score)
	}
}

func TestFileStoreTopEntriesLimit(t *testing.T) {
	t.Parallel()

	store, _ := newTestFileStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, "p", i); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.TopEntries(ctx, 3)
	if err != nil {
		t.Fatalf("TopEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Score != 4 {
		t.Fatalf("expected best score first, got %d", entries[0].Score)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	store, path := newTestFileStore(t)
	ctx := context.Background()
	if err := store.Record(ctx, "alice", 300); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, "bob", 150); err != nil {
		t.Fatalf("Record: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entries, err := reopened.TopEntries(ctx, MaxEntries)
	if err != nil {
		t.Fatalf("TopEntries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "alice" || entries[1].Name != "bob" {
		t.Fatalf("unexpected entries after reopen: %+v", entries)
	}
	if entries[0].Date.IsZero() {
		t.Fatalf("expected a recorded date to survive the round trip")
	}
}

func TestFileStoreConcurrentRecords(t *testing.T) {
	t.Parallel()

	store, _ := newTestFileStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			if err := store.Record(ctx, "p", score); err != nil {
				t.Errorf("Record: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := store.TopEntries(ctx, MaxEntries)
	if err != nil {
		t.Fatalf("TopEntries: %v", err)
	}
	if len(entries) != 16 {
		t.Fatalf("expected 16 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Score > entries[i-1].Score {
			t.Fatalf("entries not sorted at index %d", i)
		}
	}
}
