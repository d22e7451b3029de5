package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "record:a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "record:a", `{"id":"a"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, err := store.Get(ctx, "record:a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != `{"id":"a"}` {
		t.Fatalf("unexpected value %q", val)
	}

	if err := store.Delete(ctx, "record:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "record:a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreSetTwiceKeepsOneEntry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "record:a", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "record:a", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := store.List(ctx, "record:*", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Value != "v2" {
		t.Fatalf("expected latest value, got %q", entries[0].Value)
	}
}

func TestMemoryStoreListPatternAndValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seed := map[string]string{
		"record:a": "va",
		"record:b": "vb",
		"other:c":  "vc",
	}
	for k, v := range seed {
		if err := store.Set(ctx, k, v); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	entries, err := store.List(ctx, "record:*", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Value != seed[entry.Key] {
			t.Fatalf("entry %s missing value, got %q", entry.Key, entry.Value)
		}
	}

	// Without values, keys only.
	keysOnly, err := store.List(ctx, "record:*", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, entry := range keysOnly {
		if entry.Value != "" {
			t.Fatalf("expected empty value for %s, got %q", entry.Key, entry.Value)
		}
	}

	// Exact pattern without wildcard.
	exact, err := store.List(ctx, "other:c", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(exact) != 1 || exact[0].Key != "other:c" {
		t.Fatalf("unexpected exact-match result %+v", exact)
	}
}

func TestMemoryStoreFlushClearsEverything(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "record:a", "v")
	_ = store.Set(ctx, "unrelated:key", "v")

	if err := store.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	entries, err := store.List(ctx, "*", false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty namespace after flush, got %d entries", len(entries))
	}
}
