package records

import (
	"context"
	"errors"
	"testing"

	"resumind/internal/shared/storage/kv"
)

func TestStorePutGet(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	ctx := context.Background()

	rec := sampleRecord(true)
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != rec.ID || got.Feedback == nil || got.Feedback.OverallScore != 82 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListSkipsMalformedEntries(t *testing.T) {
	kvs := kv.NewMemoryStore()
	store := NewStore(kvs)
	ctx := context.Background()

	good := sampleRecord(false)
	if err := store.Put(ctx, good); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kvs.Set(ctx, Key("broken"), "{not json"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kvs.Set(ctx, "other:key", "ignored"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	recs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected the malformed entry skipped and the foreign key excluded, got %d records", len(recs))
	}
	if recs[0].ID != good.ID {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

func TestStoreListBothFeedbackStates(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	ctx := context.Background()

	pending := sampleRecord(false)
	pending.ID = "pending-id"
	done := sampleRecord(true)
	done.ID = "done-id"
	for _, rec := range []*Record{pending, done} {
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put %s: %v", rec.ID, err)
		}
	}

	recs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	byID := map[string]*Record{}
	for _, rec := range recs {
		byID[rec.ID] = rec
	}
	if byID["pending-id"].Feedback != nil {
		t.Fatal("pending record must list with nil feedback")
	}
	if byID["done-id"].Feedback == nil {
		t.Fatal("analyzed record must list with populated feedback")
	}
}
