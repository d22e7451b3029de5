package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resumind/internal/shared/storage/kv"
	"resumind/internal/shared/telemetry"
)

const keyPrefix = "record:"

// Key derives the storage key for a record id.
func Key(id string) string {
	return keyPrefix + id
}

// Store persists records in the key-value namespace as JSON under
// record:<id> keys.
type Store struct {
	KV kv.Store
}

func NewStore(kvs kv.Store) *Store {
	return &Store{KV: kvs}
}

// Put serializes the record and writes it under its derived key,
// overwriting any previous value.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("records: marshal %s: %w", rec.ID, err)
	}
	if err := s.KV.Set(ctx, Key(rec.ID), string(data)); err != nil {
		return fmt.Errorf("records: store %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads a record by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	value, err := s.KV.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("records: load %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, fmt.Errorf("records: parse %s: %w", id, err)
	}
	return &rec, nil
}

// List returns every stored record in the order the key-value store yields
// them. Entries that fail to parse are skipped and logged rather than
// failing the whole listing.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	entries, err := s.KV.List(ctx, keyPrefix+"*", true)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	recs := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		var rec Record
		if err := json.Unmarshal([]byte(entry.Value), &rec); err != nil {
			telemetry.Error("record entry skipped", map[string]any{
				"key":   entry.Key,
				"error": err.Error(),
			})
			continue
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}
