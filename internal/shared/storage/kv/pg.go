package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGStore implements Store on Postgres, one row per key in kv_entries.
type PGStore struct {
	DB *sql.DB
}

// Get returns the value for key, or ErrNotFound.
func (s *PGStore) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT v FROM kv_entries WHERE k = $1`
	var value string
	if err := s.DB.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *PGStore) Set(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO kv_entries (k, v, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *PGStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE k = $1`
	if _, err := s.DB.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// List returns entries whose keys match the glob pattern, ordered by key.
func (s *PGStore) List(ctx context.Context, pattern string, includeValues bool) ([]Entry, error) {
	like, err := globToLike(pattern)
	if err != nil {
		return nil, err
	}

	column := "''"
	if includeValues {
		column = "v"
	}
	query := fmt.Sprintf(`SELECT k, %s FROM kv_entries WHERE k LIKE $1 ORDER BY k`, column)

	rows, err := s.DB.QueryContext(ctx, query, like)
	if err != nil {
		return nil, fmt.Errorf("kv list %s: %w", pattern, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, fmt.Errorf("kv list scan: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv list rows: %w", err)
	}
	return entries, nil
}

// Flush clears the entire namespace unconditionally.
func (s *PGStore) Flush(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_entries`); err != nil {
		return fmt.Errorf("kv flush: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// globToLike converts a trailing-wildcard glob into a LIKE pattern,
// escaping LIKE metacharacters in the literal part.
func globToLike(pattern string) (string, error) {
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if strings.Contains(prefix, "*") {
		return "", fmt.Errorf("kv list: only trailing-wildcard patterns are supported, got %q", pattern)
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	if wildcard {
		return escaped + "%", nil
	}
	return escaped, nil
}

var (
	_ Store  = (*PGStore)(nil)
	_ Pinger = (*PGStore)(nil)
)
