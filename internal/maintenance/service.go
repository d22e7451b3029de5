// Package maintenance implements the destructive wipe surface used in
// non-production environments: enumerate every stored file, delete them,
// and flush the whole key-value namespace.
package maintenance

import (
	"context"
	"fmt"

	"resumind/internal/shared/storage/kv"
	"resumind/internal/shared/storage/object"
	"resumind/internal/shared/telemetry"
)

// Backend is the facade subset maintenance needs.
type Backend interface {
	ListDirectory(ctx context.Context, prefix string) ([]object.Entry, error)
	Delete(ctx context.Context, path string) error
	KV() kv.Store
}

type Service struct {
	Backend Backend
}

func NewService(b Backend) *Service {
	return &Service{Backend: b}
}

// Files lists every stored file.
func (s *Service) Files(ctx context.Context) ([]object.Entry, error) {
	return s.Backend.ListDirectory(ctx, "")
}

// WipeResult summarizes a completed wipe.
type WipeResult struct {
	FilesDeleted int `json:"filesDeleted"`
}

// Wipe deletes every stored file, then flushes the key-value namespace.
// Deletes run sequentially, one at a time, to avoid hammering the store
// with concurrent delete calls. The flush clears the ENTIRE namespace,
// not only record keys.
func (s *Service) Wipe(ctx context.Context) (*WipeResult, error) {
	entries, err := s.Backend.ListDirectory(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("maintenance: list files: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if err := s.Backend.Delete(ctx, entry.Path); err != nil {
			return nil, fmt.Errorf("maintenance: delete %s: %w", entry.Path, err)
		}
		deleted++
	}

	if err := s.Backend.KV().Flush(ctx); err != nil {
		return nil, fmt.Errorf("maintenance: flush kv: %w", err)
	}

	telemetry.Info("wipe completed", map[string]any{"files_deleted": deleted})
	return &WipeResult{FilesDeleted: deleted}, nil
}
