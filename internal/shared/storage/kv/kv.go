package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Entry is a key with its optionally hydrated value.
type Entry struct {
	Key   string
	Value string
}

// Store defines namespaced key-value operations. List supports a
// trailing-wildcard glob (e.g. "record:*"); Flush clears the ENTIRE
// namespace, not only keys owned by one feature.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, pattern string, includeValues bool) ([]Entry, error)
	Flush(ctx context.Context) error
}

// Pinger is implemented by stores with a remote backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// matchPattern reports whether key matches a trailing-wildcard glob.
// Only the trailing "*" form is supported; any other pattern is an
// exact-match comparison.
func matchPattern(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}
