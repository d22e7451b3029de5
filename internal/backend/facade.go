// Package backend is the process-wide facade over the durable services the
// application depends on: object storage, the key-value namespace, and the
// AI provider. It is built once at startup, health-checked before serving,
// and injected into every service that needs remote state.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"resumind/internal/extract"
	"resumind/internal/llm"
	"resumind/internal/shared/storage/kv"
	"resumind/internal/shared/storage/object"
	"resumind/internal/shared/telemetry"
)

// ErrUnavailable is returned by every operation while the facade is not ready.
var ErrUnavailable = errors.New("backend: service unavailable")

// FileHandle describes a stored blob.
type FileHandle struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	MIME      string `json:"mime,omitempty"`
}

// Options tunes the readiness poll loop.
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

// Facade fronts the remote services. Zero value is not usable; construct
// with New and call WaitReady before serving traffic.
type Facade struct {
	store object.ObjectStore
	kvs   kv.Store
	ai    llm.Client

	opts Options

	ready  atomic.Bool
	failed atomic.Bool

	mu      sync.Mutex
	lastErr string
}

func New(store object.ObjectStore, kvs kv.Store, ai llm.Client, opts Options) *Facade {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Facade{store: store, kvs: kvs, ai: ai, opts: opts}
}

// WaitReady polls the backing dependencies until they all answer, the
// timeout elapses, or ctx is cancelled. On timeout the facade records a
// fatal error once and stays unready for the process lifetime.
func (f *Facade) WaitReady(ctx context.Context) error {
	if f.ready.Load() {
		return nil
	}
	if f.failed.Load() {
		return fmt.Errorf("%w: %s", ErrUnavailable, f.LastError())
	}

	deadline := time.Now().Add(f.opts.Timeout)
	ticker := time.NewTicker(f.opts.PollInterval)
	defer ticker.Stop()

	var probeErr error
	for {
		probeErr = f.probe(ctx)
		if probeErr == nil {
			f.ready.Store(true)
			telemetry.Info("backend ready", nil)
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	f.failed.Store(true)
	f.setLastError(fmt.Sprintf("backend unavailable: %v", probeErr))
	telemetry.Error("backend unavailable", map[string]any{"error": probeErr.Error()})
	return fmt.Errorf("%w: %v", ErrUnavailable, probeErr)
}

// Ready reports whether the facade has passed its readiness probe.
func (f *Facade) Ready() bool { return f.ready.Load() }

// LastError returns the most recently recorded operation error, or "".
func (f *Facade) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Facade) setLastError(msg string) {
	f.mu.Lock()
	f.lastErr = msg
	f.mu.Unlock()
}

func (f *Facade) probe(ctx context.Context) error {
	if p, ok := f.kvs.(kv.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("kv ping: %w", err)
		}
	}
	if _, err := f.store.List(ctx, "health/"); err != nil {
		return fmt.Errorf("object store probe: %w", err)
	}
	return nil
}

// gate fails fast while unready; no storage or network call is made.
func (f *Facade) gate() error {
	if !f.ready.Load() {
		return ErrUnavailable
	}
	return nil
}

// fail records err as the shared last-error string and returns it.
func (f *Facade) fail(op string, err error) error {
	f.setLastError(fmt.Sprintf("%s: %v", op, err))
	return err
}

// Write persists data at an exact storage path.
func (f *Facade) Write(ctx context.Context, path string, data []byte) error {
	if err := f.gate(); err != nil {
		return err
	}
	contentType := http.DetectContentType(data)
	if _, err := f.store.SaveWithKey(ctx, path, contentType, bytes.NewReader(data)); err != nil {
		return f.fail("write", err)
	}
	return nil
}

// Read returns the bytes stored at path.
func (f *Facade) Read(ctx context.Context, path string) ([]byte, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	rc, err := f.store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, err
		}
		return nil, f.fail("read", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, f.fail("read", err)
	}
	return data, nil
}

// Upload persists a blob as a backend-managed file, returning the handle
// with the assigned path.
func (f *Facade) Upload(ctx context.Context, userID, fileName string, r io.Reader) (*FileHandle, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	key, size, mime, err := f.store.Save(ctx, userID, fileName, r)
	if err != nil {
		return nil, f.fail("upload", err)
	}
	return &FileHandle{Path: key, SizeBytes: size, MIME: mime}, nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (f *Facade) Delete(ctx context.Context, path string) error {
	if err := f.gate(); err != nil {
		return err
	}
	if err := f.store.Delete(ctx, path); err != nil {
		return f.fail("delete", err)
	}
	return nil
}

// ListDirectory lists stored entries under prefix.
func (f *Facade) ListDirectory(ctx context.Context, prefix string) ([]object.Entry, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	entries, err := f.store.List(ctx, prefix)
	if err != nil {
		return nil, f.fail("list", err)
	}
	return entries, nil
}

// Chat forwards a conversation to the AI provider.
func (f *Facade) Chat(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Response, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	resp, err := f.ai.Chat(ctx, messages, opts)
	if err != nil {
		return nil, f.fail("chat", err)
	}
	return resp, nil
}

// FeedbackOnFile runs the feedback prompt against the text extracted from
// the stored file at path, pinned to the fixed feedback model.
func (f *Facade) FeedbackOnFile(ctx context.Context, path, instruction string) (*llm.Response, error) {
	if err := f.gate(); err != nil {
		return nil, err
	}
	text, err := extract.Text(ctx, f.store, path)
	if err != nil {
		return nil, f.fail("feedback", fmt.Errorf("extract text: %w", err))
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: llm.FeedbackSystemPrompt},
		{Role: llm.RoleUser, Content: instruction + "\n\nResume text:\n" + text},
	}
	resp, err := f.ai.Chat(ctx, messages, llm.Options{Model: llm.FeedbackModel, JSONOutput: true})
	if err != nil {
		return nil, f.fail("feedback", err)
	}
	return resp, nil
}

// Img2Txt extracts text from an image via the AI provider's vision input.
func (f *Facade) Img2Txt(ctx context.Context, image []byte) (string, error) {
	if err := f.gate(); err != nil {
		return "", err
	}
	text, err := f.ai.Img2Txt(ctx, image)
	if err != nil {
		return "", f.fail("img2txt", err)
	}
	return text, nil
}

// KV returns the key-value namespace, gated on facade readiness.
func (f *Facade) KV() kv.Store {
	return &gatedKV{f: f}
}

type gatedKV struct {
	f *Facade
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, error) {
	if err := g.f.gate(); err != nil {
		return "", err
	}
	return g.f.kvs.Get(ctx, key)
}

func (g *gatedKV) Set(ctx context.Context, key, value string) error {
	if err := g.f.gate(); err != nil {
		return err
	}
	return g.f.kvs.Set(ctx, key, value)
}

func (g *gatedKV) Delete(ctx context.Context, key string) error {
	if err := g.f.gate(); err != nil {
		return err
	}
	return g.f.kvs.Delete(ctx, key)
}

func (g *gatedKV) List(ctx context.Context, pattern string, includeValues bool) ([]kv.Entry, error) {
	if err := g.f.gate(); err != nil {
		return nil, err
	}
	return g.f.kvs.List(ctx, pattern, includeValues)
}

func (g *gatedKV) Flush(ctx context.Context) error {
	if err := g.f.gate(); err != nil {
		return err
	}
	return g.f.kvs.Flush(ctx)
}
