package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RenderScale is the fixed raster scale for preview images. 4x gives
// print-quality output for the detail view.
const RenderScale = 4.0

// Preview is the rendered first page of a document.
type Preview struct {
	FileName string
	PNG      []byte
}

// Engine rasterizes the first page of a PDF.
type Engine interface {
	RenderFirstPage(ctx context.Context, pdf []byte, scale float64) ([]byte, error)
}

// Converter turns page 1 of a PDF into a PNG preview. The rendering engine
// is expensive to start, so it is loaded lazily on first use and cached for
// the process lifetime; concurrent first calls share one in-flight load.
type Converter struct {
	newEngine func(ctx context.Context) (Engine, error)

	group  singleflight.Group
	mu     sync.RWMutex
	engine Engine
}

// New constructs a Converter backed by the headless Chromium engine.
func New() *Converter {
	return &Converter{newEngine: newChromeEngine}
}

// NewWithEngineLoader constructs a Converter with a custom engine loader,
// used by tests and alternative render backends.
func NewWithEngineLoader(load func(ctx context.Context) (Engine, error)) *Converter {
	return &Converter{newEngine: load}
}

// Convert renders the first page of the given PDF at the fixed scale.
// The preview file name is the input name with a trailing .pdf replaced
// by .png. Failures are returned as errors; no partial Preview is produced.
func (c *Converter) Convert(ctx context.Context, fileName string, pdfData []byte) (*Preview, error) {
	if len(pdfData) == 0 {
		return nil, errors.New("convert: empty pdf data")
	}

	engine, err := c.loadEngine(ctx)
	if err != nil {
		return nil, fmt.Errorf("convert: load render engine: %w", err)
	}

	png, err := engine.RenderFirstPage(ctx, pdfData, RenderScale)
	if err != nil {
		return nil, fmt.Errorf("convert: render first page: %w", err)
	}
	if len(png) == 0 {
		return nil, errors.New("convert: render produced no image data")
	}

	return &Preview{
		FileName: PreviewName(fileName),
		PNG:      png,
	}, nil
}

// loadEngine returns the cached engine, loading it at most once. A failed
// load is not cached, so a later call retries.
func (c *Converter) loadEngine(ctx context.Context) (Engine, error) {
	c.mu.RLock()
	engine := c.engine
	c.mu.RUnlock()
	if engine != nil {
		return engine, nil
	}
	result, err, _ := c.group.Do("engine", func() (any, error) {
		c.mu.RLock()
		cached := c.engine
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		loaded, err := c.newEngine(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.engine = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Engine), nil
}

// PreviewName derives the preview file name, replacing a trailing .pdf
// extension with .png.
func PreviewName(fileName string) string {
	if stripped, ok := strings.CutSuffix(fileName, ".pdf"); ok {
		return stripped + ".png"
	}
	return fileName + ".png"
}
