package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resumind/internal/shared/telemetry"
)

const renderTimeout = 30 * time.Second

// viewport of a US Letter page at 1x; scaled up by the render scale.
const (
	pageWidth  = 816
	pageHeight = 1056
)

// chromeEngine renders PDFs with a headless Chromium kept alive for the
// process lifetime. Each render opens a fresh tab against the shared
// browser. Requires Chrome/Chromium to be installed on the system.
type chromeEngine struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

func newChromeEngine(ctx context.Context) (Engine, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	// Start the browser now so a broken Chrome install surfaces here
	// rather than on the first render.
	warmCtx, warmCancel := chromedp.NewContext(allocCtx)
	defer warmCancel()
	warmCtx, timeoutCancel := context.WithTimeout(warmCtx, renderTimeout)
	defer timeoutCancel()
	if err := chromedp.Run(warmCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start headless browser: %w", err)
	}

	telemetry.Info("render engine started", nil)
	return &chromeEngine{allocCtx: allocCtx, cancel: cancel}, nil
}

func (e *chromeEngine) RenderFirstPage(ctx context.Context, pdf []byte, scale float64) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "resumind-render-*")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "page.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write render input: %w", err)
	}

	tabCtx, cancel := chromedp.NewContext(e.allocCtx)
	defer cancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, renderTimeout)
	defer timeoutCancel()

	// Propagate caller cancellation into the tab.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	var png []byte
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(pageWidth, pageHeight, chromedp.EmulateScale(scale)),
		chromedp.Navigate("file://"+pdfPath),
		chromedp.WaitReady("embed", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := captureFirstPage(ctx)
			if err != nil {
				return err
			}
			png = buf
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render pdf page: %w", err)
	}
	return png, nil
}

// captureFirstPage screenshots the emulated viewport until two consecutive
// frames match, meaning the viewer has finished painting. The clip keeps
// the capture to a single page regardless of the document's length.
func captureFirstPage(ctx context.Context) ([]byte, error) {
	clip := &page.Viewport{Width: pageWidth, Height: pageHeight, Scale: 1}
	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()

	var prev []byte
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		buf, err := page.CaptureScreenshot().WithClip(clip).Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("capture page: %w", err)
		}
		if len(prev) > 0 && bytes.Equal(buf, prev) {
			return buf, nil
		}
		prev = buf
	}
}

// Close shuts the shared browser down.
func (e *chromeEngine) Close() {
	e.cancel()
}
