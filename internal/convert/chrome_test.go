package convert

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"os/exec"
	"testing"
	"time"
)

func chromeBinary() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Builds a minimal two-page PDF with a correct cross-reference table.
func twoPagePDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>\nendobj\n")
	obj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 5 0 R /Resources << /Font << /F1 6 0 R >> >> >>\nendobj\n")
	obj("4 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 7 0 R /Resources << /Font << /F1 6 0 R >> >> >>\nendobj\n")
	first := "BT /F1 24 Tf 72 720 Td (first page) Tj ET"
	obj(fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(first), first))
	obj("6 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")
	second := "BT /F1 24 Tf 72 720 Td (second page) Tj ET"
	obj(fmt.Sprintf("7 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(second), second))

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestChromeEngineRendersSinglePage(t *testing.T) {
	if chromeBinary() == "" {
		t.Skip("chrome is not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine, err := newChromeEngine(ctx)
	if err != nil {
		t.Fatalf("newChromeEngine: %v", err)
	}
	defer engine.(*chromeEngine).Close()

	out, err := engine.RenderFirstPage(ctx, twoPagePDF(t), RenderScale)
	if err != nil {
		t.Fatalf("RenderFirstPage: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}

	// A capture of a two-page stack would come out roughly twice as tall
	// as a single page.
	bounds := img.Bounds()
	gotRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	wantRatio := float64(pageHeight) / float64(pageWidth)
	if math.Abs(gotRatio-wantRatio) > 0.02 {
		t.Fatalf("aspect ratio %.3f (%dx%d), want single page ratio %.3f", gotRatio, bounds.Dx(), bounds.Dy(), wantRatio)
	}
}
