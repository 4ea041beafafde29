package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCaptureFromPixelsFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "catenoid")
	sc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6e6, time.UTC) }

	// 1x2 image: bottom row red, top row blue (OpenGL order).
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	want := filepath.Join(dir, "catenoid_2026-01-02_03-04-05.006.png")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode screenshot: %v", err)
	}

	r, _, b, _ := img.At(0, 0).RGBA()
	if b>>8 != 255 || r != 0 {
		t.Errorf("expected top pixel blue, got r=%d b=%d", r>>8, b>>8)
	}
	r, _, b, _ = img.At(0, 1).RGBA()
	if r>>8 != 255 || b != 0 {
		t.Errorf("expected bottom pixel red, got r=%d b=%d", r>>8, b>>8)
	}
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "catenoid")
	_, err := sc.CaptureFromPixels(make([]byte, 7), 1, 2)
	if err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("expected size mismatch error, got %v", err)
	}
}
