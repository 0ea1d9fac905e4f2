package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCaptureFromPixelsFlips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "planet")
	sc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	// 1x2: bottom row red, top row blue in GL order
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	name, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "planet_2024-01-02_03-04-05_001.png"); name != want {
		t.Errorf("name = %q, want %q", name, want)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("top pixel = %v, want blue", got)
	}

	second, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if second == name {
		t.Error("second capture reused the file name")
	}
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "x")
	if _, err := sc.CaptureFromPixels(make([]byte, 3), 1, 1); err == nil {
		t.Error("expected size mismatch error")
	}
}
