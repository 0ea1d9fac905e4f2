package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x1 BGR, bottom-up: red, green
	data := append(tgaHeader(TGATypeUncompressed, 2, 1, 24, 0), 0, 0, 255, 0, 255, 0)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("pixel 1 = %v", got)
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 2x2 BGRA top-down: one run of 3 blue pixels, one raw white pixel
	data := tgaHeader(TGATypeRLE, 2, 2, 32, 0x20)
	data = append(data, 0x82, 255, 0, 0, 128)
	data = append(data, 0x00, 255, 255, 255, 255)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	blue := color.RGBA{B: 255, A: 128}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {0, 1}} {
		if got := img.RGBAAt(p.X, p.Y); got != blue {
			t.Errorf("pixel %v = %v", p, got)
		}
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("last pixel = %v", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{1, 2, 3}},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, 0); h[1] = 1; return h }()},
		{"bit depth", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"truncated pixels", tgaHeader(TGATypeUncompressed, 4, 4, 24, 0)},
	}
	for _, tt := range tests {
		if _, err := DecodeTGA(tt.data); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{"a.png": pngBuf.Bytes(), "b.bmp": bmpBuf.Bytes()}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		img, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := img.RGBAAt(1, 1); got != (color.RGBA{10, 20, 30, 255}) {
			t.Errorf("%s: pixel = %v", name, got)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSolid(t *testing.T) {
	img := Solid(1, 2, 3, 4)
	if img.Bounds().Dx() != 1 || img.RGBAAt(0, 0) != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("Solid = %v", img.RGBAAt(0, 0))
	}
}
