package icon

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// pngFixture is a w×h image whose left half is red and right half is blue.
func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestLoadScalesToTargetSizeAndCaches(t *testing.T) {
	fixture := pngFixture(t, 50, 50)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	l, err := NewLoader(srv.Client(), DefaultWidth, DefaultHeight, 8)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	out, err := l.Load(context.Background(), srv.URL+"/img/wn/01d.png")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Fatalf("expected %dx%d, got %dx%d", DefaultWidth, DefaultHeight, b.Dx(), b.Dy())
	}

	if _, err := l.Load(context.Background(), srv.URL+"/img/wn/01d.png"); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected 1 upstream request, got %d", n)
	}
}

func TestLoadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte("definitely not an image"))
		}
	}))
	defer srv.Close()

	l, err := NewLoader(srv.Client(), 10, 10, 4)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	for _, path := range []string{"/missing.png", "/garbage.png"} {
		_, err := l.Load(context.Background(), srv.URL+path)
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("%s: expected *LoadError, got %v", path, err)
		}
		if le.URL != srv.URL+path {
			t.Fatalf("%s: unexpected url in error: %q", path, le.URL)
		}
	}
}

func TestNewLoaderRejectsBadSettings(t *testing.T) {
	if _, err := NewLoader(nil, 10, 10, 0); err == nil {
		t.Fatalf("expected error for zero cache size")
	}
	if _, err := NewLoader(nil, 0, 10, 4); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestCenterCropKeepsTheMiddle(t *testing.T) {
	// A wide image: red | green | blue thirds. Cropping to a square keeps
	// only the green middle.
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			c := color.RGBA{G: 255, A: 255}
			if x < 100 {
				c = color.RGBA{R: 255, A: 255}
			} else if x >= 200 {
				c = color.RGBA{B: 255, A: 255}
			}
			src.Set(x, y, c)
		}
	}

	out := CenterCrop(src, 40, 40)
	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("unexpected size %v", b)
	}
	for _, p := range []image.Point{{2, 2}, {20, 20}, {37, 37}} {
		r, g, b, _ := out.At(p.X, p.Y).RGBA()
		if g>>8 < 200 || r>>8 > 50 || b>>8 > 50 {
			t.Fatalf("pixel %v should be green, got r=%d g=%d b=%d", p, r>>8, g>>8, b>>8)
		}
	}
}

func TestCenterCropEmptySource(t *testing.T) {
	out := CenterCrop(image.NewRGBA(image.Rect(0, 0, 0, 0)), 5, 5)
	if b := out.Bounds(); b.Dx() != 5 || b.Dy() != 5 {
		t.Fatalf("unexpected size %v", b)
	}
}
