// Package icon fetches weather condition icons and prepares them for display
// at a fixed size.
package icon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
)

const (
	// DefaultWidth and DefaultHeight are the fixed target size of the screen's icon view.
	DefaultWidth  = 715
	DefaultHeight = 713

	maxIconBytes = 4 << 20
)

// LoadError is returned when an icon cannot be fetched or decoded.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load icon %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader downloads icons, center-crops them to a fixed size and keeps the
// encoded PNGs in an LRU cache keyed by URL.
type Loader struct {
	client *http.Client
	width  int
	height int
	cache  *lru.Cache[string, []byte]
}

// NewLoader creates a Loader. cacheSize must be positive.
func NewLoader(client *http.Client, width, height, cacheSize int) (*Loader, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("icon size must be positive, got %dx%d", width, height)
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("icon cache: %w", err)
	}
	return &Loader{
		client: client,
		width:  width,
		height: height,
		cache:  cache,
	}, nil
}

// Load returns the PNG encoding of the icon at url, scaled and cropped to the
// loader's size. Callers must not modify the returned slice.
func (l *Loader) Load(ctx context.Context, url string) ([]byte, error) {
	if b, ok := l.cache.Get(url); ok {
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("unexpected status code %d", resp.StatusCode)}
	}

	src, _, err := image.Decode(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("decode: %w", err)}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, CenterCrop(src, l.width, l.height)); err != nil {
		return nil, &LoadError{URL: url, Err: fmt.Errorf("encode: %w", err)}
	}

	out := buf.Bytes()
	l.cache.Add(url, out)
	return out, nil
}

// CenterCrop scales src until it covers a w×h box and trims the overflow
// evenly from both sides.
func CenterCrop(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}

	crop := b
	if sw*h > sh*w {
		cw := max(sh*w/h, 1)
		x0 := b.Min.X + (sw-cw)/2
		crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	} else if sw*h < sh*w {
		ch := max(sw*h/w, 1)
		y0 := b.Min.Y + (sh-ch)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
