// Package imageload fetches and decodes the images shown by the viewer.
package imageload

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photo-viewer/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/storage/repository"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxTextureSize = 8192
	// DefaultMaxPixels bounds the decoded source, about 8 bytes per pixel
	// in memory before downsampling.
	DefaultMaxPixels = 150_000_000
	DefaultTimeout   = 30 * time.Second
)

var (
	// ErrEmptyURL is returned when no image URL was given.
	ErrEmptyURL = errors.New("empty image URL")
	// ErrUnsupportedScheme is returned for URLs no repository can read.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrImageTooLarge is returned when the header declares more pixels
	// than the loader accepts.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Result is a decoded image ready for display.
type Result struct {
	URI   fyne.URI
	Image image.Image
	// Natural is the pixel size of the source image. Image may be smaller
	// when the source exceeded the texture limit.
	Natural geometry.Size
	Format  string
}

// Downsampled reports whether the raster was reduced from its natural size.
func (r *Result) Downsampled() bool {
	b := r.Image.Bounds()
	return float64(b.Dx()) != r.Natural.Width || float64(b.Dy()) != r.Natural.Height
}

// Fetcher opens the byte stream behind a URI.
type Fetcher func(ctx context.Context, u fyne.URI) (io.ReadCloser, error)

// Loader fetches and decodes images.
type Loader struct {
	fetch          Fetcher
	maxTextureSize uint
	maxPixels      uint64
	timeout        time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithFetcher replaces the default fetcher.
func WithFetcher(f Fetcher) Option {
	return func(l *Loader) { l.fetch = f }
}

// WithMaxTextureSize sets the largest raster edge kept after decoding.
// Zero disables downsampling.
func WithMaxTextureSize(px uint) Option {
	return func(l *Loader) { l.maxTextureSize = px }
}

// WithMaxPixels rejects images whose header declares more than px pixels,
// before any pixel data is decoded. Zero disables the check.
func WithMaxPixels(px uint64) Option {
	return func(l *Loader) { l.maxPixels = px }
}

// WithTimeout bounds each Load call. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// New creates a Loader. Local files are opened directly; every other scheme
// is read through the fyne storage repositories registered by the running
// app (http and https included).
func New(opts ...Option) *Loader {
	l := &Loader{
		fetch:          Fetch,
		maxTextureSize: DefaultMaxTextureSize,
		maxPixels:      DefaultMaxPixels,
		timeout:        DefaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseURL turns a URL or a bare local path into a URI.
func ParseURL(raw string) (fyne.URI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}
	if !strings.Contains(raw, "://") {
		return storage.NewFileURI(raw), nil
	}
	u, err := storage.ParseURI(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	return u, nil
}

// SupportedFormats returns the file extensions the decoder registry handles.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// IsLocal reports whether u names a file on this machine.
func IsLocal(u fyne.URI) bool {
	return u != nil && u.Scheme() == "file"
}

// Load fetches and decodes the image at rawURL.
func (l *Loader) Load(ctx context.Context, rawURL string) (*Result, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	rc, err := l.fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", u, err)
	}
	defer rc.Close()

	res, err := DecodeLimit(&ctxReader{ctx: ctx, r: rc}, l.maxTextureSize, l.maxPixels)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to decode image %s: %w", u, err)
	}
	res.URI = u
	log.Printf("Loader: %s %s %.0fx%.0f in %s", u.Name(), res.Format,
		res.Natural.Width, res.Natural.Height, time.Since(start).Round(time.Millisecond))
	return res, nil
}

// Decode reads an image and caps its raster at maxTextureSize pixels per
// edge, preserving the aspect ratio. Sources above DefaultMaxPixels are
// rejected.
func Decode(r io.Reader, maxTextureSize uint) (*Result, error) {
	return DecodeLimit(r, maxTextureSize, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel budget. The header is read
// first and the image rejected with ErrImageTooLarge when its declared size
// exceeds maxPixels; zero disables the check.
func DecodeLimit(r io.Reader, maxTextureSize uint, maxPixels uint64) (*Result, error) {
	br := bufio.NewReader(r)
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(br, &header))
	if err != nil {
		return nil, err
	}
	if maxPixels > 0 && cfg.Width > 0 && cfg.Height > 0 &&
		uint64(cfg.Width)*uint64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(io.MultiReader(&header, br))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	res := &Result{
		Image:   img,
		Natural: geometry.NewSize(float64(b.Dx()), float64(b.Dy())),
		Format:  format,
	}
	if maxTextureSize > 0 && (uint(b.Dx()) > maxTextureSize || uint(b.Dy()) > maxTextureSize) {
		res.Image = resize.Thumbnail(maxTextureSize, maxTextureSize, img, resize.Lanczos3)
	}
	return res, nil
}

// Fetch is the default Fetcher.
func Fetch(ctx context.Context, u fyne.URI) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if IsLocal(u) {
		return os.Open(u.Path())
	}
	if _, err := repository.ForURI(u); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme())
	}
	return storage.Reader(u)
}

// ctxReader stops a read once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
