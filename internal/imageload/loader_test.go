package imageload

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bytesFetcher(data []byte) Fetcher {
	return func(ctx context.Context, u fyne.URI) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		scheme  string
		wantErr error
	}{
		{name: "empty", raw: "  ", wantErr: ErrEmptyURL},
		{name: "bare path", raw: "/tmp/photo.jpg", scheme: "file"},
		{name: "file url", raw: "file:///tmp/photo.jpg", scheme: "file"},
		{name: "https", raw: "https://example.org/log/2024/team.jpg", scheme: "https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseURL(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, u.Scheme())
		})
	}
}

func TestDecode(t *testing.T) {
	res, err := Decode(bytes.NewReader(encodePNG(t, 40, 20)), 0)
	require.NoError(t, err)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, 40.0, res.Natural.Width)
	assert.Equal(t, 20.0, res.Natural.Height)
	assert.False(t, res.Downsampled())
}

func TestDecodeDownsamplesOversizeRaster(t *testing.T) {
	res, err := Decode(bytes.NewReader(encodePNG(t, 200, 50)), 100)
	require.NoError(t, err)

	// Natural size is preserved for the fit computation.
	assert.Equal(t, 200.0, res.Natural.Width)
	assert.Equal(t, 50.0, res.Natural.Height)
	assert.True(t, res.Downsampled())
	b := res.Image.Bounds()
	assert.LessOrEqual(t, b.Dx(), 100)
	assert.LessOrEqual(t, b.Dy(), 100)
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewGray(image.Rect(0, 0, 7, 3))))

	res, err := Decode(&buf, DefaultMaxTextureSize)
	require.NoError(t, err)
	assert.Equal(t, "bmp", res.Format)
	assert.Equal(t, 7.0, res.Natural.Width)
}

func TestDecodeRejectsOversizeHeader(t *testing.T) {
	data := encodePNG(t, 40, 20)

	_, err := DecodeLimit(bytes.NewReader(data), 0, 799)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Contains(t, err.Error(), "40x20")

	res, err := DecodeLimit(bytes.NewReader(data), 0, 800)
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Natural.Width)

	res, err = DecodeLimit(bytes.NewReader(data), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.Natural.Height)
}

// A PNG header declaring 100000x100000 pixels followed by no image data is
// rejected from the header alone.
func TestDecodeRejectsBombWithoutDecoding(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := []byte{
		0x00, 0x01, 0x86, 0xa0, // width 100000
		0x00, 0x01, 0x86, 0xa0, // height 100000
		8, 2, 0, 0, 0, // 8-bit RGB
	}
	writeChunk(&buf, "IHDR", ihdr)

	_, err := Decode(&buf, DefaultMaxTextureSize)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func writeChunk(w *bytes.Buffer, kind string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	w.Write(n[:])
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	w.WriteString(kind)
	w.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	w.Write(n[:])
}

func TestLoadRejectsOversizeImage(t *testing.T) {
	l := New(WithFetcher(bytesFetcher(encodePNG(t, 30, 60))), WithMaxPixels(100))

	_, err := l.Load(context.Background(), "https://example.org/huge.png")
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")), 0)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestLoadWithFetcher(t *testing.T) {
	l := New(WithFetcher(bytesFetcher(encodePNG(t, 30, 60))), WithTimeout(time.Second))

	res, err := l.Load(context.Background(), "https://example.org/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "https", res.URI.Scheme())
	assert.Equal(t, 30.0, res.Natural.Width)
	assert.Equal(t, 60.0, res.Natural.Height)
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 12, 8), 0o644))

	res, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, IsLocal(res.URI))
	assert.Equal(t, 12.0, res.Natural.Width)
}

func TestLoadErrors(t *testing.T) {
	boom := errors.New("network unreachable")
	l := New(WithFetcher(func(ctx context.Context, u fyne.URI) (io.ReadCloser, error) {
		return nil, boom
	}))

	_, err := l.Load(context.Background(), "https://example.org/a.jpg")
	assert.ErrorIs(t, err, boom)

	_, err = l.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyURL)

	_, err = New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCancelled(t *testing.T) {
	l := New(WithFetcher(bytesFetcher(encodePNG(t, 10, 10))))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, "https://example.org/a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("/photos/IMG_0042.JPG"))
	assert.True(t, IsSupportedFormat("scan.tiff"))
	assert.True(t, IsSupportedFormat("banner.webp"))
	assert.False(t, IsSupportedFormat("notes.txt"))
	assert.False(t, IsSupportedFormat("noext"))
}
