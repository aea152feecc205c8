package dialogs

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"testing"
	"time"

	"photo-viewer/internal/imageload"
	"photo-viewer/internal/viewer"
	"photo-viewer/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewer(t *testing.T, onHide func()) (*ImageViewer, fyne.Window) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 640, 480))))
	data := buf.Bytes()
	loader := imageload.New(imageload.WithFetcher(func(ctx context.Context, u fyne.URI) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}))

	w := test.NewWindow(widget.NewLabel("gallery"))
	w.Resize(fyne.NewSize(1000, 800))
	t.Cleanup(w.Close)

	iv := NewImageViewer(w.Canvas(), loader, canvas.Options{Viewer: viewer.DefaultOptions()}, onHide)
	return iv, w
}

func TestImageViewerShowAndClose(t *testing.T) {
	hidden := 0
	iv, w := newTestViewer(t, func() { hidden++ })

	iv.Show("https://example.org/album/beach.png")
	assert.True(t, iv.Visible())
	assert.Equal(t, "beach.png", iv.title.Text)
	require.Eventually(t, iv.Canvas().Loaded, 2*time.Second, 10*time.Millisecond)
	assert.NotNil(t, w.Canvas().OnTypedKey())

	iv.Close()
	assert.False(t, iv.Visible())
	assert.False(t, iv.Canvas().Loaded())
	assert.Equal(t, 1, hidden)
	assert.Nil(t, w.Canvas().OnTypedKey())
	assert.Nil(t, w.Canvas().OnTypedRune())

	iv.Close()
	assert.Equal(t, 1, hidden)
}

func TestImageViewerHideDoesNotNotify(t *testing.T) {
	hidden := 0
	iv, _ := newTestViewer(t, func() { hidden++ })

	iv.SetVisible(true, "https://example.org/a.png")
	iv.SetVisible(false, "")
	assert.False(t, iv.Visible())
	assert.Zero(t, hidden)
}

func TestImageViewerEscapeCloses(t *testing.T) {
	hidden := 0
	iv, w := newTestViewer(t, func() { hidden++ })

	iv.Show("https://example.org/a.png")
	w.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.False(t, iv.Visible())
	assert.Equal(t, 1, hidden)
}

func TestImageViewerRestoresKeyHandler(t *testing.T) {
	iv, w := newTestViewer(t, nil)
	var typed []fyne.KeyName
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) { typed = append(typed, ev.Name) })

	iv.Show("https://example.org/a.png")
	iv.Hide()

	w.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.Equal(t, []fyne.KeyName{fyne.KeyEscape}, typed)
}

func TestImageViewerZoomKeys(t *testing.T) {
	iv, w := newTestViewer(t, nil)
	iv.Show("https://example.org/a.png")
	require.Eventually(t, iv.Canvas().Loaded, 2*time.Second, 10*time.Millisecond)
	fit := iv.Canvas().Transform().Scale

	require.Eventually(t, func() bool { return iv.zoomText() != "" }, 2*time.Second, 10*time.Millisecond)

	typeRune := w.Canvas().OnTypedRune()
	typeRune('+')
	assert.InDelta(t, fit*1.1, iv.Canvas().Transform().Scale, 1e-9)
	assert.Equal(t, fmt.Sprintf("%.0f%%", fit*1.1*100), iv.zoomText())
	typeRune('-')
	assert.InDelta(t, fit*1.1*0.9, iv.Canvas().Transform().Scale, 1e-9)
	typeRune('0')
	assert.InDelta(t, fit, iv.Canvas().Transform().Scale, 1e-9)
}

func TestImageViewerReplacesImage(t *testing.T) {
	iv, _ := newTestViewer(t, nil)
	iv.Show("https://example.org/a.png")
	require.Eventually(t, iv.Canvas().Loaded, 2*time.Second, 10*time.Millisecond)
	fit := iv.Canvas().Transform()
	iv.Canvas().ZoomIn()

	iv.Show("https://example.org/b.png")
	assert.Equal(t, "b.png", iv.title.Text)
	require.Eventually(t, iv.Canvas().Loaded, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "https://example.org/b.png", iv.Canvas().URL())
	assert.Equal(t, fit, iv.Canvas().Transform())
}
