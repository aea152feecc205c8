// Package dialogs provides the overlays shown on top of the main window.
package dialogs

import (
	"fmt"
	"log"
	"sync"

	"photo-viewer/internal/imageload"
	"photo-viewer/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const overlayFraction = 0.9

// ImageViewer is a modal overlay that shows one image in a zoomable canvas.
// Keyboard shortcuts are routed to it only while it is visible.
type ImageViewer struct {
	host   fyne.Canvas
	image  *canvas.ImageCanvas
	popup  *widget.PopUp
	title  *widget.Label
	onHide func()

	zoomMu sync.Mutex // zoom is updated from the loader goroutine
	zoom   *widget.Label

	visible  bool
	prevKey  func(*fyne.KeyEvent)
	prevRune func(rune)
}

// NewImageViewer creates a hidden viewer over host. onHide is called when
// the user dismisses it.
func NewImageViewer(host fyne.Canvas, loader *imageload.Loader, opts canvas.Options, onHide func()) *ImageViewer {
	iv := &ImageViewer{
		host:   host,
		image:  canvas.NewImageCanvas(loader, opts),
		title:  widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		zoom:   widget.NewLabel(""),
		onHide: onHide,
	}
	iv.title.Truncation = fyne.TextTruncateEllipsis
	iv.image.OnZoomChange(func(scale float64) {
		iv.setZoomText(fmt.Sprintf("%.0f%%", scale*100))
	})

	tools := container.NewHBox(
		iv.zoom,
		widget.NewButtonWithIcon("", theme.ZoomOutIcon(), iv.image.ZoomOut),
		widget.NewButtonWithIcon("", theme.ZoomInIcon(), iv.image.ZoomIn),
		widget.NewButtonWithIcon("", theme.ZoomFitIcon(), iv.image.FitToWindow),
		widget.NewButtonWithIcon("", theme.CancelIcon(), iv.Close),
	)
	header := container.NewBorder(nil, nil, nil, tools, iv.title)

	// The scroll container only clips; panning is done by the canvas.
	clip := container.NewScroll(iv.image)
	clip.Direction = container.ScrollNone

	iv.popup = widget.NewModalPopUp(container.NewBorder(header, nil, nil, nil, clip), host)
	return iv
}

// Canvas returns the image canvas inside the overlay.
func (iv *ImageViewer) Canvas() *canvas.ImageCanvas {
	return iv.image
}

// Visible reports whether the overlay is shown.
func (iv *ImageViewer) Visible() bool {
	return iv.visible
}

// SetVisible shows url or hides the overlay.
func (iv *ImageViewer) SetVisible(visible bool, url string) {
	if visible {
		iv.Show(url)
	} else {
		iv.Hide()
	}
}

// Show opens the overlay on url. Showing while already visible replaces
// the image and fits the new one from scratch.
func (iv *ImageViewer) Show(url string) {
	if !iv.visible {
		iv.acquireKeys()
		iv.visible = true
	}
	iv.title.SetText(displayName(url))
	iv.setZoomText("")

	size := iv.host.Size()
	if size.Width <= 0 || size.Height <= 0 {
		size = fyne.NewSize(800, 600)
	}
	iv.popup.Resize(fyne.NewSize(size.Width*overlayFraction, size.Height*overlayFraction))
	iv.popup.Show()
	iv.image.Load(url)
	log.Printf("Viewer: showing %s", url)
}

// Hide closes the overlay without notifying onHide. The canvas is reset so
// the next Show starts from a fresh fit.
func (iv *ImageViewer) Hide() {
	if !iv.visible {
		return
	}
	iv.image.Unload()
	iv.popup.Hide()
	iv.releaseKeys()
	iv.visible = false
}

// Close is the user dismissal: it hides the overlay and calls onHide.
func (iv *ImageViewer) Close() {
	if !iv.visible {
		return
	}
	iv.Hide()
	if iv.onHide != nil {
		iv.onHide()
	}
}

func (iv *ImageViewer) setZoomText(text string) {
	iv.zoomMu.Lock()
	iv.zoom.SetText(text)
	iv.zoomMu.Unlock()
}

func (iv *ImageViewer) zoomText() string {
	iv.zoomMu.Lock()
	defer iv.zoomMu.Unlock()
	return iv.zoom.Text
}

func (iv *ImageViewer) acquireKeys() {
	iv.prevKey = iv.host.OnTypedKey()
	iv.prevRune = iv.host.OnTypedRune()
	iv.host.SetOnTypedKey(iv.typedKey)
	iv.host.SetOnTypedRune(iv.typedRune)
}

func (iv *ImageViewer) releaseKeys() {
	iv.host.SetOnTypedKey(iv.prevKey)
	iv.host.SetOnTypedRune(iv.prevRune)
	iv.prevKey = nil
	iv.prevRune = nil
}

func (iv *ImageViewer) typedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		iv.Close()
	}
}

func (iv *ImageViewer) typedRune(r rune) {
	switch r {
	case '+', '=':
		iv.image.ZoomIn()
	case '-', '_':
		iv.image.ZoomOut()
	case '0':
		iv.image.FitToWindow()
	}
}

func displayName(url string) string {
	u, err := imageload.ParseURL(url)
	if err != nil {
		return url
	}
	return u.Name()
}
