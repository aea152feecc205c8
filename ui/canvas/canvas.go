// Package canvas provides an image canvas with pan, zoom, and pinch gestures.
package canvas

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"photo-viewer/internal/app"
	"photo-viewer/internal/imageload"
	"photo-viewer/internal/viewer"
	"photo-viewer/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Options configures an ImageCanvas.
type Options struct {
	Viewer        viewer.Options
	Transition    time.Duration // zero disables smoothing
	WatchFiles    bool
	WatchDebounce time.Duration
}

// ImageCanvas displays one image fitted to its bounds and lets the user
// zoom with the wheel or a pinch and pan by dragging.
//
// Event handlers may be called from the fyne event loop, animation ticks,
// and the background loader. Viewer state is guarded by mu. The drawn
// objects are only touched with drawMu held; a decoded image is staged in
// raster and handed to img by the renderer. drawMu is never acquired while
// mu is held.
type ImageCanvas struct {
	widget.BaseWidget

	mu      sync.Mutex
	core    *viewer.Viewer
	natural geometry.Size
	raster  image.Image
	shown   viewer.Transform // what is drawn; trails core while animating
	anim    *fyne.Animation
	pressed bool // a mouse button is down

	opts    Options
	loader  *imageload.Loader
	cancel  context.CancelFunc
	watcher *imageload.Watcher

	drawMu  sync.Mutex
	bg      *fynecanvas.Rectangle
	img     *fynecanvas.Image
	spinner *widget.ProgressBarInfinite
	errText *widget.Label
	errBox  *fyne.Container

	// Callbacks
	onZoomChange func(scale float64)
	onLoaded     func(err error)
}

var (
	_ fyne.Draggable     = (*ImageCanvas)(nil)
	_ fyne.Scrollable    = (*ImageCanvas)(nil)
	_ desktop.Mouseable  = (*ImageCanvas)(nil)
	_ desktop.Hoverable  = (*ImageCanvas)(nil)
	_ desktop.Cursorable = (*ImageCanvas)(nil)
	_ viewer.Measurer    = (*ImageCanvas)(nil)
)

// NewImageCanvas creates an empty canvas that loads images through loader.
func NewImageCanvas(loader *imageload.Loader, opts Options) *ImageCanvas {
	ic := &ImageCanvas{
		opts:   opts,
		loader: loader,
		shown:  viewer.Identity(),
	}
	ic.core = viewer.New(ic, opts.Viewer)

	ic.bg = fynecanvas.NewRectangle(backgroundColor())
	ic.img = fynecanvas.NewImageFromImage(nil)
	ic.img.FillMode = fynecanvas.ImageFillStretch
	ic.img.ScaleMode = fynecanvas.ImageScaleSmooth
	ic.img.Translucency = 1
	ic.spinner = widget.NewProgressBarInfinite()
	ic.errText = widget.NewLabel("")
	ic.errText.Alignment = fyne.TextAlignCenter
	ic.errText.Wrapping = fyne.TextWrapWord
	retry := widget.NewButtonWithIcon("Retry", theme.ViewRefreshIcon(), ic.Retry)
	ic.errBox = container.NewVBox(ic.errText, container.NewCenter(retry))
	ic.errBox.Hide()

	ic.ExtendBaseWidget(ic)
	return ic
}

// backgroundColor is the viewer backdrop of the app theme. Themes other
// than ViewerTheme have no backdrop color and use their background.
func backgroundColor() color.Color {
	a := fyne.CurrentApp()
	if a == nil {
		return color.Black
	}
	s := a.Settings()
	name := theme.ColorNameBackground
	if _, ok := s.Theme().(*app.ViewerTheme); ok {
		name = app.ColorNameViewerBackground
	}
	return s.Theme().Color(name, s.ThemeVariant())
}

// ContainerSize implements viewer.Measurer.
func (ic *ImageCanvas) ContainerSize() geometry.Size {
	s := ic.Size()
	return geometry.NewSize(float64(s.Width), float64(s.Height))
}

// NaturalSize implements viewer.Measurer. Called with mu held.
func (ic *ImageCanvas) NaturalSize() geometry.Size {
	return ic.natural
}

// OnZoomChange sets a callback for zoom changes.
func (ic *ImageCanvas) OnZoomChange(callback func(scale float64)) {
	ic.onZoomChange = callback
}

// OnLoaded sets a callback invoked when a load finishes, with the error if
// it failed.
func (ic *ImageCanvas) OnLoaded(callback func(err error)) {
	ic.onLoaded = callback
}

// Load shows the image at url, discarding any previous image and view.
func (ic *ImageCanvas) Load(url string) {
	ic.closeWatcher()
	ic.startLoad(url)
	if ic.opts.WatchFiles {
		ic.watch(url)
	}
}

// Unload clears the image and resets the view. Loads in flight are
// cancelled and their results dropped.
func (ic *ImageCanvas) Unload() {
	ic.closeWatcher()
	ic.mu.Lock()
	if ic.cancel != nil {
		ic.cancel()
		ic.cancel = nil
	}
	ic.core.Hide()
	ic.natural = geometry.Size{}
	ic.raster = nil
	ic.pressed = false
	ic.mu.Unlock()

	ic.setShown(viewer.Identity())
	ic.Refresh()
}

// Retry reloads the current URL.
func (ic *ImageCanvas) Retry() {
	ic.mu.Lock()
	url := ic.core.URL()
	visible := ic.core.Visible()
	ic.mu.Unlock()
	if visible && url != "" {
		ic.startLoad(url)
	}
}

func (ic *ImageCanvas) startLoad(url string) {
	ic.mu.Lock()
	if ic.cancel != nil {
		ic.cancel()
	}
	gen := ic.core.Show(url)
	ic.natural = geometry.Size{}
	ic.raster = nil
	ctx, cancel := context.WithCancel(context.Background())
	ic.cancel = cancel
	ic.mu.Unlock()

	ic.setShown(viewer.Identity())
	ic.Refresh()
	go ic.load(ctx, gen, url)
}

func (ic *ImageCanvas) load(ctx context.Context, gen uint64, url string) {
	res, err := ic.loader.Load(ctx, url)

	ic.mu.Lock()
	if gen != ic.core.Generation() {
		ic.mu.Unlock()
		return
	}
	if err == nil {
		ic.natural = res.Natural
		ic.raster = res.Image
		ic.core.ImageLoaded(gen)
		err = ic.core.Err()
	} else {
		ic.core.ImageFailed(gen, err)
	}
	pending := ic.core.Pending()
	fitted := ic.core.Transform()
	ic.mu.Unlock()

	if err != nil {
		log.Printf("Viewer: load %s failed: %v", url, err)
	}
	ic.setShown(fitted)
	ic.Refresh()
	if pending {
		// Reported by Layout once the canvas has a size to fit into.
		return
	}
	ic.notifyLoaded(fitted.Scale, err)
}

func (ic *ImageCanvas) notifyLoaded(scale float64, err error) {
	if err == nil && ic.onZoomChange != nil {
		ic.onZoomChange(scale)
	}
	if ic.onLoaded != nil {
		ic.onLoaded(err)
	}
}

func (ic *ImageCanvas) watch(url string) {
	u, err := imageload.ParseURL(url)
	if err != nil || !imageload.IsLocal(u) {
		return
	}
	w, err := imageload.Watch(u, ic.opts.WatchDebounce, func() {
		log.Printf("Viewer: %s changed on disk, reloading", u.Name())
		ic.Retry()
	})
	if err != nil {
		log.Printf("Viewer: cannot watch %s: %v", u.Name(), err)
		return
	}
	ic.mu.Lock()
	ic.watcher = w
	ic.mu.Unlock()
}

func (ic *ImageCanvas) closeWatcher() {
	ic.mu.Lock()
	w := ic.watcher
	ic.watcher = nil
	ic.mu.Unlock()
	if w != nil {
		w.Close()
	}
}

// Loaded reports whether an image is fitted and displayed.
func (ic *ImageCanvas) Loaded() bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.core.Loaded()
}

// Err returns the current load failure, if any.
func (ic *ImageCanvas) Err() error {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.core.Err()
}

// URL returns the URL of the image being shown.
func (ic *ImageCanvas) URL() string {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.core.URL()
}

// Transform returns the target zoom and pan.
func (ic *ImageCanvas) Transform() viewer.Transform {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.core.Transform()
}

// Gesture returns the interaction in progress.
func (ic *ImageCanvas) Gesture() viewer.Gesture {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.core.Gesture()
}

// ZoomIn zooms one step about the center.
func (ic *ImageCanvas) ZoomIn() {
	ic.update(func(v *viewer.Viewer) bool { return v.ZoomBy(v.Options().WheelZoomIn) })
}

// ZoomOut zooms one step out about the center.
func (ic *ImageCanvas) ZoomOut() {
	ic.update(func(v *viewer.Viewer) bool { return v.ZoomBy(v.Options().WheelZoomOut) })
}

// FitToWindow returns to the fitted scale.
func (ic *ImageCanvas) FitToWindow() {
	ic.update(func(v *viewer.Viewer) bool { return v.Refit() })
}

// update runs fn against the viewer and redraws if it reports a change.
func (ic *ImageCanvas) update(fn func(v *viewer.Viewer) bool) {
	ic.mu.Lock()
	if !fn(ic.core) {
		ic.mu.Unlock()
		return
	}
	target := ic.core.Transform()
	from := ic.shown
	animate := ic.core.Animated() && ic.opts.Transition > 0
	ic.mu.Unlock()

	if from != target {
		if animate {
			ic.animateTo(from, target)
		} else {
			ic.setShown(target)
		}
		if ic.onZoomChange != nil && from.Scale != target.Scale {
			ic.onZoomChange(target.Scale)
		}
	}
	ic.Refresh()
}

func (ic *ImageCanvas) stopAnimation() {
	ic.mu.Lock()
	anim := ic.anim
	ic.anim = nil
	ic.mu.Unlock()
	if anim != nil {
		anim.Stop()
	}
}

func (ic *ImageCanvas) setShown(t viewer.Transform) {
	ic.stopAnimation()
	ic.mu.Lock()
	ic.shown = t
	ic.mu.Unlock()
	ic.layoutImage()
}

func (ic *ImageCanvas) animateTo(from, to viewer.Transform) {
	ic.stopAnimation()
	anim := fyne.NewAnimation(ic.opts.Transition, func(f float32) {
		ic.mu.Lock()
		ic.shown = from.Lerp(to, float64(f))
		ic.mu.Unlock()
		ic.layoutImage()
		ic.drawMu.Lock()
		fynecanvas.Refresh(ic.img)
		ic.drawMu.Unlock()
	})
	anim.Curve = fyne.AnimationEaseOut
	ic.mu.Lock()
	ic.anim = anim
	ic.mu.Unlock()
	anim.Start()
}

// layoutImage positions the image for the displayed transform.
func (ic *ImageCanvas) layoutImage() {
	ic.mu.Lock()
	g := ic.core.Geometry()
	shown := ic.shown
	loaded := ic.core.Loaded()
	ic.mu.Unlock()

	ic.drawMu.Lock()
	ic.placeImage(g, shown, loaded)
	ic.drawMu.Unlock()
}

// placeImage moves and sizes img. Called with drawMu held.
func (ic *ImageCanvas) placeImage(g viewer.Geometry, shown viewer.Transform, loaded bool) {
	if !loaded {
		ic.img.Resize(fyne.NewSize(0, 0))
		return
	}
	r := viewer.ImageRect(g, shown)
	ic.img.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	ic.img.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

func toPoints(ps []fyne.Position) []geometry.Point2D {
	out := make([]geometry.Point2D, len(ps))
	for i, p := range ps {
		out[i] = toPoint(p)
	}
	return out
}

func buttonFrom(b desktop.MouseButton) viewer.Button {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return viewer.ButtonPrimary
	case b&desktop.MouseButtonSecondary != 0:
		return viewer.ButtonSecondary
	default:
		return viewer.ButtonTertiary
	}
}

// MouseDown starts a drag for the primary button.
func (ic *ImageCanvas) MouseDown(ev *desktop.MouseEvent) {
	ic.update(func(v *viewer.Viewer) bool {
		ic.pressed = true
		return v.PointerDown(toPoint(ev.Position), buttonFrom(ev.Button))
	})
}

// MouseUp ends a drag.
func (ic *ImageCanvas) MouseUp(ev *desktop.MouseEvent) {
	ic.update(func(v *viewer.Viewer) bool {
		ic.pressed = false
		return v.PointerUp()
	})
}

// Dragged pans the image. Drivers without mouse events (touch screens)
// start the drag from the first drag event.
func (ic *ImageCanvas) Dragged(ev *fyne.DragEvent) {
	pos := toPoint(ev.Position)
	ic.update(func(v *viewer.Viewer) bool {
		started := false
		if v.Gesture() == viewer.GestureIdle && !ic.pressed {
			prev := pos.Sub(geometry.NewPoint2D(float64(ev.Dragged.DX), float64(ev.Dragged.DY)))
			started = v.PointerDown(prev, viewer.ButtonPrimary)
		}
		moved := v.PointerMove(pos)
		return started || moved
	})
}

// DragEnd ends a drag.
func (ic *ImageCanvas) DragEnd() {
	ic.update(func(v *viewer.Viewer) bool { return v.PointerUp() })
}

// Scrolled zooms about the cursor.
func (ic *ImageCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	ic.update(func(v *viewer.Viewer) bool {
		return v.Wheel(toPoint(ev.Position), ev.Scrolled.DY > 0)
	})
}

// MouseIn implements desktop.Hoverable.
func (ic *ImageCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (ic *ImageCanvas) MouseMoved(*desktop.MouseEvent) {}

// MouseOut ends a drag when the pointer leaves the canvas.
func (ic *ImageCanvas) MouseOut() {
	ic.update(func(v *viewer.Viewer) bool {
		ic.pressed = false
		return v.PointerUp()
	})
}

// Cursor shows a hand over a zoomed-in image. fyne has no grab cursors, so
// the pointer stands in for grab and the crosshair for grabbing.
func (ic *ImageCanvas) Cursor() desktop.Cursor {
	ic.mu.Lock()
	c := ic.core.Cursor()
	ic.mu.Unlock()
	switch c {
	case viewer.CursorGrab:
		return desktop.PointerCursor
	case viewer.CursorGrabbing:
		return desktop.CrosshairCursor
	default:
		return desktop.DefaultCursor
	}
}

// TouchStart reports the active touch points after a finger went down.
// It is the entry point for drivers that deliver multi-touch.
func (ic *ImageCanvas) TouchStart(points []fyne.Position) {
	ic.update(func(v *viewer.Viewer) bool { return v.TouchStart(toPoints(points)) })
}

// TouchMove reports the active touch points after they moved.
func (ic *ImageCanvas) TouchMove(points []fyne.Position) {
	ic.update(func(v *viewer.Viewer) bool { return v.TouchMove(toPoints(points)) })
}

// TouchEnd reports the touch points still down after a finger lifted.
func (ic *ImageCanvas) TouchEnd(remaining []fyne.Position) {
	ic.update(func(v *viewer.Viewer) bool { return v.TouchEnd(toPoints(remaining)) })
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	ic := r.canvas

	ic.mu.Lock()
	pending := ic.core.Pending()
	ic.core.Resize()
	deferredFit := pending && ic.core.Loaded()
	if deferredFit {
		ic.shown = ic.core.Transform()
	}
	fitted := ic.shown
	ic.mu.Unlock()

	ic.drawMu.Lock()
	ic.bg.Resize(size)
	barWidth := fyne.Min(size.Width*0.6, 240)
	barSize := fyne.NewSize(barWidth, ic.spinner.MinSize().Height)
	ic.spinner.Resize(barSize)
	ic.spinner.Move(fyne.NewPos((size.Width-barSize.Width)/2, (size.Height-barSize.Height)/2))

	errSize := fyne.NewSize(fyne.Min(size.Width, 360), ic.errBox.MinSize().Height)
	ic.errBox.Resize(errSize)
	ic.errBox.Move(fyne.NewPos((size.Width-errSize.Width)/2, (size.Height-errSize.Height)/2))
	ic.drawMu.Unlock()

	if deferredFit {
		r.Refresh()
		ic.notifyLoaded(fitted.Scale, nil)
		return
	}
	ic.layoutImage()
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *imageCanvasRenderer) Refresh() {
	ic := r.canvas
	ic.mu.Lock()
	loaded := ic.core.Loaded()
	err := ic.core.Err()
	visible := ic.core.Visible()
	raster := ic.raster
	g, shown := ic.core.Geometry(), ic.shown
	ic.mu.Unlock()

	ic.drawMu.Lock()
	defer ic.drawMu.Unlock()
	ic.img.Image = raster
	switch {
	case loaded:
		ic.img.Translucency = 0
		ic.spinner.Stop()
		ic.spinner.Hide()
		ic.errBox.Hide()
	case err != nil:
		ic.img.Translucency = 1
		ic.spinner.Stop()
		ic.spinner.Hide()
		ic.errText.SetText(fmt.Sprintf("Could not load image:\n%v", err))
		ic.errBox.Show()
	case visible:
		ic.img.Translucency = 1
		ic.errBox.Hide()
		ic.spinner.Show()
		ic.spinner.Start()
	default:
		ic.img.Translucency = 1
		ic.spinner.Stop()
		ic.spinner.Hide()
		ic.errBox.Hide()
	}
	ic.bg.FillColor = backgroundColor()
	ic.placeImage(g, shown, loaded)
	ic.bg.Refresh()
	ic.img.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	ic := r.canvas
	return []fyne.CanvasObject{ic.bg, ic.img, ic.spinner, ic.errBox}
}

func (r *imageCanvasRenderer) Destroy() {
	r.canvas.stopAnimation()
}
