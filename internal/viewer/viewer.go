// Package viewer implements the zoom and pan state machine behind the image
// viewer overlay. It has no UI dependencies: the host feeds it pointer, touch,
// wheel, load and resize events in container coordinates (origin at the
// top-left of the viewport) and reads back a Transform to draw with.
//
// A Viewer is not safe for concurrent use. Hosts that deliver events from
// more than one goroutine must serialise calls.
package viewer

import (
	"errors"

	"photo-viewer/pkg/geometry"
)

// ErrNoImageSize is reported when an image finished loading without usable
// natural dimensions.
var ErrNoImageSize = errors.New("image has no natural size")

// Measurer reports layout sizes to the viewer.
type Measurer interface {
	// ContainerSize returns the current size of the viewport.
	ContainerSize() geometry.Size
	// NaturalSize returns the pixel size of the loaded image.
	NaturalSize() geometry.Size
}

// Options tunes the zoom limits and wheel steps.
type Options struct {
	MaxScale        float64
	MinScaleFactor  float64
	MinScaleCeiling float64
	WheelZoomIn     float64
	WheelZoomOut    float64
}

// DefaultOptions returns the standard viewer limits.
func DefaultOptions() Options {
	return Options{
		MaxScale:        5,
		MinScaleFactor:  0.8,
		MinScaleCeiling: 0.5,
		WheelZoomIn:     1.1,
		WheelZoomOut:    0.9,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if !(o.MaxScale > 0) {
		o.MaxScale = def.MaxScale
	}
	if !(o.MinScaleFactor > 0) {
		o.MinScaleFactor = def.MinScaleFactor
	}
	if !(o.MinScaleCeiling > 0) {
		o.MinScaleCeiling = def.MinScaleCeiling
	}
	if !(o.WheelZoomIn > 1) {
		o.WheelZoomIn = def.WheelZoomIn
	}
	if !(o.WheelZoomOut > 0 && o.WheelZoomOut < 1) {
		o.WheelZoomOut = def.WheelZoomOut
	}
	if o.MinScaleCeiling > o.MaxScale {
		o.MinScaleCeiling = o.MaxScale
	}
	return o
}

// Viewer is the state of one image viewer instance.
type Viewer struct {
	opts    Options
	measure Measurer

	visible    bool
	url        string
	generation uint64

	geom       Geometry
	transform  Transform
	fitScale   float64
	minScale   float64
	loaded     bool
	fitPending bool
	loadErr    error

	gesture gestureState
}

// New creates a hidden viewer that measures through m.
func New(m Measurer, opts Options) *Viewer {
	opts = opts.withDefaults()
	return &Viewer{
		opts:      opts,
		measure:   m,
		transform: Identity(),
		minScale:  opts.MinScaleCeiling,
	}
}

// Options returns the limits in effect.
func (v *Viewer) Options() Options {
	return v.opts
}

// Show makes the viewer visible for url and returns the load generation.
// Any previous state is discarded so the new image is fitted from scratch.
// Load results must be reported with the returned generation.
func (v *Viewer) Show(url string) uint64 {
	v.reset()
	v.visible = true
	v.url = url
	v.generation++
	return v.generation
}

// Hide resets the viewer. Loads still in flight for the previous
// generation are ignored when they complete.
func (v *Viewer) Hide() {
	v.reset()
	v.visible = false
	v.url = ""
	v.generation++
}

func (v *Viewer) reset() {
	v.transform = Identity()
	v.geom = Geometry{}
	v.fitScale = 0
	v.minScale = v.opts.MinScaleCeiling
	v.loaded = false
	v.fitPending = false
	v.loadErr = nil
	v.gesture = gestureState{}
}

// Visible reports whether the viewer is shown.
func (v *Viewer) Visible() bool { return v.visible }

// URL returns the image URL of the current show cycle.
func (v *Viewer) URL() string { return v.url }

// Generation returns the current load generation.
func (v *Viewer) Generation() uint64 { return v.generation }

// Loaded reports whether the image has been fitted and may be displayed.
func (v *Viewer) Loaded() bool { return v.loaded }

// Pending reports whether the image arrived before the container was laid
// out and is waiting for a resize to be fitted.
func (v *Viewer) Pending() bool { return v.fitPending }

// Err returns the load failure of the current show cycle, if any.
func (v *Viewer) Err() error { return v.loadErr }

// Transform returns the current zoom and pan.
func (v *Viewer) Transform() Transform { return v.transform }

// Geometry returns the sizes the transform is computed against.
func (v *Viewer) Geometry() Geometry { return v.geom }

// FitScale returns the scale the current image was fitted at.
func (v *Viewer) FitScale() float64 { return v.fitScale }

// MinScale returns the lower zoom limit for the current image.
func (v *Viewer) MinScale() float64 { return v.minScale }

// MaxScale returns the upper zoom limit.
func (v *Viewer) MaxScale() float64 { return v.opts.MaxScale }

// Gesture returns the interaction in progress.
func (v *Viewer) Gesture() Gesture { return v.gesture.kind }

// Animated reports whether transform changes should be smoothed. Direct
// manipulation tracks the pointer without delay.
func (v *Viewer) Animated() bool { return v.gesture.kind == GestureIdle }

// Cursor returns the pointer shape for the current state.
func (v *Viewer) Cursor() Cursor {
	if v.transform.Scale <= 1 {
		return CursorDefault
	}
	if v.gesture.kind == GestureDragging {
		return CursorGrabbing
	}
	return CursorGrab
}

// ImageRect returns where the image is drawn inside the container.
func (v *Viewer) ImageRect() geometry.Rect {
	return ImageRect(v.geom, v.transform)
}

// ImageLoaded records that the image of generation gen has its natural
// dimensions available and fits it to the container. It returns false when
// the event is stale or the sizes are unusable.
func (v *Viewer) ImageLoaded(gen uint64) bool {
	if !v.visible || gen != v.generation {
		return false
	}
	img := v.measure.NaturalSize()
	if img.IsEmpty() {
		v.loadErr = ErrNoImageSize
		return false
	}
	v.loadErr = nil
	v.geom.Image = img
	v.geom.Container = v.measure.ContainerSize()
	if !v.fit() {
		v.fitPending = true
		return false
	}
	return true
}

// ImageFailed records a load failure for generation gen. The viewer stays
// unloaded; it is up to the host to offer a retry.
func (v *Viewer) ImageFailed(gen uint64, err error) bool {
	if !v.visible || gen != v.generation {
		return false
	}
	if err == nil {
		err = ErrNoImageSize
	}
	v.loadErr = err
	v.loaded = false
	v.fitPending = false
	return true
}

func (v *Viewer) fit() bool {
	scale, ok := FitScale(v.geom.Container, v.geom.Image)
	if !ok {
		return false
	}
	v.minScale = MinScale(scale, v.opts)
	scale = geometry.Clamp(scale, v.minScale, v.opts.MaxScale)
	v.fitScale = scale
	v.transform = Transform{Scale: scale}
	v.gesture = gestureState{}
	v.loaded = true
	v.fitPending = false
	return true
}

// Refit returns the image to its fitted scale, centered.
func (v *Viewer) Refit() bool {
	if !v.loaded {
		return false
	}
	return v.fit()
}

// Resize re-measures the container. Only a deferred fit is run; the
// current transform is left alone and the new size applies to later
// clamping.
func (v *Viewer) Resize() bool {
	size := v.measure.ContainerSize()
	if size == v.geom.Container {
		return false
	}
	v.geom.Container = size
	if v.fitPending {
		v.fit()
	}
	return true
}

func (v *Viewer) centered(p geometry.Point2D) geometry.Point2D {
	return p.Sub(v.geom.Container.Center())
}

// PointerDown starts a drag at container point p. Non-primary buttons and
// presses during a pinch are rejected.
func (v *Viewer) PointerDown(p geometry.Point2D, b Button) bool {
	if !v.loaded || b != ButtonPrimary || v.gesture.kind == GesturePinching {
		return false
	}
	if !p.IsFinite() {
		return false
	}
	v.startDrag(p)
	return true
}

func (v *Viewer) startDrag(p geometry.Point2D) {
	anchor := p.Sub(v.transform.Translate())
	v.gesture = dragFrom(anchor.X, anchor.Y)
}

// PointerMove pans the image while a drag is active.
func (v *Viewer) PointerMove(p geometry.Point2D) bool {
	if v.gesture.kind != GestureDragging || !p.IsFinite() {
		return false
	}
	next := p.Sub(geometry.NewPoint2D(v.gesture.startX, v.gesture.startY))
	next = ClampPan(v.geom, v.transform.Scale, next)
	return v.commit(Transform{Scale: v.transform.Scale, TranslateX: next.X, TranslateY: next.Y})
}

// PointerUp ends a drag. Pointer leave is treated the same way.
func (v *Viewer) PointerUp() bool {
	if v.gesture.kind != GestureDragging {
		return false
	}
	v.gesture = gestureState{}
	return true
}

// Wheel zooms one step in (up) or out about container point p.
func (v *Viewer) Wheel(p geometry.Point2D, up bool) bool {
	factor := v.opts.WheelZoomOut
	if up {
		factor = v.opts.WheelZoomIn
	}
	return v.ZoomAt(p, factor)
}

// ZoomAt multiplies the scale by factor, keeping the image point under
// container point p fixed. The result is clamped to the zoom limits.
func (v *Viewer) ZoomAt(p geometry.Point2D, factor float64) bool {
	if !v.loaded || !p.IsFinite() || !geometry.IsFinite(factor) || factor <= 0 {
		return false
	}
	return v.scaleAbout(v.centered(p), v.transform.Scale*factor)
}

// ZoomBy zooms about the container center.
func (v *Viewer) ZoomBy(factor float64) bool {
	return v.ZoomAt(v.geom.Container.Center(), factor)
}

// scaleAbout sets the scale to target (clamped) keeping anchor, relative
// to the container center, fixed on screen. The anchored translation is
// then clamped to the pan range of the new scale, so zooming out near an
// edge recenters the image instead of leaving it out of bounds; the anchor
// only drifts in that case.
func (v *Viewer) scaleAbout(anchor geometry.Point2D, target float64) bool {
	cur := v.transform
	newScale := geometry.Clamp(target, v.minScale, v.opts.MaxScale)
	if newScale == cur.Scale {
		return false
	}
	t := AnchorTranslate(cur.Translate(), anchor, cur.Scale, newScale)
	t = ClampPan(v.geom, newScale, t)
	return v.commit(Transform{Scale: newScale, TranslateX: t.X, TranslateY: t.Y})
}

// TouchStart handles the touch points active after a finger went down.
// A second finger starts a pinch and cancels any drag.
func (v *Viewer) TouchStart(points []geometry.Point2D) bool {
	if !v.loaded {
		return false
	}
	switch {
	case len(points) >= 2:
		if !points[0].IsFinite() || !points[1].IsFinite() {
			return false
		}
		v.gesture = pinchFrom(points[0].Distance(points[1]), v.transform.Scale)
		return true
	case len(points) == 1 && v.gesture.kind != GesturePinching:
		return v.PointerDown(points[0], ButtonPrimary)
	}
	return false
}

// TouchMove handles movement of the active touch points.
func (v *Viewer) TouchMove(points []geometry.Point2D) bool {
	switch {
	case v.gesture.kind == GesturePinching && len(points) >= 2:
		return v.pinch(points[0], points[1])
	case v.gesture.kind == GestureDragging && len(points) == 1:
		return v.PointerMove(points[0])
	}
	return false
}

func (v *Viewer) pinch(a, b geometry.Point2D) bool {
	if !a.IsFinite() || !b.IsFinite() {
		return false
	}
	if v.gesture.startDistance == 0 {
		return false
	}
	ratio := a.Distance(b) / v.gesture.startDistance
	mid := v.centered(a.Midpoint(b))
	return v.scaleAbout(mid, v.gesture.initialScale*ratio)
}

// TouchEnd handles a finger lifting. Pinching and dragging always end; a
// single remaining finger continues as a drag from the current translate.
func (v *Viewer) TouchEnd(remaining []geometry.Point2D) bool {
	changed := v.gesture.kind != GestureIdle
	v.gesture = gestureState{}
	if len(remaining) == 1 && v.loaded && remaining[0].IsFinite() {
		v.startDrag(remaining[0])
		return true
	}
	return changed
}

func (v *Viewer) commit(t Transform) bool {
	if !t.finite() || t == v.transform {
		return false
	}
	v.transform = t
	return true
}
