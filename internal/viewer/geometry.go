package viewer

import (
	"math"

	"photo-viewer/pkg/geometry"
)

// Geometry holds the measured sizes the transform is computed against.
// Image dimensions are the natural pixel size of the loaded image.
type Geometry struct {
	Container geometry.Size
	Image     geometry.Size
}

// Transform is the zoom and pan applied to the image after it has been
// centered in the container.
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// Identity returns the transform used while no image is fitted.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Translate returns the translation as a point.
func (t Transform) Translate() geometry.Point2D {
	return geometry.NewPoint2D(t.TranslateX, t.TranslateY)
}

// Lerp interpolates between t and to. f is clamped to [0, 1].
func (t Transform) Lerp(to Transform, f float64) Transform {
	f = geometry.Clamp(f, 0, 1)
	return Transform{
		Scale:      t.Scale + (to.Scale-t.Scale)*f,
		TranslateX: t.TranslateX + (to.TranslateX-t.TranslateX)*f,
		TranslateY: t.TranslateY + (to.TranslateY-t.TranslateY)*f,
	}
}

func (t Transform) finite() bool {
	return geometry.IsFinite(t.Scale) && t.Scale > 0 &&
		geometry.IsFinite(t.TranslateX) && geometry.IsFinite(t.TranslateY)
}

// FitScale returns the largest scale that fits the whole image inside the
// container without upscaling past natural size. It returns false when
// either size is empty.
func FitScale(container, image geometry.Size) (float64, bool) {
	if container.IsEmpty() || image.IsEmpty() {
		return 0, false
	}
	scale := math.Min(container.Width/image.Width, container.Height/image.Height)
	return math.Min(scale, 1), true
}

// MinScale returns the lower zoom limit for an image fitted at fit.
func MinScale(fit float64, opts Options) float64 {
	return math.Min(fit*opts.MinScaleFactor, opts.MinScaleCeiling)
}

// MaxPan returns how far the image may be translated on each axis at the
// given scale. An image smaller than the container cannot be panned.
func MaxPan(g Geometry, scale float64) (x, y float64) {
	x = math.Max((g.Image.Width*scale-g.Container.Width)/2, 0)
	y = math.Max((g.Image.Height*scale-g.Container.Height)/2, 0)
	return x, y
}

// ClampPan limits a translation to the pan range for the given scale.
func ClampPan(g Geometry, scale float64, t geometry.Point2D) geometry.Point2D {
	maxX, maxY := MaxPan(g, scale)
	return geometry.NewPoint2D(
		geometry.Clamp(t.X, -maxX, maxX),
		geometry.Clamp(t.Y, -maxY, maxY),
	)
}

// AnchorTranslate returns the translation that keeps the image point under
// anchor fixed when scale changes to newScale. anchor and translate are
// relative to the container center.
func AnchorTranslate(translate, anchor geometry.Point2D, scale, newScale float64) geometry.Point2D {
	k := 1 - newScale/scale
	return translate.Add(anchor.Sub(translate).Scale(k))
}

// ImageRect returns where the image is drawn inside the container for t.
func ImageRect(g Geometry, t Transform) geometry.Rect {
	size := g.Image.Scale(t.Scale)
	center := g.Container.Center().Add(t.Translate())
	return geometry.NewRect(center.X-size.Width/2, center.Y-size.Height/2, size.Width, size.Height)
}

// ContainerToImage maps a container point to natural image pixels under t.
func ContainerToImage(g Geometry, t Transform, p geometry.Point2D) geometry.Point2D {
	r := ImageRect(g, t)
	return p.Sub(r.TopLeft()).Scale(1 / t.Scale)
}
