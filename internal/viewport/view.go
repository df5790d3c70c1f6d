// Package viewport provides the coordinate transform between image pixels,
// normalized page fractions and on-screen display pixels.
package viewport

import (
	"errors"
	"math"

	"region-mapper/pkg/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoDocument is returned by conversions when no page is loaded.
var ErrNoDocument = errors.New("no document loaded")

// Default zoom limits and step.
const (
	DefaultMinZoom  = 0.2
	DefaultMaxZoom  = 5.0
	DefaultZoomStep = 1.2
)

// ViewState holds the presentation parameters of the canvas. It is never
// exported with the regions.
type ViewState struct {
	ViewportWidth  float64
	ViewportHeight float64
	ImageWidth     int
	ImageHeight    int

	Zoom float64
	PanX float64
	PanY float64

	MinZoom  float64
	MaxZoom  float64
	ZoomStep float64
}

// NewViewState creates a view with default zoom limits.
func NewViewState() *ViewState {
	return &ViewState{
		Zoom:     1.0,
		MinZoom:  DefaultMinZoom,
		MaxZoom:  DefaultMaxZoom,
		ZoomStep: DefaultZoomStep,
	}
}

// HasImage reports whether an image size is set.
func (v *ViewState) HasImage() bool {
	return v.ImageWidth > 0 && v.ImageHeight > 0
}

// SetImageSize sets the page size and resets zoom and pan.
func (v *ViewState) SetImageSize(width, height int) {
	v.ImageWidth = width
	v.ImageHeight = height
	v.Reset()
}

// SetViewportSize updates the visible area size.
func (v *ViewState) SetViewportSize(width, height float64) {
	v.ViewportWidth = width
	v.ViewportHeight = height
}

// BaseScale returns the scale that fits the page inside the viewport without
// enlarging it.
func (v *ViewState) BaseScale() float64 {
	if !v.HasImage() || v.ViewportWidth <= 0 || v.ViewportHeight <= 0 {
		return 1.0
	}
	return math.Min(math.Min(v.ViewportWidth/float64(v.ImageWidth), v.ViewportHeight/float64(v.ImageHeight)), 1.0)
}

// Scale returns the effective display pixels per image pixel.
func (v *ViewState) Scale() float64 {
	return v.BaseScale() * v.Zoom
}

// Transform returns the conversion functions for the current view.
func (v *ViewState) Transform() (Transform, error) {
	if !v.HasImage() {
		return Transform{}, ErrNoDocument
	}
	scale := v.Scale()
	w, h := float64(v.ImageWidth), float64(v.ImageHeight)
	center := r2.Vec{
		X: (v.ViewportWidth - w*scale) / 2,
		Y: (v.ViewportHeight - h*scale) / 2,
	}
	return Transform{
		scale:  scale,
		origin: r2.Add(center, r2.Vec{X: v.PanX, Y: v.PanY}),
		size:   r2.Vec{X: w, Y: h},
	}, nil
}

// SetZoom sets the zoom level, clamped to the configured limits.
func (v *ViewState) SetZoom(zoom float64) {
	v.Zoom = math.Max(v.MinZoom, math.Min(v.MaxZoom, zoom))
}

// ZoomIn multiplies the zoom by the zoom step.
func (v *ViewState) ZoomIn() {
	v.SetZoom(v.Zoom * v.ZoomStep)
}

// ZoomOut divides the zoom by the zoom step.
func (v *ViewState) ZoomOut() {
	v.SetZoom(v.Zoom / v.ZoomStep)
}

// ZoomAt sets a new zoom level while keeping the image point under the display
// point p fixed on screen.
func (v *ViewState) ZoomAt(p geometry.Point2D, zoom float64) {
	before, err := v.Transform()
	if err != nil {
		v.SetZoom(zoom)
		return
	}
	anchor := before.DisplayToImage(p)

	v.SetZoom(zoom)
	v.PanX, v.PanY = 0, 0
	after, _ := v.Transform()
	landed := after.ImageToDisplay(anchor)
	shift := p.Sub(landed)
	v.PanX, v.PanY = shift.X, shift.Y
}

// Pan shifts the view by a display-space delta.
func (v *ViewState) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// Reset restores zoom 1 and removes any pan.
func (v *ViewState) Reset() {
	v.Zoom = 1.0
	v.PanX, v.PanY = 0, 0
	v.SetZoom(v.Zoom)
}

// Transform converts points and rectangles between the three coordinate
// spaces for one fixed view. The zero value is unusable; obtain one from
// ViewState.Transform.
type Transform struct {
	scale  float64
	origin r2.Vec
	size   r2.Vec
}

// Scale returns display pixels per image pixel.
func (t Transform) Scale() float64 {
	return t.scale
}

// Origin returns the display position of the image's top-left corner.
func (t Transform) Origin() geometry.Point2D {
	return fromVec(t.origin)
}

// ImageRect returns the page's display rectangle.
func (t Transform) ImageRect() geometry.Coords {
	br := t.ImageToDisplay(fromVec(t.size))
	return geometry.NewCoords(t.origin.X, t.origin.Y, br.X, br.Y)
}

// Affine returns the image to display mapping as a matrix.
func (t Transform) Affine() geometry.AffineTransform {
	return geometry.Scale(t.scale, t.scale).Compose(geometry.Translation(t.origin.X, t.origin.Y))
}

// ImageToDisplay converts an image-space point to display space.
func (t Transform) ImageToDisplay(p geometry.Point2D) geometry.Point2D {
	return t.Affine().Apply(p)
}

// DisplayToImage converts a display-space point to image space.
func (t Transform) DisplayToImage(p geometry.Point2D) geometry.Point2D {
	return fromVec(r2.Scale(1/t.scale, r2.Sub(toVec(p), t.origin)))
}

// NormalizedToImage converts a normalized point to image space.
func (t Transform) NormalizedToImage(n geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: n.X * t.size.X, Y: n.Y * t.size.Y}
}

// ImageToNormalized converts an image-space point to normalized space.
func (t Transform) ImageToNormalized(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: p.X / t.size.X, Y: p.Y / t.size.Y}
}

// NormalizedToDisplay converts normalized coords to a display rectangle,
// preserving corner order.
func (t Transform) NormalizedToDisplay(c geometry.Coords) geometry.Coords {
	p1 := t.NormalizedToImage(geometry.Point2D{X: c.X1, Y: c.Y1})
	p2 := t.NormalizedToImage(geometry.Point2D{X: c.X2, Y: c.Y2})
	return t.Affine().ApplyCoords(geometry.NewCoords(p1.X, p1.Y, p2.X, p2.Y))
}

// DisplayToNormalized converts a display rectangle to normalized coords,
// preserving corner order.
func (t Transform) DisplayToNormalized(c geometry.Coords) geometry.Coords {
	p1 := t.DisplayPointToNormalized(geometry.Point2D{X: c.X1, Y: c.Y1})
	p2 := t.DisplayPointToNormalized(geometry.Point2D{X: c.X2, Y: c.Y2})
	return geometry.NewCoords(p1.X, p1.Y, p2.X, p2.Y)
}

// DisplayPointToNormalized converts a display point to normalized space.
func (t Transform) DisplayPointToNormalized(p geometry.Point2D) geometry.Point2D {
	return t.ImageToNormalized(t.DisplayToImage(p))
}

// DisplayDeltaToNormalized converts a display-space offset to a normalized
// offset.
func (t Transform) DisplayDeltaToNormalized(dx, dy float64) (float64, float64) {
	return dx / t.scale / t.size.X, dy / t.scale / t.size.Y
}

// NormalizedToImageRect returns the integer pixel rectangle for normalized
// coords. The corners are ordered, truncated toward zero and clamped to the
// page.
func (t Transform) NormalizedToImageRect(c geometry.Coords) geometry.RectInt {
	return ImageRect(c, int(t.size.X), int(t.size.Y))
}

// ImageRect returns the integer pixel rectangle of normalized coords on a
// width x height page. It needs no view and is shared by the mask and OCR
// consumers.
func ImageRect(c geometry.Coords, width, height int) geometry.RectInt {
	n := c.Normalized().Clamp(0, 1)
	x1 := int(n.X1 * float64(width))
	y1 := int(n.Y1 * float64(height))
	x2 := int(n.X2 * float64(width))
	y2 := int(n.Y2 * float64(height))
	return geometry.RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func toVec(p geometry.Point2D) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) geometry.Point2D {
	return geometry.Point2D{X: v.X, Y: v.Y}
}
