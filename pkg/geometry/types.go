// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Coords is a rectangle given by two opposite corners. The corners are not
// ordered: X1 may exceed X2 and Y1 may exceed Y2. Use Normalized before any
// geometric test.
type Coords struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewCoords creates Coords from two corners.
func NewCoords(x1, y1, x2, y2 float64) Coords {
	return Coords{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Normalized returns the coords with X1<=X2 and Y1<=Y2.
func (c Coords) Normalized() Coords {
	return Coords{
		X1: math.Min(c.X1, c.X2),
		Y1: math.Min(c.Y1, c.Y2),
		X2: math.Max(c.X1, c.X2),
		Y2: math.Max(c.Y1, c.Y2),
	}
}

// Width returns the absolute horizontal extent.
func (c Coords) Width() float64 {
	return math.Abs(c.X2 - c.X1)
}

// Height returns the absolute vertical extent.
func (c Coords) Height() float64 {
	return math.Abs(c.Y2 - c.Y1)
}

// Translate returns the coords shifted by (dx, dy).
func (c Coords) Translate(dx, dy float64) Coords {
	return Coords{X1: c.X1 + dx, Y1: c.Y1 + dy, X2: c.X2 + dx, Y2: c.Y2 + dy}
}

// Contains reports whether p lies inside or on the edge of the rectangle.
func (c Coords) Contains(p Point2D) bool {
	n := c.Normalized()
	return p.X >= n.X1 && p.X <= n.X2 && p.Y >= n.Y1 && p.Y <= n.Y2
}

// Intersects reports whether the rectangles overlap or touch.
func (c Coords) Intersects(other Coords) bool {
	a, b := c.Normalized(), other.Normalized()
	disjoint := a.X2 < b.X1 || b.X2 < a.X1 || a.Y2 < b.Y1 || b.Y2 < a.Y1
	return !disjoint
}

// Expand grows the normalized rectangle by d on every side.
func (c Coords) Expand(d float64) Coords {
	n := c.Normalized()
	return Coords{X1: n.X1 - d, Y1: n.Y1 - d, X2: n.X2 + d, Y2: n.Y2 + d}
}

// NearBorder reports whether p is within tol of the rectangle outline.
func (c Coords) NearBorder(p Point2D, tol float64) bool {
	if !c.Expand(tol).Contains(p) {
		return false
	}
	n := c.Normalized()
	inner := Coords{X1: n.X1 + tol, Y1: n.Y1 + tol, X2: n.X2 - tol, Y2: n.Y2 - tol}
	if inner.X1 >= inner.X2 || inner.Y1 >= inner.Y2 {
		return true
	}
	return !(p.X > inner.X1 && p.X < inner.X2 && p.Y > inner.Y1 && p.Y < inner.Y2)
}

// Clamp limits every coordinate to [lo, hi].
func (c Coords) Clamp(lo, hi float64) Coords {
	clamp := func(v float64) float64 { return math.Max(lo, math.Min(hi, v)) }
	return Coords{X1: clamp(c.X1), Y1: clamp(c.Y1), X2: clamp(c.X2), Y2: clamp(c.Y2)}
}

// EqualWithin reports whether all four coordinates differ by at most tol.
func (c Coords) EqualWithin(other Coords, tol float64) bool {
	return scalar.EqualWithinAbs(c.X1, other.X1, tol) &&
		scalar.EqualWithinAbs(c.Y1, other.Y1, tol) &&
		scalar.EqualWithinAbs(c.X2, other.X2, tol) &&
		scalar.EqualWithinAbs(c.Y2, other.Y2, tol)
}

// Slice returns the coords as [x1, y1, x2, y2].
func (c Coords) Slice() []float64 {
	return []float64{c.X1, c.Y1, c.X2, c.Y2}
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns the transform that applies t first, then other.
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  other.A*t.A + other.B*t.C,
		B:  other.A*t.B + other.B*t.D,
		TX: other.A*t.TX + other.B*t.TY + other.TX,
		C:  other.C*t.A + other.D*t.C,
		D:  other.C*t.B + other.D*t.D,
		TY: other.C*t.TX + other.D*t.TY + other.TY,
	}
}

// Inverse returns the inverse transform. Returns false if the matrix is singular.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-12 {
		return AffineTransform{}, false
	}
	inv := 1 / det
	return AffineTransform{
		A:  t.D * inv,
		B:  -t.B * inv,
		TX: (t.B*t.TY - t.D*t.TX) * inv,
		C:  -t.C * inv,
		D:  t.A * inv,
		TY: (t.C*t.TX - t.A*t.TY) * inv,
	}, true
}

// ApplyCoords applies the transform to both corners.
func (t AffineTransform) ApplyCoords(c Coords) Coords {
	p1 := t.Apply(Point2D{X: c.X1, Y: c.Y1})
	p2 := t.Apply(Point2D{X: c.X2, Y: c.Y2})
	return Coords{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}
}
