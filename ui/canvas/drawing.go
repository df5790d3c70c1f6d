package canvas

import (
	"image"
	"image/color"
	"math"

	"region-mapper/internal/region"
	"region-mapper/internal/selection"
	"region-mapper/pkg/colorutil"
	"region-mapper/pkg/geometry"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Fill alpha for region interiors.
const (
	fillAlpha         = 0x20
	hoverFillAlpha    = 0x38
	selectedFillAlpha = 0x50
	handleSize        = 6
)

// Shape is one region as drawn, in display coordinates.
type Shape struct {
	Name     string
	Rect     geometry.Coords
	Color    region.Color
	Selected bool
	Hovered  bool
}

// Frame is everything drawn in one repaint. Display coordinates are
// multiplied by Scale to get output pixels.
type Frame struct {
	Page     image.Image
	PageRect geometry.Coords // display rectangle covered by the page

	Shapes  []Shape
	Handles *geometry.Coords // display rectangle of the resizable region

	Rubberband      *geometry.Coords
	RubberbandColor color.RGBA

	Scale float64
}

// Render draws a frame into a new w x h image.
func Render(w, h int, f Frame) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(colorutil.Background), image.Point{}, draw.Src)

	k := f.Scale
	if k <= 0 {
		k = 1
	}

	if f.Page != nil {
		dst := pixelRect(f.PageRect, k)
		scaler := draw.Interpolator(draw.ApproxBiLinear)
		if pb := f.Page.Bounds(); pb.Dx() > 0 && float64(dst.Dx())/float64(pb.Dx()) > 2 {
			scaler = draw.NearestNeighbor
		}
		scaler.Scale(out, dst, f.Page, f.Page.Bounds(), draw.Src, nil)
	}

	for _, s := range f.Shapes {
		drawShape(out, s, k)
	}
	for _, s := range f.Shapes {
		drawShapeLabel(out, s, k)
	}

	if f.Handles != nil {
		for _, p := range selection.HandlePoints(*f.Handles) {
			drawHandle(out, int(p.X*k), int(p.Y*k))
		}
	}

	if f.Rubberband != nil {
		drawDashedRect(out, pixelRect(*f.Rubberband, k), f.RubberbandColor)
	}
	return out
}

func pixelRect(c geometry.Coords, k float64) image.Rectangle {
	n := c.Normalized()
	return image.Rect(
		int(math.Floor(n.X1*k)), int(math.Floor(n.Y1*k)),
		int(math.Floor(n.X2*k)), int(math.Floor(n.Y2*k)),
	)
}

func strokeColor(s Shape) color.RGBA {
	if s.Selected {
		return colorutil.Selection
	}
	return colorutil.Named(string(s.Color))
}

func drawShape(out *image.RGBA, s Shape, k float64) {
	r := pixelRect(s.Rect, k)
	base := colorutil.Named(string(s.Color))

	alpha := uint8(fillAlpha)
	switch {
	case s.Selected:
		alpha = selectedFillAlpha
	case s.Hovered:
		alpha = hoverFillAlpha
	}
	fillRect(out, r, colorutil.WithAlpha(base, alpha))

	thickness := 1
	if s.Selected || s.Hovered {
		thickness = 2
	}
	strokeRect(out, r, strokeColor(s), thickness)
}

// drawShapeLabel draws the region name on a white tab above its top-left
// corner, matching the label bounds used for hit testing.
func drawShapeLabel(out *image.RGBA, s Shape, k float64) {
	if s.Name == "" {
		return
	}
	face := basicfont.Face7x13
	n := s.Rect.Normalized()
	x := int(n.X1 * k)
	y := int(n.Y1 * k)
	pad := int(selection.LabelPadding)
	width := font.MeasureString(face, s.Name).Ceil() + 2*pad
	height := face.Metrics().Height.Ceil() + 2*pad

	tab := image.Rect(x, y-height, x+width, y)
	fillRect(out, tab, colorutil.WithAlpha(colorutil.White, 0xd0))
	strokeRect(out, tab, strokeColor(s), 1)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(colorutil.Black),
		Face: face,
		Dot:  fixed.P(x+pad, y-pad-face.Metrics().Descent.Ceil()),
	}
	d.DrawString(s.Name)
}

func drawHandle(out *image.RGBA, cx, cy int) {
	half := handleSize / 2
	r := image.Rect(cx-half, cy-half, cx+half+1, cy+half+1)
	draw.Draw(out, r.Intersect(out.Bounds()), image.NewUniform(colorutil.White), image.Point{}, draw.Src)
	strokeRect(out, r, colorutil.Selection, 1)
}

// fillRect blends c over every pixel of r.
func fillRect(out *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(out.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetRGBA(x, y, colorutil.Blend(out.RGBAAt(x, y), c))
		}
	}
}

// strokeRect outlines r with lines thickness pixels wide, growing inward.
// The right and bottom lines sit on Max-1.
func strokeRect(out *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	if r.Empty() {
		drawLine(out, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, c, thickness)
		return
	}
	for i := 0; i < thickness; i++ {
		rr := r.Inset(i)
		if rr.Empty() {
			break
		}
		x1, y1, x2, y2 := rr.Min.X, rr.Min.Y, rr.Max.X-1, rr.Max.Y-1
		drawLine(out, x1, y1, x2, y1, c, 1)
		drawLine(out, x1, y2, x2, y2, c, 1)
		drawLine(out, x1, y1, x1, y2, c, 1)
		drawLine(out, x2, y1, x2, y2, c, 1)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(out *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, thickness int) {
	bounds := out.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				if p := image.Pt(x1+s, y1+t); p.In(bounds) {
					out.SetRGBA(p.X, p.Y, c)
				}
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawDashedRect outlines r with a 2-on 2-off dash.
func drawDashedRect(out *image.RGBA, r image.Rectangle, c color.RGBA) {
	bounds := out.Bounds()
	set := func(x, y int) {
		if (x+y)%4 < 2 && image.Pt(x, y).In(bounds) {
			out.SetRGBA(x, y, c)
		}
	}
	x1, y1, x2, y2 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}
