package selection

import (
	"math"

	"region-mapper/pkg/geometry"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Default hit-test tolerances in display pixels.
const (
	DefaultBorderTolerance = 2.0
	DefaultHandleTolerance = 13.0
	LabelPadding           = 2.0
)

// Handle identifies one of the eight resize handles.
type Handle string

// Resize handles, clockwise from the top-left corner.
const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleN    Handle = "n"
	HandleNE   Handle = "ne"
	HandleE    Handle = "e"
	HandleSE   Handle = "se"
	HandleS    Handle = "s"
	HandleSW   Handle = "sw"
	HandleW    Handle = "w"
)

// Handles lists all handles in hit-test order.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// MovesLeft reports whether the handle drags the left edge.
func (h Handle) MovesLeft() bool { return h == HandleNW || h == HandleW || h == HandleSW }

// MovesRight reports whether the handle drags the right edge.
func (h Handle) MovesRight() bool { return h == HandleNE || h == HandleE || h == HandleSE }

// MovesTop reports whether the handle drags the top edge.
func (h Handle) MovesTop() bool { return h == HandleNW || h == HandleN || h == HandleNE }

// MovesBottom reports whether the handle drags the bottom edge.
func (h Handle) MovesBottom() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// Placed is a region laid out in display space.
type Placed struct {
	Name string
	Rect geometry.Coords
}

// HitTester resolves display-space points against placed regions.
type HitTester struct {
	BorderTolerance float64
	HandleTolerance float64
	Face            font.Face
}

// NewHitTester creates a hit tester with default tolerances and the fixed
// label face used by the canvas.
func NewHitTester() *HitTester {
	return &HitTester{
		BorderTolerance: DefaultBorderTolerance,
		HandleTolerance: DefaultHandleTolerance,
		Face:            basicfont.Face7x13,
	}
}

// LabelBounds returns the display rectangle of a region's name label, which
// sits on top of the region's top-left corner.
func (h *HitTester) LabelBounds(name string, rect geometry.Coords) geometry.Coords {
	n := rect.Normalized()
	w := float64(font.MeasureString(h.Face, name).Ceil()) + 2*LabelPadding
	ht := float64(h.Face.Metrics().Height.Ceil()) + 2*LabelPadding
	return geometry.NewCoords(n.X1, n.Y1-ht, n.X1+w, n.Y1)
}

// RegionAt returns the topmost region whose outline or label is under p.
// Regions later in the slice are drawn above earlier ones.
func (h *HitTester) RegionAt(p geometry.Point2D, regions []Placed) (string, bool) {
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		if r.Rect.NearBorder(p, h.BorderTolerance) || h.LabelBounds(r.Name, r.Rect).Contains(p) {
			return r.Name, true
		}
	}
	return "", false
}

// HandlePoints returns the display position of every handle of rect.
func HandlePoints(rect geometry.Coords) map[Handle]geometry.Point2D {
	n := rect.Normalized()
	cx, cy := (n.X1+n.X2)/2, (n.Y1+n.Y2)/2
	return map[Handle]geometry.Point2D{
		HandleNW: {X: n.X1, Y: n.Y1},
		HandleN:  {X: cx, Y: n.Y1},
		HandleNE: {X: n.X2, Y: n.Y1},
		HandleE:  {X: n.X2, Y: cy},
		HandleSE: {X: n.X2, Y: n.Y2},
		HandleS:  {X: cx, Y: n.Y2},
		HandleSW: {X: n.X1, Y: n.Y2},
		HandleW:  {X: n.X1, Y: cy},
	}
}

// HandleAt returns the handle of rect nearest to p within the handle
// tolerance.
func (h *HitTester) HandleAt(p geometry.Point2D, rect geometry.Coords) (Handle, bool) {
	points := HandlePoints(rect)
	best, bestDist := HandleNone, math.Inf(1)
	for _, handle := range Handles {
		d := points[handle].Distance(p)
		if d <= h.HandleTolerance && d < bestDist {
			best, bestDist = handle, d
		}
	}
	return best, best != HandleNone
}

// Intersecting returns the names of regions whose rectangle overlaps or
// touches box.
func Intersecting(box geometry.Coords, regions []Placed) []string {
	var names []string
	for _, r := range regions {
		if r.Rect.Intersects(box) {
			names = append(names, r.Name)
		}
	}
	return names
}
