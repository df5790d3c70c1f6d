package editor

import (
	"math"

	"region-mapper/internal/selection"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"
)

// GestureKind identifies the pointer gesture in progress.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureMove
	GestureResize
	GestureBox
	GestureCreate
	GesturePan
)

// gesture holds the state of one pointer-down to pointer-up interaction.
// Normalized coords are never touched until the gesture ends.
type gesture struct {
	kind  GestureKind
	start geometry.Point2D
	last  geometry.Point2D

	// move and resize: normalized coords at gesture start
	origin map[string]geometry.Coords

	// resize
	target string
	handle selection.Handle

	// box select
	additive bool

	// pan
	panX, panY float64
}

func (g *gesture) delta() (float64, float64) {
	d := g.last.Sub(g.start)
	return d.X, d.Y
}

// refreshPreview re-projects the preview after a view change mid-gesture.
func (g *gesture) refreshPreview(s *Session) {
	switch g.kind {
	case GestureMove:
		s.previewMove()
	case GestureResize:
		s.previewResize()
	}
}

// Gesture returns the kind of gesture in progress.
func (s *Session) Gesture() GestureKind {
	if s.gesture == nil {
		return GestureNone
	}
	return s.gesture.kind
}

// Rubberband returns the display rectangle being drawn by a box-select or
// create gesture.
func (s *Session) Rubberband() (geometry.Coords, bool) {
	g := s.gesture
	if g == nil || (g.kind != GestureBox && g.kind != GestureCreate) {
		return geometry.Coords{}, false
	}
	return geometry.NewCoords(g.start.X, g.start.Y, g.last.X, g.last.Y), true
}

func (s *Session) begin(kind GestureKind, p geometry.Point2D) (*gesture, error) {
	if s.gesture != nil {
		return nil, ErrGestureActive
	}
	g := &gesture{kind: kind, start: p, last: p}
	s.gesture = g
	if s.sel.ClearHover() {
		s.emit(ChangeHover)
	}
	return g, nil
}

// BeginMove starts dragging the selected regions from display point p.
func (s *Session) BeginMove(p geometry.Point2D) error {
	if !s.view.HasImage() {
		return viewport.ErrNoDocument
	}
	names := s.sel.Names()
	if len(names) == 0 {
		return ErrNoSelection
	}
	g, err := s.begin(GestureMove, p)
	if err != nil {
		return err
	}
	g.origin = make(map[string]geometry.Coords, len(names))
	for _, n := range names {
		if r, ok := s.store.Get(n); ok {
			g.origin[n] = r.Coords
		}
	}
	return nil
}

// DragMove updates the move preview to display point p.
func (s *Session) DragMove(p geometry.Point2D) error {
	if s.gesture == nil || s.gesture.kind != GestureMove {
		return ErrNoGesture
	}
	s.gesture.last = p
	s.previewMove()
	s.emit(ChangePreview)
	return nil
}

func (s *Session) previewMove() {
	tr, err := s.view.Transform()
	if err != nil {
		return
	}
	ndx, ndy := tr.DisplayDeltaToNormalized(s.gesture.delta())
	ndx, ndy = clampDelta(s.gesture.origin, ndx, ndy)
	for n, c := range s.gesture.origin {
		s.display[n] = tr.NormalizedToDisplay(c.Translate(ndx, ndy))
	}
}

// clampDelta limits a normalized offset so every rectangle stays on the page
// at its current size.
func clampDelta(rects map[string]geometry.Coords, dx, dy float64) (float64, float64) {
	minX, minY := math.Inf(-1), math.Inf(-1)
	maxX, maxY := math.Inf(1), math.Inf(1)
	for _, c := range rects {
		n := c.Normalized()
		minX, maxX = math.Max(minX, -n.X1), math.Min(maxX, 1-n.X2)
		minY, maxY = math.Max(minY, -n.Y1), math.Min(maxY, 1-n.Y2)
	}
	return math.Max(minX, math.Min(maxX, dx)), math.Max(minY, math.Min(maxY, dy))
}

// EndMove commits the move as one undoable step. A gesture that ends where
// it started changes nothing.
func (s *Session) EndMove() error {
	g := s.gesture
	if g == nil || g.kind != GestureMove {
		return ErrNoGesture
	}
	s.gesture = nil
	dx, dy := g.delta()
	if dx == 0 && dy == 0 {
		s.recompute()
		return nil
	}
	tr, err := s.view.Transform()
	if err != nil {
		s.recompute()
		return err
	}
	ndx, ndy := tr.DisplayDeltaToNormalized(dx, dy)
	ndx, ndy = clampDelta(g.origin, ndx, ndy)
	if ndx == 0 && ndy == 0 {
		s.recompute()
		return nil
	}
	return s.mutate(func() error {
		for n, c := range g.origin {
			if err := s.store.SetCoords(n, c.Translate(ndx, ndy)); err != nil {
				return err
			}
		}
		return nil
	})
}

// BeginResize starts dragging a handle of the primary region. The selection
// must hold at most one region.
func (s *Session) BeginResize(handle selection.Handle, p geometry.Point2D) error {
	if !s.view.HasImage() {
		return viewport.ErrNoDocument
	}
	if s.sel.Len() > 1 {
		return ErrNotSingleSelection
	}
	target := s.sel.Primary()
	r, ok := s.store.Get(target)
	if !ok {
		return ErrNoSelection
	}
	g, err := s.begin(GestureResize, p)
	if err != nil {
		return err
	}
	g.target = target
	g.handle = handle
	g.origin = map[string]geometry.Coords{target: r.Coords}
	return nil
}

// DragResize moves the handle's edges to display point p.
func (s *Session) DragResize(p geometry.Point2D) error {
	if s.gesture == nil || s.gesture.kind != GestureResize {
		return ErrNoGesture
	}
	s.gesture.last = p
	s.previewResize()
	s.emit(ChangePreview)
	return nil
}

func (s *Session) previewResize() {
	tr, err := s.view.Transform()
	if err != nil {
		return
	}
	g := s.gesture
	s.display[g.target] = resized(tr.NormalizedToDisplay(g.origin[g.target]), g.handle, g.last)
}

// resized moves the edges selected by h to p. The result may be inverted.
func resized(rect geometry.Coords, h selection.Handle, p geometry.Point2D) geometry.Coords {
	n := rect.Normalized()
	if h.MovesLeft() {
		n.X1 = p.X
	}
	if h.MovesRight() {
		n.X2 = p.X
	}
	if h.MovesTop() {
		n.Y1 = p.Y
	}
	if h.MovesBottom() {
		n.Y2 = p.Y
	}
	return n
}

// EndResize commits the resize as one undoable step.
func (s *Session) EndResize() error {
	g := s.gesture
	if g == nil || g.kind != GestureResize {
		return ErrNoGesture
	}
	s.gesture = nil
	if g.last == g.start {
		s.recompute()
		return nil
	}
	tr, err := s.view.Transform()
	if err != nil {
		s.recompute()
		return err
	}
	rect := resized(tr.NormalizedToDisplay(g.origin[g.target]), g.handle, g.last)
	coords := tr.DisplayToNormalized(rect)
	return s.mutate(func() error { return s.store.SetCoords(g.target, coords) })
}

// BeginBox starts a box selection. Unless additive, the selection is cleared
// first.
func (s *Session) BeginBox(p geometry.Point2D, additive bool) error {
	g, err := s.begin(GestureBox, p)
	if err != nil {
		return err
	}
	g.additive = additive
	if !additive && !s.sel.Empty() {
		s.sel.Clear()
		s.emit(ChangeSelection)
	}
	return nil
}

// DragBox extends the selection box to display point p.
func (s *Session) DragBox(p geometry.Point2D) error {
	if s.gesture == nil || s.gesture.kind != GestureBox {
		return ErrNoGesture
	}
	s.gesture.last = p
	s.emit(ChangePreview)
	return nil
}

// EndBox selects every region touched by the box.
func (s *Session) EndBox() ([]string, error) {
	g := s.gesture
	if g == nil || g.kind != GestureBox {
		return nil, ErrNoGesture
	}
	s.gesture = nil
	box := geometry.NewCoords(g.start.X, g.start.Y, g.last.X, g.last.Y)
	if g.last == g.start {
		s.emit(ChangePreview)
		return nil, nil
	}
	return s.BoxSelect(box, g.additive), nil
}

// BeginCreate starts drawing a new region.
func (s *Session) BeginCreate(p geometry.Point2D) error {
	if !s.view.HasImage() {
		return viewport.ErrNoDocument
	}
	_, err := s.begin(GestureCreate, p)
	return err
}

// DragCreate extends the rectangle being drawn to display point p.
func (s *Session) DragCreate(p geometry.Point2D) error {
	if s.gesture == nil || s.gesture.kind != GestureCreate {
		return ErrNoGesture
	}
	s.gesture.last = p
	s.emit(ChangePreview)
	return nil
}

// EndCreate creates a region from the drawn rectangle using the pending next
// name. The gesture ends even when the create is rejected.
func (s *Session) EndCreate() error {
	g := s.gesture
	if g == nil || g.kind != GestureCreate {
		return ErrNoGesture
	}
	s.gesture = nil
	s.emit(ChangePreview)
	return s.CreateRegion(s.nextName, g.start.X, g.start.Y, g.last.X, g.last.Y)
}

// BeginPan starts panning the view.
func (s *Session) BeginPan(p geometry.Point2D) error {
	g, err := s.begin(GesturePan, p)
	if err != nil {
		return err
	}
	g.panX, g.panY = s.view.PanX, s.view.PanY
	return nil
}

// DragPan pans so the page follows the pointer.
func (s *Session) DragPan(p geometry.Point2D) error {
	g := s.gesture
	if g == nil || g.kind != GesturePan {
		return ErrNoGesture
	}
	g.last = p
	dx, dy := g.delta()
	s.view.PanX, s.view.PanY = g.panX+dx, g.panY+dy
	s.viewChanged()
	return nil
}

// EndPan finishes panning.
func (s *Session) EndPan() error {
	if s.gesture == nil || s.gesture.kind != GesturePan {
		return ErrNoGesture
	}
	s.gesture = nil
	return nil
}

// Cancel abandons the gesture in progress. Previews are discarded; a pan is
// rolled back. Store and history are untouched.
func (s *Session) Cancel() {
	g := s.gesture
	if g == nil {
		return
	}
	s.gesture = nil
	if g.kind == GesturePan {
		s.view.PanX, s.view.PanY = g.panX, g.panY
		s.viewChanged()
		return
	}
	s.recompute()
	s.emit(ChangePreview)
}

// UpdateHover sets the hover from a pointer position. Hover is suspended
// during gestures and over resize handles.
func (s *Session) UpdateHover(p geometry.Point2D) {
	if s.gesture != nil {
		return
	}
	name := ""
	if _, onHandle := s.HandleAt(p); !onHandle {
		name, _ = s.hit.RegionAt(p, s.Placed())
	}
	if s.sel.SetHover(name) {
		s.emit(ChangeHover)
	}
}

// ClearHover removes the hover, for instance when the pointer leaves the
// canvas.
func (s *Session) ClearHover() {
	if s.sel.ClearHover() {
		s.emit(ChangeHover)
	}
}

// HandleAt returns the resize handle of the primary region under p. Handles
// exist only while exactly one region is selected.
func (s *Session) HandleAt(p geometry.Point2D) (selection.Handle, bool) {
	if s.sel.Len() != 1 {
		return selection.HandleNone, false
	}
	rect, ok := s.display[s.sel.Primary()]
	if !ok {
		return selection.HandleNone, false
	}
	return s.hit.HandleAt(p, rect)
}

// RegionAt returns the topmost region under display point p.
func (s *Session) RegionAt(p geometry.Point2D) (string, bool) {
	return s.hit.RegionAt(p, s.Placed())
}
