package editor

import (
	"region-mapper/internal/selection"
	"region-mapper/pkg/geometry"
)

// Phase is a step of a pointer gesture.
type Phase int

const (
	PointerDown Phase = iota
	PointerMove
	PointerUp
	PointerLeave
	Cancel
)

// Mode is the canvas tool mode.
type Mode int

const (
	ModeCreate Mode = iota
	ModeSelect
)

func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "select"
}

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	Shift Modifiers = 1 << iota
	Ctrl
	Alt
)

// Has reports whether every modifier in m2 is held.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Target classifies what is under the pointer on PointerDown.
type Target int

const (
	TargetAny Target = iota
	TargetEmpty
	TargetRegion
	TargetHandle
)

// PointerEvent is a toolkit-independent pointer event in display space.
type PointerEvent struct {
	Phase  Phase
	Pos    geometry.Point2D
	Button Button
	Mods   Modifiers
}

// Hit is the classification of the pointer position for a PointerDown.
type Hit struct {
	Target Target
	Region string
	Handle selection.Handle
}

// Route selects a handler. PointerDown routes on Mode and Target; move and
// up route on the gesture in progress.
type Route struct {
	Phase   Phase
	Mode    Mode
	Target  Target
	Gesture GestureKind
}

// Handler performs the edit for one routed event.
type Handler func(s *Session, ev PointerEvent, hit Hit) error

// KeyEvent is a toolkit-independent key press. Name uses the key names of
// the UI toolkit ("Escape", "Delete", "Z", "Left", "+").
type KeyEvent struct {
	Name string
	Mods Modifiers
}

// KeyHandler performs the action bound to a key.
type KeyHandler func(d *Dispatcher) error

// NudgeStep is the display distance an arrow key moves the selection;
// BigNudgeStep applies with Shift held.
const (
	NudgeStep    = 1.0
	BigNudgeStep = 10.0
)

// Dispatcher maps pointer and key events to session operations.
type Dispatcher struct {
	s      *Session
	mode   Mode
	routes map[Route]Handler
	keys   map[KeyEvent]KeyHandler

	// OnMode is called after the mode changes.
	OnMode func(Mode)
}

// NewDispatcher returns a dispatcher in Create mode with the standard
// bindings installed.
func NewDispatcher(s *Session) *Dispatcher {
	d := &Dispatcher{
		s:      s,
		mode:   ModeCreate,
		routes: make(map[Route]Handler),
		keys:   make(map[KeyEvent]KeyHandler),
	}
	d.installRoutes()
	d.installKeys()
	return d
}

// Session returns the session the dispatcher drives.
func (d *Dispatcher) Session() *Session {
	return d.s
}

// Mode returns the current tool mode.
func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// SetMode switches tool mode, abandoning any gesture in progress.
func (d *Dispatcher) SetMode(m Mode) {
	if m == d.mode {
		return
	}
	d.s.Cancel()
	d.s.ClearHover()
	d.mode = m
	if d.OnMode != nil {
		d.OnMode(m)
	}
}

// Handle installs or replaces the handler for a route.
func (d *Dispatcher) Handle(r Route, h Handler) {
	d.routes[r] = h
}

// BindKey installs or replaces the action for a key.
func (d *Dispatcher) BindKey(k KeyEvent, h KeyHandler) {
	d.keys[k] = h
}

func (d *Dispatcher) installRoutes() {
	for _, m := range []Mode{ModeCreate, ModeSelect} {
		d.Handle(Route{Phase: PointerMove, Mode: m, Gesture: GesturePan}, dragPan)
		d.Handle(Route{Phase: PointerUp, Mode: m, Gesture: GesturePan}, endPan)
	}

	d.Handle(Route{Phase: PointerDown, Mode: ModeCreate, Target: TargetAny}, beginCreate)
	d.Handle(Route{Phase: PointerMove, Mode: ModeCreate, Gesture: GestureCreate}, dragCreate)
	d.Handle(Route{Phase: PointerUp, Mode: ModeCreate, Gesture: GestureCreate}, endCreate)

	d.Handle(Route{Phase: PointerDown, Mode: ModeSelect, Target: TargetHandle}, beginResize)
	d.Handle(Route{Phase: PointerDown, Mode: ModeSelect, Target: TargetRegion}, selectAndMove)
	d.Handle(Route{Phase: PointerDown, Mode: ModeSelect, Target: TargetEmpty}, beginBox)
	d.Handle(Route{Phase: PointerMove, Mode: ModeSelect, Gesture: GestureResize}, dragResize)
	d.Handle(Route{Phase: PointerUp, Mode: ModeSelect, Gesture: GestureResize}, endResize)
	d.Handle(Route{Phase: PointerMove, Mode: ModeSelect, Gesture: GestureMove}, dragMove)
	d.Handle(Route{Phase: PointerUp, Mode: ModeSelect, Gesture: GestureMove}, endMove)
	d.Handle(Route{Phase: PointerMove, Mode: ModeSelect, Gesture: GestureBox}, dragBox)
	d.Handle(Route{Phase: PointerUp, Mode: ModeSelect, Gesture: GestureBox}, endBox)
	d.Handle(Route{Phase: PointerMove, Mode: ModeSelect, Gesture: GestureNone}, hover)
}

func (d *Dispatcher) installKeys() {
	d.BindKey(KeyEvent{Name: "Escape"}, func(d *Dispatcher) error {
		d.s.Cancel()
		return nil
	})
	for _, name := range []string{"Delete", "BackSpace"} {
		d.BindKey(KeyEvent{Name: name}, func(d *Dispatcher) error { return d.s.DeleteSelected() })
	}
	d.BindKey(KeyEvent{Name: "Z", Mods: Ctrl}, func(d *Dispatcher) error {
		d.s.Undo()
		return nil
	})
	redo := func(d *Dispatcher) error {
		d.s.Redo()
		return nil
	}
	d.BindKey(KeyEvent{Name: "Z", Mods: Ctrl | Shift}, redo)
	d.BindKey(KeyEvent{Name: "Y", Mods: Ctrl}, redo)
	d.BindKey(KeyEvent{Name: "D", Mods: Ctrl}, func(d *Dispatcher) error {
		_, err := d.s.DuplicateSelected()
		return err
	})
	d.BindKey(KeyEvent{Name: "A", Mods: Ctrl}, func(d *Dispatcher) error {
		d.s.SelectAll()
		return nil
	})
	d.BindKey(KeyEvent{Name: "I", Mods: Ctrl}, func(d *Dispatcher) error {
		d.s.InvertSelection()
		return nil
	})
	for _, name := range []string{"+", "="} {
		d.BindKey(KeyEvent{Name: name}, func(d *Dispatcher) error {
			d.s.ZoomIn()
			return nil
		})
	}
	d.BindKey(KeyEvent{Name: "-"}, func(d *Dispatcher) error {
		d.s.ZoomOut()
		return nil
	})
	d.BindKey(KeyEvent{Name: "0"}, func(d *Dispatcher) error {
		d.s.ResetView()
		return nil
	})
	d.BindKey(KeyEvent{Name: "1"}, func(d *Dispatcher) error {
		d.SetMode(ModeCreate)
		return nil
	})
	d.BindKey(KeyEvent{Name: "2"}, func(d *Dispatcher) error {
		d.SetMode(ModeSelect)
		return nil
	})

	arrows := map[string][2]float64{
		"Left":  {-1, 0},
		"Right": {1, 0},
		"Up":    {0, -1},
		"Down":  {0, 1},
	}
	for name, dir := range arrows {
		dir := dir
		d.BindKey(KeyEvent{Name: name}, func(d *Dispatcher) error {
			return d.s.MoveSelection(dir[0]*NudgeStep, dir[1]*NudgeStep)
		})
		d.BindKey(KeyEvent{Name: name, Mods: Shift}, func(d *Dispatcher) error {
			return d.s.MoveSelection(dir[0]*BigNudgeStep, dir[1]*BigNudgeStep)
		})
	}
}

// Key runs the action bound to a key press. Unbound keys report false.
func (d *Dispatcher) Key(ev KeyEvent) (bool, error) {
	h, ok := d.keys[ev]
	if !ok {
		return false, nil
	}
	return true, h(d)
}

// Dispatch routes one pointer event. Events with no route are ignored.
func (d *Dispatcher) Dispatch(ev PointerEvent) error {
	switch ev.Phase {
	case Cancel:
		d.s.Cancel()
		return nil
	case PointerLeave:
		d.s.ClearHover()
		return nil
	case PointerDown:
		if d.s.Gesture() != GestureNone {
			return ErrGestureActive
		}
		if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Mods.Has(Alt)) {
			return d.s.BeginPan(ev.Pos)
		}
		if ev.Button != ButtonPrimary {
			return nil
		}
		hit := d.classify(ev.Pos)
		h, ok := d.routes[Route{Phase: PointerDown, Mode: d.mode, Target: hit.Target}]
		if !ok {
			h, ok = d.routes[Route{Phase: PointerDown, Mode: d.mode, Target: TargetAny}]
		}
		if !ok {
			return nil
		}
		return h(d.s, ev, hit)
	default:
		h, ok := d.routes[Route{Phase: ev.Phase, Mode: d.mode, Gesture: d.s.Gesture()}]
		if !ok {
			return nil
		}
		return h(d.s, ev, Hit{})
	}
}

// classify finds what lies under p. Create mode ignores existing regions.
func (d *Dispatcher) classify(p geometry.Point2D) Hit {
	if d.mode == ModeCreate {
		return Hit{Target: TargetAny}
	}
	if h, ok := d.s.HandleAt(p); ok {
		return Hit{Target: TargetHandle, Handle: h}
	}
	if name, ok := d.s.RegionAt(p); ok {
		return Hit{Target: TargetRegion, Region: name}
	}
	return Hit{Target: TargetEmpty}
}

func beginCreate(s *Session, ev PointerEvent, _ Hit) error { return s.BeginCreate(ev.Pos) }
func dragCreate(s *Session, ev PointerEvent, _ Hit) error  { return s.DragCreate(ev.Pos) }
func endCreate(s *Session, ev PointerEvent, _ Hit) error {
	if err := s.DragCreate(ev.Pos); err != nil {
		return err
	}
	return s.EndCreate()
}

func beginResize(s *Session, ev PointerEvent, hit Hit) error {
	return s.BeginResize(hit.Handle, ev.Pos)
}
func dragResize(s *Session, ev PointerEvent, _ Hit) error { return s.DragResize(ev.Pos) }
func endResize(s *Session, ev PointerEvent, _ Hit) error {
	if err := s.DragResize(ev.Pos); err != nil {
		return err
	}
	return s.EndResize()
}

// selectAndMove updates the selection for a press on a region and starts
// moving the selection. Ctrl toggles the region; a press on an unselected
// region selects only it; a press on a selected region keeps the selection.
func selectAndMove(s *Session, ev PointerEvent, hit Hit) error {
	switch {
	case ev.Mods.Has(Ctrl):
		s.ToggleSelect(hit.Region)
	case ev.Mods.Has(Shift):
		s.sel.Add(hit.Region)
		s.emit(ChangeSelection)
	case !s.sel.Contains(hit.Region):
		s.Select(hit.Region)
	}
	if s.sel.Empty() {
		return nil
	}
	return s.BeginMove(ev.Pos)
}
func dragMove(s *Session, ev PointerEvent, _ Hit) error { return s.DragMove(ev.Pos) }
func endMove(s *Session, ev PointerEvent, _ Hit) error {
	if err := s.DragMove(ev.Pos); err != nil {
		return err
	}
	return s.EndMove()
}

func beginBox(s *Session, ev PointerEvent, _ Hit) error {
	return s.BeginBox(ev.Pos, ev.Mods.Has(Shift))
}
func dragBox(s *Session, ev PointerEvent, _ Hit) error { return s.DragBox(ev.Pos) }
func endBox(s *Session, ev PointerEvent, _ Hit) error {
	if err := s.DragBox(ev.Pos); err != nil {
		return err
	}
	_, err := s.EndBox()
	return err
}

func dragPan(s *Session, ev PointerEvent, _ Hit) error { return s.DragPan(ev.Pos) }
func endPan(s *Session, ev PointerEvent, _ Hit) error {
	if err := s.DragPan(ev.Pos); err != nil {
		return err
	}
	return s.EndPan()
}

func hover(s *Session, ev PointerEvent, _ Hit) error {
	s.UpdateHover(ev.Pos)
	return nil
}
