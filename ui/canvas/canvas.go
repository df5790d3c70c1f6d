// Package canvas provides the region editing canvas: it paints the page and
// region overlays and forwards pointer and key input to the dispatcher.
package canvas

import (
	"image"
	"log"
	"time"

	"region-mapper/internal/editor"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	zoomAnimSeconds = 0.15
	animFrame       = 16 * time.Millisecond
)

// RegionCanvas displays a page with its regions and turns toolkit input into
// dispatcher events.
type RegionCanvas struct {
	widget.BaseWidget

	d  *editor.Dispatcher
	do func(func())

	page   image.Image
	raster *fynecanvas.Raster

	// Pointer state
	pressed  bool
	button   editor.Button
	lastPos  fyne.Position
	mods     editor.Modifiers
	viewSize fyne.Size

	// Zoom animation, guarded by do
	anim       *viewport.ZoomAnimation
	zoomTarget float64

	onError func(err error)
}

var (
	_ fyne.Widget       = (*RegionCanvas)(nil)
	_ fyne.Draggable    = (*RegionCanvas)(nil)
	_ fyne.Scrollable   = (*RegionCanvas)(nil)
	_ fyne.Focusable    = (*RegionCanvas)(nil)
	_ fyne.Shortcutable = (*RegionCanvas)(nil)
	_ desktop.Mouseable = (*RegionCanvas)(nil)
	_ desktop.Hoverable = (*RegionCanvas)(nil)
	_ desktop.Keyable   = (*RegionCanvas)(nil)
)

// NewRegionCanvas creates a canvas driving d. Every session access is made
// through do, which must serialize it with the rest of the application.
func NewRegionCanvas(d *editor.Dispatcher, do func(func())) *RegionCanvas {
	rc := &RegionCanvas{d: d, do: do}
	rc.raster = fynecanvas.NewRaster(rc.draw)
	rc.raster.ScaleMode = fynecanvas.ImageScalePixels
	rc.ExtendBaseWidget(rc)
	return rc
}

// SetPage sets the page bitmap shown under the regions.
func (rc *RegionCanvas) SetPage(img image.Image) {
	rc.page = img
	rc.Refresh()
}

// OnError sets a callback for errors returned by input handlers.
func (rc *RegionCanvas) OnError(callback func(err error)) {
	rc.onError = callback
}

// Refresh repaints the canvas.
func (rc *RegionCanvas) Refresh() {
	rc.raster.Refresh()
}

// draw is the raster drawing function.
func (rc *RegionCanvas) draw(w, h int) image.Image {
	scale := 1.0
	if size := rc.Size(); size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}
	var f Frame
	rc.do(func() {
		f = BuildFrame(rc.d.Session(), rc.page, scale)
	})
	return Render(w, h, f)
}

func (rc *RegionCanvas) report(err error) {
	if err == nil {
		return
	}
	log.Printf("Canvas: %v", err)
	if rc.onError != nil {
		rc.onError(err)
	}
}

func (rc *RegionCanvas) dispatch(phase editor.Phase, pos fyne.Position) {
	ev := editor.PointerEvent{
		Phase:  phase,
		Pos:    toPoint(pos),
		Button: rc.button,
		Mods:   rc.mods,
	}
	var err error
	rc.do(func() { err = rc.d.Dispatch(ev) })
	rc.report(err)
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

func toModifiers(m fyne.KeyModifier) editor.Modifiers {
	var out editor.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		out |= editor.Shift
	}
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		out |= editor.Ctrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= editor.Alt
	}
	return out
}

func toButton(b desktop.MouseButton) editor.Button {
	switch b {
	case desktop.MouseButtonTertiary:
		return editor.ButtonMiddle
	case desktop.MouseButtonSecondary:
		return editor.ButtonSecondary
	}
	return editor.ButtonPrimary
}

// MouseDown starts a gesture.
func (rc *RegionCanvas) MouseDown(ev *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(rc); c != nil {
		c.Focus(rc)
	}
	rc.pressed = true
	rc.button = toButton(ev.Button)
	rc.mods = toModifiers(ev.Modifier)
	rc.lastPos = ev.Position
	rc.dispatch(editor.PointerDown, ev.Position)
}

// MouseUp finishes the gesture when the pointer was not dragged.
func (rc *RegionCanvas) MouseUp(ev *desktop.MouseEvent) {
	if !rc.pressed {
		return
	}
	rc.pressed = false
	rc.dispatch(editor.PointerUp, ev.Position)
}

// Dragged feeds gesture motion.
func (rc *RegionCanvas) Dragged(ev *fyne.DragEvent) {
	rc.lastPos = ev.Position
	rc.dispatch(editor.PointerMove, ev.Position)
}

// DragEnd finishes a dragged gesture at the last pointer position.
func (rc *RegionCanvas) DragEnd() {
	if !rc.pressed {
		return
	}
	rc.pressed = false
	rc.dispatch(editor.PointerUp, rc.lastPos)
}

// MouseIn implements desktop.Hoverable.
func (rc *RegionCanvas) MouseIn(ev *desktop.MouseEvent) {
	rc.MouseMoved(ev)
}

// MouseMoved updates hover, or gesture motion for buttons that do not
// produce drag events.
func (rc *RegionCanvas) MouseMoved(ev *desktop.MouseEvent) {
	rc.lastPos = ev.Position
	if !rc.pressed {
		rc.mods = toModifiers(ev.Modifier)
	}
	rc.dispatch(editor.PointerMove, ev.Position)
}

// MouseOut clears hover.
func (rc *RegionCanvas) MouseOut() {
	rc.dispatch(editor.PointerLeave, rc.lastPos)
}

// Scrolled zooms around the pointer with a short eased animation. Scrolling
// again while animating retargets from the previous target.
func (rc *RegionCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	anchor := toPoint(ev.Position)
	start := false
	rc.do(func() {
		s := rc.d.Session()
		view := s.View()
		base := view.Zoom
		if rc.anim != nil {
			base = rc.zoomTarget
		}
		target := base * view.ZoomStep
		if ev.Scrolled.DY < 0 {
			target = base / view.ZoomStep
		}
		rc.zoomTarget = target
		start = rc.anim == nil
		rc.anim = s.AnimateZoom(target, anchor, zoomAnimSeconds)
	})
	if start {
		go rc.runAnimation()
	}
}

// runAnimation steps the current zoom animation every frame until it
// finishes.
func (rc *RegionCanvas) runAnimation() {
	ticker := time.NewTicker(animFrame)
	defer ticker.Stop()
	last := time.Now()
	for now := range ticker.C {
		dt := float32(now.Sub(last).Seconds())
		last = now
		done := false
		rc.do(func() {
			if rc.anim == nil || rc.d.Session().StepAnimation(rc.anim, dt) {
				rc.anim = nil
				done = true
			}
		})
		rc.Refresh()
		if done {
			return
		}
	}
}

// FocusGained implements fyne.Focusable.
func (rc *RegionCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (rc *RegionCanvas) FocusLost() {}

// TypedRune implements fyne.Focusable. Keys are handled in TypedKey.
func (rc *RegionCanvas) TypedRune(rune) {}

// TypedKey forwards unmodified and shifted keys to the dispatcher.
func (rc *RegionCanvas) TypedKey(ev *fyne.KeyEvent) {
	rc.key(editor.KeyEvent{Name: string(ev.Name), Mods: rc.mods & editor.Shift})
}

// KeyDown tracks held modifiers.
func (rc *RegionCanvas) KeyDown(ev *fyne.KeyEvent) {
	switch ev.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		rc.mods |= editor.Shift
	}
}

// KeyUp tracks released modifiers.
func (rc *RegionCanvas) KeyUp(ev *fyne.KeyEvent) {
	switch ev.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		rc.mods &^= editor.Shift
	}
}

// TypedShortcut forwards modifier shortcuts to the dispatcher.
func (rc *RegionCanvas) TypedShortcut(s fyne.Shortcut) {
	if ev, ok := shortcutKey(s); ok {
		rc.key(ev)
	}
}

// shortcutKey maps a toolkit shortcut to a dispatcher key event.
func shortcutKey(s fyne.Shortcut) (editor.KeyEvent, bool) {
	if cs, ok := s.(*desktop.CustomShortcut); ok {
		return editor.KeyEvent{Name: string(cs.KeyName), Mods: toModifiers(cs.Modifier)}, true
	}
	switch s.ShortcutName() {
	case "SelectAll":
		return editor.KeyEvent{Name: "A", Mods: editor.Ctrl}, true
	case "Undo":
		return editor.KeyEvent{Name: "Z", Mods: editor.Ctrl}, true
	case "Redo":
		return editor.KeyEvent{Name: "Z", Mods: editor.Ctrl | editor.Shift}, true
	}
	return editor.KeyEvent{}, false
}

func (rc *RegionCanvas) key(ev editor.KeyEvent) {
	var err error
	rc.do(func() { _, err = rc.d.Key(ev) })
	rc.report(err)
}

// CreateRenderer implements fyne.Widget.
func (rc *RegionCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &regionCanvasRenderer{canvas: rc}
}

type regionCanvasRenderer struct {
	canvas *RegionCanvas
}

// Layout applies the first size at once and debounces later resizes.
func (r *regionCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	if size == r.canvas.viewSize || size.Width <= 0 || size.Height <= 0 {
		return
	}
	first := r.canvas.viewSize.Width == 0
	r.canvas.viewSize = size
	w, h := float64(size.Width), float64(size.Height)
	r.canvas.do(func() {
		s := r.canvas.d.Session()
		if first {
			s.SetViewportSize(w, h)
		} else {
			s.ResizeViewport(w, h)
		}
	})
}

func (r *regionCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (r *regionCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *regionCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *regionCanvasRenderer) Destroy() {}
