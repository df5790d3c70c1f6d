package editor

import (
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"
)

// SetScheduler sets the function used to run debounced view updates. The
// default runs them on the debouncer's timer goroutine; UI front ends pass a
// function that hands the update to their event thread.
func (s *Session) SetScheduler(run func(func())) {
	s.schedule = run
}

// SetViewportSize applies a viewport size immediately.
func (s *Session) SetViewportSize(width, height float64) {
	s.view.SetViewportSize(width, height)
	s.recompute()
	s.emit(ChangeView)
}

// ResizeViewport records a viewport size change. Bursts of calls are
// coalesced and only the last size is applied once the settling window has
// passed.
func (s *Session) ResizeViewport(width, height float64) {
	s.resize.Call(func() {
		s.run(func() { s.SetViewportSize(width, height) })
	})
}

// FlushResize applies a pending viewport resize immediately through the
// scheduler. It must not be called from inside the scheduler.
func (s *Session) FlushResize() {
	s.resize.Flush()
}

// Close stops background timers.
func (s *Session) Close() {
	s.resize.Stop()
}

func (s *Session) run(fn func()) {
	if s.schedule != nil {
		s.schedule(fn)
		return
	}
	fn()
}

// SetZoom sets the zoom level around the viewport center.
func (s *Session) SetZoom(zoom float64) {
	s.ZoomAt(geometry.Point2D{X: s.view.ViewportWidth / 2, Y: s.view.ViewportHeight / 2}, zoom)
}

// ZoomAt zooms keeping the page point under p fixed.
func (s *Session) ZoomAt(p geometry.Point2D, zoom float64) {
	s.view.ZoomAt(p, zoom)
	s.viewChanged()
}

// ZoomIn zooms in one step around the viewport center.
func (s *Session) ZoomIn() {
	s.SetZoom(s.view.Zoom * s.view.ZoomStep)
}

// ZoomOut zooms out one step around the viewport center.
func (s *Session) ZoomOut() {
	s.SetZoom(s.view.Zoom / s.view.ZoomStep)
}

// Pan shifts the view by a display-space delta.
func (s *Session) Pan(dx, dy float64) {
	s.view.Pan(dx, dy)
	s.viewChanged()
}

// ResetView restores zoom 1 with the page centered.
func (s *Session) ResetView() {
	s.view.Reset()
	s.viewChanged()
}

// AnimateZoom starts an eased zoom toward target around anchor. Drive it with
// StepAnimation from the render loop.
func (s *Session) AnimateZoom(target float64, anchor geometry.Point2D, seconds float32) *viewport.ZoomAnimation {
	return s.view.AnimateZoom(target, anchor, seconds)
}

// StepAnimation advances a zoom animation by dt seconds and reports whether
// it has finished.
func (s *Session) StepAnimation(anim *viewport.ZoomAnimation, dt float32) bool {
	done := anim.Step(s.view, dt)
	s.viewChanged()
	return done
}

func (s *Session) viewChanged() {
	s.recompute()
	if s.gesture != nil {
		s.gesture.refreshPreview(s)
	}
	s.emit(ChangeView)
}
