package viewport

import (
	"region-mapper/pkg/geometry"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ZoomAnimation eases the zoom level toward a target while keeping an anchor
// point fixed on screen.
type ZoomAnimation struct {
	tween  *gween.Tween
	anchor geometry.Point2D
	done   bool
}

// AnimateZoom starts a zoom animation from the current zoom to target over
// duration seconds. The target is clamped to the view's zoom limits.
func (v *ViewState) AnimateZoom(target float64, anchor geometry.Point2D, duration float32) *ZoomAnimation {
	clamped := v.Zoom
	v.SetZoom(target)
	target, v.Zoom = v.Zoom, clamped
	return &ZoomAnimation{
		tween:  gween.New(float32(v.Zoom), float32(target), duration, ease.OutQuad),
		anchor: anchor,
	}
}

// Step advances the animation by dt seconds and applies the new zoom to v.
// It returns true once the target has been reached.
func (a *ZoomAnimation) Step(v *ViewState, dt float32) bool {
	if a.done {
		return true
	}
	zoom, finished := a.tween.Update(dt)
	v.ZoomAt(a.anchor, float64(zoom))
	a.done = finished
	return finished
}

// Done reports whether the animation has finished.
func (a *ZoomAnimation) Done() bool {
	return a.done
}
