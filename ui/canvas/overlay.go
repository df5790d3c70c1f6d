package canvas

import (
	"image"

	"region-mapper/internal/editor"
	"region-mapper/pkg/colorutil"
)

// BuildFrame captures what the session shows: the page, every region with
// its selection and hover state, the resize handles of a single selection
// and any rubber band. Region rectangles come from the display map, so a
// gesture in progress draws at its previewed position.
func BuildFrame(s *editor.Session, page image.Image, scale float64) Frame {
	f := Frame{Scale: scale}
	tr, err := s.Transform()
	if err != nil {
		return f
	}
	if page != nil {
		f.Page = page
		f.PageRect = tr.ImageRect()
	}

	names, primary := s.Selection()
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		selected[n] = true
	}
	hover := s.Hover()

	for _, p := range s.Placed() {
		r, _ := s.Region(p.Name)
		f.Shapes = append(f.Shapes, Shape{
			Name:     p.Name,
			Rect:     p.Rect,
			Color:    r.Color,
			Selected: selected[p.Name],
			Hovered:  p.Name == hover,
		})
	}

	if len(names) == 1 && s.Gesture() != editor.GestureMove {
		if rect, ok := s.DisplayRect(primary); ok {
			f.Handles = &rect
		}
	}

	if rb, ok := s.Rubberband(); ok {
		f.Rubberband = &rb
		f.RubberbandColor = colorutil.BoxSelect
		if s.Gesture() == editor.GestureCreate {
			f.RubberbandColor = colorutil.Named(string(s.Color()))
		}
	}
	return f
}
