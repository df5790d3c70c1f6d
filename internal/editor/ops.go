package editor

import (
	"fmt"

	"region-mapper/internal/region"
	"region-mapper/internal/selection"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"
)

// CreateRegion adds a region from two display-space corners using the
// session's current color. The new region becomes the only selection and the
// next suggested name is updated.
func (s *Session) CreateRegion(name string, x1, y1, x2, y2 float64) error {
	tr, err := s.view.Transform()
	if err != nil {
		return err
	}
	coords := tr.DisplayToNormalized(geometry.NewCoords(x1, y1, x2, y2))
	return s.CreateRegionNormalized(name, coords, s.color, "")
}

// CreateRegionNormalized adds a region from normalized coords.
func (s *Session) CreateRegionNormalized(name string, coords geometry.Coords, color region.Color, group string) error {
	if s.doc == nil {
		return viewport.ErrNoDocument
	}
	name, err := region.CleanName(name)
	if err != nil {
		return err
	}
	if err := s.mutate(func() error {
		return s.store.Create(name, coords, color, group)
	}); err != nil {
		return err
	}

	s.sel.SelectOne(name)
	if next := SuggestNextName(name, s.store.Has); next != "" {
		s.nextName = next
	} else {
		s.nextName = GenerateName(s.store.Has)
	}
	s.emit(ChangeSelection)
	return nil
}

// Rename renames a region.
func (s *Session) Rename(oldName, newName string) error {
	clean, err := region.CleanName(newName)
	if err != nil {
		return err
	}
	return s.mutate(func() error {
		if err := s.store.Rename(oldName, clean); err != nil {
			return err
		}
		s.sel.Rename(oldName, clean)
		return nil
	})
}

// Recolor changes one region's color.
func (s *Session) Recolor(name string, color region.Color) error {
	return s.mutate(func() error { return s.store.SetColor(name, color) })
}

// SetKind changes the content kind of a region.
func (s *Session) SetKind(name string, kind region.Kind) error {
	return s.updateAttributes(name, func(a *region.Attributes) { a.Kind = kind })
}

// SetFill changes the percentage fill option of a region.
func (s *Session) SetFill(name string, fill region.Fill) error {
	return s.updateAttributes(name, func(a *region.Attributes) { a.Fill = fill })
}

func (s *Session) updateAttributes(name string, edit func(a *region.Attributes)) error {
	r, ok := s.store.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", region.ErrNotFound, name)
	}
	a := r.Attributes
	edit(&a)
	if a == r.Attributes {
		return nil
	}
	return s.mutate(func() error { return s.store.SetAttributes(name, a) })
}

// RecolorSelected changes the color of every selected region.
func (s *Session) RecolorSelected(color region.Color) error {
	names := s.sel.Names()
	if len(names) == 0 {
		return ErrNoSelection
	}
	return s.mutate(func() error {
		for _, n := range names {
			if err := s.store.SetColor(n, color); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes one region.
func (s *Session) Delete(name string) error {
	return s.mutate(func() error { return s.store.Delete(name) })
}

// DeleteSelected removes every selected region.
func (s *Session) DeleteSelected() error {
	names := s.sel.Names()
	if len(names) == 0 {
		return ErrNoSelection
	}
	return s.mutate(func() error {
		for _, n := range names {
			if err := s.store.Delete(n); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetGroup moves one region into group, or out of its group when group is "".
func (s *Session) SetGroup(name, group string) error {
	return s.mutate(func() error { return s.store.SetGroup(name, group) })
}

// GroupSelected puts every selected region into group.
func (s *Session) GroupSelected(group string) error {
	names := s.sel.Names()
	if len(names) == 0 {
		return ErrNoSelection
	}
	group, err := region.CleanName(group)
	if err != nil {
		return fmt.Errorf("group: %w", err)
	}
	return s.mutate(func() error {
		for _, n := range names {
			if err := s.store.SetGroup(n, group); err != nil {
				return err
			}
		}
		return nil
	})
}

// UngroupSelected removes every selected region from its group.
func (s *Session) UngroupSelected() error {
	names := s.sel.Names()
	if len(names) == 0 {
		return ErrNoSelection
	}
	return s.mutate(func() error {
		for _, n := range names {
			if err := s.store.SetGroup(n, ""); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteGroup dissolves a group, leaving its members ungrouped.
func (s *Session) DeleteGroup(group string) error {
	return s.mutate(func() error { return s.store.DeleteGroup(group) })
}

// SelectGroup selects all members of a group.
func (s *Session) SelectGroup(group string) {
	s.sel.Set(s.store.GroupMembers(group))
	s.emit(ChangeSelection)
}

// DuplicateSelected copies every selected region under a fresh name. Copies
// keep coords and color but join no group, and become the new selection.
func (s *Session) DuplicateSelected() ([]string, error) {
	names := s.sel.Names()
	if len(names) == 0 {
		return nil, ErrNoSelection
	}
	var created []string
	err := s.mutate(func() error {
		for _, n := range names {
			r, ok := s.store.Get(n)
			if !ok {
				continue
			}
			copyName := DuplicateName(n, s.store.Has)
			if err := s.store.Create(copyName, r.Coords, r.Color, ""); err != nil {
				return err
			}
			if err := s.store.SetAttributes(copyName, r.Attributes); err != nil {
				return err
			}
			created = append(created, copyName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.sel.Set(created)
	s.emit(ChangeSelection)
	return created, nil
}

// MoveSelection shifts every selected region by a display-space delta as one
// undoable step.
func (s *Session) MoveSelection(dx, dy float64) error {
	tr, err := s.view.Transform()
	if err != nil {
		return err
	}
	names := s.sel.Names()
	if len(names) == 0 {
		return ErrNoSelection
	}
	origin := make(map[string]geometry.Coords, len(names))
	for _, n := range names {
		if r, ok := s.store.Get(n); ok {
			origin[n] = r.Coords
		}
	}
	ndx, ndy := tr.DisplayDeltaToNormalized(dx, dy)
	ndx, ndy = clampDelta(origin, ndx, ndy)
	if ndx == 0 && ndy == 0 {
		return nil
	}
	return s.mutate(func() error {
		for n, c := range origin {
			if err := s.store.SetCoords(n, c.Translate(ndx, ndy)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetCoords replaces one region's normalized coords.
func (s *Session) SetCoords(name string, coords geometry.Coords) error {
	return s.mutate(func() error { return s.store.SetCoords(name, coords) })
}

// ReplaceAll swaps in a whole new set of regions and groups as one undoable
// step. Importers use it after validating their input.
func (s *Session) ReplaceAll(st region.State) error {
	if s.doc == nil {
		return viewport.ErrNoDocument
	}
	s.Cancel()
	if err := s.mutate(func() error {
		s.store.Restore(st)
		return s.store.Validate()
	}); err != nil {
		return err
	}
	s.sel.Clear()
	s.emit(ChangeSelection)
	return nil
}

// Select replaces the selection with one region.
func (s *Session) Select(name string) {
	if !s.store.Has(name) {
		return
	}
	s.sel.SelectOne(name)
	s.emit(ChangeSelection)
}

// ToggleSelect adds or removes one region from the selection.
func (s *Session) ToggleSelect(name string) {
	if !s.store.Has(name) {
		return
	}
	s.sel.Toggle(name)
	s.emit(ChangeSelection)
}

// SelectAll selects every region.
func (s *Session) SelectAll() {
	s.sel.SelectAll(s.store.Names())
	s.emit(ChangeSelection)
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll() {
	s.sel.Clear()
	s.emit(ChangeSelection)
}

// InvertSelection selects exactly the regions that were not selected.
func (s *Session) InvertSelection() {
	s.sel.Invert(s.store.Names())
	s.emit(ChangeSelection)
}

// BoxSelect selects the regions whose display rectangle overlaps or touches
// box. With add set the existing selection is kept.
func (s *Session) BoxSelect(box geometry.Coords, add bool) []string {
	names := selection.Intersecting(box, s.Placed())
	if add {
		s.sel.Add(names...)
	} else {
		s.sel.Set(names)
	}
	s.emit(ChangeSelection)
	return names
}
