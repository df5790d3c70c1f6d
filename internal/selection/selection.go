// Package selection tracks selected and hovered regions and resolves pointer
// hit-tests against region outlines, labels and resize handles.
package selection

// Selection is a set of region names with one primary member. The primary is
// always a member of the set, or empty when the set is empty.
type Selection struct {
	names   []string
	primary string
	hover   string
}

// New creates an empty selection.
func New() *Selection {
	return &Selection{}
}

// Len returns the number of selected regions.
func (s *Selection) Len() int {
	return len(s.names)
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool {
	return len(s.names) == 0
}

// Names returns selected names in the order they were selected.
func (s *Selection) Names() []string {
	return append([]string(nil), s.names...)
}

// Primary returns the primary region name, or "".
func (s *Selection) Primary() string {
	return s.primary
}

// Contains reports whether name is selected.
func (s *Selection) Contains(name string) bool {
	return indexOf(s.names, name) >= 0
}

// SelectOne replaces the selection with a single region.
func (s *Selection) SelectOne(name string) {
	s.names = []string{name}
	s.primary = name
}

// Toggle adds name to the selection, making it primary, or removes it. When
// the primary is removed another member becomes primary.
func (s *Selection) Toggle(name string) {
	if i := indexOf(s.names, name); i >= 0 {
		s.names = append(s.names[:i], s.names[i+1:]...)
		if s.primary == name {
			s.primary = ""
			if len(s.names) > 0 {
				s.primary = s.names[len(s.names)-1]
			}
		}
		return
	}
	s.names = append(s.names, name)
	s.primary = name
}

// Add extends the selection. The primary is kept if set, otherwise the first
// added name becomes primary.
func (s *Selection) Add(names ...string) {
	for _, n := range names {
		if indexOf(s.names, n) < 0 {
			s.names = append(s.names, n)
		}
	}
	if s.primary == "" && len(s.names) > 0 {
		s.primary = s.names[0]
	}
}

// Set replaces the selection with names; the first becomes primary.
func (s *Selection) Set(names []string) {
	s.Clear()
	s.Add(names...)
}

// SelectAll selects every name in all.
func (s *Selection) SelectAll(all []string) {
	s.Set(all)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.names = nil
	s.primary = ""
}

// Invert selects exactly the names of all that are not currently selected.
func (s *Selection) Invert(all []string) {
	var inverted []string
	for _, n := range all {
		if indexOf(s.names, n) < 0 {
			inverted = append(inverted, n)
		}
	}
	s.Set(inverted)
}

// Retain drops selected names that fail exists, and clears a hover on a
// missing region.
func (s *Selection) Retain(exists func(string) bool) {
	kept := s.names[:0]
	for _, n := range s.names {
		if exists(n) {
			kept = append(kept, n)
		}
	}
	s.names = kept
	if s.primary != "" && !exists(s.primary) {
		s.primary = ""
		if len(s.names) > 0 {
			s.primary = s.names[0]
		}
	}
	if s.hover != "" && !exists(s.hover) {
		s.hover = ""
	}
}

// Rename follows a region rename.
func (s *Selection) Rename(oldName, newName string) {
	if i := indexOf(s.names, oldName); i >= 0 {
		s.names[i] = newName
	}
	if s.primary == oldName {
		s.primary = newName
	}
	if s.hover == oldName {
		s.hover = newName
	}
}

// Hover returns the hovered region name, or "".
func (s *Selection) Hover() string {
	return s.hover
}

// SetHover sets the hovered region and reports whether it changed.
func (s *Selection) SetHover(name string) bool {
	if s.hover == name {
		return false
	}
	s.hover = name
	return true
}

// ClearHover removes the hover and reports whether one was set.
func (s *Selection) ClearHover() bool {
	return s.SetHover("")
}

func indexOf(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return -1
}
