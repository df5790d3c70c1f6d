package region

import (
	"fmt"
	"sort"

	"region-mapper/pkg/geometry"
)

// Store owns the regions and groups of one document. Every method keeps the
// group invariants: a region's Group names an existing group that lists the
// region, and no group is empty. Coords are always within [0,1].
type Store struct {
	regions map[string]*Region
	order   []string
	groups  map[string][]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		regions: make(map[string]*Region),
		groups:  make(map[string][]string),
	}
}

// Len returns the number of regions.
func (s *Store) Len() int {
	return len(s.order)
}

// Has reports whether a region with that name exists.
func (s *Store) Has(name string) bool {
	_, ok := s.regions[name]
	return ok
}

// Get returns a copy of the named region.
func (s *Store) Get(name string) (Region, bool) {
	r, ok := s.regions[name]
	if !ok {
		return Region{}, false
	}
	return *r, true
}

// Names returns region names in creation order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Regions returns copies of all regions in creation order.
func (s *Store) Regions() []Region {
	out := make([]Region, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.regions[name])
	}
	return out
}

// GroupNames returns all group names, sorted.
func (s *Store) GroupNames() []string {
	names := make([]string, 0, len(s.groups))
	for g := range s.groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// GroupMembers returns the members of a group in insertion order.
func (s *Store) GroupMembers(group string) []string {
	members := s.groups[group]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// Create adds a new region with coords clamped to the page. An empty color
// selects DefaultColor and an empty group leaves the region ungrouped.
func (s *Store) Create(name string, coords geometry.Coords, color Color, group string) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	if s.Has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if color == "" {
		color = DefaultColor
	}
	if !color.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	if group != "" {
		if group, err = CleanName(group); err != nil {
			return fmt.Errorf("group: %w", err)
		}
	}

	s.regions[name] = &Region{Name: name, Coords: coords.Clamp(0, 1), Color: color}
	s.order = append(s.order, name)
	if group != "" {
		s.join(name, group)
	}
	return nil
}

// Rename changes a region's name, keeping its position, coords, color and
// group membership.
func (s *Store) Rename(oldName, newName string) error {
	r, ok := s.regions[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	newName, err := CleanName(newName)
	if err != nil {
		return err
	}
	if newName == oldName {
		return nil
	}
	if s.Has(newName) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}

	delete(s.regions, oldName)
	r.Name = newName
	s.regions[newName] = r
	for i, n := range s.order {
		if n == oldName {
			s.order[i] = newName
			break
		}
	}
	if r.Group != "" {
		members := s.groups[r.Group]
		for i, m := range members {
			if m == oldName {
				members[i] = newName
				break
			}
		}
	}
	return nil
}

// Delete removes a region and drops it from its group.
func (s *Store) Delete(name string) error {
	r, ok := s.regions[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if r.Group != "" {
		s.leave(name, r.Group)
	}
	delete(s.regions, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetGroup moves a region into group, or out of any group when group is "".
func (s *Store) SetGroup(name, group string) error {
	r, ok := s.regions[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if group != "" {
		var err error
		if group, err = CleanName(group); err != nil {
			return fmt.Errorf("group: %w", err)
		}
	}
	if r.Group == group {
		return nil
	}
	if r.Group != "" {
		s.leave(name, r.Group)
	}
	if group != "" {
		s.join(name, group)
	}
	return nil
}

// DeleteGroup ungroups every member of group and removes it.
func (s *Store) DeleteGroup(group string) error {
	members, ok := s.groups[group]
	if !ok {
		return fmt.Errorf("%w: group %q", ErrNotFound, group)
	}
	for _, m := range members {
		if r, ok := s.regions[m]; ok {
			r.Group = ""
		}
	}
	delete(s.groups, group)
	return nil
}

// SetCoords replaces a region's normalized coords, clamped to the page.
func (s *Store) SetCoords(name string, coords geometry.Coords) error {
	r, ok := s.regions[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r.Coords = coords.Clamp(0, 1)
	return nil
}

// SetAttributes replaces a region's optional attributes.
func (s *Store) SetAttributes(name string, a Attributes) error {
	r, ok := s.regions[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	r.Attributes = a
	return nil
}

// SetColor changes a region's color.
func (s *Store) SetColor(name string, color Color) error {
	r, ok := s.regions[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !color.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	r.Color = color
	return nil
}

// Clear removes all regions and groups.
func (s *Store) Clear() {
	s.regions = make(map[string]*Region)
	s.groups = make(map[string][]string)
	s.order = nil
}

// UniqueName returns base if unused, otherwise base followed by the first
// free "_N" suffix.
func (s *Store) UniqueName(base string) string {
	if !s.Has(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !s.Has(candidate) {
			return candidate
		}
	}
}

// Validate checks the group invariants and returns the first violation.
func (s *Store) Validate() error {
	for _, name := range s.order {
		r, ok := s.regions[name]
		if !ok {
			return fmt.Errorf("order lists missing region %q", name)
		}
		if r.Coords != r.Coords.Clamp(0, 1) {
			return fmt.Errorf("region %q has coords off the page: %+v", name, r.Coords)
		}
		if r.Group == "" {
			continue
		}
		if !contains(s.groups[r.Group], name) {
			return fmt.Errorf("region %q claims group %q which does not list it", name, r.Group)
		}
	}
	for g, members := range s.groups {
		if len(members) == 0 {
			return fmt.Errorf("group %q is empty", g)
		}
		for _, m := range members {
			r, ok := s.regions[m]
			if !ok {
				return fmt.Errorf("group %q lists missing region %q", g, m)
			}
			if r.Group != g {
				return fmt.Errorf("group %q lists region %q which belongs to %q", g, m, r.Group)
			}
		}
	}
	if len(s.order) != len(s.regions) {
		return fmt.Errorf("order has %d names for %d regions", len(s.order), len(s.regions))
	}
	return nil
}

func (s *Store) join(name, group string) {
	s.regions[name].Group = group
	if !contains(s.groups[group], name) {
		s.groups[group] = append(s.groups[group], name)
	}
}

func (s *Store) leave(name, group string) {
	s.regions[name].Group = ""
	members := s.groups[group]
	for i, m := range members {
		if m == name {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(s.groups, group)
	} else {
		s.groups[group] = members
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
