package region

// State is an immutable deep copy of a store's regions and groups. It is what
// the history stacks hold and what exporters and OCR jobs read from.
type State struct {
	Regions []Region
	Groups  map[string][]string
}

// Snapshot returns a deep copy of the store contents.
func (s *Store) Snapshot() State {
	st := State{
		Regions: s.Regions(),
		Groups:  make(map[string][]string, len(s.groups)),
	}
	for g, members := range s.groups {
		st.Groups[g] = append([]string(nil), members...)
	}
	return st
}

// Restore replaces the store contents with a copy of st.
func (s *Store) Restore(st State) {
	s.Clear()
	for _, r := range st.Regions {
		rc := r
		s.regions[r.Name] = &rc
		s.order = append(s.order, r.Name)
	}
	for g, members := range st.Groups {
		s.groups[g] = append([]string(nil), members...)
	}
}

// Len returns the number of regions in the state.
func (st State) Len() int {
	return len(st.Regions)
}

// Find returns the named region.
func (st State) Find(name string) (Region, bool) {
	for _, r := range st.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// Equal reports whether two states hold the same regions, in the same order,
// and the same groups with the same member order.
func (st State) Equal(other State) bool {
	if len(st.Regions) != len(other.Regions) || len(st.Groups) != len(other.Groups) {
		return false
	}
	for i := range st.Regions {
		if st.Regions[i] != other.Regions[i] {
			return false
		}
	}
	for g, members := range st.Groups {
		om, ok := other.Groups[g]
		if !ok || len(om) != len(members) {
			return false
		}
		for i := range members {
			if members[i] != om[i] {
				return false
			}
		}
	}
	return true
}
