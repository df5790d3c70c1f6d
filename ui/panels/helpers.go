package panels

import (
	"fmt"
	"sort"
	"strings"

	"region-mapper/internal/editor"
	"region-mapper/internal/ocr"
	"region-mapper/internal/region"
	"region-mapper/pkg/geometry"
)

// regionRow is one line of the region list, copied out of the session so
// list callbacks never touch it.
type regionRow struct {
	Name     string
	Group    string
	Color    region.Color
	Kind     region.Kind
	Fill     region.Fill
	Pixels   geometry.RectInt
	Selected bool
	Primary  bool
}

func (r regionRow) label() string {
	mark := "  "
	switch {
	case r.Primary:
		mark = "> "
	case r.Selected:
		mark = "+ "
	}
	s := fmt.Sprintf("%s%s [%s] %dx%d", mark, r.Name, r.Color, r.Pixels.Width, r.Pixels.Height)
	if r.Group != "" {
		s += " (" + r.Group + ")"
	}
	if r.Kind != region.KindNone {
		s += " " + r.Kind.String()
	}
	return s
}

// groupRow is one line of the group list.
type groupRow struct {
	Name    string
	Members []string
}

func (g groupRow) label() string {
	return fmt.Sprintf("%s (%d)", g.Name, len(g.Members))
}

// regionRows lists the session's regions in natural name order.
func regionRows(s *editor.Session) []regionRow {
	names, primary := s.Selection()
	selected := make(map[string]bool, len(names))
	for _, n := range names {
		selected[n] = true
	}

	regions := s.Regions()
	rows := make([]regionRow, 0, len(regions))
	for _, r := range regions {
		px, _ := s.ImageRect(r.Name)
		rows = append(rows, regionRow{
			Name:     r.Name,
			Group:    r.Group,
			Color:    r.Color,
			Kind:     r.Kind,
			Fill:     r.Fill,
			Pixels:   px,
			Selected: selected[r.Name],
			Primary:  r.Name == primary,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return naturalLess(rows[i].Name, rows[j].Name) })
	return rows
}

// groupRows lists the session's groups in natural name order.
func groupRows(s *editor.Session) []groupRow {
	names := s.GroupNames()
	rows := make([]groupRow, 0, len(names))
	for _, g := range names {
		members := s.GroupMembers(g)
		sort.Slice(members, func(i, j int) bool { return naturalLess(members[i], members[j]) })
		rows = append(rows, groupRow{Name: g, Members: members})
	}
	sort.Slice(rows, func(i, j int) bool { return naturalLess(rows[i].Name, rows[j].Name) })
	return rows
}

// textLine formats one recognition result.
func textLine(r ocr.RegionText) string {
	if r.Err != nil {
		return fmt.Sprintf("%s: error: %v", r.Name, r.Err)
	}
	text := strings.ReplaceAll(r.Text, "\n", " ")
	if text == "" {
		text = "(no text)"
	}
	return fmt.Sprintf("%s: %s (%.0f%%)", r.Name, text, r.Confidence)
}

// naturalLess compares two strings using natural numeric ordering.
// "A2" < "A10", "Field_1" < "Field_2" < "Field_10", etc.
func naturalLess(a, b string) bool {
	chunksA := splitNatural(a)
	chunksB := splitNatural(b)
	for i := 0; i < len(chunksA) && i < len(chunksB); i++ {
		ca, cb := chunksA[i], chunksB[i]
		if isNumeric(ca) && isNumeric(cb) {
			na := parseNum(ca)
			nb := parseNum(cb)
			if na != nb {
				return na < nb
			}
		} else {
			cmp := strings.Compare(strings.ToUpper(ca), strings.ToUpper(cb))
			if cmp != 0 {
				return cmp < 0
			}
		}
	}
	return len(chunksA) < len(chunksB)
}

func splitNatural(s string) []string {
	var chunks []string
	var current strings.Builder
	wasDigit := false
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		if i > 0 && isDigit != wasDigit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		wasDigit = isDigit
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func parseNum(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
		}
	}
	return n
}
