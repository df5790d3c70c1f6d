package panels

import (
	"errors"
	"sort"
	"testing"

	"region-mapper/internal/editor"
	"region-mapper/internal/ocr"
	"region-mapper/internal/region"
	"region-mapper/pkg/geometry"
)

func TestNaturalLess(t *testing.T) {
	names := []string{"Field_10", "field_2", "Field_1", "Total", "A10", "A2"}
	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })
	want := []string{"A2", "A10", "Field_1", "field_2", "Field_10", "Total"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", names, want)
		}
	}
}

func newRowSession(t *testing.T) *editor.Session {
	t.Helper()
	s := editor.NewSession(editor.DefaultOptions())
	t.Cleanup(s.Close)
	s.SetViewportSize(100, 100)
	if err := s.LoadDocument(editor.Document{Path: "p.png", Page: 1, Width: 200, Height: 100}); err != nil {
		t.Fatal(err)
	}
	regions := []struct {
		name  string
		c     geometry.Coords
		group string
	}{
		{"Field_10", geometry.NewCoords(0, 0, 0.5, 0.5), "G"},
		{"Field_2", geometry.NewCoords(0.5, 0.5, 1, 1), "G"},
		{"Date", geometry.NewCoords(0.1, 0.1, 0.2, 0.3), ""},
	}
	for _, r := range regions {
		if err := s.CreateRegionNormalized(r.name, r.c, region.Red, r.group); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestRegionRows(t *testing.T) {
	s := newRowSession(t)
	s.Select("Field_2")

	rows := regionRows(s)
	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	order := []string{rows[0].Name, rows[1].Name, rows[2].Name}
	if order[0] != "Date" || order[1] != "Field_2" || order[2] != "Field_10" {
		t.Errorf("order = %v", order)
	}
	if !rows[1].Primary || !rows[1].Selected || rows[0].Selected {
		t.Errorf("selection flags = %+v", rows)
	}
	if rows[2].Pixels.Width != 100 || rows[2].Pixels.Height != 50 {
		t.Errorf("Field_10 pixels = %+v", rows[2].Pixels)
	}
	if got := rows[1].label(); got != "> Field_2 [red] 100x50 (G)" {
		t.Errorf("label = %q", got)
	}
}

func TestGroupRows(t *testing.T) {
	s := newRowSession(t)
	rows := groupRows(s)
	if len(rows) != 1 || rows[0].Name != "G" {
		t.Fatalf("groups = %+v", rows)
	}
	if len(rows[0].Members) != 2 || rows[0].Members[0] != "Field_2" {
		t.Errorf("members = %v", rows[0].Members)
	}
	if rows[0].label() != "G (2)" {
		t.Errorf("label = %q", rows[0].label())
	}
}

func TestTextLine(t *testing.T) {
	tests := []struct {
		in   ocr.RegionText
		want string
	}{
		{ocr.RegionText{Name: "A", Text: "hello\nworld", Confidence: 91.6}, "A: hello world (92%)"},
		{ocr.RegionText{Name: "B"}, "B: (no text) (0%)"},
		{ocr.RegionText{Name: "C", Err: errors.New("boom")}, "C: error: boom"},
	}
	for _, tt := range tests {
		if got := textLine(tt.in); got != tt.want {
			t.Errorf("textLine = %q, want %q", got, tt.want)
		}
	}
}
