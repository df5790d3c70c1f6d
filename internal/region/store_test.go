package region

import (
	"errors"
	"strings"
	"testing"

	"region-mapper/pkg/geometry"
)

func mustCreate(t *testing.T, s *Store, name, group string) {
	t.Helper()
	if err := s.Create(name, geometry.NewCoords(0.1, 0.1, 0.3, 0.3), "", group); err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
}

func mustValid(t *testing.T, s *Store) {
	t.Helper()
	if err := s.Validate(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestCreate(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "")

	r, ok := s.Get("A")
	if !ok {
		t.Fatal("region A missing")
	}
	if r.Color != DefaultColor {
		t.Errorf("Color = %q, want %q", r.Color, DefaultColor)
	}
	if r.Group != "" {
		t.Errorf("Group = %q, want none", r.Group)
	}
	mustValid(t, s)
}

func TestCreateRejects(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		color   Color
		wantErr error
	}{
		{"duplicate", "A", "", ErrDuplicateName},
		{"duplicate after trim", "  A ", "", ErrDuplicateName},
		{"empty", "", "", ErrEmptyName},
		{"blank", "   ", "", ErrEmptyName},
		{"reserved", "null", "", ErrInvalidName},
		{"control char", "a\x01b", "", ErrInvalidName},
		{"too long", strings.Repeat("x", MaxNameLength+1), "", ErrInvalidName},
		{"bad color", "B", Color("magenta"), ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			mustCreate(t, s, "A", "g")
			before := s.Snapshot()

			err := s.Create(tt.region, geometry.Coords{}, tt.color, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create error = %v, want %v", err, tt.wantErr)
			}
			if !s.Snapshot().Equal(before) {
				t.Error("rejected create mutated the store")
			}
		})
	}
}

func TestRename(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "g")
	mustCreate(t, s, "B", "g")
	mustCreate(t, s, "C", "")

	if err := s.Rename("A", "Z"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := s.GroupMembers("g"); len(got) != 2 || got[0] != "Z" || got[1] != "B" {
		t.Errorf("group members = %v, want [Z B]", got)
	}
	if got := s.Names(); got[0] != "Z" {
		t.Errorf("order = %v, want Z first", got)
	}
	r, _ := s.Get("Z")
	if r.Group != "g" || r.Color != DefaultColor {
		t.Errorf("renamed region lost fields: %+v", r)
	}
	mustValid(t, s)

	if err := s.Rename("Z", "C"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Rename into existing = %v, want ErrDuplicateName", err)
	}
	if err := s.Rename("missing", "Q"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename missing = %v, want ErrNotFound", err)
	}
	if err := s.Rename("Z", "Z"); err != nil {
		t.Errorf("Rename to self = %v, want nil", err)
	}
}

func TestDeleteRemovesEmptyGroup(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "only", "solo")

	if err := s.Delete("only"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(s.GroupNames()) != 0 {
		t.Errorf("groups = %v, want none", s.GroupNames())
	}
	mustValid(t, s)
}

func TestSetGroup(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "first")
	mustCreate(t, s, "B", "first")

	if err := s.SetGroup("A", "second"); err != nil {
		t.Fatalf("SetGroup: %v", err)
	}
	if got := s.GroupMembers("first"); len(got) != 1 || got[0] != "B" {
		t.Errorf("first = %v, want [B]", got)
	}
	mustValid(t, s)

	if err := s.SetGroup("B", ""); err != nil {
		t.Fatalf("SetGroup none: %v", err)
	}
	if got := s.GroupNames(); len(got) != 1 || got[0] != "second" {
		t.Errorf("groups = %v, want [second]", got)
	}
	mustValid(t, s)
}

func TestDeleteGroup(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "g")
	mustCreate(t, s, "B", "g")

	if err := s.DeleteGroup("g"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	for _, n := range []string{"A", "B"} {
		if r, _ := s.Get(n); r.Group != "" {
			t.Errorf("%s still in group %q", n, r.Group)
		}
	}
	mustValid(t, s)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "g")
	snap := s.Snapshot()

	mustCreate(t, s, "B", "g")
	_ = s.SetCoords("A", geometry.NewCoords(0.5, 0.5, 0.6, 0.6))

	if len(snap.Groups["g"]) != 1 {
		t.Errorf("snapshot group changed: %v", snap.Groups["g"])
	}
	if r, _ := snap.Find("A"); r.Coords.X1 != 0.1 {
		t.Errorf("snapshot coords changed: %+v", r.Coords)
	}

	s.Restore(snap)
	if !s.Snapshot().Equal(snap) {
		t.Error("restore did not reproduce snapshot")
	}
	mustValid(t, s)
}

func TestCoordsClampedToPage(t *testing.T) {
	s := NewStore()
	if err := s.Create("A", geometry.NewCoords(-0.2, 0.5, 0.4, 1.3), "", ""); err != nil {
		t.Fatal(err)
	}
	if r, _ := s.Get("A"); r.Coords != geometry.NewCoords(0, 0.5, 0.4, 1) {
		t.Errorf("created coords = %+v", r.Coords)
	}
	if err := s.SetCoords("A", geometry.NewCoords(1.5, -1, 0.2, 0.3)); err != nil {
		t.Fatal(err)
	}
	if r, _ := s.Get("A"); r.Coords != geometry.NewCoords(1, 0, 0.2, 0.3) {
		t.Errorf("set coords = %+v", r.Coords)
	}
	mustValid(t, s)

	snap := s.Snapshot()
	snap.Regions[0].Coords.X2 = 1.1
	s.Restore(snap)
	if err := s.Validate(); err == nil {
		t.Error("Validate accepted coords off the page")
	}
}

func TestSetAttributes(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "")
	tests := []struct {
		name  string
		attrs Attributes
		ok    bool
	}{
		{"defaults", Attributes{}, true},
		{"all set", Attributes{Kind: KindRoman, Fill: FillStandard, Shape: ShapePoly, Rotation: -360}, true},
		{"unknown kind", Attributes{Kind: "barcode"}, false},
		{"spelled none", Attributes{Kind: "none"}, false},
		{"unknown fill", Attributes{Fill: "heavy"}, false},
		{"spelled rect", Attributes{Shape: "rect"}, false},
		{"rotation", Attributes{Rotation: 361}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := s.Get("A")
			err := s.SetAttributes("A", tt.attrs)
			if tt.ok {
				if err != nil {
					t.Fatalf("SetAttributes: %v", err)
				}
				if r, _ := s.Get("A"); r.Attributes != tt.attrs {
					t.Errorf("attributes = %+v", r.Attributes)
				}
				return
			}
			if !errors.Is(err, ErrInvalidAttribute) {
				t.Errorf("err = %v, want ErrInvalidAttribute", err)
			}
			if r, _ := s.Get("A"); r != before {
				t.Errorf("rejected update changed region: %+v", r)
			}
		})
	}
	if err := s.SetAttributes("missing", Attributes{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing region err = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindNone, false},
		{"None", KindNone, false},
		{" Numbers ", KindNumbers, false},
		{"unicode", KindUnicode, false},
		{"barcode", KindNone, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
	if KindNone.String() != "none" || FillNone.String() != "none" {
		t.Error("zero kind and fill should print as none")
	}
}

func TestUniqueName(t *testing.T) {
	s := NewStore()
	mustCreate(t, s, "A", "")
	mustCreate(t, s, "A_1", "")

	if got := s.UniqueName("A"); got != "A_2" {
		t.Errorf("UniqueName = %q, want A_2", got)
	}
	if got := s.UniqueName("B"); got != "B" {
		t.Errorf("UniqueName = %q, want B", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"red", Red, false},
		{" Cyan ", Cyan, false},
		{"", DefaultColor, false},
		{"pink", DefaultColor, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColor(%q) = %q, %v", tt.in, got, err)
		}
	}
}
