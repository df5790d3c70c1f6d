package editor

import (
	"errors"
	"testing"
	"time"

	"region-mapper/internal/region"
	"region-mapper/internal/selection"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"
)

const eps = 1e-9

// newSession returns a session with a w x h page shown in a vw x vh viewport.
func newSession(t *testing.T, w, h int, vw, vh float64) *Session {
	t.Helper()
	s := NewSession(DefaultOptions())
	t.Cleanup(s.Close)
	if err := s.LoadDocument(Document{Path: "page.png", Page: 1, Width: w, Height: h}); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	s.SetViewportSize(vw, vh)
	return s
}

func wantCoords(t *testing.T, s *Session, name string, want geometry.Coords) {
	t.Helper()
	r, ok := s.Region(name)
	if !ok {
		t.Fatalf("region %q missing", name)
	}
	if !r.Coords.EqualWithin(want, eps) {
		t.Errorf("%s coords = %+v, want %+v", name, r.Coords, want)
	}
}

func TestCreateRegion(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)

	if err := s.CreateRegion("Cell 1", 100, 100, 300, 200); err != nil {
		t.Fatalf("CreateRegion: %v", err)
	}
	wantCoords(t, s, "Cell 1", geometry.NewCoords(0.1, 0.125, 0.3, 0.25))

	if got := s.NextName(); got != "Cell 2" {
		t.Errorf("NextName = %q, want Cell 2", got)
	}
	names, primary := s.Selection()
	if len(names) != 1 || primary != "Cell 1" {
		t.Errorf("selection = %v/%q, want [Cell 1]", names, primary)
	}
	if !s.CanUndo() {
		t.Error("create should be undoable")
	}
	rect, _ := s.DisplayRect("Cell 1")
	if !rect.EqualWithin(geometry.NewCoords(100, 100, 300, 200), eps) {
		t.Errorf("display rect = %+v", rect)
	}
}

func TestCreateRegionWithoutDocument(t *testing.T) {
	s := NewSession(DefaultOptions())
	defer s.Close()
	if err := s.CreateRegion("A", 0, 0, 10, 10); !errors.Is(err, viewport.ErrNoDocument) {
		t.Errorf("err = %v, want ErrNoDocument", err)
	}
	if err := s.LoadDocument(Document{Width: 0, Height: 10}); !errors.Is(err, viewport.ErrNoDocument) {
		t.Errorf("LoadDocument zero size err = %v, want ErrNoDocument", err)
	}
}

func TestRejectedOpsLeaveHistory(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegion("A", 0, 0, 10, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRegion("B", 20, 20, 40, 40); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()
	depth := s.hist.UndoLen()

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"empty create", func() error { return s.CreateRegion("", 0, 0, 5, 5) }, region.ErrEmptyName},
		{"duplicate create", func() error { return s.CreateRegion("A", 0, 0, 5, 5) }, region.ErrDuplicateName},
		{"rename onto existing", func() error { return s.Rename("A", "B") }, region.ErrDuplicateName},
		{"rename to blank", func() error { return s.Rename("A", "  ") }, region.ErrEmptyName},
		{"delete missing", func() error { return s.Delete("zzz") }, region.ErrNotFound},
		{"bad color", func() error { return s.Recolor("A", region.Color("magenta")) }, region.ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !s.Snapshot().Equal(before) {
				t.Error("state changed")
			}
			if got := s.hist.UndoLen(); got != depth {
				t.Errorf("undo depth = %d, want %d", got, depth)
			}
		})
	}
}

func TestNoOpRecordsNoStep(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegion("A", 0, 0, 10, 10); err != nil {
		t.Fatal(err)
	}
	depth := s.hist.UndoLen()
	if err := s.Rename("A", "A"); err != nil {
		t.Fatalf("Rename to self: %v", err)
	}
	if err := s.Recolor("A", region.DefaultColor); err != nil {
		t.Fatal(err)
	}
	if got := s.hist.UndoLen(); got != depth {
		t.Errorf("undo depth = %d, want %d", got, depth)
	}
}

func TestMoveSelectionScaled(t *testing.T) {
	// 2000x1600 page in a 1000x800 viewport gives scale 0.5.
	s := newSession(t, 2000, 1600, 1000, 800)
	if err := s.CreateRegionNormalized("A", geometry.NewCoords(0.1, 0.1, 0.2, 0.2), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveSelection(50, 50); err != nil {
		t.Fatalf("MoveSelection: %v", err)
	}
	// 50 display px = 100 image px = 0.05 of 2000 and 0.0625 of 1600.
	wantCoords(t, s, "A", geometry.NewCoords(0.15, 0.1625, 0.25, 0.2625))
}

func TestMoveGestureCommitsOnce(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegionNormalized("A", geometry.NewCoords(0.1, 0.125, 0.3, 0.25), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRegionNormalized("B", geometry.NewCoords(0.5, 0.5, 0.6, 0.6), "", ""); err != nil {
		t.Fatal(err)
	}
	s.SelectAll()
	depth := s.hist.UndoLen()

	if err := s.BeginMove(geometry.Point2D{X: 100, Y: 100}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		if err := s.DragMove(geometry.Point2D{X: 100 + float64(i)*10, Y: 100}); err != nil {
			t.Fatal(err)
		}
	}
	// Preview moves the display rect but not the stored coords.
	rect, _ := s.DisplayRect("A")
	if !rect.EqualWithin(geometry.NewCoords(200, 100, 400, 200), eps) {
		t.Errorf("preview rect = %+v", rect)
	}
	wantCoords(t, s, "A", geometry.NewCoords(0.1, 0.125, 0.3, 0.25))

	if err := s.EndMove(); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "A", geometry.NewCoords(0.2, 0.125, 0.4, 0.25))
	wantCoords(t, s, "B", geometry.NewCoords(0.6, 0.5, 0.7, 0.6))
	if got := s.hist.UndoLen(); got != depth+1 {
		t.Errorf("undo depth = %d, want %d", got, depth+1)
	}

	s.Undo()
	wantCoords(t, s, "A", geometry.NewCoords(0.1, 0.125, 0.3, 0.25))
}

func TestZeroMoveRecordsNothing(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegion("A", 100, 100, 200, 200); err != nil {
		t.Fatal(err)
	}
	depth := s.hist.UndoLen()
	p := geometry.Point2D{X: 150, Y: 100}
	if err := s.BeginMove(p); err != nil {
		t.Fatal(err)
	}
	if err := s.DragMove(p); err != nil {
		t.Fatal(err)
	}
	if err := s.EndMove(); err != nil {
		t.Fatal(err)
	}
	if got := s.hist.UndoLen(); got != depth {
		t.Errorf("undo depth = %d, want %d", got, depth)
	}
}

func TestResizeGesture(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegion("A", 100, 100, 300, 200); err != nil {
		t.Fatal(err)
	}

	if err := s.BeginResize(selection.HandleSE, geometry.Point2D{X: 300, Y: 200}); err != nil {
		t.Fatal(err)
	}
	if err := s.DragResize(geometry.Point2D{X: 400, Y: 300}); err != nil {
		t.Fatal(err)
	}
	if err := s.EndResize(); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "A", geometry.NewCoords(0.1, 0.125, 0.4, 0.375))

	// Dragging the east edge past the west edge inverts the rectangle.
	if err := s.BeginResize(selection.HandleE, geometry.Point2D{X: 400, Y: 200}); err != nil {
		t.Fatal(err)
	}
	if err := s.DragResize(geometry.Point2D{X: 50, Y: 250}); err != nil {
		t.Fatal(err)
	}
	if err := s.EndResize(); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "A", geometry.NewCoords(0.1, 0.125, 0.05, 0.375))
}

func TestEditsStayOnPage(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegionNormalized("A", geometry.NewCoords(0.05, 0.05, 0.2, 0.2), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRegionNormalized("B", geometry.NewCoords(0.5, 0.5, 0.6, 0.6), "", ""); err != nil {
		t.Fatal(err)
	}
	s.SelectAll()

	// The group stops where A meets the left edge; both keep their size.
	if err := s.MoveSelection(-100, 0); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "A", geometry.NewCoords(0, 0.05, 0.15, 0.2))
	wantCoords(t, s, "B", geometry.NewCoords(0.45, 0.5, 0.55, 0.6))

	depth := s.hist.UndoLen()
	if err := s.MoveSelection(-10, 0); err != nil {
		t.Fatal(err)
	}
	if got := s.hist.UndoLen(); got != depth {
		t.Errorf("move against the edge recorded a step: depth %d, want %d", got, depth)
	}

	s.Select("B")
	if err := s.BeginMove(geometry.Point2D{X: 500, Y: 400}); err != nil {
		t.Fatal(err)
	}
	if err := s.DragMove(geometry.Point2D{X: 1500, Y: 1400}); err != nil {
		t.Fatal(err)
	}
	rect, _ := s.DisplayRect("B")
	if !rect.EqualWithin(geometry.NewCoords(900, 720, 1000, 800), 1e-6) {
		t.Errorf("preview rect = %+v, want it against the corner", rect)
	}
	if err := s.EndMove(); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "B", geometry.NewCoords(0.9, 0.9, 1, 1))

	s.Select("A")
	if err := s.BeginResize(selection.HandleNW, geometry.Point2D{X: 0, Y: 40}); err != nil {
		t.Fatal(err)
	}
	if err := s.DragResize(geometry.Point2D{X: -300, Y: -200}); err != nil {
		t.Fatal(err)
	}
	if err := s.EndResize(); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "A", geometry.NewCoords(0, 0, 0.15, 0.2))

	if err := s.CreateRegion("C", 900, 700, 1200, 1000); err != nil {
		t.Fatal(err)
	}
	wantCoords(t, s, "C", geometry.NewCoords(0.9, 0.875, 1, 1))

	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestResizeNeedsSingleSelection(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.BeginResize(selection.HandleSE, geometry.Point2D{}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("empty selection err = %v, want ErrNoSelection", err)
	}
	_ = s.CreateRegion("A", 0, 0, 10, 10)
	_ = s.CreateRegion("B", 20, 20, 30, 30)
	s.SelectAll()
	if err := s.BeginResize(selection.HandleSE, geometry.Point2D{}); !errors.Is(err, ErrNotSingleSelection) {
		t.Errorf("two selected err = %v, want ErrNotSingleSelection", err)
	}
	if s.Gesture() != GestureNone {
		t.Error("rejected resize left a gesture active")
	}
}

func TestCancelRestoresPreview(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegion("A", 100, 100, 300, 200); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()
	depth := s.hist.UndoLen()

	_ = s.BeginMove(geometry.Point2D{X: 100, Y: 100})
	_ = s.DragMove(geometry.Point2D{X: 400, Y: 400})
	s.Cancel()

	if s.Gesture() != GestureNone {
		t.Error("gesture still active")
	}
	rect, _ := s.DisplayRect("A")
	if !rect.EqualWithin(geometry.NewCoords(100, 100, 300, 200), eps) {
		t.Errorf("display rect = %+v, want original", rect)
	}
	if !s.Snapshot().Equal(before) || s.hist.UndoLen() != depth {
		t.Error("cancel changed state or history")
	}
	if err := s.EndMove(); !errors.Is(err, ErrNoGesture) {
		t.Errorf("EndMove after cancel err = %v, want ErrNoGesture", err)
	}
}

func TestUndoRedoRestoresExactState(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	var states []region.State
	step := func(op func() error) {
		t.Helper()
		states = append(states, s.Snapshot())
		if err := op(); err != nil {
			t.Fatal(err)
		}
	}
	step(func() error { return s.CreateRegion("A", 10, 10, 50, 50) })
	step(func() error { return s.CreateRegion("B", 60, 60, 90, 90) })
	step(func() error { s.SelectAll(); return s.GroupSelected("row") })
	step(func() error { return s.Recolor("B", region.Red) })
	step(func() error { return s.Delete("A") })
	final := s.Snapshot()

	for i := len(states) - 1; i >= 0; i-- {
		if !s.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		if !s.Snapshot().Equal(states[i]) {
			t.Fatalf("after undo, state != snapshot %d", i)
		}
		if names, _ := s.Selection(); len(names) != 0 {
			t.Errorf("undo kept selection %v", names)
		}
	}
	if s.Undo() {
		t.Error("undo past the start succeeded")
	}
	for i := 1; i < len(states); i++ {
		s.Redo()
		if !s.Snapshot().Equal(states[i]) {
			t.Fatalf("after redo, state != snapshot %d", i)
		}
	}
	s.Redo()
	if !s.Snapshot().Equal(final) {
		t.Error("redo did not return to final state")
	}
	if err := s.Validate(); err != nil {
		t.Error(err)
	}
}

func TestDeleteLastGroupMemberRemovesGroup(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegionNormalized("A", geometry.NewCoords(0, 0, 0.1, 0.1), "", "g"); err != nil {
		t.Fatal(err)
	}
	if got := s.GroupNames(); len(got) != 1 || got[0] != "g" {
		t.Fatalf("groups = %v, want [g]", got)
	}
	if err := s.Delete("A"); err != nil {
		t.Fatal(err)
	}
	if got := s.GroupNames(); len(got) != 0 {
		t.Errorf("groups = %v, want none", got)
	}
}

func TestRenameKeepsSelection(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	_ = s.CreateRegion("A", 0, 0, 10, 10)
	if err := s.Rename("A", "Header"); err != nil {
		t.Fatal(err)
	}
	names, primary := s.Selection()
	if len(names) != 1 || names[0] != "Header" || primary != "Header" {
		t.Errorf("selection = %v/%q, want [Header]", names, primary)
	}
}

func TestDuplicateSelected(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegionNormalized("Header", geometry.NewCoords(0.1, 0.1, 0.2, 0.2), region.Green, "g"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetKind("Header", region.KindLetters); err != nil {
		t.Fatal(err)
	}
	created, err := s.DuplicateSelected()
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 || created[0] != "Header_1" {
		t.Fatalf("created = %v, want [Header_1]", created)
	}
	r, _ := s.Region("Header_1")
	if r.Color != region.Green || r.Group != "" || r.Kind != region.KindLetters {
		t.Errorf("copy = %+v, want green letters and ungrouped", r)
	}
	if _, primary := s.Selection(); primary != "Header_1" {
		t.Errorf("primary = %q, want Header_1", primary)
	}
}

func TestSetAttributesUndoable(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	if err := s.CreateRegion("Zip", 100, 100, 200, 200); err != nil {
		t.Fatal(err)
	}
	depth := s.hist.UndoLen()

	if err := s.SetKind("Zip", region.KindNumbers); err != nil {
		t.Fatal(err)
	}
	if err := s.SetFill("Zip", region.FillStandard); err != nil {
		t.Fatal(err)
	}
	if err := s.SetKind("Zip", region.KindNumbers); err != nil {
		t.Fatal(err)
	}
	if got := s.hist.UndoLen(); got != depth+2 {
		t.Errorf("undo depth = %d, want %d", got, depth+2)
	}
	if err := s.SetKind("Zip", region.Kind("barcode")); !errors.Is(err, region.ErrInvalidAttribute) {
		t.Errorf("invalid kind err = %v", err)
	}
	if err := s.SetKind("missing", region.KindText); !errors.Is(err, region.ErrNotFound) {
		t.Errorf("missing region err = %v", err)
	}

	s.Undo()
	r, _ := s.Region("Zip")
	if r.Kind != region.KindNumbers || r.Fill != region.FillNone {
		t.Errorf("after undo = %+v", r.Attributes)
	}
}

func TestBoxSelectTouching(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	_ = s.CreateRegion("A", 100, 100, 200, 200)
	_ = s.CreateRegion("B", 400, 400, 500, 500)
	got := s.BoxSelect(geometry.NewCoords(200, 200, 300, 300), false)
	if len(got) != 1 || got[0] != "A" {
		t.Errorf("BoxSelect = %v, want [A]", got)
	}
	got = s.BoxSelect(geometry.NewCoords(450, 450, 460, 460), true)
	names, _ := s.Selection()
	if len(got) != 1 || len(names) != 2 {
		t.Errorf("additive BoxSelect selection = %v", names)
	}
}

func TestLoadDocumentClearsState(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	_ = s.CreateRegion("A", 0, 0, 10, 10)
	if err := s.LoadDocument(Document{Path: "b.png", Width: 500, Height: 500}); err != nil {
		t.Fatal(err)
	}
	if len(s.Regions()) != 0 || s.CanUndo() || s.CanRedo() {
		t.Error("load kept regions or history")
	}
	if got := s.NextName(); got != "Cell 1" {
		t.Errorf("NextName = %q, want Cell 1", got)
	}
}

func TestResizeViewportDebounced(t *testing.T) {
	opts := DefaultOptions()
	opts.ResizeSettle = time.Hour
	s := NewSession(opts)
	defer s.Close()
	_ = s.LoadDocument(Document{Width: 1000, Height: 800})

	var views int
	s.OnChange(func(c Change) {
		if c.Kind == ChangeView {
			views++
		}
	})
	for i := 1; i <= 5; i++ {
		s.ResizeViewport(float64(100*i), float64(80*i))
	}
	if views != 0 {
		t.Fatalf("resize applied %d times before settling", views)
	}
	s.FlushResize()
	if views != 1 {
		t.Errorf("resize applied %d times, want 1", views)
	}
	if v := s.View(); v.ViewportWidth != 500 || v.ViewportHeight != 400 {
		t.Errorf("viewport = %vx%v, want 500x400", v.ViewportWidth, v.ViewportHeight)
	}
}

func TestViewChangeKeepsNormalizedCoords(t *testing.T) {
	s := newSession(t, 1000, 800, 1000, 800)
	_ = s.CreateRegion("A", 100, 100, 300, 200)
	s.ZoomIn()
	s.Pan(30, -20)
	s.SetViewportSize(640, 480)
	wantCoords(t, s, "A", geometry.NewCoords(0.1, 0.125, 0.3, 0.25))

	tr, err := s.Transform()
	if err != nil {
		t.Fatal(err)
	}
	rect, _ := s.DisplayRect("A")
	if !rect.EqualWithin(tr.NormalizedToDisplay(geometry.NewCoords(0.1, 0.125, 0.3, 0.25)), eps) {
		t.Errorf("display rect %+v not re-derived from normalized coords", rect)
	}
}
