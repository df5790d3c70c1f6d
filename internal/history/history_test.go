package history

import (
	"fmt"
	"testing"

	"region-mapper/internal/region"
	"region-mapper/pkg/geometry"
)

func stateWith(names ...string) region.State {
	s := region.NewStore()
	for _, n := range names {
		_ = s.Create(n, geometry.Coords{}, "", "")
	}
	return s.Snapshot()
}

func TestUndoRedo(t *testing.T) {
	m := New(10)
	s0 := stateWith()
	s1 := stateWith("A")
	s2 := stateWith("A", "B")

	m.Push(s0)
	m.Push(s1)

	got, ok := m.Undo(s2)
	if !ok || !got.Equal(s1) {
		t.Fatalf("Undo = %v, %v; want s1", got, ok)
	}
	got, ok = m.Undo(s1)
	if !ok || !got.Equal(s0) {
		t.Fatalf("second Undo = %v; want s0", got)
	}
	if _, ok := m.Undo(s0); ok {
		t.Error("Undo on empty stack succeeded")
	}
	if m.RedoLen() != 2 {
		t.Errorf("RedoLen = %d, want 2", m.RedoLen())
	}

	got, ok = m.Redo(s0)
	if !ok || !got.Equal(s1) {
		t.Fatalf("Redo = %v; want s1", got)
	}
	got, ok = m.Redo(s1)
	if !ok || !got.Equal(s2) {
		t.Fatalf("second Redo = %v; want s2", got)
	}
	if m.CanRedo() {
		t.Error("redo stack should be empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := New(10)
	m.Push(stateWith())
	_, _ = m.Undo(stateWith("A"))
	if !m.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	m.Push(stateWith("B"))
	if m.CanRedo() {
		t.Error("Push did not clear redo")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	m := New(3)
	for i := 0; i < 5; i++ {
		m.Push(stateWith(fmt.Sprintf("r%d", i)))
	}
	if m.UndoLen() != 3 {
		t.Fatalf("UndoLen = %d, want 3", m.UndoLen())
	}
	var last region.State
	for m.CanUndo() {
		last, _ = m.Undo(region.State{})
	}
	if _, ok := last.Find("r2"); !ok {
		t.Errorf("oldest remaining = %+v, want r2", last.Regions)
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := New(0).Capacity(); got != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", got, DefaultCapacity)
	}
}
