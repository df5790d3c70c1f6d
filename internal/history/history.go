// Package history provides bounded linear undo/redo over region store states.
package history

import (
	"region-mapper/internal/region"
)

// DefaultCapacity is the default number of undo steps kept.
const DefaultCapacity = 50

// Manager holds the undo and redo stacks. The undo stack is bounded; pushing
// beyond capacity drops the oldest entry.
type Manager struct {
	capacity int
	undo     []region.State
	redo     []region.State
}

// New creates a history manager. A capacity below 1 selects DefaultCapacity.
func New(capacity int) *Manager {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Manager{capacity: capacity}
}

// Capacity returns the undo stack bound.
func (m *Manager) Capacity() int {
	return m.capacity
}

// Push records the state from before a mutation and invalidates redo.
func (m *Manager) Push(st region.State) {
	m.undo = append(m.undo, st)
	if over := len(m.undo) - m.capacity; over > 0 {
		m.undo = append(m.undo[:0:0], m.undo[over:]...)
	}
	m.redo = nil
}

// Undo pops the most recent undo state, saving current for redo. It returns
// false when there is nothing to undo.
func (m *Manager) Undo(current region.State) (region.State, bool) {
	if len(m.undo) == 0 {
		return region.State{}, false
	}
	st := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, current)
	return st, true
}

// Redo pops the most recent redo state, saving current for undo. It returns
// false when there is nothing to redo.
func (m *Manager) Redo(current region.State) (region.State, bool) {
	if len(m.redo) == 0 {
		return region.State{}, false
	}
	st := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, current)
	if over := len(m.undo) - m.capacity; over > 0 {
		m.undo = append(m.undo[:0:0], m.undo[over:]...)
	}
	return st, true
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	return len(m.undo) > 0
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	return len(m.redo) > 0
}

// UndoLen returns the number of undo steps available.
func (m *Manager) UndoLen() int {
	return len(m.undo)
}

// RedoLen returns the number of redo steps available.
func (m *Manager) RedoLen() int {
	return len(m.redo)
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}
