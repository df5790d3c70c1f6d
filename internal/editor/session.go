// Package editor provides the region editing session: document, regions,
// view, selection and history bound together behind atomic edit operations
// and a toolkit-independent gesture dispatch table.
package editor

import (
	"errors"
	"time"

	"region-mapper/internal/history"
	"region-mapper/internal/region"
	"region-mapper/internal/selection"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"
)

// Errors returned by session operations.
var (
	ErrNoSelection        = errors.New("no regions selected")
	ErrNotSingleSelection = errors.New("resize needs exactly one selected region")
	ErrGestureActive      = errors.New("another gesture is in progress")
	ErrNoGesture          = errors.New("no gesture in progress")
)

// ChangeKind identifies what a change notification is about.
type ChangeKind int

const (
	ChangeRegions ChangeKind = iota
	ChangeSelection
	ChangeView
	ChangeHistory
	ChangeDocument
	ChangeHover
	ChangePreview
)

// Change is delivered to listeners after the session state changed.
type Change struct {
	Kind ChangeKind
}

// Document describes the loaded page. Its pixel size is fixed once loaded.
type Document struct {
	Path   string
	Page   int
	Width  int
	Height int
}

// Options configures a session.
type Options struct {
	HistoryCapacity int
	MinZoom         float64
	MaxZoom         float64
	ZoomStep        float64
	BorderTolerance float64
	HandleTolerance float64
	ResizeSettle    time.Duration
	DefaultColor    region.Color
}

// DefaultOptions returns the standard session configuration.
func DefaultOptions() Options {
	return Options{
		HistoryCapacity: history.DefaultCapacity,
		MinZoom:         viewport.DefaultMinZoom,
		MaxZoom:         viewport.DefaultMaxZoom,
		ZoomStep:        viewport.DefaultZoomStep,
		BorderTolerance: selection.DefaultBorderTolerance,
		HandleTolerance: selection.DefaultHandleTolerance,
		ResizeSettle:    viewport.DefaultSettle,
		DefaultColor:    region.DefaultColor,
	}
}

// Session is the editing context for one canvas. It is not safe for
// concurrent use; other goroutines work from Snapshot copies.
type Session struct {
	opts Options

	doc   *Document
	store *region.Store
	view  *viewport.ViewState
	sel   *selection.Selection
	hist  *history.Manager
	hit   *selection.HitTester

	display map[string]geometry.Coords
	gesture *gesture

	color    region.Color
	nextName string

	resize   *viewport.Debouncer
	schedule func(func())

	listeners []func(Change)
}

// NewSession creates a session with no document loaded.
func NewSession(opts Options) *Session {
	view := viewport.NewViewState()
	if opts.MinZoom > 0 {
		view.MinZoom = opts.MinZoom
	}
	if opts.MaxZoom > 0 {
		view.MaxZoom = opts.MaxZoom
	}
	if opts.ZoomStep > 1 {
		view.ZoomStep = opts.ZoomStep
	}
	hit := selection.NewHitTester()
	if opts.BorderTolerance > 0 {
		hit.BorderTolerance = opts.BorderTolerance
	}
	if opts.HandleTolerance > 0 {
		hit.HandleTolerance = opts.HandleTolerance
	}
	if opts.ResizeSettle <= 0 {
		opts.ResizeSettle = viewport.DefaultSettle
	}
	color := opts.DefaultColor
	if !color.Valid() {
		color = region.DefaultColor
	}
	s := &Session{
		opts:    opts,
		store:   region.NewStore(),
		view:    view,
		sel:     selection.New(),
		hist:    history.New(opts.HistoryCapacity),
		hit:     hit,
		display: make(map[string]geometry.Coords),
		color:   color,
		resize:  viewport.NewDebouncer(opts.ResizeSettle),
	}
	s.nextName = GenerateName(s.store.Has)
	return s
}

// OnChange registers a listener for change notifications.
func (s *Session) OnChange(fn func(Change)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) emit(kinds ...ChangeKind) {
	for _, k := range kinds {
		for _, fn := range s.listeners {
			fn(Change{Kind: k})
		}
	}
}

// Document returns the loaded document, or nil.
func (s *Session) Document() *Document {
	if s.doc == nil {
		return nil
	}
	d := *s.doc
	return &d
}

// LoadDocument installs a new page. Regions, groups, selection and history
// are cleared because they are meaningless on another page.
func (s *Session) LoadDocument(doc Document) error {
	if doc.Width <= 0 || doc.Height <= 0 {
		return viewport.ErrNoDocument
	}
	s.gesture = nil
	s.doc = &doc
	s.store.Clear()
	s.hist.Clear()
	s.sel.Clear()
	s.sel.ClearHover()
	s.view.SetImageSize(doc.Width, doc.Height)
	s.nextName = GenerateName(s.store.Has)
	s.recompute()
	s.emit(ChangeDocument, ChangeRegions, ChangeSelection, ChangeHistory, ChangeView)
	return nil
}

// CloseDocument unloads the page and clears all state.
func (s *Session) CloseDocument() {
	s.gesture = nil
	s.doc = nil
	s.store.Clear()
	s.hist.Clear()
	s.sel.Clear()
	s.sel.ClearHover()
	s.view.SetImageSize(0, 0)
	s.recompute()
	s.emit(ChangeDocument, ChangeRegions, ChangeSelection, ChangeHistory, ChangeView)
}

// Snapshot returns a deep copy of the regions and groups.
func (s *Session) Snapshot() region.State {
	return s.store.Snapshot()
}

// Regions returns copies of all regions in drawing order.
func (s *Session) Regions() []region.Region {
	return s.store.Regions()
}

// Region returns a copy of the named region.
func (s *Session) Region(name string) (region.Region, bool) {
	return s.store.Get(name)
}

// GroupNames returns the sorted group names.
func (s *Session) GroupNames() []string {
	return s.store.GroupNames()
}

// GroupMembers returns the members of a group.
func (s *Session) GroupMembers(group string) []string {
	return s.store.GroupMembers(group)
}

// Validate checks the store invariants.
func (s *Session) Validate() error {
	return s.store.Validate()
}

// Selection returns the selected names and the primary.
func (s *Session) Selection() ([]string, string) {
	return s.sel.Names(), s.sel.Primary()
}

// Hover returns the hovered region, or "".
func (s *Session) Hover() string {
	return s.sel.Hover()
}

// View returns a copy of the view state.
func (s *Session) View() viewport.ViewState {
	return *s.view
}

// Transform returns the current coordinate transform.
func (s *Session) Transform() (viewport.Transform, error) {
	return s.view.Transform()
}

// DisplayRect returns the region's current display rectangle, including any
// gesture preview.
func (s *Session) DisplayRect(name string) (geometry.Coords, bool) {
	r, ok := s.display[name]
	return r, ok
}

// ImageRect returns the region's pixel rectangle on the loaded page.
func (s *Session) ImageRect(name string) (geometry.RectInt, error) {
	if s.doc == nil {
		return geometry.RectInt{}, viewport.ErrNoDocument
	}
	r, ok := s.store.Get(name)
	if !ok {
		return geometry.RectInt{}, region.ErrNotFound
	}
	return viewport.ImageRect(r.Coords, s.doc.Width, s.doc.Height), nil
}

// Placed returns every region's display rectangle in drawing order.
func (s *Session) Placed() []selection.Placed {
	names := s.store.Names()
	out := make([]selection.Placed, 0, len(names))
	for _, n := range names {
		if r, ok := s.display[n]; ok {
			out = append(out, selection.Placed{Name: n, Rect: r})
		}
	}
	return out
}

// HitTester returns the session's hit tester.
func (s *Session) HitTester() *selection.HitTester {
	return s.hit
}

// Color returns the color used for new regions.
func (s *Session) Color() region.Color {
	return s.color
}

// SetColor sets the color used for new regions.
func (s *Session) SetColor(c region.Color) error {
	if !c.Valid() {
		return region.ErrInvalidColor
	}
	s.color = c
	return nil
}

// NextName returns the name the next create will use.
func (s *Session) NextName() string {
	return s.nextName
}

// SetNextName sets the name the next create will use.
func (s *Session) SetNextName(name string) {
	s.nextName = name
}

// CanUndo reports whether undo is available.
func (s *Session) CanUndo() bool {
	return s.hist.CanUndo()
}

// CanRedo reports whether redo is available.
func (s *Session) CanRedo() bool {
	return s.hist.CanRedo()
}

// Undo restores the state before the last mutation. It returns false when
// there is nothing to undo.
func (s *Session) Undo() bool {
	s.Cancel()
	st, ok := s.hist.Undo(s.store.Snapshot())
	if !ok {
		return false
	}
	s.restore(st)
	return true
}

// Redo reapplies the last undone mutation. It returns false when there is
// nothing to redo.
func (s *Session) Redo() bool {
	s.Cancel()
	st, ok := s.hist.Redo(s.store.Snapshot())
	if !ok {
		return false
	}
	s.restore(st)
	return true
}

func (s *Session) restore(st region.State) {
	s.store.Restore(st)
	s.sel.Clear()
	s.sel.ClearHover()
	s.recompute()
	s.emit(ChangeRegions, ChangeSelection, ChangeHistory)
}

// recompute re-derives every display rectangle from normalized coords.
func (s *Session) recompute() {
	s.display = make(map[string]geometry.Coords, s.store.Len())
	tr, err := s.view.Transform()
	if err != nil {
		return
	}
	for _, r := range s.store.Regions() {
		s.display[r.Name] = tr.NormalizedToDisplay(r.Coords)
	}
}

// mutate runs fn as one undoable step. On error the store is rolled back and
// history is untouched; a call that changes nothing records no step.
func (s *Session) mutate(fn func() error) error {
	before := s.store.Snapshot()
	if err := fn(); err != nil {
		s.store.Restore(before)
		return err
	}
	if s.store.Snapshot().Equal(before) {
		return nil
	}
	s.hist.Push(before)
	s.sel.Retain(s.store.Has)
	s.recompute()
	s.emit(ChangeRegions, ChangeSelection, ChangeHistory)
	return nil
}
