// Package app provides application lifecycle management, file operations and
// events around an editing session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"region-mapper/internal/document"
	"region-mapper/internal/editor"
	"region-mapper/internal/export"
	"region-mapper/internal/ocr"
	"region-mapper/internal/region"
)

// ErrNoDocument is returned by operations that need a loaded page.
var ErrNoDocument = errors.New("no document loaded")

// State holds the application state: the editing session, the loaded page
// and the region file it is saved to.
type State struct {
	mu sync.RWMutex

	// Region file last saved to or imported from
	FilePath string
	Modified bool

	// Rendered page of the loaded document
	Page *document.Page

	// Last export format used
	ExportFormat export.Format

	// Serializes session access between the UI and timer goroutines
	sessionMu  sync.Mutex
	session    *editor.Session
	dispatcher *editor.Dispatcher

	// Copy of the regions taken after every change, read by background
	// workers such as the autosaver.
	latest      region.State
	latestMeta  export.Meta
	latestDirty bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventDocumentLoaded EventType = iota
	EventDocumentClosed
	EventRegionsImported
	EventSaved
	EventExported
	EventModified
	EventRegionsChanged
	EventSelectionChanged
	EventViewChanged
	EventHistoryChanged
	EventHoverChanged
	EventPreviewChanged
	EventModeChanged
	EventOCRComplete
)

var changeEvents = map[editor.ChangeKind]EventType{
	editor.ChangeRegions:   EventRegionsChanged,
	editor.ChangeSelection: EventSelectionChanged,
	editor.ChangeView:      EventViewChanged,
	editor.ChangeHistory:   EventHistoryChanged,
	editor.ChangeHover:     EventHoverChanged,
	editor.ChangePreview:   EventPreviewChanged,
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with a session configured by
// opts.
func NewState(opts editor.Options) *State {
	s := &State{
		ExportFormat: export.DefaultFormat,
		session:      editor.NewSession(opts),
		listeners:    make(map[EventType][]EventListener),
	}
	s.dispatcher = editor.NewDispatcher(s.session)
	s.dispatcher.OnMode = func(m editor.Mode) {
		s.Emit(EventModeChanged, m)
	}
	s.session.OnChange(s.sessionChanged)
	s.session.SetScheduler(s.Do)
	return s
}

// Do runs fn with exclusive access to the session. Code outside the session's
// own change listeners must touch the session, including through the State
// file operations, only inside Do; listeners already run inside it and must
// not call Do again.
func (s *State) Do(fn func()) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	fn()
}

// Session returns the editing session.
func (s *State) Session() *editor.Session {
	return s.session
}

// Dispatcher returns the input dispatcher bound to the session.
func (s *State) Dispatcher() *editor.Dispatcher {
	return s.dispatcher
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the regions as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// IsModified reports whether there are unsaved region changes.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

func (s *State) sessionChanged(c editor.Change) {
	if c.Kind == editor.ChangeRegions {
		s.mu.Lock()
		s.latest = s.session.Snapshot()
		s.latestMeta = export.MetaFromDocument(s.session.Document())
		s.latestDirty = true
		s.mu.Unlock()
		s.SetModified(true)
	}
	if ev, ok := changeEvents[c.Kind]; ok {
		s.Emit(ev, c)
	}
}

// PendingSnapshot returns the regions as of the last change, and whether
// they changed since the previous call. It is safe to call from any
// goroutine.
func (s *State) PendingSnapshot() (export.Meta, region.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dirty := s.latestDirty
	s.latestDirty = false
	return s.latestMeta, s.latest, dirty
}

// OpenDocument rasterizes a page of the document at path and installs it in
// the session. Existing regions are discarded.
func (s *State) OpenDocument(ctx context.Context, path string, page int) error {
	p, err := document.Open(ctx, path, page)
	if err != nil {
		return err
	}
	if err := s.session.LoadDocument(editor.Document{
		Path:   p.Path,
		Page:   p.Number,
		Width:  p.Width(),
		Height: p.Height(),
	}); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	s.mu.Lock()
	s.Page = p
	s.FilePath = ""
	s.mu.Unlock()
	s.SetModified(false)

	log.Printf("Loaded %s page %d (%dx%d)", p.Path, p.Number, p.Width(), p.Height())
	s.Emit(EventDocumentLoaded, p)
	return nil
}

// CloseDocument unloads the page and all regions.
func (s *State) CloseDocument() {
	s.session.CloseDocument()
	s.mu.Lock()
	s.Page = nil
	s.FilePath = ""
	s.mu.Unlock()
	s.SetModified(false)
	s.Emit(EventDocumentClosed, nil)
}

// CurrentPage returns the loaded page, or nil.
func (s *State) CurrentPage() *document.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Page
}

// Meta returns the export metadata of the loaded document.
func (s *State) Meta() export.Meta {
	return export.MetaFromDocument(s.session.Document())
}

// Import loads a region file. When no page is loaded and the file names a
// document that exists, that document is opened first. The regions replace
// the current ones as a single undoable step and the view is reset. Import
// warnings are returned.
func (s *State) Import(ctx context.Context, path string) ([]string, error) {
	imp, err := export.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if s.CurrentPage() == nil && imp.Meta.DocumentPath != "" {
		if _, err := os.Stat(imp.Meta.DocumentPath); err == nil {
			page := imp.Meta.Page
			if page < 1 {
				page = 1
			}
			if err := s.OpenDocument(ctx, imp.Meta.DocumentPath, page); err != nil {
				return imp.Warnings, err
			}
		} else {
			log.Printf("Import %s: document %s not found", path, imp.Meta.DocumentPath)
		}
	}

	if doc := s.session.Document(); doc != nil && imp.Meta.Width > 0 &&
		(doc.Width != imp.Meta.Width || doc.Height != imp.Meta.Height) {
		w := fmt.Sprintf("regions were drawn on a %dx%d page, current page is %dx%d",
			imp.Meta.Width, imp.Meta.Height, doc.Width, doc.Height)
		log.Printf("Import %s: %s", path, w)
		imp.Warnings = append(imp.Warnings, w)
	}

	if err := export.Apply(s.session, imp); err != nil {
		return imp.Warnings, err
	}
	s.session.ResetView()

	s.mu.Lock()
	s.FilePath = path
	s.mu.Unlock()
	s.SetModified(false)

	log.Printf("Imported %d regions from %s", len(imp.State.Regions), path)
	s.Emit(EventRegionsImported, path)
	return imp.Warnings, nil
}

// Save writes the regions as JSON to path.
func (s *State) Save(path string) error {
	if err := export.WriteJSON(path, export.Build(s.Meta(), s.session.Snapshot())); err != nil {
		return err
	}

	s.mu.Lock()
	s.FilePath = path
	s.mu.Unlock()
	s.SetModified(false)

	s.Emit(EventSaved, path)
	return nil
}

// Export writes the regions to path in the named format. An unknown format
// falls back to the default. It returns the files written.
func (s *State) Export(path, format string) ([]string, error) {
	f, _ := export.ResolveFormat(format)
	written, err := export.WriteNamed(path, format, s.Meta(), s.session.Snapshot())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ExportFormat = f
	s.mu.Unlock()

	s.Emit(EventExported, written)
	return written, nil
}

// DefaultExportPath suggests an export file name for format f: next to the
// region file if there is one, else next to the document.
func (s *State) DefaultExportPath(f export.Format) string {
	s.mu.RLock()
	base := s.FilePath
	s.mu.RUnlock()
	if base == "" {
		if doc := s.session.Document(); doc != nil {
			base = doc.Path
		}
	}
	if base == "" {
		return "regions" + f.Extension()
	}
	return base[:len(base)-len(filepath.Ext(base))] + f.Extension()
}

// RecognizeRegions runs rec over every region of the loaded page. The
// regions are copied first, so editing may continue while recognition runs
// on another goroutine.
func (s *State) RecognizeRegions(ctx context.Context, rec ocr.Recognizer) ([]ocr.RegionText, error) {
	page := s.CurrentPage()
	if page == nil {
		return nil, ErrNoDocument
	}
	return s.Recognize(ctx, rec, page, s.session.Snapshot())
}

// Recognize runs rec over the regions of st on page, with everything outside
// the regions blanked, and emits EventOCRComplete with the results.
func (s *State) Recognize(ctx context.Context, rec ocr.Recognizer, page *document.Page, st region.State) ([]ocr.RegionText, error) {
	if page == nil || page.Image == nil {
		return nil, ErrNoDocument
	}
	results, err := ocr.ExtractRegions(ctx, rec, ocr.Masked(page.Image, st), st)
	if err != nil {
		return results, err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Printf("Recognized %d regions (%d failed)", len(results), failed)
	s.Emit(EventOCRComplete, results)
	return results, nil
}

// Close stops background work.
func (s *State) Close() {
	s.session.Close()
}
