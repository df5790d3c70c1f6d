package app

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"region-mapper/internal/export"
	"region-mapper/internal/region"
)

// DefaultAutosaveInterval is how often pending changes are written to the
// recovery file.
const DefaultAutosaveInterval = 30 * time.Second

// SnapshotSource returns the regions to save and whether they changed since
// the last call.
type SnapshotSource func() (export.Meta, region.State, bool)

// Autosaver periodically writes changed regions to a recovery file so that
// work survives a crash.
type Autosaver struct {
	path          string
	checkInterval time.Duration
	source        SnapshotSource

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	onSaved func(path string)
	onError func(err error)
}

// NewAutosaver creates an autosaver writing to path every interval.
func NewAutosaver(path string, interval time.Duration, source SnapshotSource) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		path:          path,
		checkInterval: interval,
		source:        source,
	}
}

// RecoveryPath returns the recovery file used for a region file. Unsaved
// work goes to a fixed file in the user cache directory.
func RecoveryPath(filePath string) string {
	if filePath != "" {
		return strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".autosave.json"
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "region-mapper", "recovery.json")
}

// OnSaved sets the callback invoked after each write. Callbacks run on the
// autosaver goroutine and may be replaced while it runs.
func (a *Autosaver) OnSaved(callback func(path string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSaved = callback
}

// OnError sets the callback invoked when a write fails.
func (a *Autosaver) OnError(callback func(err error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = callback
}

func (a *Autosaver) callbacks() (func(string), func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.onSaved, a.onError
}

// Path returns the recovery file path.
func (a *Autosaver) Path() string {
	return a.path
}

// Start begins saving in a background goroutine.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCh != nil {
		return
	}
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.saveLoop(a.stopCh, a.doneCh)
}

// Stop stops the saver goroutine and waits for it to exit.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (a *Autosaver) saveLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := a.SaveNow(); err != nil {
				if _, onError := a.callbacks(); onError != nil {
					onError(err)
				}
			}
		}
	}
}

// SaveNow writes the recovery file if the source reports changes. It returns
// whether a file was written.
func (a *Autosaver) SaveNow() (bool, error) {
	meta, st, changed := a.source()
	if !changed {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return false, err
	}
	if err := export.WriteJSON(a.path, export.Build(meta, st)); err != nil {
		return false, err
	}
	if onSaved, _ := a.callbacks(); onSaved != nil {
		onSaved(a.path)
	}
	return true, nil
}

// Discard removes the recovery file, after a successful save.
func (a *Autosaver) Discard() error {
	err := os.Remove(a.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
