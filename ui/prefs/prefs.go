// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"region-mapper/internal/editor"
	"region-mapper/internal/export"
	"region-mapper/internal/region"
)

const prefsFile = "preferences.json"

// Preference keys.
const (
	KeyMinZoom        = "minZoom"
	KeyMaxZoom        = "maxZoom"
	KeyZoomStep       = "zoomStep"
	KeyHistoryDepth   = "historyDepth"
	KeyResizeSettleMs = "resizeSettleMs"
	KeyDefaultColor   = "defaultColor"
	KeyExportFormat   = "exportFormat"
	KeyLastDocDir     = "lastDocumentDir"
	KeyLastRegionDir  = "lastRegionDir"
	KeyWindowWidth    = "windowWidth"
	KeyWindowHeight   = "windowHeight"
	KeyOCRLanguage    = "ocrLanguage"
	KeyOCRWhitelist   = "ocrWhitelist"
	KeyAutosave       = "autosave"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// Load reads preferences from ~/.config/region-mapper/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "region-mapper", prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file yields
// empty preferences that are saved to path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the preferences file location.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Float returns a float64 preference, or 0 if not set.
func (p *Prefs) Float(key string) float64 {
	return p.FloatWithFallback(key, 0)
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Int returns an integer preference, or fallback if not set.
func (p *Prefs) Int(key string, fallback int) int {
	return int(p.FloatWithFallback(key, float64(fallback)))
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// StringWithFallback returns a string preference, or fallback if not set
// or empty.
func (p *Prefs) StringWithFallback(key, fallback string) string {
	if s := p.String(key); s != "" {
		return s
	}
	return fallback
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Bool returns a bool preference, or fallback if not set.
func (p *Prefs) Bool(key string, fallback bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		}
	}
	return fallback
}

// SetBool stores a bool preference.
func (p *Prefs) SetBool(key string, val bool) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// EditorOptions returns the session configuration, starting from the
// defaults and applying the stored values that make sense. Invalid values
// are ignored.
func (p *Prefs) EditorOptions() editor.Options {
	opts := editor.DefaultOptions()

	minZoom := p.FloatWithFallback(KeyMinZoom, opts.MinZoom)
	maxZoom := p.FloatWithFallback(KeyMaxZoom, opts.MaxZoom)
	if minZoom > 0 && maxZoom >= minZoom {
		opts.MinZoom, opts.MaxZoom = minZoom, maxZoom
	}
	if step := p.Float(KeyZoomStep); step > 1 {
		opts.ZoomStep = step
	}
	if depth := p.Int(KeyHistoryDepth, 0); depth > 0 {
		opts.HistoryCapacity = depth
	}
	if ms := p.Int(KeyResizeSettleMs, 0); ms > 0 {
		opts.ResizeSettle = time.Duration(ms) * time.Millisecond
	}
	if c, err := region.ParseColor(p.String(KeyDefaultColor)); err == nil {
		opts.DefaultColor = c
	}
	return opts
}

// ExportFormat returns the last used export format.
func (p *Prefs) ExportFormat() export.Format {
	f, _ := export.ResolveFormat(p.String(KeyExportFormat))
	return f
}

// SetExportFormat stores the last used export format.
func (p *Prefs) SetExportFormat(f export.Format) {
	p.SetString(KeyExportFormat, string(f))
}
