package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"

	"region-mapper/internal/editor"
	"region-mapper/internal/region"
	"region-mapper/pkg/geometry"
)

// Version is written to every payload.
const Version = "1.0"

// Meta describes the document a region file belongs to.
type Meta struct {
	DocumentPath string
	Page         int
	Width        int
	Height       int
}

// MetaFromDocument returns the meta for a loaded session document.
func MetaFromDocument(doc *editor.Document) Meta {
	if doc == nil {
		return Meta{}
	}
	return Meta{DocumentPath: doc.Path, Page: doc.Page, Width: doc.Width, Height: doc.Height}
}

// Payload is the JSON region file.
type Payload struct {
	PDFPath     string                  `json:"pdf_path"`
	Page        int                     `json:"page,omitempty"`
	ImageSize   [2]int                  `json:"image_size"`
	AspectRatio float64                 `json:"aspect_ratio"`
	Version     string                  `json:"version"`
	Regions     map[string]RegionRecord `json:"regions"`
	Groups      map[string][]string     `json:"groups"`
}

// RegionRecord is one region in a payload. Only normalized coords are
// stored; pixel and display rectangles are always recomputed. Attributes at
// their defaults are omitted.
type RegionRecord struct {
	Coords   geometry.Coords `json:"normalized_coords"`
	Color    region.Color    `json:"color"`
	Group    *string         `json:"group"`
	Kind     region.Kind     `json:"region_type,omitempty"`
	Shape    string          `json:"shape_type,omitempty"`
	Fill     region.Fill     `json:"percentage_fill,omitempty"`
	Rotation float64         `json:"rotation_angle,omitempty"`
}

// Build creates the payload for a snapshot.
func Build(meta Meta, st region.State) Payload {
	p := Payload{
		PDFPath:     meta.DocumentPath,
		Page:        meta.Page,
		ImageSize:   [2]int{meta.Width, meta.Height},
		AspectRatio: 1.0,
		Version:     Version,
		Regions:     make(map[string]RegionRecord, len(st.Regions)),
		Groups:      make(map[string][]string, len(st.Groups)),
	}
	if meta.Height > 0 {
		p.AspectRatio = float64(meta.Width) / float64(meta.Height)
	}
	for _, r := range st.Regions {
		rec := RegionRecord{
			Coords:   r.Coords,
			Color:    r.Color,
			Kind:     r.Kind,
			Shape:    r.Shape,
			Fill:     r.Fill,
			Rotation: r.Rotation,
		}
		if r.Group != "" {
			g := r.Group
			rec.Group = &g
		}
		p.Regions[r.Name] = rec
	}
	for g, members := range st.Groups {
		p.Groups[g] = append([]string(nil), members...)
	}
	return p
}

// Marshal encodes a payload as indented JSON.
func Marshal(p Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal regions: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes a payload to path atomically.
func WriteJSON(path string, p Payload) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Imported is the result of parsing a region file.
type Imported struct {
	Meta     Meta
	State    region.State
	Warnings []string
}

func (imp *Imported) warnf(format string, args ...any) {
	imp.Warnings = append(imp.Warnings, fmt.Sprintf(format, args...))
}

// Parse decodes a region file. The file is rejected with ErrInvalidFormat
// when it is not a JSON object with a "regions" object; otherwise bad
// entries are skipped and reported as warnings. Region order follows name
// order.
func Parse(data []byte) (*Imported, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	raw, ok := root["regions"]
	if !ok {
		return nil, fmt.Errorf("%w: missing regions", ErrInvalidFormat)
	}
	var regions map[string]json.RawMessage
	if !isObject(raw) || json.Unmarshal(raw, &regions) != nil {
		return nil, fmt.Errorf("%w: regions is not an object", ErrInvalidFormat)
	}

	imp := &Imported{}
	imp.Meta = parseMeta(root, imp)

	type entry struct {
		name   string
		coords geometry.Coords
		color  region.Color
		group  string
		attrs  region.Attributes
	}
	var entries []entry
	seen := make(map[string]bool, len(regions))
	for _, key := range sortedKeys(regions) {
		name, err := region.CleanName(key)
		if err != nil {
			imp.warnf("skipping region %q: %v", key, err)
			continue
		}
		if seen[name] {
			imp.warnf("skipping duplicate region %q", name)
			continue
		}
		var rec struct {
			Coords   json.RawMessage `json:"normalized_coords"`
			Color    *string         `json:"color"`
			Group    *string         `json:"group"`
			Kind     *string         `json:"region_type"`
			Shape    *string         `json:"shape_type"`
			Fill     *string         `json:"percentage_fill"`
			Rotation *float64        `json:"rotation_angle"`
		}
		if err := json.Unmarshal(regions[key], &rec); err != nil {
			imp.warnf("skipping region %q: %v", name, err)
			continue
		}
		if rec.Coords == nil {
			imp.warnf("skipping region %q: missing normalized_coords", name)
			continue
		}
		coords, err := parseCoords(rec.Coords)
		if err != nil {
			imp.warnf("skipping region %q: %v", name, err)
			continue
		}
		color := region.DefaultColor
		if rec.Color != nil {
			if color, err = region.ParseColor(*rec.Color); err != nil {
				imp.warnf("region %q: %v, using %s", name, err, color)
			}
		}
		e := entry{name: name, coords: coords, color: color}
		if rec.Kind != nil {
			if e.attrs.Kind, err = region.ParseKind(*rec.Kind); err != nil {
				imp.warnf("region %q: %v, using none", name, err)
			}
		}
		if rec.Shape != nil {
			if e.attrs.Shape, err = region.ParseShape(*rec.Shape); err != nil {
				imp.warnf("region %q: %v, using rect", name, err)
			}
		}
		if rec.Fill != nil {
			if e.attrs.Fill, err = region.ParseFill(*rec.Fill); err != nil {
				imp.warnf("region %q: %v, using none", name, err)
			}
		}
		if rec.Rotation != nil {
			if math.Abs(*rec.Rotation) > region.MaxRotation {
				imp.warnf("region %q: rotation %v out of range, using 0", name, *rec.Rotation)
			} else {
				e.attrs.Rotation = *rec.Rotation
			}
		}
		if rec.Group != nil {
			e.group = *rec.Group
		}
		seen[name] = true
		entries = append(entries, e)
	}

	store := region.NewStore()
	for _, e := range entries {
		if err := store.Create(e.name, e.coords, e.color, ""); err != nil {
			imp.warnf("skipping region %q: %v", e.name, err)
			continue
		}
		if err := store.SetAttributes(e.name, e.attrs); err != nil {
			imp.warnf("region %q: %v", e.name, err)
		}
	}

	if rawGroups, ok := root["groups"]; ok && isObject(rawGroups) {
		loadGroups(store, rawGroups, imp)
	} else {
		for _, e := range entries {
			if e.group == "" || !store.Has(e.name) {
				continue
			}
			if err := store.SetGroup(e.name, e.group); err != nil {
				imp.warnf("region %q: group %q: %v", e.name, e.group, err)
			}
		}
	}

	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	imp.State = store.Snapshot()
	return imp, nil
}

// ReadFile parses a region file from disk, logging any warnings. A relative
// document path is resolved against the file's directory.
func ReadFile(path string) (*Imported, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	imp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	imp.Meta.DocumentPath = ResolveDocumentPath(path, imp.Meta.DocumentPath)
	for _, w := range imp.Warnings {
		log.Printf("Import %s: %s", path, w)
	}
	return imp, nil
}

// Apply replaces the session's regions with an import as one undoable step.
func Apply(s *editor.Session, imp *Imported) error {
	if err := s.ReplaceAll(imp.State); err != nil {
		return fmt.Errorf("apply import: %w", err)
	}
	return nil
}

func parseMeta(root map[string]json.RawMessage, imp *Imported) Meta {
	var m Meta
	if raw, ok := root["pdf_path"]; ok {
		if err := json.Unmarshal(raw, &m.DocumentPath); err != nil {
			imp.warnf("ignoring pdf_path: %v", err)
		}
	}
	if raw, ok := root["page"]; ok {
		if err := json.Unmarshal(raw, &m.Page); err != nil {
			imp.warnf("ignoring page: %v", err)
		}
	}
	if raw, ok := root["image_size"]; ok {
		var size []int
		if err := json.Unmarshal(raw, &size); err != nil || len(size) != 2 {
			imp.warnf("ignoring image_size")
		} else {
			m.Width, m.Height = size[0], size[1]
		}
	}
	return m
}

// loadGroups applies an explicit groups section. Unknown members are dropped
// and a region listed by two groups stays in the first one.
func loadGroups(store *region.Store, raw json.RawMessage, imp *Imported) {
	var groups map[string]json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		imp.warnf("ignoring groups: %v", err)
		return
	}
	for _, g := range sortedKeys(groups) {
		var members []string
		if err := json.Unmarshal(groups[g], &members); err != nil {
			imp.warnf("skipping group %q: not a list of names", g)
			continue
		}
		for _, m := range members {
			r, ok := store.Get(m)
			if !ok {
				imp.warnf("group %q references unknown region %q", g, m)
				continue
			}
			if r.Group != "" {
				imp.warnf("region %q is in groups %q and %q, keeping %q", m, r.Group, g, r.Group)
				continue
			}
			if err := store.SetGroup(m, g); err != nil {
				imp.warnf("skipping group %q: %v", g, err)
				break
			}
		}
	}
}

// parseCoords accepts {"x1":..,"y1":..,"x2":..,"y2":..} or the legacy
// [x1, y1, x2, y2] list. Values must be finite and inside [0, 1]; corner
// order is not checked.
func parseCoords(raw json.RawMessage) (geometry.Coords, error) {
	var c geometry.Coords
	switch firstByte(raw) {
	case '{':
		var obj map[string]*float64
		if err := json.Unmarshal(raw, &obj); err != nil {
			return c, fmt.Errorf("normalized_coords: %w", err)
		}
		vals := make([]float64, 4)
		for i, k := range []string{"x1", "y1", "x2", "y2"} {
			v := obj[k]
			if v == nil {
				return c, fmt.Errorf("normalized_coords: missing %s", k)
			}
			vals[i] = *v
		}
		c = geometry.NewCoords(vals[0], vals[1], vals[2], vals[3])
	case '[':
		var list []float64
		if err := json.Unmarshal(raw, &list); err != nil {
			return c, fmt.Errorf("normalized_coords: %w", err)
		}
		if len(list) < 4 {
			return c, fmt.Errorf("normalized_coords: need 4 values, got %d", len(list))
		}
		c = geometry.NewCoords(list[0], list[1], list[2], list[3])
	default:
		return c, fmt.Errorf("normalized_coords: must be an object or a list")
	}
	for _, v := range c.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return c, fmt.Errorf("normalized_coords: %v out of range", v)
		}
	}
	return c, nil
}

func isObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

func firstByte(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
