// Package region provides the named region and group store.
package region

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"region-mapper/pkg/geometry"

	"golang.org/x/text/unicode/norm"
)

// Errors returned by store operations. A rejected operation leaves the store
// unchanged.
var (
	ErrDuplicateName = errors.New("region name already exists")
	ErrEmptyName     = errors.New("region name is empty")
	ErrInvalidName   = errors.New("invalid region name")
	ErrNotFound      = errors.New("region not found")
	ErrInvalidColor  = errors.New("invalid region color")
)

// MaxNameLength is the longest accepted region or group name, in characters.
const MaxNameLength = 255

// Color is a region palette entry.
type Color string

// Palette colors.
const (
	Blue   Color = "blue"
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Purple Color = "purple"
	Orange Color = "orange"
	Cyan   Color = "cyan"
)

// DefaultColor is used when no color is given.
const DefaultColor = Blue

// Palette lists the valid colors in display order.
var Palette = []Color{Blue, Red, Green, Yellow, Purple, Orange, Cyan}

// Valid reports whether c is a palette color.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// ParseColor converts a name to a Color.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return DefaultColor, nil
	}
	if !c.Valid() {
		return DefaultColor, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// Region is a named rectangle over the document page. Coords are normalized
// to [0,1] and are the only persisted geometry; pixel and display rectangles
// are derived from them on demand.
type Region struct {
	Name   string
	Coords geometry.Coords
	Color  Color
	Group  string
	Attributes
}

// CleanName trims and NFC-normalizes a user-supplied name and validates it.
func CleanName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", ErrEmptyName
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidName)
		}
	}
	switch strings.ToLower(name) {
	case "null", "undefined":
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return name, nil
}
