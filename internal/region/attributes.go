package region

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidAttribute is returned for an unknown kind, fill, shape or an
// out of range rotation.
var ErrInvalidAttribute = errors.New("invalid region attribute")

// MaxRotation is the largest accepted rotation magnitude, in degrees.
const MaxRotation = 360.0

// Kind is the expected content of a region. Recognizers use it to narrow
// the character set.
type Kind string

// Region kinds. The zero value means no particular content.
const (
	KindNone         Kind = ""
	KindText         Kind = "text"
	KindAlphanumeric Kind = "alphanumeric"
	KindLetters      Kind = "letters"
	KindNumbers      Kind = "numbers"
	KindRoman        Kind = "roman"
	KindUnicode      Kind = "unicode"
)

// Kinds lists the valid kinds in display order.
var Kinds = []Kind{KindNone, KindText, KindAlphanumeric, KindLetters, KindNumbers, KindRoman, KindUnicode}

// String returns the name written to region files.
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}

// ParseKind converts a name to a Kind. Empty and "none" give KindNone.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return KindNone, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("%w: region type %q", ErrInvalidAttribute, s)
}

// Fill selects percentage fill detection for a region.
type Fill string

// Fill options. The zero value disables detection.
const (
	FillNone     Fill = ""
	FillStandard Fill = "standard"
)

// Fills lists the valid fill options in display order.
var Fills = []Fill{FillNone, FillStandard}

// String returns the name written to region files.
func (f Fill) String() string {
	if f == FillNone {
		return "none"
	}
	return string(f)
}

// ParseFill converts a name to a Fill. Empty and "none" give FillNone.
func ParseFill(s string) (Fill, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none":
		return FillNone, nil
	case string(FillStandard):
		return FillStandard, nil
	}
	return FillNone, fmt.Errorf("%w: percentage fill %q", ErrInvalidAttribute, s)
}

// Shape names recorded in region files. Regions are always edited and
// cropped as rectangles; other shapes are kept so files round-trip.
const (
	ShapeRect     = ""
	ShapeCircle   = "circle"
	ShapeTriangle = "triangle"
	ShapePoly     = "poly"
)

// ParseShape validates a shape name. Empty and "rect" give ShapeRect.
func ParseShape(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "rect":
		return ShapeRect, nil
	case ShapeCircle, ShapeTriangle, ShapePoly:
		return s, nil
	}
	return ShapeRect, fmt.Errorf("%w: shape type %q", ErrInvalidAttribute, s)
}

// Attributes are the optional per-region settings. The zero value is the
// default for every field.
type Attributes struct {
	Kind     Kind
	Fill     Fill
	Shape    string
	Rotation float64 // degrees
}

// Validate checks every field.
func (a Attributes) Validate() error {
	if k, err := ParseKind(string(a.Kind)); err != nil || k != a.Kind {
		return fmt.Errorf("%w: region type %q", ErrInvalidAttribute, a.Kind)
	}
	if f, err := ParseFill(string(a.Fill)); err != nil || f != a.Fill {
		return fmt.Errorf("%w: percentage fill %q", ErrInvalidAttribute, a.Fill)
	}
	if shape, err := ParseShape(a.Shape); err != nil || shape != a.Shape {
		return fmt.Errorf("%w: shape type %q", ErrInvalidAttribute, a.Shape)
	}
	if math.IsNaN(a.Rotation) || math.Abs(a.Rotation) > MaxRotation {
		return fmt.Errorf("%w: rotation %v", ErrInvalidAttribute, a.Rotation)
	}
	return nil
}
