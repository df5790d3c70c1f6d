// Package colorutil provides shared color utilities for drawing region overlays.
package colorutil

import (
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black      = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Background = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 255}
	Selection  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	BoxSelect  = color.RGBA{R: 0x00, G: 0x66, B: 0xff, A: 255}
)

// palette maps region color names to their stroke color.
var palette = map[string]color.RGBA{
	"blue":   {R: 0x00, G: 0x66, B: 0xff, A: 255},
	"red":    {R: 0xff, G: 0x00, B: 0x00, A: 255},
	"green":  {R: 0x00, G: 0xcc, B: 0x00, A: 255},
	"yellow": {R: 0xff, G: 0xcc, B: 0x00, A: 255},
	"purple": {R: 0x99, G: 0x00, B: 0xcc, A: 255},
	"orange": {R: 0xff, G: 0x66, B: 0x00, A: 255},
	"cyan":   {R: 0x00, G: 0xcc, B: 0xcc, A: 255},
}

// Named returns the stroke color for a palette name, or blue for unknown names.
func Named(name string) color.RGBA {
	if c, ok := palette[name]; ok {
		return c
	}
	return palette["blue"]
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.RGBA, alpha uint8) color.RGBA {
	c.A = alpha
	return c
}

// Blend composites src over dst using src's alpha. Both are treated as
// non-premultiplied.
func Blend(dst, src color.RGBA) color.RGBA {
	a := uint32(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: 255,
	}
}
