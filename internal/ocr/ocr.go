// Package ocr extracts the text of labeled regions from a page bitmap
// through a pluggable recognizer.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"region-mapper/internal/mask"
	"region-mapper/internal/region"
	"region-mapper/internal/viewport"
	"region-mapper/pkg/geometry"
)

// ErrEmptyImage is returned when there are no pixels to recognize.
var ErrEmptyImage = errors.New("empty image")

// Fragment is one piece of recognized text.
type Fragment struct {
	Text       string
	Bounds     geometry.RectInt // pixels, relative to the recognized image
	Confidence float64          // 0 to 100
}

// Recognizer turns a bitmap into text fragments.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]Fragment, error)
}

// KindRecognizer is a Recognizer that can restrict recognition to the
// characters expected for a region kind.
type KindRecognizer interface {
	Recognizer
	RecognizeKind(ctx context.Context, img image.Image, kind region.Kind) ([]Fragment, error)
}

const (
	digits  = "0123456789"
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Whitelist returns the characters expected in a region of the given kind,
// or "" when any character may appear.
func Whitelist(kind region.Kind) string {
	switch kind {
	case region.KindNumbers:
		return digits
	case region.KindLetters:
		return letters
	case region.KindAlphanumeric:
		return letters + digits
	case region.KindRoman:
		return "IVXLCDMivxlcdm"
	}
	return ""
}

// RegionText is the recognized content of one region.
type RegionText struct {
	Name       string
	Group      string
	Kind       region.Kind
	Bounds     geometry.RectInt // region pixels on the page
	Text       string
	Confidence float64 // mean fragment confidence, 0 without fragments
	Fragments  []Fragment
	Err        error
}

// ExtractRegions recognizes every region of st on page, in region order.
// Each region's normalized coords are ordered and clamped to the page before
// cropping. A KindRecognizer is given each region's kind. A recognizer failure is recorded on that region and extraction
// continues; a cancelled context stops the loop and returns the context
// error.
func ExtractRegions(ctx context.Context, rec Recognizer, page image.Image, st region.State) ([]RegionText, error) {
	if page == nil || page.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	b := page.Bounds()
	out := make([]RegionText, 0, len(st.Regions))
	for _, r := range st.Regions {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rt := RegionText{
			Name:   r.Name,
			Group:  r.Group,
			Kind:   r.Kind,
			Bounds: viewport.ImageRect(r.Coords, b.Dx(), b.Dy()),
		}
		if rt.Bounds.Empty() {
			rt.Err = fmt.Errorf("region %q: %w", r.Name, ErrEmptyImage)
			out = append(out, rt)
			continue
		}
		frags, err := recognize(ctx, rec, Crop(page, rt.Bounds), r.Kind)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			rt.Err = fmt.Errorf("region %q: %w", r.Name, err)
			out = append(out, rt)
			continue
		}
		rt.Fragments = frags
		rt.Text, rt.Confidence = joinFragments(frags)
		out = append(out, rt)
	}
	return out, nil
}

func recognize(ctx context.Context, rec Recognizer, img image.Image, kind region.Kind) ([]Fragment, error) {
	if kr, ok := rec.(KindRecognizer); ok {
		return kr.RecognizeKind(ctx, img, kind)
	}
	return rec.Recognize(ctx, img)
}

func joinFragments(frags []Fragment) (string, float64) {
	var words []string
	var sum float64
	n := 0
	for _, f := range frags {
		text := strings.Join(strings.Fields(f.Text), " ")
		if text == "" {
			continue
		}
		words = append(words, text)
		sum += f.Confidence
		n++
	}
	if n == 0 {
		return "", 0
	}
	return strings.Join(words, " "), sum / float64(n)
}

// ApplyMask blanks every pixel of page outside the white area of m with the
// page's border color, so that recognition sees only region content.
func ApplyMask(page image.Image, m *image.Gray) *image.RGBA {
	rgba := ToRGBA(page)
	return mask.Apply(rgba, m, BackgroundColor(rgba))
}

// Masked renders the mask for st and applies it to page.
func Masked(page image.Image, st region.State) *image.RGBA {
	b := page.Bounds()
	return ApplyMask(page, mask.FromState(b.Dx(), b.Dy(), st))
}
