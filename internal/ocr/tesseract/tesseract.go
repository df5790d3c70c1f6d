// Package tesseract implements ocr.Recognizer with Tesseract, preprocessing
// crops with OpenCV before recognition.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"region-mapper/internal/ocr"
	"region-mapper/internal/region"
	"region-mapper/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Params controls preprocessing and Tesseract configuration.
type Params struct {
	Language  string `json:"language,omitempty"`
	Whitelist string `json:"whitelist,omitempty"`

	// Page segmentation mode; 6 assumes a single uniform block of text.
	PSM int `json:"psm,omitempty"`

	// Crops whose smaller side is below this are upscaled to it.
	MinScaleDim int `json:"min_scale_dim,omitempty"`

	// CLAHE contrast enhancement; disabled when the clip limit is 0.
	CLAHEClipLimit float64 `json:"clahe_clip,omitempty"`
	CLAHETileSize  int     `json:"clahe_tile,omitempty"`

	// Thresholding: Otsu by default, adaptive mean when UseAdaptive is set,
	// no binarization when both are off.
	UseOtsu       bool `json:"use_otsu,omitempty"`
	UseAdaptive   bool `json:"use_adaptive,omitempty"`
	AdaptiveBlock int  `json:"adaptive_block,omitempty"`
	AdaptiveC     int  `json:"adaptive_c,omitempty"`

	// Invert binarized crops that are mostly white so that text is dark on
	// light.
	AutoInvert bool `json:"auto_invert,omitempty"`
}

// DefaultParams returns settings suited to printed forms.
func DefaultParams() Params {
	return Params{
		Language:       "eng",
		PSM:            int(gosseract.PSM_SINGLE_BLOCK),
		MinScaleDim:    150,
		CLAHEClipLimit: 2.0,
		CLAHETileSize:  8,
		UseOtsu:        true,
		AutoInvert:     true,
	}
}

// Engine recognizes text with a single Tesseract client. Calls are
// serialized.
type Engine struct {
	mu        sync.Mutex
	client    *gosseract.Client
	params    Params
	whitelist string // currently set on the client
}

var _ ocr.KindRecognizer = (*Engine)(nil)

// NewEngine creates an engine with the given parameters.
func NewEngine(params Params) (*Engine, error) {
	client := gosseract.NewClient()
	lang := params.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(params.PSM)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if params.Whitelist != "" {
		if err := client.SetWhitelist(params.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	return &Engine{client: client, params: params, whitelist: params.Whitelist}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Version returns the Tesseract library version.
func (e *Engine) Version() string {
	return e.client.Version()
}

// Recognize implements ocr.Recognizer with the configured whitelist.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]ocr.Fragment, error) {
	return e.recognize(ctx, img, e.params.Whitelist)
}

// RecognizeKind implements ocr.KindRecognizer. Kinds without a character set
// of their own use the configured whitelist.
func (e *Engine) RecognizeKind(ctx context.Context, img image.Image, kind region.Kind) ([]ocr.Fragment, error) {
	whitelist := ocr.Whitelist(kind)
	if whitelist == "" {
		whitelist = e.params.Whitelist
	}
	return e.recognize(ctx, img, whitelist)
}

// recognize runs Tesseract on img. Fragment bounds are mapped back to the
// coordinates of img.
func (e *Engine) recognize(ctx context.Context, img image.Image, whitelist string) ([]ocr.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ocr.ErrEmptyImage
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	processed, scale := preprocess(mat, e.params)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	if whitelist != e.whitelist {
		if err := e.client.SetWhitelist(whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
		e.whitelist = whitelist
	}

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	var frags []ocr.Fragment
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		frags = append(frags, ocr.Fragment{
			Text:       text,
			Bounds:     unscale(box.Box, scale),
			Confidence: box.Confidence,
		})
	}
	return frags, nil
}

func unscale(r image.Rectangle, scale float64) geometry.RectInt {
	if scale <= 0 {
		scale = 1
	}
	return geometry.RectInt{
		X:      int(float64(r.Min.X) / scale),
		Y:      int(float64(r.Min.Y) / scale),
		Width:  int(float64(r.Dx()) / scale),
		Height: int(float64(r.Dy()) / scale),
	}
}

// preprocess prepares a BGR crop for OCR and returns the upscale factor it
// applied.
func preprocess(src gocv.Mat, p Params) (gocv.Mat, float64) {
	h, w := src.Rows(), src.Cols()

	scale := 1.0
	var scaled gocv.Mat
	if minDim := min(h, w); p.MinScaleDim > 0 && minDim < p.MinScaleDim {
		scale = float64(p.MinScaleDim) / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(src, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = src.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	enhanced := gray
	if p.CLAHEClipLimit > 0 {
		tile := p.CLAHETileSize
		if tile <= 0 {
			tile = 8
		}
		clahe := gocv.NewCLAHEWithParams(p.CLAHEClipLimit, image.Point{X: tile, Y: tile})
		enhanced = gocv.NewMat()
		clahe.Apply(gray, &enhanced)
		clahe.Close()
		gray.Close()
	}

	binary := enhanced
	switch {
	case p.UseAdaptive:
		block := p.AdaptiveBlock
		if block < 3 {
			block = 11
		}
		if block%2 == 0 {
			block++
		}
		c := p.AdaptiveC
		if c == 0 {
			c = 5
		}
		binary = gocv.NewMat()
		gocv.AdaptiveThreshold(enhanced, &binary, 255,
			gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, block, float32(c))
		enhanced.Close()
	case p.UseOtsu:
		binary = gocv.NewMat()
		gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
		enhanced.Close()
	}

	if p.AutoInvert {
		white := gocv.CountNonZero(binary)
		total := binary.Rows() * binary.Cols()
		// Light text on a dark background; Tesseract wants the opposite.
		if total > 0 && float64(white)/float64(total) < 0.5 {
			gocv.BitwiseNot(binary, &binary)
		}
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()
	return result, scale
}
