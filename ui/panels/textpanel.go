package panels

import (
	"fmt"
	"strings"
	"sync"

	"region-mapper/internal/app"
	"region-mapper/internal/ocr"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// TextPanel shows the text recognized in each region.
type TextPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject
	onRun     func()

	mu      sync.Mutex
	results []ocr.RegionText

	list        *widget.List
	statusLabel *widget.Label
}

// NewTextPanel creates a new text panel.
func NewTextPanel(state *app.State) *TextPanel {
	tp := &TextPanel{state: state}

	tp.statusLabel = widget.NewLabel("Run OCR to read region text")
	tp.statusLabel.Wrapping = fyne.TextWrapWord
	tp.list = widget.NewList(
		func() int {
			tp.mu.Lock()
			defer tp.mu.Unlock()
			return len(tp.results)
		},
		func() fyne.CanvasObject {
			l := widget.NewLabel("Region: recognized text")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			tp.mu.Lock()
			defer tp.mu.Unlock()
			if id < len(tp.results) {
				obj.(*widget.Label).SetText(textLine(tp.results[id]))
			}
		},
	)

	runBtn := widget.NewButton("Run OCR", func() {
		if tp.onRun != nil {
			tp.onRun()
		}
	})
	copyBtn := widget.NewButton("Copy", tp.copyAll)

	tp.container = container.NewBorder(
		tp.statusLabel,
		container.NewGridWithColumns(2, runBtn, copyBtn),
		nil, nil,
		tp.list,
	)

	state.On(app.EventOCRComplete, func(data interface{}) {
		if results, ok := data.([]ocr.RegionText); ok {
			tp.SetResults(results)
		}
	})
	state.On(app.EventDocumentLoaded, func(interface{}) { tp.SetResults(nil) })
	state.On(app.EventDocumentClosed, func(interface{}) { tp.SetResults(nil) })
	return tp
}

// Container returns the panel container.
func (tp *TextPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetResults replaces the displayed results.
func (tp *TextPanel) SetResults(results []ocr.RegionText) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	tp.mu.Lock()
	tp.results = results
	tp.mu.Unlock()

	switch {
	case results == nil:
		tp.statusLabel.SetText("Run OCR to read region text")
	case failed > 0:
		tp.statusLabel.SetText(fmt.Sprintf("%d regions read, %d failed", len(results)-failed, failed))
	default:
		tp.statusLabel.SetText(fmt.Sprintf("%d regions read", len(results)))
	}
	tp.list.Refresh()
}

// SetStatus shows a progress or error message above the results.
func (tp *TextPanel) SetStatus(text string) {
	tp.statusLabel.SetText(text)
}

func (tp *TextPanel) copyAll() {
	tp.mu.Lock()
	lines := make([]string, len(tp.results))
	for i, r := range tp.results {
		lines[i] = textLine(r)
	}
	tp.mu.Unlock()
	if tp.window != nil {
		tp.window.Clipboard().SetContent(strings.Join(lines, "\n"))
	}
}
