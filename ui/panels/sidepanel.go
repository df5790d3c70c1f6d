// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"sync"

	"region-mapper/internal/app"
	"region-mapper/internal/region"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	regionsPanel *RegionsPanel
	groupsPanel  *GroupsPanel
	textPanel    *TextPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.regionsPanel = NewRegionsPanel(state)
	sp.groupsPanel = NewGroupsPanel(state)
	sp.textPanel = NewTextPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Regions", sp.regionsPanel.Container()),
		container.NewTabItem("Groups", sp.groupsPanel.Container()),
		container.NewTabItem("Text", sp.textPanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.regionsPanel.window = w
	sp.groupsPanel.window = w
	sp.textPanel.window = w
}

// OnRunOCR sets the action of the Text tab's run button.
func (sp *SidePanel) OnRunOCR(run func()) {
	sp.textPanel.onRun = run
}

// RegionsPanel lists regions and edits the primary selection.
type RegionsPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	mu      sync.Mutex
	rows    []regionRow
	current string // region shown in the property fields
	syncing bool

	list        *widget.List
	countLabel  *widget.Label
	nameEntry   *widget.Entry
	colorSelect *widget.Select
	kindSelect  *widget.Select
	fillSelect  *widget.Select
	groupEntry  *widget.Entry
}

// NewRegionsPanel creates a new regions panel.
func NewRegionsPanel(state *app.State) *RegionsPanel {
	rp := &RegionsPanel{state: state}

	rp.countLabel = widget.NewLabel("No regions")
	rp.list = widget.NewList(
		func() int {
			rp.mu.Lock()
			defer rp.mu.Unlock()
			return len(rp.rows)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Region name [color] 000x000")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			rp.mu.Lock()
			defer rp.mu.Unlock()
			if id < len(rp.rows) {
				obj.(*widget.Label).SetText(rp.rows[id].label())
			}
		},
	)
	rp.list.OnSelected = rp.onListSelected

	rp.nameEntry = widget.NewEntry()
	rp.nameEntry.SetPlaceHolder("Name")
	rp.groupEntry = widget.NewEntry()
	rp.groupEntry.SetPlaceHolder("Group (empty for none)")

	colors := make([]string, len(region.Palette))
	for i, c := range region.Palette {
		colors[i] = string(c)
	}
	rp.colorSelect = widget.NewSelect(colors, nil)

	kinds := make([]string, len(region.Kinds))
	for i, k := range region.Kinds {
		kinds[i] = k.String()
	}
	rp.kindSelect = widget.NewSelect(kinds, nil)
	fills := make([]string, len(region.Fills))
	for i, f := range region.Fills {
		fills[i] = f.String()
	}
	rp.fillSelect = widget.NewSelect(fills, nil)

	form := widget.NewForm(
		widget.NewFormItem("Name", rp.nameEntry),
		widget.NewFormItem("Color", rp.colorSelect),
		widget.NewFormItem("Group", rp.groupEntry),
		widget.NewFormItem("Type", rp.kindSelect),
		widget.NewFormItem("Fill", rp.fillSelect),
	)
	applyBtn := widget.NewButton("Apply", rp.apply)
	deleteBtn := widget.NewButton("Delete Selected", func() {
		rp.run(func() error { return rp.state.Session().DeleteSelected() })
	})
	duplicateBtn := widget.NewButton("Duplicate", func() {
		rp.run(func() error {
			_, err := rp.state.Session().DuplicateSelected()
			return err
		})
	})

	rp.container = container.NewBorder(
		rp.countLabel,
		container.NewVBox(
			widget.NewCard("Properties", "", form),
			container.NewGridWithColumns(3, applyBtn, duplicateBtn, deleteBtn),
		),
		nil, nil,
		rp.list,
	)

	for _, ev := range []app.EventType{
		app.EventRegionsChanged, app.EventSelectionChanged, app.EventRegionsImported,
		app.EventDocumentLoaded, app.EventDocumentClosed,
	} {
		state.On(ev, func(interface{}) { rp.reload() })
	}
	state.Do(rp.reload)
	return rp
}

// Container returns the panel container.
func (rp *RegionsPanel) Container() fyne.CanvasObject {
	return rp.container
}

// reload copies the region list out of the session. It runs inside
// State.Do.
func (rp *RegionsPanel) reload() {
	s := rp.state.Session()
	rows := regionRows(s)
	_, primary := s.Selection()

	rp.mu.Lock()
	rp.rows = rows
	changed := primary != rp.current
	rp.current = primary
	idx := -1
	for i, r := range rows {
		if r.Name == primary {
			idx = i
		}
	}
	rp.syncing = true
	rp.mu.Unlock()

	rp.list.Refresh()
	if idx >= 0 {
		rp.list.Select(idx)
	} else {
		rp.list.UnselectAll()
	}

	rp.mu.Lock()
	rp.syncing = false
	rp.mu.Unlock()

	if len(rows) == 0 {
		rp.countLabel.SetText("No regions")
	} else {
		rp.countLabel.SetText(pluralize(len(rows), "region", "regions"))
	}

	if changed || idx < 0 {
		rp.showProperties(rows, idx)
	}
}

func (rp *RegionsPanel) showProperties(rows []regionRow, idx int) {
	if idx < 0 {
		rp.nameEntry.SetText("")
		rp.groupEntry.SetText("")
		rp.colorSelect.ClearSelected()
		rp.kindSelect.ClearSelected()
		rp.fillSelect.ClearSelected()
		return
	}
	r := rows[idx]
	rp.nameEntry.SetText(r.Name)
	rp.groupEntry.SetText(r.Group)
	rp.colorSelect.SetSelected(string(r.Color))
	rp.kindSelect.SetSelected(r.Kind.String())
	rp.fillSelect.SetSelected(r.Fill.String())
}

func (rp *RegionsPanel) onListSelected(id widget.ListItemID) {
	rp.mu.Lock()
	if rp.syncing || id >= len(rp.rows) {
		rp.mu.Unlock()
		return
	}
	name := rp.rows[id].Name
	rp.mu.Unlock()

	rp.state.Do(func() { rp.state.Session().Select(name) })
}

// apply writes the property fields to the region they were loaded from.
func (rp *RegionsPanel) apply() {
	rp.mu.Lock()
	target := rp.current
	rp.mu.Unlock()
	if target == "" {
		return
	}
	name := rp.nameEntry.Text
	group := rp.groupEntry.Text
	color := region.Color(rp.colorSelect.Selected)
	kindName, fillName := rp.kindSelect.Selected, rp.fillSelect.Selected

	rp.run(func() error {
		s := rp.state.Session()
		if name != target {
			if err := s.Rename(target, name); err != nil {
				return err
			}
		}
		if color != "" {
			if err := s.Recolor(name, color); err != nil {
				return err
			}
		}
		if kindName != "" {
			kind, err := region.ParseKind(kindName)
			if err == nil {
				err = s.SetKind(name, kind)
			}
			if err != nil {
				return err
			}
		}
		if fillName != "" {
			fill, err := region.ParseFill(fillName)
			if err == nil {
				err = s.SetFill(name, fill)
			}
			if err != nil {
				return err
			}
		}
		r, _ := s.Region(name)
		if r.Group != group {
			return s.SetGroup(name, group)
		}
		return nil
	})
}

// run executes fn inside State.Do and reports its error.
func (rp *RegionsPanel) run(fn func() error) {
	var err error
	rp.state.Do(func() { err = fn() })
	showError(err, rp.window)
}

func showError(err error, w fyne.Window) {
	if err != nil && w != nil {
		dialog.ShowError(err, w)
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// SetOCRStatus shows a message on the Text tab.
func (sp *SidePanel) SetOCRStatus(text string) {
	sp.textPanel.SetStatus(text)
}
