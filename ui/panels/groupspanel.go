package panels

import (
	"strings"
	"sync"

	"region-mapper/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// GroupsPanel lists groups and groups or ungroups the selection.
type GroupsPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	mu       sync.Mutex
	rows     []groupRow
	selected string

	list         *widget.List
	membersLabel *widget.Label
	groupEntry   *widget.Entry
}

// NewGroupsPanel creates a new groups panel.
func NewGroupsPanel(state *app.State) *GroupsPanel {
	gp := &GroupsPanel{state: state}

	gp.list = widget.NewList(
		func() int {
			gp.mu.Lock()
			defer gp.mu.Unlock()
			return len(gp.rows)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Group name (00)")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			gp.mu.Lock()
			defer gp.mu.Unlock()
			if id < len(gp.rows) {
				obj.(*widget.Label).SetText(gp.rows[id].label())
			}
		},
	)
	gp.list.OnSelected = func(id widget.ListItemID) {
		gp.mu.Lock()
		if id < len(gp.rows) {
			gp.selected = gp.rows[id].Name
			gp.groupEntry.SetText(gp.selected)
			gp.membersLabel.SetText(strings.Join(gp.rows[id].Members, ", "))
		}
		gp.mu.Unlock()
	}
	gp.list.OnUnselected = func(widget.ListItemID) {
		gp.mu.Lock()
		gp.selected = ""
		gp.mu.Unlock()
		gp.membersLabel.SetText("")
	}

	gp.membersLabel = widget.NewLabel("")
	gp.membersLabel.Wrapping = fyne.TextWrapWord
	gp.groupEntry = widget.NewEntry()
	gp.groupEntry.SetPlaceHolder("Group name")

	groupBtn := widget.NewButton("Group Selected", func() {
		name := strings.TrimSpace(gp.groupEntry.Text)
		gp.run(func() error { return gp.state.Session().GroupSelected(name) })
	})
	ungroupBtn := widget.NewButton("Ungroup Selected", func() {
		gp.run(func() error { return gp.state.Session().UngroupSelected() })
	})
	selectBtn := widget.NewButton("Select Members", func() {
		if g := gp.current(); g != "" {
			gp.state.Do(func() { gp.state.Session().SelectGroup(g) })
		}
	})
	deleteBtn := widget.NewButton("Delete Group", func() {
		if g := gp.current(); g != "" {
			gp.run(func() error { return gp.state.Session().DeleteGroup(g) })
		}
	})

	gp.container = container.NewBorder(
		nil,
		container.NewVBox(
			gp.membersLabel,
			gp.groupEntry,
			container.NewGridWithColumns(2, groupBtn, ungroupBtn, selectBtn, deleteBtn),
		),
		nil, nil,
		gp.list,
	)

	for _, ev := range []app.EventType{
		app.EventRegionsChanged, app.EventRegionsImported,
		app.EventDocumentLoaded, app.EventDocumentClosed,
	} {
		state.On(ev, func(interface{}) { gp.reload() })
	}
	state.Do(gp.reload)
	return gp
}

// Container returns the panel container.
func (gp *GroupsPanel) Container() fyne.CanvasObject {
	return gp.container
}

func (gp *GroupsPanel) current() string {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.selected
}

// reload copies the group list out of the session. It runs inside State.Do.
func (gp *GroupsPanel) reload() {
	rows := groupRows(gp.state.Session())
	gp.mu.Lock()
	gp.rows = rows
	members := ""
	found := false
	for _, r := range rows {
		if r.Name == gp.selected {
			members = strings.Join(r.Members, ", ")
			found = true
		}
	}
	if !found {
		gp.selected = ""
	}
	gp.mu.Unlock()

	if !found {
		gp.list.UnselectAll()
	}
	gp.membersLabel.SetText(members)
	gp.list.Refresh()
}

func (gp *GroupsPanel) run(fn func() error) {
	var err error
	gp.state.Do(func() { err = fn() })
	showError(err, gp.window)
}
