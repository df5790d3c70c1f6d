// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"region-mapper/internal/app"
	"region-mapper/internal/document"
	"region-mapper/internal/editor"
	"region-mapper/internal/export"
	"region-mapper/internal/ocr/tesseract"
	"region-mapper/internal/region"
	"region-mapper/internal/version"
	"region-mapper/ui/canvas"
	"region-mapper/ui/panels"
	"region-mapper/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.RegionCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	autosaver *app.Autosaver

	// Toolbar widgets mirrored from the session
	modeSelect  *widget.RadioGroup
	colorSelect *widget.Select
	nameEntry   *widget.Entry
	undoBtn     *widget.Button
	redoBtn     *widget.Button
	zoomLabel   *widget.Label

	ocrCancel context.CancelFunc
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(version.Title("", false))

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupAutosave()

	win.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, 1200)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, 800)),
	))
	win.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewRegionCanvas(mw.state.Dispatcher(), mw.state.Do)
	mw.canvas.OnError(func(err error) {
		mw.updateStatus(err.Error())
	})

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.OnRunOCR(mw.onRunOCR)

	mw.statusBar = widget.NewLabel("Open a document to start")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,   // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		mw.canvas, // center
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the mode, color, naming, history and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.modeSelect = widget.NewRadioGroup([]string{"Create", "Select"}, func(v string) {
		mode := editor.ModeCreate
		if v == "Select" {
			mode = editor.ModeSelect
		}
		mw.state.Do(func() {
			if mw.state.Dispatcher().Mode() != mode {
				mw.state.Dispatcher().SetMode(mode)
			}
		})
	})
	mw.modeSelect.Horizontal = true
	mw.modeSelect.Required = true
	mw.modeSelect.SetSelected("Create")

	colors := make([]string, len(region.Palette))
	for i, c := range region.Palette {
		colors[i] = string(c)
	}
	mw.colorSelect = widget.NewSelect(colors, func(v string) {
		var err error
		mw.state.Do(func() {
			s := mw.state.Session()
			if s.Color() == region.Color(v) {
				return
			}
			if err = s.SetColor(region.Color(v)); err == nil {
				// Applies to the selection too.
				if names, _ := s.Selection(); len(names) > 0 {
					err = s.RecolorSelected(region.Color(v))
				}
			}
		})
		mw.showError(err)
	})
	var current region.Color
	mw.state.Do(func() { current = mw.state.Session().Color() })
	mw.colorSelect.SetSelected(string(current))

	mw.nameEntry = widget.NewEntry()
	mw.nameEntry.SetPlaceHolder("Next region name")
	mw.nameEntry.OnChanged = func(v string) {
		mw.state.Do(func() {
			if mw.state.Session().NextName() != v {
				mw.state.Session().SetNextName(v)
			}
		})
	}

	mw.undoBtn = widget.NewButton("Undo", mw.onUndo)
	mw.redoBtn = widget.NewButton("Redo", mw.onRedo)
	mw.undoBtn.Disable()
	mw.redoBtn.Disable()

	mw.zoomLabel = widget.NewLabel("100%")

	return container.NewHBox(
		mw.modeSelect,
		widget.NewSeparator(),
		mw.colorSelect,
		container.NewGridWrap(fyne.NewSize(160, mw.nameEntry.MinSize().Height), mw.nameEntry),
		widget.NewSeparator(),
		mw.undoBtn,
		mw.redoBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		mw.zoomLabel,
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("Reset", mw.onResetView),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Document...", mw.onOpenDocument),
		fyne.NewMenuItem("Close Document", mw.onCloseDocument),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Regions...", mw.onImportRegions),
		fyne.NewMenuItem("Save Regions", mw.onSave),
		fyne.NewMenuItem("Save Regions As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export...", mw.onExport),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Select All", func() { mw.do(func(s *editor.Session) error { s.SelectAll(); return nil }) }),
		fyne.NewMenuItem("Deselect", func() { mw.do(func(s *editor.Session) error { s.DeselectAll(); return nil }) }),
		fyne.NewMenuItem("Invert Selection", func() { mw.do(func(s *editor.Session) error { s.InvertSelection(); return nil }) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Duplicate", func() {
			mw.do(func(s *editor.Session) error { _, err := s.DuplicateSelected(); return err })
		}),
		fyne.NewMenuItem("Delete", func() { mw.do((*editor.Session).DeleteSelected) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Group Selected...", mw.onGroupSelected),
		fyne.NewMenuItem("Ungroup Selected", func() { mw.do((*editor.Session).UngroupSelected) }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItem("Reset View", mw.onResetView),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Run OCR", mw.onRunOCR),
		fyne.NewMenuItem("Validate Regions", mw.onValidate),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for application events. Handlers for session
// events run inside State.Do and read the session directly.
func (mw *MainWindow) setupEventHandlers() {
	refresh := func(interface{}) { mw.canvas.Refresh() }
	for _, ev := range []app.EventType{
		app.EventRegionsChanged, app.EventSelectionChanged, app.EventViewChanged,
		app.EventHoverChanged, app.EventPreviewChanged,
	} {
		mw.state.On(ev, refresh)
	}

	mw.state.On(app.EventDocumentLoaded, func(data interface{}) {
		if p, ok := data.(*document.Page); ok {
			mw.canvas.SetPage(p.Image)
			mw.updateStatus(fmt.Sprintf("%s page %d, %dx%d", filepath.Base(p.Path), p.Number, p.Width(), p.Height()))
		}
		mw.syncToolbar()
		mw.updateTitle()
	})

	mw.state.On(app.EventDocumentClosed, func(interface{}) {
		mw.canvas.SetPage(nil)
		mw.updateStatus("Document closed")
		mw.syncToolbar()
		mw.updateTitle()
	})

	mw.state.On(app.EventRegionsImported, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Imported " + filepath.Base(path))
		}
		mw.canvas.Refresh()
		mw.updateTitle()
	})

	mw.state.On(app.EventRegionsChanged, func(interface{}) {
		mw.syncNextName()
	})
	mw.state.On(app.EventSelectionChanged, func(interface{}) {
		mw.syncNextName()
	})

	mw.state.On(app.EventHistoryChanged, func(interface{}) {
		s := mw.state.Session()
		setEnabled(mw.undoBtn, s.CanUndo())
		setEnabled(mw.redoBtn, s.CanRedo())
	})

	mw.state.On(app.EventViewChanged, func(interface{}) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", mw.state.Session().View().Zoom*100))
	})

	mw.state.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(editor.Mode); ok {
			label := "Create"
			if m == editor.ModeSelect {
				label = "Select"
			}
			if mw.modeSelect.Selected != label {
				mw.modeSelect.Selected = label
				mw.modeSelect.Refresh()
			}
		}
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventExported, func(data interface{}) {
		if files, ok := data.([]string); ok {
			mw.updateStatus("Exported " + strings.Join(files, ", "))
		}
	})
}

// setupAutosave starts periodic recovery snapshots unless disabled in the
// preferences.
func (mw *MainWindow) setupAutosave() {
	if !mw.prefs.Bool(prefs.KeyAutosave, true) {
		return
	}
	mw.autosaver = app.NewAutosaver(app.RecoveryPath(""), app.DefaultAutosaveInterval, mw.state.PendingSnapshot)
	mw.autosaver.OnError(func(err error) {
		log.Printf("Autosave: %v", err)
	})
	mw.autosaver.Start()
}

// syncToolbar copies the session's color and next name into the toolbar.
// It runs inside State.Do.
func (mw *MainWindow) syncToolbar() {
	s := mw.state.Session()
	if mw.colorSelect.Selected != string(s.Color()) {
		mw.colorSelect.Selected = string(s.Color())
		mw.colorSelect.Refresh()
	}
	mw.syncNextName()
	setEnabled(mw.undoBtn, s.CanUndo())
	setEnabled(mw.redoBtn, s.CanRedo())
}

// syncNextName shows the name the next created region will get. It runs
// inside State.Do.
func (mw *MainWindow) syncNextName() {
	if next := mw.state.Session().NextName(); mw.nameEntry.Text != next {
		// Bypass OnChanged, which would re-enter State.Do.
		mw.nameEntry.Text = next
		mw.nameEntry.CursorColumn = len([]rune(next))
		mw.nameEntry.Refresh()
	}
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

// updateTitle shows the region file and modified state. It may run inside
// State.Do.
func (mw *MainWindow) updateTitle() {
	name := ""
	if p := mw.state.CurrentPage(); p != nil {
		name = filepath.Base(p.Path)
	}
	mw.SetTitle(version.Title(name, mw.state.IsModified()))
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showError(err error) {
	if err == nil {
		return
	}
	log.Printf("Error: %v", err)
	dialog.ShowError(err, mw.Window)
}

// do runs fn on the session inside State.Do and reports its error.
func (mw *MainWindow) do(fn func(s *editor.Session) error) {
	var err error
	mw.state.Do(func() { err = fn(mw.state.Session()) })
	mw.showError(err)
}

// getLastDir returns the directory stored under key as a ListableURI, or nil.
func (mw *MainWindow) getLastDir(key string) fyne.ListableURI {
	path := mw.prefs.String(key)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path under key.
func (mw *MainWindow) saveLastDir(key, filePath string) {
	mw.prefs.SetString(key, filepath.Dir(filePath))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Saving preferences: %v", err)
	}
}

// OpenPaths opens the documents and imports the region files named on the
// command line, in order.
func (mw *MainWindow) OpenPaths(paths ...string) {
	go func() {
		for _, path := range paths {
			var warnings []string
			var err error
			mw.state.Do(func() {
				if document.IsSupported(path) {
					err = mw.state.OpenDocument(context.Background(), path, 1)
					return
				}
				warnings, err = mw.state.Import(context.Background(), path)
			})
			if err != nil {
				mw.showError(err)
				return
			}
			if len(warnings) > 0 {
				dialog.ShowInformation("Import Warnings", strings.Join(warnings, "\n"), mw.Window)
			}
		}
	}()
}

// Menu action handlers

func (mw *MainWindow) onOpenDocument() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(prefs.KeyLastDocDir, path)

		if !document.IsPDF(path) {
			mw.openDocument(path, 1)
			return
		}
		mw.choosePDFPage(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(document.SupportedFormats()))
	if loc := mw.getLastDir(prefs.KeyLastDocDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// choosePDFPage asks for a page number when the PDF has more than one.
func (mw *MainWindow) choosePDFPage(path string) {
	count, err := document.PageCount(context.Background(), path)
	if err != nil || count <= 1 {
		mw.openDocument(path, 1)
		return
	}
	pages := make([]string, count)
	for i := range pages {
		pages[i] = fmt.Sprint(i + 1)
	}
	sel := widget.NewSelect(pages, nil)
	sel.SetSelected("1")
	dialog.ShowForm("Select Page", "Open", "Cancel",
		[]*widget.FormItem{widget.NewFormItem(fmt.Sprintf("Page (1-%d)", count), sel)},
		func(ok bool) {
			if !ok {
				return
			}
			page := 1
			fmt.Sscan(sel.Selected, &page)
			mw.openDocument(path, page)
		}, mw.Window)
}

func (mw *MainWindow) openDocument(path string, page int) {
	if mw.state.IsModified() {
		dialog.ShowConfirm("Discard Changes", "Opening a document discards unsaved regions. Continue?",
			func(ok bool) {
				if ok {
					mw.loadDocument(path, page)
				}
			}, mw.Window)
		return
	}
	mw.loadDocument(path, page)
}

func (mw *MainWindow) loadDocument(path string, page int) {
	mw.updateStatus("Loading " + filepath.Base(path) + "...")
	go func() {
		var err error
		mw.state.Do(func() {
			err = mw.state.OpenDocument(context.Background(), path, page)
		})
		if err != nil {
			mw.updateStatus("Load failed")
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) onCloseDocument() {
	mw.state.Do(mw.state.CloseDocument)
}

func (mw *MainWindow) onImportRegions() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(prefs.KeyLastRegionDir, path)
		mw.importRegions(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if loc := mw.getLastDir(prefs.KeyLastRegionDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) importRegions(path string) {
	go func() {
		var warnings []string
		var err error
		mw.state.Do(func() {
			warnings, err = mw.state.Import(context.Background(), path)
		})
		if err != nil {
			mw.showError(err)
			return
		}
		if len(warnings) > 0 {
			dialog.ShowInformation("Import Warnings", strings.Join(warnings, "\n"), mw.Window)
		}
	}()
}

func (mw *MainWindow) onSave() {
	var path string
	mw.state.Do(func() { path = mw.state.FilePath })
	if path == "" {
		mw.onSaveAs()
		return
	}
	mw.save(path)
}

func (mw *MainWindow) save(path string) {
	var err error
	mw.state.Do(func() { err = mw.state.Save(path) })
	if err != nil {
		mw.showError(err)
		return
	}
	if mw.autosaver != nil {
		if err := mw.autosaver.Discard(); err != nil {
			log.Printf("Autosave: %v", err)
		}
	}
}

func (mw *MainWindow) onSaveAs() {
	var suggested string
	mw.state.Do(func() { suggested = mw.state.DefaultExportPath(export.FormatJSON) })

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".json" {
			path += ".json"
		}
		mw.saveLastDir(prefs.KeyLastRegionDir, path)
		mw.save(path)
	}, mw.Window)
	fd.SetFileName(filepath.Base(suggested))
	if loc := mw.getLastDir(prefs.KeyLastRegionDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExport() {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	formatSelect := widget.NewSelect(names, nil)
	formatSelect.SetSelected(string(mw.prefs.ExportFormat()))

	dialog.ShowForm("Export Regions", "Choose File...", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Format", formatSelect)},
		func(ok bool) {
			if ok {
				mw.exportAs(formatSelect.Selected)
			}
		}, mw.Window)
}

func (mw *MainWindow) exportAs(format string) {
	f, _ := export.ResolveFormat(format)
	var suggested string
	mw.state.Do(func() { suggested = mw.state.DefaultExportPath(f) })

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(prefs.KeyLastRegionDir, path)

		var exportErr error
		mw.state.Do(func() { _, exportErr = mw.state.Export(path, format) })
		if exportErr != nil {
			mw.showError(exportErr)
			return
		}
		mw.prefs.SetExportFormat(f)
		if err := mw.prefs.Save(); err != nil {
			log.Printf("Saving preferences: %v", err)
		}
	}, mw.Window)
	fd.SetFileName(filepath.Base(suggested))
	if loc := mw.getLastDir(prefs.KeyLastRegionDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onUndo() {
	mw.state.Do(func() { mw.state.Session().Undo() })
}

func (mw *MainWindow) onRedo() {
	mw.state.Do(func() { mw.state.Session().Redo() })
}

func (mw *MainWindow) onGroupSelected() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Group name")
	dialog.ShowForm("Group Selected Regions", "Group", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Group", entry)},
		func(ok bool) {
			if ok {
				name := strings.TrimSpace(entry.Text)
				mw.do(func(s *editor.Session) error { return s.GroupSelected(name) })
			}
		}, mw.Window)
}

func (mw *MainWindow) onZoomIn() {
	mw.state.Do(func() { mw.state.Session().ZoomIn() })
}

func (mw *MainWindow) onZoomOut() {
	mw.state.Do(func() { mw.state.Session().ZoomOut() })
}

func (mw *MainWindow) onActualSize() {
	mw.state.Do(func() { mw.state.Session().SetZoom(1.0) })
}

func (mw *MainWindow) onResetView() {
	mw.state.Do(func() { mw.state.Session().ResetView() })
}

func (mw *MainWindow) onValidate() {
	var err error
	var n int
	mw.state.Do(func() {
		err = mw.state.Session().Validate()
		n = len(mw.state.Session().Regions())
	})
	if err != nil {
		mw.showError(err)
		return
	}
	mw.updateStatus(fmt.Sprintf("%d regions valid", n))
}

// onRunOCR reads every region with tesseract on a background goroutine.
// Running it again cancels a recognition in progress.
func (mw *MainWindow) onRunOCR() {
	if mw.ocrCancel != nil {
		mw.ocrCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	mw.ocrCancel = cancel

	params := tesseract.DefaultParams()
	params.Language = mw.prefs.StringWithFallback(prefs.KeyOCRLanguage, params.Language)
	params.Whitelist = mw.prefs.StringWithFallback(prefs.KeyOCRWhitelist, params.Whitelist)

	var page *document.Page
	var st region.State
	mw.state.Do(func() {
		page = mw.state.CurrentPage()
		st = mw.state.Session().Snapshot()
	})
	if page == nil {
		mw.showError(app.ErrNoDocument)
		return
	}
	mw.sidePanel.SetOCRStatus(fmt.Sprintf("Reading %d regions...", len(st.Regions)))

	go func() {
		engine, err := tesseract.NewEngine(params)
		if err != nil {
			mw.sidePanel.SetOCRStatus("OCR unavailable")
			mw.showError(err)
			return
		}
		defer engine.Close()

		if _, err := mw.state.Recognize(ctx, engine, page, st); err != nil {
			if errors.Is(err, context.Canceled) {
				mw.sidePanel.SetOCRStatus("OCR cancelled")
				return
			}
			mw.sidePanel.SetOCRStatus("OCR failed")
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Region Mapper",
		fmt.Sprintf("Region Mapper v%s\n\n"+
			"Draw, name and group rectangular regions on scanned\n"+
			"documents and export them for form processing.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// onClose stores the window size, stops background work and asks before
// discarding unsaved regions.
func (mw *MainWindow) onClose() {
	quit := func() {
		size := mw.Canvas().Size()
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		if err := mw.prefs.Save(); err != nil {
			log.Printf("Saving preferences: %v", err)
		}
		if mw.ocrCancel != nil {
			mw.ocrCancel()
		}
		if mw.autosaver != nil {
			mw.autosaver.Stop()
			if !mw.state.IsModified() {
				_ = mw.autosaver.Discard()
			}
		}
		mw.state.Close()
		mw.Window.Close()
	}
	if !mw.state.IsModified() {
		quit()
		return
	}
	dialog.ShowConfirm("Unsaved Regions", "Quit without saving the regions?", func(ok bool) {
		if ok {
			quit()
		}
	}, mw.Window)
}
