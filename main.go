// Package main provides the entry point for the Region Mapper application.
package main

import (
	"log"
	"os"

	"region-mapper/internal/app"
	"region-mapper/internal/version"
	"region-mapper/ui/mainwindow"
	"region-mapper/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "io.github.regionmapper"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Region Mapper %s", version.String())

	appPrefs := prefs.Load()
	appState := app.NewState(appPrefs.EditorOptions())

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.RegionTheme{})

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// A document and/or region file may be given on the command line
	if len(os.Args) > 1 {
		win.OpenPaths(os.Args[1:]...)
	}

	win.ShowAndRun()
}
