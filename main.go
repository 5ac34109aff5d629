// Package main provides the entry point for the PWL Editor application.
package main

import (
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"pwl-editor/internal/app"
	"pwl-editor/internal/version"
	"pwl-editor/ui/mainwindow"
	"pwl-editor/ui/prefs"
)

const appTitle = "PWL Editor"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := fyneapp.NewWithID("io.pwl-editor")

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.SetTitle(appTitle)

	// Open a PWL file passed on the command line.
	if len(os.Args) > 1 {
		path := os.Args[1]
		if err := appState.LoadPWL(path); err != nil {
			log.Printf("Failed to load %s: %v", path, err)
		} else {
			appState.Controller.FitView()
		}
	}

	win.ShowAndRun()
}
