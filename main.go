// Package main provides the entry point for the Photo Viewer application.
package main

import (
	"flag"
	"log"

	"photo-viewer/internal/app"
	"photo-viewer/internal/imageload"
	"photo-viewer/internal/version"
	"photo-viewer/ui/canvas"
	"photo-viewer/ui/mainwindow"
	"photo-viewer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID    = "org.photoviewer.app"
	appTitle = "Photo Viewer"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML/JSON/TOML config file")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s %s", appTitle, version.String())

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.ViewerTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()
	appState.AddURLs(appPrefs.Strings(prefs.KeyGalleryURLs)...)
	appState.AddURLs(flag.Args()...)

	loader := imageload.New(cfg.LoaderOptions()...)
	win := mainwindow.New(fyneApp, appState, appPrefs, loader, canvas.Options{
		Viewer:        cfg.ViewerOptions(),
		Transition:    cfg.Transition,
		WatchFiles:    cfg.WatchFiles,
		WatchDebounce: cfg.WatchDebounce,
	})
	win.SetTitle(appTitle)

	// A single image on the command line opens straight into the viewer.
	if flag.NArg() == 1 {
		for i, u := range appState.URLs() {
			if u == flag.Arg(0) {
				_ = appState.Open(i)
			}
		}
	}

	win.ShowAndRun()
}
