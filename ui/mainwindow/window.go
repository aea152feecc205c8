// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"photo-viewer/internal/app"
	"photo-viewer/internal/imageload"
	"photo-viewer/internal/version"
	"photo-viewer/ui/canvas"
	"photo-viewer/ui/dialogs"
	"photo-viewer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

// MainWindow lists the gallery and hosts the image viewer overlay.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	viewer    *dialogs.ImageViewer
	list      *widget.List
	entry     *widget.Entry

	statusMu  sync.Mutex // OnLoaded reports from the loader goroutine
	statusBar *widget.Label
}

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs, loader *imageload.Loader, opts canvas.Options) *MainWindow {
	win := fyneApp.NewWindow("Photo Viewer")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}
	mw.viewer = dialogs.NewImageViewer(win.Canvas(), loader, opts, state.Close)

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, defaultWidth)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, defaultHeight)),
	))
	mw.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.Close()
	})
	return mw
}

// Viewer returns the image viewer overlay.
func (mw *MainWindow) Viewer() *dialogs.ImageViewer {
	return mw.viewer
}

func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")

	mw.entry = widget.NewEntry()
	mw.entry.SetPlaceHolder("Image URL or file path")
	mw.entry.OnSubmitted = mw.addURL
	addBtn := widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), func() {
		mw.addURL(mw.entry.Text)
	})
	openBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), mw.onOpenImage)
	toolbar := container.NewBorder(nil, nil, nil, container.NewHBox(addBtn, openBtn), mw.entry)

	mw.list = widget.NewList(
		mw.state.Len,
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, remove, label)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			url, err := mw.state.URL(id)
			if err != nil {
				return
			}
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(url)
			row.Objects[1].(*widget.Button).OnTapped = func() {
				if err := mw.state.Remove(id); err != nil {
					log.Printf("Gallery: remove %d: %v", id, err)
				}
			}
		},
	)
	mw.list.OnSelected = func(id widget.ListItemID) {
		mw.list.UnselectAll()
		if err := mw.state.Open(id); err != nil {
			mw.updateStatus(err.Error())
		}
	}

	mw.viewer.Canvas().OnLoaded(func(err error) {
		if err != nil {
			mw.updateStatus("Failed to load image: " + err.Error())
			return
		}
		mw.updateStatus("Loaded " + mw.viewer.Canvas().URL())
	})

	content := container.NewBorder(
		container.NewPadded(toolbar),
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		mw.list,
	)
	mw.SetContent(content)
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Add URL", func() { mw.Canvas().Focus(mw.entry) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.SavePreferences()
			mw.app.Quit()
		}),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.viewer.Canvas().ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.viewer.Canvas().ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.viewer.Canvas().FitToWindow),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Viewer", mw.viewer.Close),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventGalleryChanged, func(data interface{}) {
		mw.list.Refresh()
		mw.updateStatus(fmt.Sprintf("%d images", mw.state.Len()))
	})

	mw.state.On(app.EventImageOpened, func(data interface{}) {
		if url, ok := data.(string); ok {
			mw.viewer.Show(url)
			mw.updateStatus("Loading " + url)
		}
	})

	mw.state.On(app.EventViewerClosed, func(data interface{}) {
		mw.viewer.Hide()
		mw.updateStatus("Ready")
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusMu.Lock()
	mw.statusBar.SetText(text)
	mw.statusMu.Unlock()
}

func (mw *MainWindow) status() string {
	mw.statusMu.Lock()
	defer mw.statusMu.Unlock()
	return mw.statusBar.Text
}

func (mw *MainWindow) addURL(raw string) {
	if _, err := imageload.ParseURL(raw); err != nil {
		mw.updateStatus(err.Error())
		return
	}
	if mw.state.AddURLs(raw) == 0 {
		mw.updateStatus("Already in gallery")
		return
	}
	mw.entry.SetText("")
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if reader == nil {
			return
		}
		reader.Close()
		uri := reader.URI()
		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(uri.Path()))
		mw.state.AddURLs(uri.String())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageload.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// SavePreferences stores the window size and gallery.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	}
	mw.prefs.SetStrings(prefs.KeyGalleryURLs, mw.state.URLs())
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Prefs: save %s: %v", mw.prefs.Path(), err)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Photo Viewer",
		fmt.Sprintf("Photo Viewer %s\n\n"+
			"Pan, zoom, and pinch through local and remote images.",
			version.String()),
		mw.Window)
}
