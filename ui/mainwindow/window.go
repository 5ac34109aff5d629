// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pwl-editor/internal/app"
	"pwl-editor/internal/engfmt"
	"pwl-editor/internal/export"
	"pwl-editor/internal/interact"
	"pwl-editor/internal/pwl"
	"pwl-editor/internal/version"
	"pwl-editor/internal/wavegen"
	"pwl-editor/ui/canvas"
	"pwl-editor/ui/dialogs"
	"pwl-editor/ui/prefs"
)

const quickAddStep = 1e-3

// precisionChoices maps the drag precision selector entries to volts.
var precisionChoices = []struct {
	label string
	value float64
}{
	{"1", 1},
	{"0.1", 0.1},
	{"0.01", 0.01},
	{"1m", 1e-3},
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	canvas    *canvas.WaveCanvas
	pointList *widget.List
	timeEntry *widget.Entry
	voltEntry *widget.Entry
	yMinEntry *widget.Entry
	yMaxEntry *widget.Entry
	pwlText   *widget.Entry
	statusBar *widget.Label

	// Row snapshot backing the point list.
	rows []pwl.Point

	// Modifier key state, tracked at the window so wheel zoom can see
	// Shift/Ctrl (scroll events don't carry modifiers).
	ctrlDown  bool
	shiftDown bool
}

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("PWL Editor")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	state.Controller.DragPrecision = p.DragPrecision
	state.View.SetVoltageRange(p.YMin, p.YMax)

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(float32(p.WindowWidth), float32(p.WindowHeight)))
	win.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main layout: the plot above, the point table,
// edit controls, and the PWL text pane below.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewWaveCanvas(mw.state)
	mw.canvas.Modifiers = func() interact.Modifiers {
		return interact.Modifiers{Ctrl: mw.ctrlDown, Shift: mw.shiftDown}
	}

	mw.pointList = widget.NewList(
		func() int { return len(mw.rows) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < 0 || i >= len(mw.rows) {
				return
			}
			p := mw.rows[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%-10s %s", engfmt.Format(p.Time), engfmt.Format(p.Voltage)))
		},
	)
	mw.pointList.OnSelected = func(i widget.ListItemID) {
		if i < 0 || i >= len(mw.rows) {
			return
		}
		p := mw.rows[i]
		mw.state.Controller.SetSelection([]pwl.PointID{p.ID})
		mw.timeEntry.SetText(engfmt.Format(p.Time))
		mw.voltEntry.SetText(engfmt.Format(p.Voltage))
	}

	mw.statusBar = widget.NewLabel("Ready")

	mw.pwlText = widget.NewMultiLineEntry()
	mw.pwlText.Wrapping = fyne.TextWrapOff
	mw.pwlText.SetPlaceHolder("PWL(...)")

	bottom := container.NewHSplit(
		container.NewBorder(widget.NewLabel("Points"), nil, nil, nil, mw.pointList),
		container.NewHSplit(
			mw.buildControls(),
			container.NewBorder(
				container.NewHBox(
					widget.NewLabel("PWL text"),
					widget.NewButton("Copy", mw.onCopyPWLText),
					widget.NewButton("Apply", mw.onApplyPWLText),
				),
				nil, nil, nil,
				mw.pwlText,
			),
		),
	)
	bottom.SetOffset(0.3)

	split := container.NewVSplit(mw.canvas, bottom)
	split.SetOffset(0.65)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)
	mw.SetContent(content)
}

// buildControls creates the point entry and view control column.
func (mw *MainWindow) buildControls() fyne.CanvasObject {
	mw.timeEntry = widget.NewEntry()
	mw.timeEntry.SetPlaceHolder("time (s)")
	mw.voltEntry = widget.NewEntry()
	mw.voltEntry.SetPlaceHolder("voltage (V)")

	addBtn := widget.NewButton("Add", mw.onAddPoint)
	updateBtn := widget.NewButton("Update", mw.onUpdatePoint)
	quickBtn := widget.NewButton("+1ms", mw.onQuickAdd)
	deleteBtn := widget.NewButton("Delete", mw.state.Controller.DeleteSelection)

	precSelect := widget.NewSelect(precisionLabels(), func(label string) {
		for _, c := range precisionChoices {
			if c.label == label {
				mw.state.Controller.DragPrecision = c.value
				mw.prefs.DragPrecision = c.value
			}
		}
	})
	precSelect.SetSelected(labelForPrecision(mw.prefs.DragPrecision))

	mw.yMinEntry = widget.NewEntry()
	mw.yMinEntry.SetText(engfmt.Format(mw.state.View.VMin))
	mw.yMaxEntry = widget.NewEntry()
	mw.yMaxEntry.SetText(engfmt.Format(mw.state.View.VMax))
	yBtn := widget.NewButton("Set Y", mw.onSetYRange)
	fitBtn := widget.NewButton("Fit (F)", mw.state.Controller.FitView)

	return container.NewVBox(
		widget.NewLabel("Point"),
		mw.timeEntry,
		mw.voltEntry,
		container.NewGridWithColumns(2, addBtn, updateBtn),
		container.NewGridWithColumns(2, quickBtn, deleteBtn),
		widget.NewSeparator(),
		widget.NewLabel("Drag precision (V)"),
		precSelect,
		widget.NewSeparator(),
		widget.NewLabel("Y range"),
		container.NewGridWithColumns(2, mw.yMinEntry, mw.yMaxEntry),
		container.NewGridWithColumns(2, yBtn, fitBtn),
	)
}

func precisionLabels() []string {
	labels := make([]string, len(precisionChoices))
	for i, c := range precisionChoices {
		labels[i] = c.label
	}
	return labels
}

func labelForPrecision(v float64) string {
	for _, c := range precisionChoices {
		if c.value == v {
			return c.label
		}
	}
	return "1m"
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New", mw.onNew),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open PWL...", mw.onOpen),
		fyne.NewMenuItem("Save PWL", mw.onSave),
		fyne.NewMenuItem("Save PWL As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.onClose() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Copy Points", func() { mw.onCopyPoints() }),
		fyne.NewMenuItem("Paste Points", mw.state.Controller.Paste),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Select All", mw.state.Controller.SelectAll),
		fyne.NewMenuItem("Delete Selection", mw.state.Controller.DeleteSelection),
		fyne.NewMenuItem("Clear All", mw.onClearAll),
	)

	waveMenu := fyne.NewMenu("Waveform",
		fyne.NewMenuItem("Generate Sine...", func() { dialogs.ShowWaveGenerator(mw.Window, mw.state, wavegen.Sine) }),
		fyne.NewMenuItem("Generate Square...", func() { dialogs.ShowWaveGenerator(mw.Window, mw.state, wavegen.Square) }),
		fyne.NewMenuItem("Generate Triangle...", func() { dialogs.ShowWaveGenerator(mw.Window, mw.state, wavegen.Triangle) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Example Waveform", mw.onExample),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Shortcuts", mw.onShortcuts),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, waveMenu, helpMenu))
}

// setupShortcuts wires keyboard handling: plain keys via the canvas
// key handler, Ctrl combinations as shortcuts, and modifier tracking
// for wheel zoom.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyF:
			mw.state.Controller.FitView()
		case fyne.KeyM:
			if err := mw.state.Controller.InsertAtCursor(); err != nil {
				mw.updateStatus("Point already exists at that time")
			}
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.state.Controller.DeleteSelection()
		case fyne.KeyEscape:
			mw.state.Controller.CancelPlacement()
		}
	})

	ctrlC := &desktop.CustomShortcut{KeyName: fyne.KeyC, Modifier: fyne.KeyModifierControl}
	mw.Canvas().AddShortcut(ctrlC, func(fyne.Shortcut) { mw.onCopyPoints() })
	ctrlV := &desktop.CustomShortcut{KeyName: fyne.KeyV, Modifier: fyne.KeyModifierControl}
	mw.Canvas().AddShortcut(ctrlV, func(fyne.Shortcut) { mw.state.Controller.Paste() })
	ctrlA := &desktop.CustomShortcut{KeyName: fyne.KeyA, Modifier: fyne.KeyModifierControl}
	mw.Canvas().AddShortcut(ctrlA, func(fyne.Shortcut) { mw.state.Controller.SelectAll() })
	ctrlS := &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	mw.Canvas().AddShortcut(ctrlS, func(fyne.Shortcut) { mw.onSave() })

	if dc, ok := mw.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case desktop.KeyControlLeft, desktop.KeyControlRight:
				mw.ctrlDown = true
			case desktop.KeyShiftLeft, desktop.KeyShiftRight:
				mw.shiftDown = true
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case desktop.KeyControlLeft, desktop.KeyControlRight:
				mw.ctrlDown = false
			case desktop.KeyShiftLeft, desktop.KeyShiftRight:
				mw.shiftDown = false
			}
		})
	}
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventWaveformChanged, func(interface{}) {
		mw.refreshPointList()
		mw.refreshPWLText()
	})
	mw.state.On(app.EventSelectionChanged, func(interface{}) {
		mw.syncEntriesFromSelection()
	})
	mw.state.On(app.EventFileLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("PWL Editor - " + filepath.Base(path))
			mw.updateStatus("Loaded " + path)
		}
		mw.refreshPointList()
		mw.refreshPWLText()
	})
	mw.state.On(app.EventFileSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("PWL Editor - " + filepath.Base(path))
			mw.updateStatus("Saved " + path)
		}
	})
	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})
}

func (mw *MainWindow) refreshPointList() {
	mw.rows = mw.state.Wave.Points()
	mw.pointList.Refresh()
}

func (mw *MainWindow) refreshPWLText() {
	mw.pwlText.SetText(pwl.SerializeBlock(mw.state.Wave))
}

func (mw *MainWindow) syncEntriesFromSelection() {
	if p, ok := mw.state.Controller.Primary(); ok {
		mw.timeEntry.SetText(engfmt.Format(p.Time))
		mw.voltEntry.SetText(engfmt.Format(p.Voltage))
	}
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Control handlers

func (mw *MainWindow) entryValues() (t, v float64, err error) {
	t, err = engfmt.Parse(mw.timeEntry.Text)
	if err != nil {
		return 0, 0, fmt.Errorf("time: %w", err)
	}
	v, err = engfmt.Parse(mw.voltEntry.Text)
	if err != nil {
		return 0, 0, fmt.Errorf("voltage: %w", err)
	}
	return t, v, nil
}

func (mw *MainWindow) onAddPoint() {
	t, v, err := mw.entryValues()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if _, err := mw.state.Wave.Insert(t, v); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.state.SetModified(true)
	mw.state.Emit(app.EventWaveformChanged, nil)
}

func (mw *MainWindow) onUpdatePoint() {
	p, ok := mw.state.Controller.Primary()
	if !ok {
		mw.updateStatus("No point selected")
		return
	}
	t, v, err := mw.entryValues()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if err := mw.state.Controller.UpdatePoint(p.ID, t, v); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// onQuickAdd appends a point one step after the last one, using the
// entered voltage.
func (mw *MainWindow) onQuickAdd() {
	v, err := engfmt.Parse(mw.voltEntry.Text)
	if err != nil {
		dialog.ShowError(fmt.Errorf("voltage: %w", err), mw.Window)
		return
	}
	t := 0.0
	if pts := mw.state.Wave.Points(); len(pts) > 0 {
		t = pts[len(pts)-1].Time + quickAddStep
	}
	if _, err := mw.state.Wave.Insert(t, v); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.state.SetModified(true)
	mw.state.Emit(app.EventWaveformChanged, nil)
}

func (mw *MainWindow) onSetYRange() {
	vMin, err := engfmt.Parse(mw.yMinEntry.Text)
	if err != nil {
		dialog.ShowError(fmt.Errorf("y min: %w", err), mw.Window)
		return
	}
	vMax, err := engfmt.Parse(mw.yMaxEntry.Text)
	if err != nil {
		dialog.ShowError(fmt.Errorf("y max: %w", err), mw.Window)
		return
	}
	if !mw.state.View.SetVoltageRange(vMin, vMax) {
		dialog.ShowError(fmt.Errorf("y range too small"), mw.Window)
		return
	}
	mw.prefs.YMin, mw.prefs.YMax = vMin, vMax
	mw.state.Emit(app.EventViewChanged, nil)
}

func (mw *MainWindow) onCopyPoints() {
	n := mw.state.Controller.CopySelection()
	if n == 0 {
		mw.updateStatus("Nothing selected to copy")
		return
	}
	mw.updateStatus(fmt.Sprintf("Copied %d points - paste with Ctrl+V", n))
}

func (mw *MainWindow) onCopyPWLText() {
	text := mw.pwlText.Text
	if text == "" {
		mw.updateStatus("No PWL text to copy")
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("PWL text copied to clipboard")
}

// onApplyPWLText parses the (possibly hand-edited) text pane back
// into the waveform.
func (mw *MainWindow) onApplyPWLText() {
	w, err := pwl.ParseString(mw.pwlText.Text)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.state.Wave.SetPoints(w.Points())
	mw.state.Controller.ClearSelection()
	mw.state.SetModified(true)
	mw.state.Emit(app.EventWaveformChanged, nil)
}

func (mw *MainWindow) onClearAll() {
	dialog.ShowConfirm("Clear All", "Remove all points?", func(ok bool) {
		if !ok {
			return
		}
		mw.state.Wave.Clear()
		mw.state.Controller.ClearSelection()
		mw.state.SetModified(true)
		mw.state.Emit(app.EventWaveformChanged, nil)
	}, mw.Window)
}

func (mw *MainWindow) onExample() {
	mw.state.Wave.SetPoints(wavegen.Example())
	mw.state.Controller.ClearSelection()
	mw.state.SetModified(true)
	mw.state.Emit(app.EventWaveformChanged, nil)
	mw.state.Controller.FitView()
}

// Menu action handlers

func (mw *MainWindow) onNew() {
	mw.state.Wave.Clear()
	mw.state.Controller.ClearSelection()
	mw.state.FilePath = ""
	mw.state.SetModified(false)
	mw.state.Emit(app.EventWaveformChanged, nil)
	mw.SetTitle("PWL Editor")
}

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadPWL(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".pwl"}))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if mw.state.FilePath == "" {
		mw.onSaveAs()
		return
	}
	if err := mw.state.SavePWL(mw.state.FilePath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.SavePWL(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("waveform.txt")
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		opts := export.Options{Title: filepath.Base(path)}
		if err := export.WritePNG(path, mw.state.Wave, mw.state.View, opts); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + path)
	}, mw.Window)
	fd.SetFileName("waveform.png")
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onShortcuts() {
	dialog.ShowInformation("Shortcuts",
		"Left drag        move point / rubber-band select\n"+
			"Right drag       box zoom\n"+
			"Middle drag      pan\n"+
			"Wheel            zoom voltage (Shift: time, Ctrl: both)\n"+
			"M                insert point at cursor\n"+
			"F                fit view to points\n"+
			"Delete           delete selection\n"+
			"Escape           cancel placement\n"+
			"Ctrl+C / Ctrl+V  copy / paste points\n"+
			"Ctrl+A           select all\n"+
			"Ctrl+S           save",
		mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("PWL Editor %s\n\nPiecewise-linear waveform editor for SPICE sources.", version.Version),
		mw.Window)
}

func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.WindowWidth = int(size.Width)
	mw.prefs.WindowHeight = int(size.Height)
	_ = mw.prefs.Save()
	mw.app.Quit()
}

func (mw *MainWindow) lastDir() fyne.ListableURI {
	if mw.prefs.LastDir == "" {
		return nil
	}
	uri := storage.NewFileURI(mw.prefs.LastDir)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.LastDir = filepath.Dir(filePath)
}
