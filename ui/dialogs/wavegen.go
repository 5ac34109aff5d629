// Package dialogs provides the editor's modal dialogs.
package dialogs

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"pwl-editor/internal/app"
	"pwl-editor/internal/engfmt"
	"pwl-editor/internal/pwl"
	"pwl-editor/internal/wavegen"
	"pwl-editor/ui/canvas"
)

const (
	previewWidth  = 360
	previewHeight = 180
)

// ShowWaveGenerator opens the waveform generator dialog for the given
// shape. Confirming hands the generated points to the controller as a
// placement ghost; the user clicks the canvas to anchor them.
func ShowWaveGenerator(win fyne.Window, state *app.State, kind wavegen.Kind) {
	freq := widget.NewEntry()
	freq.SetText("1k")
	period := widget.NewEntry()
	period.SetPlaceHolder("1/freq")
	amp := widget.NewEntry()
	amp.SetText("1")
	offset := widget.NewEntry()
	offset.SetText("0")
	dur := widget.NewEntry()
	dur.SetText("5m")

	items := []*widget.FormItem{
		widget.NewFormItem("Frequency (Hz)", freq),
		widget.NewFormItem("Period (s)", period),
		widget.NewFormItem("Amplitude (V)", amp),
		widget.NewFormItem("Offset (V)", offset),
		widget.NewFormItem("Duration (s)", dur),
	}

	// Shape-specific fields.
	duty := widget.NewEntry()
	tHigh := widget.NewEntry()
	tRise := widget.NewEntry()
	tFall := widget.NewEntry()
	riseRatio := widget.NewEntry()
	tPeak := widget.NewEntry()
	ppc := widget.NewEntry()

	switch kind {
	case wavegen.Sine:
		ppc.SetText("50")
		items = append(items, widget.NewFormItem("Points per cycle", ppc))
	case wavegen.Square:
		duty.SetText("50")
		tHigh.SetPlaceHolder("from duty")
		tRise.SetPlaceHolder("period/100")
		tFall.SetPlaceHolder("period/100")
		items = append(items,
			widget.NewFormItem("Duty cycle (%)", duty),
			widget.NewFormItem("High time (s)", tHigh),
			widget.NewFormItem("Rise time (s)", tRise),
			widget.NewFormItem("Fall time (s)", tFall),
		)
	case wavegen.Triangle:
		riseRatio.SetText("50")
		tPeak.SetPlaceHolder("from ratio")
		items = append(items,
			widget.NewFormItem("Rise ratio (%)", riseRatio),
			widget.NewFormItem("Peak time (s)", tPeak),
		)
	}

	params := func(previewOnly bool) wavegen.Params {
		p := wavegen.Params{
			Freq:           entryFloat(freq, 0),
			Period:         entryFloat(period, 0),
			Amp:            entryFloat(amp, 1),
			Offset:         entryFloat(offset, 0),
			Dur:            entryFloat(dur, 0),
			Duty:           entryFloat(duty, 50) / 100,
			THigh:          entryFloat(tHigh, 0),
			TRise:          entryFloat(tRise, 0),
			TFall:          entryFloat(tFall, 0),
			RiseRatio:      entryFloat(riseRatio, 50) / 100,
			TPeak:          entryFloat(tPeak, 0),
			PointsPerCycle: int(entryFloat(ppc, 50)),
		}
		if previewOnly {
			// One cycle is enough to see the shape.
			p.Dur = 0
		}
		return p
	}

	var preview []pwl.Point
	raster := fynecanvas.NewRaster(func(w, h int) image.Image {
		return canvas.RenderPreview(w, h, preview)
	})
	raster.SetMinSize(fyne.NewSize(previewWidth, previewHeight))

	update := func(string) {
		preview = wavegen.Generate(kind, params(true))
		raster.Refresh()
	}
	for _, e := range []*widget.Entry{freq, period, amp, offset, duty, tHigh, tRise, tFall, riseRatio, tPeak, ppc} {
		e.OnChanged = update
	}
	update("")

	form := widget.NewForm(items...)
	content := container.NewBorder(nil, raster, nil, nil, form)

	dialog.ShowCustomConfirm("Generate "+kind.String()+" wave", "Place", "Cancel", content,
		func(ok bool) {
			if !ok {
				return
			}
			pts := wavegen.Generate(kind, params(false))
			if len(pts) == 0 {
				return
			}
			state.Controller.StartPlacement(pts)
		}, win)
}

// entryFloat parses an entry's engineering-notation value, falling
// back when empty or malformed.
func entryFloat(e *widget.Entry, fallback float64) float64 {
	if e == nil || e.Text == "" {
		return fallback
	}
	v, err := engfmt.Parse(e.Text)
	if err != nil {
		return fallback
	}
	return v
}
