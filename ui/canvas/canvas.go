// Package canvas provides the interactive waveform plot widget.
package canvas

import (
	"image"
	"image/color"
	"sort"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"pwl-editor/internal/app"
	"pwl-editor/internal/engfmt"
	"pwl-editor/internal/interact"
	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

// Dark plot theme.
var (
	colBackground = color.RGBA{0x1e, 0x1e, 0x1e, 0xff}
	colGrid       = color.RGBA{0x33, 0x33, 0x33, 0xff}
	colAxis       = color.RGBA{0x88, 0x88, 0x88, 0xff}
	colText       = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	colLine       = color.RGBA{0x4f, 0xc1, 0xff, 0xff}
	colSelected   = color.RGBA{0xff, 0xff, 0x00, 0xff}
	colGhost      = color.RGBA{0x80, 0x80, 0x80, 0xff}
	colBoxZoom    = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
)

// markerLimit is the visible-point count above which unselected
// markers are skipped; the polyline alone is cheaper and still
// readable at that density.
const markerLimit = 300

// ghost preview limits, so pasting a huge waveform stays responsive.
const (
	ghostMaxLines   = 3000
	ghostMaxMarkers = 500
)

// tickCache memoizes tick positions for one axis, keyed on the axis
// range. Panning along the other axis reuses the cached slice.
type tickCache struct {
	min, max float64
	ticks    []float64
	valid    bool
}

func (tc *tickCache) get(min, max float64, target int) []float64 {
	if !tc.valid || tc.min != min || tc.max != max {
		tc.min, tc.max = min, max
		tc.ticks = view.Ticks(min, max, target)
		tc.valid = true
	}
	return tc.ticks
}

// WaveCanvas renders the waveform into a raster and feeds pointer
// events to the interaction controller.
type WaveCanvas struct {
	widget.BaseWidget

	state *app.State
	ctrl  *interact.Controller

	raster *fynecanvas.Raster

	// Raster pixels per widget point, captured each draw so event
	// positions can be mapped into pixel space.
	scale float32

	xTicks tickCache
	yTicks tickCache

	// Modifiers supplies the keyboard modifier state for scroll
	// events, which carry none themselves.
	Modifiers func() interact.Modifiers
}

var (
	_ desktop.Mouseable  = (*WaveCanvas)(nil)
	_ desktop.Hoverable  = (*WaveCanvas)(nil)
	_ desktop.Cursorable = (*WaveCanvas)(nil)
	_ fyne.Draggable     = (*WaveCanvas)(nil)
	_ fyne.Scrollable    = (*WaveCanvas)(nil)
)

// NewWaveCanvas creates the plot widget bound to the editor state.
func NewWaveCanvas(state *app.State) *WaveCanvas {
	wc := &WaveCanvas{
		state: state,
		ctrl:  state.Controller,
	}
	wc.raster = fynecanvas.NewRaster(wc.draw)
	wc.raster.ScaleMode = fynecanvas.ImageScalePixels
	wc.ExtendBaseWidget(wc)

	redraw := func(interface{}) { wc.Refresh() }
	state.On(app.EventWaveformChanged, redraw)
	state.On(app.EventSelectionChanged, redraw)
	state.On(app.EventViewChanged, redraw)
	state.On(app.EventOverlayChanged, redraw)
	state.On(app.EventFileLoaded, redraw)
	return wc
}

// CreateRenderer implements fyne.Widget.
func (wc *WaveCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(wc.raster)
}

// MinSize implements fyne.Widget.
func (wc *WaveCanvas) MinSize() fyne.Size {
	return fyne.NewSize(400, 250)
}

func (wc *WaveCanvas) pixelPos(p fyne.Position) (float64, float64) {
	s := wc.scale
	if s <= 0 {
		s = 1
	}
	return float64(p.X * s), float64(p.Y * s)
}

func buttonFor(b desktop.MouseButton) (interact.Button, bool) {
	switch b {
	case desktop.MouseButtonPrimary:
		return interact.ButtonPrimary, true
	case desktop.MouseButtonSecondary:
		return interact.ButtonSecondary, true
	case desktop.MouseButtonTertiary:
		return interact.ButtonMiddle, true
	}
	return 0, false
}

func modsFor(m fyne.KeyModifier) interact.Modifiers {
	return interact.Modifiers{
		Ctrl:  m&fyne.KeyModifierControl != 0,
		Shift: m&fyne.KeyModifierShift != 0,
	}
}

// MouseDown implements desktop.Mouseable.
func (wc *WaveCanvas) MouseDown(ev *desktop.MouseEvent) {
	btn, ok := buttonFor(ev.Button)
	if !ok {
		return
	}
	x, y := wc.pixelPos(ev.Position)
	wc.ctrl.PointerDown(x, y, btn, modsFor(ev.Modifier))
}

// MouseUp implements desktop.Mouseable.
func (wc *WaveCanvas) MouseUp(ev *desktop.MouseEvent) {
	btn, ok := buttonFor(ev.Button)
	if !ok {
		return
	}
	x, y := wc.pixelPos(ev.Position)
	wc.ctrl.PointerUp(x, y, btn, modsFor(ev.Modifier))
}

// Dragged implements fyne.Draggable. The drag itself is tracked by
// the controller from MouseDown; this only feeds positions.
func (wc *WaveCanvas) Dragged(ev *fyne.DragEvent) {
	x, y := wc.pixelPos(ev.Position)
	wc.ctrl.PointerMove(x, y)
}

// DragEnd implements fyne.Draggable. Release handling lives in
// MouseUp, which still fires after a drag.
func (wc *WaveCanvas) DragEnd() {}

// MouseIn implements desktop.Hoverable.
func (wc *WaveCanvas) MouseIn(ev *desktop.MouseEvent) {
	x, y := wc.pixelPos(ev.Position)
	wc.ctrl.PointerMove(x, y)
}

// MouseMoved implements desktop.Hoverable.
func (wc *WaveCanvas) MouseMoved(ev *desktop.MouseEvent) {
	x, y := wc.pixelPos(ev.Position)
	wc.ctrl.PointerMove(x, y)
}

// MouseOut implements desktop.Hoverable.
func (wc *WaveCanvas) MouseOut() {}

// Scrolled implements fyne.Scrollable: wheel zoom anchored at the
// cursor.
func (wc *WaveCanvas) Scrolled(ev *fyne.ScrollEvent) {
	var mods interact.Modifiers
	if wc.Modifiers != nil {
		mods = wc.Modifiers()
	}
	x, y := wc.pixelPos(ev.Position)
	wc.ctrl.Scroll(x, y, float64(ev.Scrolled.DY), mods)
}

// Cursor implements desktop.Cursorable.
func (wc *WaveCanvas) Cursor() desktop.Cursor {
	if wc.ctrl.Placing() {
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

// draw renders the plot. Called by the raster whenever the widget
// refreshes or resizes.
func (wc *WaveCanvas) draw(w, h int) image.Image {
	if size := wc.Size(); size.Width > 0 {
		wc.scale = float32(w) / size.Width
	}

	v := wc.state.View
	v.Width, v.Height = w, h

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w, h, colBackground)

	left := v.MarginLeft
	right := w - v.MarginRight
	top := v.MarginTop
	bottom := h - v.MarginBottom
	if right <= left || bottom <= top {
		return img
	}

	xTicks := wc.xTicks.get(v.TMin, v.TMax, 10)
	yTicks := wc.yTicks.get(v.VMin, v.VMax, 8)

	wc.drawGrid(img, v, xTicks, yTicks, left, right, top, bottom)
	wc.drawWaveform(img, v, left, right, top, bottom)
	wc.drawGhost(img, v)

	// Cover the margins so plot overdraw never reaches the labels,
	// then put the labels and frame on top.
	fillRect(img, 0, 0, w, top, colBackground)
	fillRect(img, 0, bottom+1, w, h, colBackground)
	fillRect(img, 0, 0, left, h, colBackground)
	fillRect(img, right+1, 0, w, h, colBackground)

	wc.drawLabels(img, v, xTicks, yTicks, left, right, top, bottom)
	wc.drawOverlay(img)

	return img
}

func (wc *WaveCanvas) drawGrid(img *image.RGBA, v *view.View, xTicks, yTicks []float64, left, right, top, bottom int) {
	for _, t := range xTicks {
		x, _ := v.ToScreen(t, 0)
		if xi := int(x); xi >= left && xi <= right {
			drawVLineDashed(img, xi, top, bottom, colGrid)
		}
	}
	for _, volt := range yTicks {
		_, y := v.ToScreen(0, volt)
		if yi := int(y); yi >= top && yi <= bottom {
			drawHLineDashed(img, left, right, yi, colGrid)
		}
	}
}

func (wc *WaveCanvas) drawLabels(img *image.RGBA, v *view.View, xTicks, yTicks []float64, left, right, top, bottom int) {
	for _, t := range xTicks {
		x, _ := v.ToScreen(t, 0)
		if xi := int(x); xi >= left && xi <= right {
			drawTextCentered(img, engfmt.Format(t), xi, bottom+12, 2, colText)
		}
	}
	for _, volt := range yTicks {
		_, y := v.ToScreen(0, volt)
		if yi := int(y); yi >= top && yi <= bottom {
			label := engfmt.Format(volt)
			drawText(img, label, left-6-textWidth(label, 2), yi-5, 2, colText)
		}
	}

	drawLine(img, left, top, right, top, colAxis, 1)
	drawLine(img, left, bottom, right, bottom, colAxis, 1)
	drawLine(img, left, top, left, bottom, colAxis, 1)
	drawLine(img, right, top, right, bottom, colAxis, 1)
}

// drawWaveform strokes each segment separately, starting with the
// hold segment from t=0 at the first point's voltage. Mid-drag the
// slice order is whatever the drag left it in; segments still connect
// consecutive slice entries so the picture follows the cursor.
func (wc *WaveCanvas) drawWaveform(img *image.RGBA, v *view.View, left, right, top, bottom int) {
	pts := wc.state.Wave.Points()
	if len(pts) == 0 {
		return
	}

	// At rest the slice is time-ordered, so the visible range can be
	// culled with a binary search, expanded one point each side so
	// edge segments still cross the frame. Mid-drag the order is
	// unreliable; draw everything.
	lo, hi := 0, len(pts)
	if wc.ctrl.Mode() != interact.ModeDrag {
		lo = sort.Search(len(pts), func(i int) bool { return pts[i].Time >= v.TMin })
		hi = sort.Search(len(pts), func(i int) bool { return pts[i].Time > v.TMax })
		if lo > 0 {
			lo--
		}
		if hi < len(pts) {
			hi++
		}
	}

	first := pts[0]
	for _, p := range pts {
		if p.Time < first.Time {
			first = p
		}
	}
	if first.Time > 0 && v.TMin < first.Time {
		x0, y0 := v.ToScreen(0, first.Voltage)
		x1, y1 := v.ToScreen(first.Time, first.Voltage)
		drawLine(img, int(x0), int(y0), int(x1), int(y1), colLine, 2)
	}
	for i := lo + 1; i < hi; i++ {
		x0, y0 := v.ToScreen(pts[i-1].Time, pts[i-1].Voltage)
		x1, y1 := v.ToScreen(pts[i].Time, pts[i].Voltage)
		drawLine(img, int(x0), int(y0), int(x1), int(y1), colLine, 2)
	}

	visible := 0
	for _, p := range pts[lo:hi] {
		if p.Time >= v.TMin && p.Time <= v.TMax && p.Voltage >= v.VMin && p.Voltage <= v.VMax {
			visible++
		}
	}
	markersOn := visible <= markerLimit

	primary, hasPrimary := wc.ctrl.Primary()
	for _, p := range pts[lo:hi] {
		selected := wc.ctrl.Selected(p.ID)
		if !markersOn && !selected {
			continue
		}
		x, y := v.ToScreen(p.Time, p.Voltage)
		switch {
		case hasPrimary && p.ID == primary.ID:
			drawCircle(img, int(x), int(y), 6, colSelected, true)
		case selected:
			drawCircle(img, int(x), int(y), 5, colSelected, true)
		default:
			drawCircle(img, int(x), int(y), 4, colLine, true)
		}
	}
}

// drawGhost renders the placement preview, decimated so huge pastes
// stay responsive.
func (wc *WaveCanvas) drawGhost(img *image.RGBA, v *view.View) {
	ghost := wc.ctrl.GhostPoints()
	if len(ghost) == 0 {
		return
	}

	step := 1
	if len(ghost) > ghostMaxLines {
		step = len(ghost) / ghostMaxLines
	}

	var prev *pwl.Point
	for i := 0; i < len(ghost); i += step {
		p := ghost[i]
		if prev != nil {
			x0, y0 := v.ToScreen(prev.Time, prev.Voltage)
			x1, y1 := v.ToScreen(p.Time, p.Voltage)
			drawLine(img, int(x0), int(y0), int(x1), int(y1), colGhost, 1)
		}
		prev = &ghost[i]
	}

	if len(ghost) <= ghostMaxMarkers {
		for _, p := range ghost {
			x, y := v.ToScreen(p.Time, p.Voltage)
			drawCircle(img, int(x), int(y), 3, colGhost, false)
		}
	}
}

func (wc *WaveCanvas) drawOverlay(img *image.RGBA) {
	rect, ok := wc.ctrl.OverlayRect()
	if !ok {
		return
	}
	col := colSelected
	if wc.ctrl.Mode() == interact.ModeBoxZoom {
		col = colBoxZoom
	}
	drawDashedRect(img, int(rect.X), int(rect.Y), int(rect.X+rect.Width), int(rect.Y+rect.Height), col)
}
