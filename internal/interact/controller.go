// Package interact implements the editor's pointer state machine:
// selection, dragging, rubber-band select, box zoom, panning, wheel
// zoom and waveform placement. It is UI-toolkit free; the canvas
// widget feeds it pixel events and renders from its state.
package interact

import (
	"math"
	"sort"

	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
	"pwl-editor/pkg/geometry"
)

// PickRadius is the pixel distance within which a click grabs a point.
const PickRadius = 10

// DefaultDragPrecision is the voltage snap applied when a drag settles.
const DefaultDragPrecision = 1e-3

// Mode is the controller's current gesture.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrag
	ModeRubberBand
	ModePan
	ModeBoxZoom
	ModePlace
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Modifiers carries the keyboard modifier state at an event.
type Modifiers struct {
	Ctrl  bool
	Shift bool
}

// Change describes what a controller operation touched, so the shell
// refreshes only the affected widgets.
type Change struct {
	Waveform  bool
	Selection bool
	View      bool
	Overlay   bool
}

type viewRange struct {
	tMin, tMax, vMin, vMax float64
}

// Controller owns the interaction state on top of a waveform and a
// view. Not safe for concurrent use; all calls come from the UI
// event loop.
type Controller struct {
	wave *pwl.Waveform
	view *view.View

	sel     map[pwl.PointID]struct{}
	primary pwl.PointID

	mode Mode

	// Drag state. Original positions are kept so each move is
	// computed from the press point, not accumulated.
	dragStartT, dragStartV float64
	dragOrig               map[pwl.PointID]pwl.Point
	dragged                []pwl.PointID
	dragMoved              bool

	// Rubber band / box zoom corners in pixels.
	bandStart, bandEnd geometry.Point2D
	bandPrev           map[pwl.PointID]struct{}

	// Pan snapshot: the view at press time, so pans replay from the
	// anchor instead of accumulating rounding.
	panStart geometry.Point2D
	panView  viewRange

	// Placement ghost: point offsets relative to the anchor time.
	placeData []pwl.Point

	cursorT, cursorV float64
	cursorValid      bool

	clip []pwl.Point

	// DragPrecision is the voltage grid applied when a drag or
	// keyboard insert settles. Times always snap to pwl.Quantum.
	DragPrecision float64

	onChange func(Change)
}

// New creates a controller over the given waveform and view.
func New(w *pwl.Waveform, v *view.View) *Controller {
	return &Controller{
		wave:          w,
		view:          v,
		sel:           make(map[pwl.PointID]struct{}),
		DragPrecision: DefaultDragPrecision,
	}
}

// OnChange registers the refresh callback. Only one is supported.
func (c *Controller) OnChange(fn func(Change)) { c.onChange = fn }

func (c *Controller) emit(ch Change) {
	if c.onChange != nil {
		c.onChange(ch)
	}
}

// Mode returns the current gesture.
func (c *Controller) Mode() Mode { return c.mode }

// Placing reports whether a placement ghost is active.
func (c *Controller) Placing() bool { return c.mode == ModePlace }

// Selection returns the selected point IDs in waveform order.
func (c *Controller) Selection() []pwl.PointID {
	ids := make([]pwl.PointID, 0, len(c.sel))
	for _, p := range c.wave.Points() {
		if _, ok := c.sel[p.ID]; ok {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Selected reports whether a point is selected.
func (c *Controller) Selected(id pwl.PointID) bool {
	_, ok := c.sel[id]
	return ok
}

// Primary returns the primary selected point, if any.
func (c *Controller) Primary() (pwl.Point, bool) {
	if c.primary == 0 {
		return pwl.Point{}, false
	}
	return c.wave.Point(c.primary)
}

// SetSelection replaces the selection (point-table sync).
func (c *Controller) SetSelection(ids []pwl.PointID) {
	c.sel = make(map[pwl.PointID]struct{}, len(ids))
	c.primary = 0
	for _, id := range ids {
		if _, ok := c.wave.Point(id); ok {
			c.sel[id] = struct{}{}
			c.primary = id
		}
	}
	c.emit(Change{Selection: true})
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	if len(c.sel) == 0 {
		return
	}
	c.sel = make(map[pwl.PointID]struct{})
	c.primary = 0
	c.emit(Change{Selection: true})
}

// SelectAll selects every point.
func (c *Controller) SelectAll() {
	pts := c.wave.Points()
	c.sel = make(map[pwl.PointID]struct{}, len(pts))
	for _, p := range pts {
		c.sel[p.ID] = struct{}{}
	}
	c.primary = 0
	if len(pts) > 0 {
		c.primary = pts[len(pts)-1].ID
	}
	c.emit(Change{Selection: true})
}

// pickPoint returns the point whose marker is nearest the pixel,
// within PickRadius.
func (c *Controller) pickPoint(sx, sy float64) (pwl.PointID, bool) {
	best := pwl.PointID(0)
	bestDist := float64(PickRadius * PickRadius)
	found := false
	for _, p := range c.wave.Points() {
		px, py := c.view.ToScreen(p.Time, p.Voltage)
		d := (sx-px)*(sx-px) + (sy-py)*(sy-py)
		if d < bestDist {
			bestDist = d
			best = p.ID
			found = true
		}
	}
	return best, found
}

// PointerDown starts a gesture. Primary on a point begins a drag of
// the whole selection; primary on empty space begins a rubber band;
// secondary begins a box zoom; middle begins a pan. In placement
// mode, primary commits the ghost instead.
func (c *Controller) PointerDown(sx, sy float64, btn Button, mods Modifiers) {
	t, v := c.view.ToData(sx, sy)
	c.cursorT, c.cursorV = t, v
	c.cursorValid = true

	if c.mode == ModePlace {
		if btn == ButtonPrimary {
			c.commitPlacement()
		}
		return
	}
	if c.mode != ModeIdle {
		return
	}

	switch btn {
	case ButtonPrimary:
		if id, ok := c.pickPoint(sx, sy); ok {
			c.beginDrag(id, t, v, mods)
		} else {
			c.beginRubberBand(sx, sy, mods)
		}
	case ButtonSecondary:
		c.mode = ModeBoxZoom
		c.bandStart = geometry.Point2D{X: sx, Y: sy}
		c.bandEnd = c.bandStart
		c.emit(Change{Overlay: true})
	case ButtonMiddle:
		c.mode = ModePan
		c.panStart = geometry.Point2D{X: sx, Y: sy}
		c.panView = viewRange{c.view.TMin, c.view.TMax, c.view.VMin, c.view.VMax}
	}
}

func (c *Controller) beginDrag(id pwl.PointID, t, v float64, mods Modifiers) {
	if !c.Selected(id) {
		if mods.Ctrl {
			c.sel[id] = struct{}{}
		} else {
			c.sel = map[pwl.PointID]struct{}{id: {}}
		}
	}
	c.primary = id

	c.mode = ModeDrag
	c.dragStartT, c.dragStartV = t, v
	c.dragMoved = false
	c.dragged = c.dragged[:0]
	c.dragOrig = make(map[pwl.PointID]pwl.Point, len(c.sel))
	for selID := range c.sel {
		if p, ok := c.wave.Point(selID); ok {
			c.dragged = append(c.dragged, selID)
			c.dragOrig[selID] = p
		}
	}
	c.emit(Change{Selection: true})
}

func (c *Controller) beginRubberBand(sx, sy float64, mods Modifiers) {
	c.mode = ModeRubberBand
	c.bandStart = geometry.Point2D{X: sx, Y: sy}
	c.bandEnd = c.bandStart
	c.bandPrev = c.sel
	if !mods.Ctrl {
		c.sel = make(map[pwl.PointID]struct{})
		c.primary = 0
		c.emit(Change{Selection: true, Overlay: true})
		return
	}
	c.emit(Change{Overlay: true})
}

// PointerMove advances the active gesture, or just tracks the cursor
// when idle (hover, placement ghost).
func (c *Controller) PointerMove(sx, sy float64) {
	t, v := c.view.ToData(sx, sy)
	c.cursorT, c.cursorV = t, v
	c.cursorValid = true

	switch c.mode {
	case ModeDrag:
		c.dragTo(t, v)
	case ModeRubberBand, ModeBoxZoom:
		c.bandEnd = geometry.Point2D{X: sx, Y: sy}
		c.emit(Change{Overlay: true})
	case ModePan:
		c.panTo(sx, sy)
	case ModePlace:
		c.emit(Change{Overlay: true})
	}
}

func (c *Controller) dragTo(t, v float64) {
	dt := t - c.dragStartT
	dv := v - c.dragStartV
	live := c.dragged[:0]
	for _, id := range c.dragged {
		orig, ok := c.dragOrig[id]
		if !ok {
			continue
		}
		nt := pwl.Quantize(math.Max(0, orig.Time+dt))
		if err := c.wave.Move(id, nt, orig.Voltage+dv); err != nil {
			// Deleted out from under the drag; drop it.
			delete(c.dragOrig, id)
			delete(c.sel, id)
			continue
		}
		live = append(live, id)
	}
	c.dragged = live
	c.dragMoved = true
	if len(c.dragged) == 0 {
		c.mode = ModeIdle
	}
	c.emit(Change{Waveform: true})
}

func (c *Controller) panTo(sx, sy float64) {
	ts := c.panView.tMax - c.panView.tMin
	vs := c.panView.vMax - c.panView.vMin
	shiftT := -(sx - c.panStart.X) * ts / c.view.PlotWidth()
	shiftV := (sy - c.panStart.Y) * vs / c.view.PlotHeight()
	c.view.TMin = c.panView.tMin + shiftT
	c.view.TMax = c.panView.tMax + shiftT
	c.view.VMin = c.panView.vMin + shiftV
	c.view.VMax = c.panView.vMax + shiftV
	c.view.ClampNegativeTime()
	c.emit(Change{View: true})
}

// PointerUp finishes the active gesture.
func (c *Controller) PointerUp(sx, sy float64, btn Button, mods Modifiers) {
	switch c.mode {
	case ModeDrag:
		c.endDrag()
	case ModeRubberBand:
		c.bandEnd = geometry.Point2D{X: sx, Y: sy}
		c.endRubberBand(mods)
	case ModeBoxZoom:
		c.bandEnd = geometry.Point2D{X: sx, Y: sy}
		c.endBoxZoom()
	case ModePan:
		c.mode = ModeIdle
		c.emit(Change{View: true})
	}
}

// endDrag applies the settle pass: voltage snapped to DragPrecision,
// then overlaps resolved against the stationary points. Selection
// survives because identities do.
func (c *Controller) endDrag() {
	if c.dragMoved {
		prec := c.DragPrecision
		if prec <= 0 {
			prec = DefaultDragPrecision
		}
		for _, id := range c.dragged {
			if p, ok := c.wave.Point(id); ok {
				c.wave.Move(id, p.Time, math.Round(p.Voltage/prec)*prec)
			}
		}
		c.wave.ResolveOverlaps(c.dragged)
	}
	c.mode = ModeIdle
	c.dragged = nil
	c.dragOrig = nil
	c.emit(Change{Waveform: true, Selection: true})
}

func (c *Controller) endRubberBand(mods Modifiers) {
	rect := geometry.RectFromCorners(c.bandStart, c.bandEnd)
	t0, v0 := c.view.ToData(rect.X, rect.Y+rect.Height)
	t1, v1 := c.view.ToData(rect.X+rect.Width, rect.Y)

	sel := make(map[pwl.PointID]struct{})
	if mods.Ctrl {
		for id := range c.bandPrev {
			sel[id] = struct{}{}
		}
	}
	var last pwl.PointID
	for _, p := range c.wave.Points() {
		if p.Time >= t0 && p.Time <= t1 && p.Voltage >= v0 && p.Voltage <= v1 {
			sel[p.ID] = struct{}{}
			last = p.ID
		}
	}
	c.sel = sel
	if last != 0 {
		c.primary = last
	} else if !mods.Ctrl {
		c.primary = 0
	}
	c.bandPrev = nil
	c.mode = ModeIdle
	c.emit(Change{Selection: true, Overlay: true})
}

func (c *Controller) endBoxZoom() {
	c.mode = ModeIdle
	// Tiny boxes are accidental right-clicks, not zoom requests.
	if math.Abs(c.bandEnd.X-c.bandStart.X) > 5 && math.Abs(c.bandEnd.Y-c.bandStart.Y) > 5 {
		c.view.BoxZoom(c.bandStart.X, c.bandStart.Y, c.bandEnd.X, c.bandEnd.Y)
		c.emit(Change{View: true, Overlay: true})
		return
	}
	c.emit(Change{Overlay: true})
}

// OverlayRect returns the rubber-band or box-zoom rectangle in pixels
// while one is being drawn.
func (c *Controller) OverlayRect() (geometry.Rect, bool) {
	if c.mode != ModeRubberBand && c.mode != ModeBoxZoom {
		return geometry.Rect{}, false
	}
	return geometry.RectFromCorners(c.bandStart, c.bandEnd), true
}

// Scroll applies a wheel zoom anchored at the cursor. The plain wheel
// zooms voltage, Shift zooms time, Ctrl zooms both.
func (c *Controller) Scroll(sx, sy, dy float64, mods Modifiers) {
	scale := view.ZoomStep
	if dy > 0 {
		scale = 1 / view.ZoomStep
	}
	axis := view.AxisVoltage
	switch {
	case mods.Ctrl:
		axis = view.AxisBoth
	case mods.Shift:
		axis = view.AxisTime
	}
	c.view.ZoomAt(sx, sy, scale, axis)
	c.emit(Change{View: true})
}

// FitView zooms to show every point plus t=0. No-op on an empty
// waveform.
func (c *Controller) FitView() {
	pts := c.wave.Points()
	if len(pts) == 0 {
		return
	}
	times := make([]float64, len(pts))
	volts := make([]float64, len(pts))
	for i, p := range pts {
		times[i] = p.Time
		volts[i] = p.Voltage
	}
	c.view.FitToPoints(times, volts)
	c.emit(Change{View: true})
}

// InsertAtCursor adds a point at the tracked cursor position with
// snap applied (the M shortcut). Returns the waveform's *OverlapError
// when the spot is taken; the caller decides how to signal it.
func (c *Controller) InsertAtCursor() error {
	if !c.cursorValid {
		return nil
	}
	prec := c.DragPrecision
	if prec <= 0 {
		prec = DefaultDragPrecision
	}
	v := math.Round(c.cursorV/prec) * prec
	id, err := c.wave.Insert(c.cursorT, v)
	if err != nil {
		return err
	}
	c.sel = map[pwl.PointID]struct{}{id: {}}
	c.primary = id
	c.emit(Change{Waveform: true, Selection: true})
	return nil
}

// UpdatePoint sets a point's time and voltage from the entry fields,
// then settles it against its neighbors.
func (c *Controller) UpdatePoint(id pwl.PointID, t, v float64) error {
	if err := c.wave.Move(id, pwl.Quantize(math.Max(0, t)), v); err != nil {
		return err
	}
	c.wave.ResolveOverlaps([]pwl.PointID{id})
	c.emit(Change{Waveform: true})
	return nil
}

// DeleteSelection removes the selected points.
func (c *Controller) DeleteSelection() {
	ids := c.Selection()
	if len(ids) == 0 {
		return
	}
	c.wave.Delete(ids)
	c.sel = make(map[pwl.PointID]struct{})
	c.primary = 0
	c.emit(Change{Waveform: true, Selection: true})
}

// CopySelection captures the selected points, times shifted so the
// first sits at zero. Paste replays them as a placement ghost.
func (c *Controller) CopySelection() int {
	ids := c.Selection()
	if len(ids) == 0 {
		return 0
	}
	var pts []pwl.Point
	for _, id := range ids {
		if p, ok := c.wave.Point(id); ok {
			pts = append(pts, p)
		}
	}
	sort.SliceStable(pts, func(a, b int) bool { return pts[a].Time < pts[b].Time })
	base := pts[0].Time
	for i := range pts {
		pts[i].Time -= base
	}
	c.clip = pts
	return len(pts)
}

// HasClipboard reports whether CopySelection captured anything.
func (c *Controller) HasClipboard() bool { return len(c.clip) > 0 }

// Paste enters placement mode with the copied points.
func (c *Controller) Paste() {
	if len(c.clip) == 0 {
		return
	}
	c.StartPlacement(c.clip)
}

// StartPlacement enters placement mode: the points ride the cursor as
// a ghost until a primary click commits them or Escape cancels. Times
// are treated as offsets from the eventual anchor.
func (c *Controller) StartPlacement(pts []pwl.Point) {
	if len(pts) == 0 {
		return
	}
	data := make([]pwl.Point, len(pts))
	copy(data, pts)
	sort.SliceStable(data, func(a, b int) bool { return data[a].Time < data[b].Time })
	base := data[0].Time
	for i := range data {
		data[i].Time -= base
	}
	c.placeData = data
	c.mode = ModePlace
	c.emit(Change{Overlay: true})
}

// CancelPlacement leaves placement mode without committing.
func (c *Controller) CancelPlacement() {
	if c.mode != ModePlace {
		return
	}
	c.mode = ModeIdle
	c.placeData = nil
	c.emit(Change{Overlay: true})
}

// GhostPoints returns the placement preview anchored at the cursor.
func (c *Controller) GhostPoints() []pwl.Point {
	if c.mode != ModePlace || !c.cursorValid {
		return nil
	}
	anchor := math.Max(0, c.cursorT)
	out := make([]pwl.Point, len(c.placeData))
	for i, p := range c.placeData {
		out[i] = pwl.Point{Time: anchor + p.Time, Voltage: p.Voltage}
	}
	return out
}

func (c *Controller) commitPlacement() {
	anchor := pwl.Quantize(math.Max(0, c.cursorT))
	pts := make([]pwl.Point, len(c.placeData))
	for i, p := range c.placeData {
		pts[i] = pwl.Point{Time: anchor + p.Time, Voltage: p.Voltage}
	}
	ids := c.wave.AddAll(pts)

	c.sel = make(map[pwl.PointID]struct{}, len(ids))
	for _, id := range ids {
		c.sel[id] = struct{}{}
	}
	c.primary = 0
	if len(ids) > 0 {
		c.primary = ids[len(ids)-1]
	}
	c.mode = ModeIdle
	c.placeData = nil
	c.emit(Change{Waveform: true, Selection: true, Overlay: true})
}
