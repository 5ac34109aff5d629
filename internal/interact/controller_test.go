package interact

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

// testRig builds a controller over an 800x500 canvas with the default
// 0..1ms / ±1.5V window, matching the editor's startup state.
func testRig() (*pwl.Waveform, *view.View, *Controller) {
	w := pwl.New()
	v := view.Default()
	v.Width = 800
	v.Height = 500
	c := New(w, v)
	return w, v, c
}

func pixelAt(v *view.View, t, volt float64) (float64, float64) {
	return v.ToScreen(t, volt)
}

func TestInsertAtCursor_KeepsDefaultView(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	// The first point must not trigger an automatic fit; the startup
	// window already counts as user-chosen.
	x, y := pixelAt(v, 5e-4, 1.0)
	c.PointerMove(x, y)
	assert.NoError(c.InsertAtCursor())

	assert.Equal(1, w.Len())
	assert.Equal(0.0, v.TMin)
	assert.Equal(1e-3, v.TMax)
	assert.Equal(-1.5, v.VMin)
	assert.Equal(1.5, v.VMax)
}

func TestInsertAtCursor_SnapsAndSelects(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	x, y := pixelAt(v, 5e-4, 0.7)
	c.PointerMove(x, y)
	assert.NoError(c.InsertAtCursor())

	pts := w.Points()
	assert.Len(pts, 1)
	// Voltage lands on the drag-precision grid, time on the quantum grid.
	assert.InDelta(0, math.Remainder(pts[0].Voltage, DefaultDragPrecision), 1e-9)
	assert.InDelta(0, math.Remainder(pts[0].Time, pwl.Quantum), 1e-15)
	assert.True(c.Selected(pts[0].ID))
}

func TestInsertAtCursor_ReportsOverlap(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	_, err := w.Insert(5e-4, 0)
	assert.NoError(err)

	x, y := pixelAt(v, 5e-4, 0)
	c.PointerMove(x, y)
	err = c.InsertAtCursor()

	var overlap *pwl.OverlapError
	assert.ErrorAs(err, &overlap)
	assert.Equal(1, w.Len())
}

func TestClickSelectsAndDragMovesPoint(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	id, _ := w.Insert(2e-4, 0)
	_, _ = w.Insert(3e-4, 1)

	x, y := pixelAt(v, 2e-4, 0)
	c.PointerDown(x, y, ButtonPrimary, Modifiers{})
	assert.Equal(ModeDrag, c.Mode())
	assert.True(c.Selected(id))

	nx, ny := pixelAt(v, 4e-4, 0.5)
	c.PointerMove(nx, ny)
	c.PointerUp(nx, ny, ButtonPrimary, Modifiers{})

	assert.Equal(ModeIdle, c.Mode())
	p, ok := w.Point(id)
	assert.True(ok)
	assert.InDelta(4e-4, p.Time, 1e-6*4e-4)
	assert.InDelta(0.5, p.Voltage, 0.02)
	// Settled voltage sits on the precision grid.
	assert.InDelta(0, math.Remainder(p.Voltage, DefaultDragPrecision), 1e-9)
	// Selection survives the drag.
	assert.True(c.Selected(id))
}

func TestDragThroughNeighborSettlesOrdered(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	_, _ = w.Insert(1e-4, 0)
	b, _ := w.Insert(2e-4, 0)
	_, _ = w.Insert(3e-4, 0)

	x, y := pixelAt(v, 2e-4, 0)
	c.PointerDown(x, y, ButtonPrimary, Modifiers{})
	nx, ny := pixelAt(v, 5e-4, 0)
	c.PointerMove(nx, ny)
	c.PointerUp(nx, ny, ButtonPrimary, Modifiers{})

	pts := w.Points()
	for i := 1; i < len(pts); i++ {
		assert.True(pts[i].Time > pts[i-1].Time, "points must settle in order")
	}
	p, _ := w.Point(b)
	assert.InDelta(5e-4, p.Time, 1e-6*5e-4)
}

func TestMultiDragPreservesShape(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	a, _ := w.Insert(2e-4, 0)
	b, _ := w.Insert(4e-4, 1)
	c.SetSelection([]pwl.PointID{a, b})

	// Grab one selected point; the whole selection rides along.
	x, y := pixelAt(v, 2e-4, 0)
	c.PointerDown(x, y, ButtonPrimary, Modifiers{})
	nx, ny := pixelAt(v, 3e-4, 0)
	c.PointerMove(nx, ny)
	c.PointerUp(nx, ny, ButtonPrimary, Modifiers{})

	ap, _ := w.Point(a)
	bp, _ := w.Point(b)
	assert.InDelta(2e-4, bp.Time-ap.Time, 1e-9)
	assert.InDelta(1.0, bp.Voltage-ap.Voltage, 1e-9)
	assert.True(c.Selected(a))
	assert.True(c.Selected(b))
}

func TestDragAbortsWhenPointDeleted(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	id, _ := w.Insert(2e-4, 0)

	x, y := pixelAt(v, 2e-4, 0)
	c.PointerDown(x, y, ButtonPrimary, Modifiers{})
	w.Delete([]pwl.PointID{id})

	// Moves after the point vanished must not panic or resurrect it.
	c.PointerMove(x+20, y)
	assert.Equal(ModeIdle, c.Mode())
	assert.Equal(0, w.Len())
}

func TestRubberBandReplacesSelection(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	a, _ := w.Insert(2e-4, 0.5)
	b, _ := w.Insert(4e-4, -0.5)
	outside, _ := w.Insert(9e-4, 1.4)
	c.SetSelection([]pwl.PointID{outside})

	x0, y0 := pixelAt(v, 1e-4, 1.0)
	x1, y1 := pixelAt(v, 5e-4, -1.0)
	c.PointerDown(x0, y0, ButtonPrimary, Modifiers{})
	assert.Equal(ModeRubberBand, c.Mode())
	c.PointerMove(x1, y1)
	c.PointerUp(x1, y1, ButtonPrimary, Modifiers{})

	assert.True(c.Selected(a))
	assert.True(c.Selected(b))
	assert.False(c.Selected(outside))
}

func TestRubberBandAdditiveWithCtrl(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	a, _ := w.Insert(2e-4, 0.5)
	prev, _ := w.Insert(9e-4, 1.4)
	c.SetSelection([]pwl.PointID{prev})

	x0, y0 := pixelAt(v, 1e-4, 1.0)
	x1, y1 := pixelAt(v, 3e-4, -1.0)
	c.PointerDown(x0, y0, ButtonPrimary, Modifiers{Ctrl: true})
	c.PointerMove(x1, y1)
	c.PointerUp(x1, y1, ButtonPrimary, Modifiers{Ctrl: true})

	assert.True(c.Selected(a))
	assert.True(c.Selected(prev))
}

func TestScrollZoomAxes(t *testing.T) {
	assert := assert.New(t)
	_, v, c := testRig()

	// Plain wheel: voltage only.
	c.Scroll(400, 250, 1, Modifiers{})
	assert.Equal(0.0, v.TMin)
	assert.Equal(1e-3, v.TMax)
	assert.Less(v.VMax-v.VMin, 3.0)

	// Shift: time only.
	vSpan := v.VMax - v.VMin
	c.Scroll(400, 250, 1, Modifiers{Shift: true})
	assert.Less(v.TMax-v.TMin, 1e-3)
	assert.Equal(vSpan, v.VMax-v.VMin)

	// Ctrl: both.
	tSpan := v.TMax - v.TMin
	c.Scroll(400, 250, 1, Modifiers{Ctrl: true})
	assert.Less(v.TMax-v.TMin, tSpan)
	assert.Less(v.VMax-v.VMin, vSpan)
}

func TestScrollZoomAnchored(t *testing.T) {
	assert := assert.New(t)
	_, v, c := testRig()

	const px, py = 300.0, 150.0
	at, av := v.ToData(px, py)
	c.Scroll(px, py, 1, Modifiers{Ctrl: true})

	x, y := v.ToScreen(at, av)
	assert.InDelta(px, x, 1e-6)
	assert.InDelta(py, y, 1e-6)
}

func TestBoxZoomGesture(t *testing.T) {
	assert := assert.New(t)
	_, v, c := testRig()

	t0, _ := v.ToData(200, 300)
	t1, _ := v.ToData(500, 100)

	c.PointerDown(200, 300, ButtonSecondary, Modifiers{})
	assert.Equal(ModeBoxZoom, c.Mode())
	c.PointerMove(500, 100)
	c.PointerUp(500, 100, ButtonSecondary, Modifiers{})

	assert.Equal(ModeIdle, c.Mode())
	assert.InDelta(t0, v.TMin, 1e-12)
	assert.InDelta(t1, v.TMax, 1e-12)
}

func TestBoxZoomIgnoresTinyBox(t *testing.T) {
	assert := assert.New(t)
	_, v, c := testRig()

	c.PointerDown(300, 200, ButtonSecondary, Modifiers{})
	c.PointerMove(303, 202)
	c.PointerUp(303, 202, ButtonSecondary, Modifiers{})

	assert.Equal(0.0, v.TMin)
	assert.Equal(1e-3, v.TMax)
}

func TestPanGesture(t *testing.T) {
	assert := assert.New(t)
	_, v, c := testRig()

	c.PointerDown(400, 250, ButtonMiddle, Modifiers{})
	assert.Equal(ModePan, c.Mode())
	c.PointerMove(328, 250) // 72px left = 10% of the plot width
	c.PointerUp(328, 250, ButtonMiddle, Modifiers{})

	assert.Equal(ModeIdle, c.Mode())
	assert.InDelta(1e-4, v.TMin, 1e-12)
	assert.InDelta(1.1e-3, v.TMax, 1e-12)
}

func TestDeleteSelection(t *testing.T) {
	assert := assert.New(t)
	w, _, c := testRig()

	a, _ := w.Insert(1e-4, 0)
	b, _ := w.Insert(2e-4, 1)
	c.SetSelection([]pwl.PointID{a})
	c.DeleteSelection()

	assert.Equal(1, w.Len())
	_, ok := w.Point(b)
	assert.True(ok)
	assert.Empty(c.Selection())
}

func TestCopyPastePlacement(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	a, _ := w.Insert(1e-4, 0)
	b, _ := w.Insert(2e-4, 1)
	c.SetSelection([]pwl.PointID{a, b})

	assert.Equal(2, c.CopySelection())
	assert.True(c.HasClipboard())

	c.Paste()
	assert.True(c.Placing())

	// Ghost rides the cursor, anchored at the cursor time.
	gx, gy := pixelAt(v, 5e-4, 0)
	c.PointerMove(gx, gy)
	ghost := c.GhostPoints()
	assert.Len(ghost, 2)
	assert.InDelta(5e-4, ghost[0].Time, 1e-6*5e-4)
	assert.InDelta(1e-4, ghost[1].Time-ghost[0].Time, 1e-9)

	// Primary click commits.
	c.PointerDown(gx, gy, ButtonPrimary, Modifiers{})
	assert.False(c.Placing())
	assert.Equal(4, w.Len())

	// The new points are selected; originals are not.
	assert.Len(c.Selection(), 2)
	assert.False(c.Selected(a))
	assert.False(c.Selected(b))
}

func TestCancelPlacement(t *testing.T) {
	assert := assert.New(t)
	w, _, c := testRig()

	c.StartPlacement([]pwl.Point{{Time: 0, Voltage: 1}})
	assert.True(c.Placing())
	c.CancelPlacement()
	assert.False(c.Placing())
	assert.Equal(0, w.Len())
	assert.Nil(c.GhostPoints())
}

func TestSelectAll(t *testing.T) {
	assert := assert.New(t)
	w, _, c := testRig()

	_, _ = w.Insert(1e-4, 0)
	_, _ = w.Insert(2e-4, 1)
	c.SelectAll()
	assert.Len(c.Selection(), 2)

	c.ClearSelection()
	assert.Empty(c.Selection())
}

func TestFitView(t *testing.T) {
	assert := assert.New(t)
	w, v, c := testRig()

	_, _ = w.Insert(2e-3, -2)
	_, _ = w.Insert(6e-3, 2)
	c.FitView()

	assert.True(v.TMax > 6e-3)
	assert.True(v.VMin < -2)
	assert.True(v.VMax > 2)
}

func TestUpdatePoint(t *testing.T) {
	assert := assert.New(t)
	w, _, c := testRig()

	a, _ := w.Insert(1e-4, 0)
	b, _ := w.Insert(2e-4, 1)

	// Pushing a onto b's time settles it one quantum short.
	assert.NoError(c.UpdatePoint(a, 2e-4, 0.5))
	ap, _ := w.Point(a)
	bp, _ := w.Point(b)
	assert.Equal(0.5, ap.Voltage)
	assert.True(ap.Time < bp.Time)

	assert.ErrorIs(c.UpdatePoint(999, 0, 0), pwl.ErrUnknownPoint)
}

func TestChangeNotifications(t *testing.T) {
	assert := assert.New(t)
	_, v, c := testRig()

	var last Change
	c.OnChange(func(ch Change) { last = ch })

	x, y := pixelAt(v, 5e-4, 0)
	c.PointerMove(x, y)
	assert.NoError(c.InsertAtCursor())
	assert.True(last.Waveform)
	assert.True(last.Selection)

	c.Scroll(x, y, 1, Modifiers{})
	assert.True(last.View)
}
