// Package view manages the visible data window of the waveform plot
// and the mapping between data space (time, voltage) and canvas
// pixels. Time spans down at the picosecond scale must survive the
// round trip, so every division goes through a clamped span.
package view

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// MinSpan is the smallest representable axis span. Zooms that
	// would collapse an axis below it are rejected in place rather
	// than propagated as errors; the view is always usable.
	MinSpan = 1e-15

	// NegativeTimeFraction caps how much of the visible time span may
	// lie left of t=0.
	NegativeTimeFraction = 0.05

	// ZoomStep is the per-notch wheel zoom factor.
	ZoomStep = 1.1

	// tMaxFloor keeps the right edge of the time axis above zero so
	// the negative-time clamp stays meaningful.
	tMaxFloor = 1e-15
)

// Axis selects which axis a zoom gesture applies to.
type Axis int

const (
	AxisVoltage Axis = iota
	AxisTime
	AxisBoth
)

// View is the visible data-space window plus the pixel geometry of
// the canvas it is projected onto. The margins hold axis labels.
type View struct {
	TMin, TMax float64
	VMin, VMax float64

	Width, Height int

	MarginLeft   int
	MarginRight  int
	MarginTop    int
	MarginBottom int
}

// Default returns the startup view: 0..1ms, -1.5..1.5V. The view
// counts as already initialized, so the first point added never
// triggers an automatic fit.
func Default() *View {
	return &View{
		TMin: 0, TMax: 1e-3,
		VMin: -1.5, VMax: 1.5,
		Width: 800, Height: 500,
		MarginLeft: 60, MarginRight: 20, MarginTop: 20, MarginBottom: 30,
	}
}

// PlotWidth returns the pixel width of the plot area inside the margins.
func (v *View) PlotWidth() float64 {
	w := float64(v.Width - v.MarginLeft - v.MarginRight)
	if w < 1 {
		w = 1
	}
	return w
}

// PlotHeight returns the pixel height of the plot area inside the margins.
func (v *View) PlotHeight() float64 {
	h := float64(v.Height - v.MarginTop - v.MarginBottom)
	if h < 1 {
		h = 1
	}
	return h
}

// spans returns the axis spans clamped to MinSpan.
func (v *View) spans() (ts, vs float64) {
	ts = v.TMax - v.TMin
	if ts < MinSpan {
		ts = MinSpan
	}
	vs = v.VMax - v.VMin
	if vs < MinSpan {
		vs = MinSpan
	}
	return ts, vs
}

// ToScreen maps a data point to canvas pixels. Pure in the view and
// canvas size; y grows downward.
func (v *View) ToScreen(t, volt float64) (x, y float64) {
	ts, vs := v.spans()
	x = float64(v.MarginLeft) + (t-v.TMin)/ts*v.PlotWidth()
	y = float64(v.MarginTop) + v.PlotHeight() - (volt-v.VMin)/vs*v.PlotHeight()
	return x, y
}

// ToData maps canvas pixels back to data space.
func (v *View) ToData(x, y float64) (t, volt float64) {
	ts, vs := v.spans()
	t = v.TMin + (x-float64(v.MarginLeft))/v.PlotWidth()*ts
	volt = v.VMin + (float64(v.MarginTop)+v.PlotHeight()-y)/v.PlotHeight()*vs
	return t, volt
}

// ZoomAt rescales the selected axes about the data point under the
// given pixel, so that point stays fixed on screen. scale < 1 zooms
// in. A zoom that would collapse an axis below MinSpan leaves that
// axis untouched.
func (v *View) ZoomAt(x, y, scale float64, axis Axis) {
	t, volt := v.ToData(x, y)

	if axis == AxisTime || axis == AxisBoth {
		tMin := t - (t-v.TMin)*scale
		tMax := t + (v.TMax-t)*scale
		if tMax-tMin >= MinSpan {
			v.TMin, v.TMax = tMin, tMax
		}
	}
	if axis == AxisVoltage || axis == AxisBoth {
		vMin := volt - (volt-v.VMin)*scale
		vMax := volt + (v.VMax-volt)*scale
		if vMax-vMin >= MinSpan {
			v.VMin, v.VMax = vMin, vMax
		}
	}
	v.ClampNegativeTime()
}

// Pan translates both axes by the data-space equivalent of a pixel
// delta. Dragging right (positive dx) moves the window left.
func (v *View) Pan(dxPix, dyPix float64) {
	ts, vs := v.spans()
	shiftT := -dxPix * ts / v.PlotWidth()
	shiftV := dyPix * vs / v.PlotHeight()
	v.TMin += shiftT
	v.TMax += shiftT
	v.VMin += shiftV
	v.VMax += shiftV
	v.ClampNegativeTime()
}

// ClampNegativeTime enforces the negative-time policy: at most
// NegativeTimeFraction of the visible span may lie left of zero.
// Called after every view mutation.
func (v *View) ClampNegativeTime() {
	span := v.TMax - v.TMin
	if span <= 0 {
		span = MinSpan
		v.TMax = v.TMin + span
	}
	if v.TMax <= tMaxFloor {
		v.TMax = tMaxFloor
		v.TMin = v.TMax - span
	}
	if v.TMin < 0 && v.TMax > 0 {
		// TMin = -(f/(1-f))*TMax is exactly TMin = -f*span.
		limit := -(NegativeTimeFraction / (1 - NegativeTimeFraction)) * v.TMax
		if v.TMin < limit {
			v.TMin = limit
		}
	}
}

// BoxZoom sets the window to the data rectangle spanned by two pixel
// corners (right-drag box zoom).
func (v *View) BoxZoom(x0, y0, x1, y1 float64) {
	t0, v0 := v.ToData(x0, y0)
	t1, v1 := v.ToData(x1, y1)
	tMin, tMax := math.Min(t0, t1), math.Max(t0, t1)
	vMin, vMax := math.Min(v0, v1), math.Max(v0, v1)
	if tMax-tMin < MinSpan || vMax-vMin < MinSpan {
		return
	}
	v.TMin, v.TMax = tMin, tMax
	v.VMin, v.VMax = vMin, vMax
	v.ClampNegativeTime()
}

// FitToPoints zooms so all points (and t=0) are visible with a small
// padding. Does nothing for an empty slice.
func (v *View) FitToPoints(times, volts []float64) {
	if len(times) == 0 || len(volts) == 0 {
		return
	}

	tMin := math.Min(0, floats.Min(times))
	tMax := math.Max(0, floats.Max(times))
	vMin := floats.Min(volts)
	vMax := floats.Max(volts)

	tRange := tMax - tMin
	if tRange <= 0 {
		tRange = math.Max(math.Abs(tMax), 1)
	}
	vRange := vMax - vMin
	if vRange <= 0 {
		vRange = math.Max(math.Abs(vMax), 1)
	}

	v.TMin = tMin - tRange*0.05
	v.TMax = tMax + tRange*0.05
	v.VMin = vMin - vRange*0.1
	v.VMax = vMax + vRange*0.1
	v.ClampNegativeTime()
}

// SetVoltageRange sets the voltage axis explicitly (Y-range entry
// boxes). Ranges below MinSpan are ignored.
func (v *View) SetVoltageRange(vMin, vMax float64) bool {
	if vMax-vMin < MinSpan {
		return false
	}
	v.VMin, v.VMax = vMin, vMax
	return true
}
