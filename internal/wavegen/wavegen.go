// Package wavegen builds standard waveform shapes (sine, square,
// triangle) as PWL breakpoint sequences for the generator dialog and
// placement mode.
package wavegen

import (
	"math"
	"sort"

	"pwl-editor/internal/pwl"
)

// Kind selects the waveform shape.
type Kind int

const (
	Sine Kind = iota
	Square
	Triangle
)

func (k Kind) String() string {
	switch k {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	}
	return "unknown"
}

// Params describes a waveform. Period wins over Freq when both are
// set. Zero or negative optional fields fall back to the defaults
// noted per field.
type Params struct {
	Freq   float64 // Hz, used when Period <= 0
	Period float64 // s
	Amp    float64 // V, peak around Offset
	Offset float64 // V
	Dur    float64 // s, total length; defaults to one period

	// Square wave only. THigh wins over Duty when > 0.
	Duty  float64 // 0..1, high fraction of the period; default 0.5
	THigh float64 // s
	TRise float64 // s, rise transition; default Period/100
	TFall float64 // s, fall transition; default Period/100

	// Triangle only. TPeak wins over RiseRatio when > 0.
	RiseRatio float64 // 0..1, peak position in the period; default 0.5
	TPeak     float64 // s

	// Sine only. Samples per period, minimum 4, default 50.
	PointsPerCycle int
}

// Generate produces the breakpoint sequence for p, sorted by time and
// shifted so the first point sits at t=0. Voltages swing
// Offset-Amp .. Offset+Amp. Spacing normalization is left to the
// waveform the points are added to.
func Generate(kind Kind, p Params) []pwl.Point {
	period := p.Period
	if period <= 0 {
		freq := p.Freq
		if freq <= 0 {
			freq = 1e-9
		}
		period = 1.0 / freq
	}
	amp := p.Amp
	if amp == 0 {
		amp = 1.0
	}
	dur := p.Dur
	if dur <= 0 {
		dur = period
	}

	var pts []pwl.Point
	add := func(t, v float64) {
		pts = append(pts, pwl.Point{Time: t, Voltage: v})
	}

	switch kind {
	case Sine:
		ppc := p.PointsPerCycle
		if ppc < 4 {
			ppc = 50
		}
		dt := period / float64(ppc)
		for t := 0.0; t <= dur+1e-15; t += dt {
			add(t, amp*math.Sin(2*math.Pi*t/period)+p.Offset)
		}

	case Square:
		tr, tf := p.TRise, p.TFall
		if tr <= 0 {
			tr = period / 100
		}
		if tf <= 0 {
			tf = period / 100
		}
		if tr+tf >= period {
			tr = period / 20
			tf = period / 20
		}
		tHigh := p.THigh
		if tHigh > 0 {
			tHigh = math.Min(tHigh, math.Max(1e-15, period-(tr+tf)))
		} else {
			duty := p.Duty
			if duty == 0 {
				duty = 0.5
			}
			duty = math.Max(0, math.Min(1, duty))
			tHigh = period * duty
		}
		for t := 0.0; t < dur-1e-15; t += period {
			add(t, p.Offset-amp)
			add(math.Min(t+tr, dur), p.Offset+amp)
			if t+tHigh < dur {
				add(t+tHigh, p.Offset+amp)
				add(math.Min(t+tHigh+tf, dur), p.Offset-amp)
			}
			if next := t + period; next < dur {
				add(next, p.Offset-amp)
			}
		}

	case Triangle:
		tPeak := p.TPeak
		if tPeak > 0 {
			tPeak = math.Min(period, tPeak)
		} else {
			ratio := p.RiseRatio
			if ratio == 0 {
				ratio = 0.5
			}
			ratio = math.Max(0, math.Min(1, ratio))
			tPeak = period * ratio
		}
		for t := 0.0; t < dur-1e-15; t += period {
			add(t, p.Offset-amp)
			if peak := t + tPeak; peak <= dur {
				add(peak, p.Offset+amp)
			}
			if end := t + period; end <= dur {
				add(end, p.Offset-amp)
			}
		}
	}

	sort.SliceStable(pts, func(a, b int) bool { return pts[a].Time < pts[b].Time })
	if len(pts) > 0 && pts[0].Time != 0 {
		t0 := pts[0].Time
		for i := range pts {
			pts[i].Time -= t0
		}
	}
	return pts
}

// Example returns the demo staircase waveform used by the
// "example waveform" menu entry.
func Example() []pwl.Point {
	return []pwl.Point{
		{Time: 0, Voltage: 0},
		{Time: 1, Voltage: 1},
		{Time: 2, Voltage: 0.5},
		{Time: 3, Voltage: 2},
		{Time: 4, Voltage: 0},
	}
}
