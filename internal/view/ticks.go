package view

import "math"

// Ticks returns round-number tick positions covering [min, max],
// aiming for roughly target intervals. Steps come from the 1-2-5
// ladder scaled to the span's decade; the step whose interval count
// lands closest to target wins. Used by both the interactive canvas
// and the PNG exporter so the two always agree on grid lines.
func Ticks(min, max float64, target int) []float64 {
	span := max - min
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil
	}
	if target < 1 {
		target = 1
	}

	base := math.Pow(10, math.Floor(math.Log10(span)))
	step := base
	best := math.Inf(1)
	for _, f := range []float64{0.1, 0.2, 0.5, 1, 2, 5, 10} {
		trial := base * f
		diff := math.Abs(span/trial - float64(target))
		if diff < best {
			best = diff
			step = trial
		}
	}

	var ticks []float64
	// Half-step tolerance at both ends absorbs float noise in the
	// ceil, so a tick meant to sit exactly on min/max is kept.
	t := math.Ceil(min/step-0.5) * step
	for t <= max+step*0.5 {
		if t >= min-step*1e-9 {
			// Snap near-zero ticks to exactly zero so labels read "0".
			if math.Abs(t) < step*1e-6 {
				t = 0
			}
			ticks = append(ticks, t)
		}
		t += step
	}
	return ticks
}
