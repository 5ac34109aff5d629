package canvas

import (
	"image"

	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

// RenderPreview draws a standalone polyline of the given points into
// a w x h image, auto-fitted with a 10% padding. Used by the waveform
// generator dialog for its live preview.
func RenderPreview(w, h int, pts []pwl.Point) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w, h, colBackground)
	if len(pts) < 2 {
		return img
	}

	v := view.View{
		Width: w, Height: h,
		MarginLeft: 8, MarginRight: 8, MarginTop: 8, MarginBottom: 8,
	}
	times := make([]float64, len(pts))
	volts := make([]float64, len(pts))
	for i, p := range pts {
		times[i] = p.Time
		volts[i] = p.Voltage
	}
	v.FitToPoints(times, volts)

	for i := 1; i < len(pts); i++ {
		x0, y0 := v.ToScreen(pts[i-1].Time, pts[i-1].Voltage)
		x1, y1 := v.ToScreen(pts[i].Time, pts[i].Voltage)
		drawLine(img, int(x0), int(y0), int(x1), int(y1), colLine, 1)
	}
	return img
}
