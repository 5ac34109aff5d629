// Package export renders a waveform to a PNG image, independent of
// the interactive canvas so it can run headless.
package export

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"pwl-editor/internal/engfmt"
	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

// Options controls the rendered image.
type Options struct {
	Width  int // pixels, default 1200
	Height int // pixels, default 800
	Title  string
}

// Plot colors match the editor canvas so exports look like what the
// user sees.
var (
	colBackground = [3]float64{0x1e / 255.0, 0x1e / 255.0, 0x1e / 255.0}
	colGrid       = [3]float64{0x33 / 255.0, 0x33 / 255.0, 0x33 / 255.0}
	colAxis       = [3]float64{0x88 / 255.0, 0x88 / 255.0, 0x88 / 255.0}
	colText       = [3]float64{0xcc / 255.0, 0xcc / 255.0, 0xcc / 255.0}
	colLine       = [3]float64{0x4f / 255.0, 0xc1 / 255.0, 0xff / 255.0}
)

// WritePNG renders the waveform within the given data window and
// saves it to path. The view's pixel geometry is replaced by the
// export size; its data window is used as-is.
func WritePNG(path string, wave *pwl.Waveform, win *view.View, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}

	v := *win
	v.Width = opts.Width
	v.Height = opts.Height

	dc := gg.NewContext(opts.Width, opts.Height)

	fnt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("export: parse font: %w", err)
	}
	face := truetype.NewFace(fnt, &truetype.Options{
		Size:    13,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	dc.SetRGB(colBackground[0], colBackground[1], colBackground[2])
	dc.Clear()

	drawGrid(dc, &v)
	drawWaveform(dc, &v, wave)
	drawFrame(dc, &v)

	if opts.Title != "" {
		dc.SetRGB(colText[0], colText[1], colText[2])
		dc.DrawStringAnchored(opts.Title, float64(opts.Width)/2, float64(v.MarginTop)/2, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}

func drawGrid(dc *gg.Context, v *view.View) {
	left := float64(v.MarginLeft)
	right := float64(v.Width - v.MarginRight)
	top := float64(v.MarginTop)
	bottom := float64(v.Height - v.MarginBottom)

	dc.SetLineWidth(1)

	for _, t := range view.Ticks(v.TMin, v.TMax, 10) {
		x, _ := v.ToScreen(t, 0)
		if x < left || x > right {
			continue
		}
		dc.SetRGB(colGrid[0], colGrid[1], colGrid[2])
		dc.DrawLine(x, top, x, bottom)
		dc.Stroke()

		dc.SetRGB(colText[0], colText[1], colText[2])
		dc.DrawStringAnchored(engfmt.Format(t), x, bottom+12, 0.5, 0.5)
	}

	for _, volt := range view.Ticks(v.VMin, v.VMax, 8) {
		_, y := v.ToScreen(0, volt)
		if y < top || y > bottom {
			continue
		}
		dc.SetRGB(colGrid[0], colGrid[1], colGrid[2])
		dc.DrawLine(left, y, right, y)
		dc.Stroke()

		dc.SetRGB(colText[0], colText[1], colText[2])
		dc.DrawStringAnchored(engfmt.Format(volt), left-6, y, 1, 0.5)
	}
}

// drawWaveform strokes each segment separately, including the leading
// hold segment from t=0 at the first point's voltage.
func drawWaveform(dc *gg.Context, v *view.View, wave *pwl.Waveform) {
	pts := wave.Points()
	if len(pts) == 0 {
		return
	}

	dc.SetRGB(colLine[0], colLine[1], colLine[2])
	dc.SetLineWidth(2)

	if pts[0].Time > 0 {
		x0, y0 := v.ToScreen(0, pts[0].Voltage)
		x1, y1 := v.ToScreen(pts[0].Time, pts[0].Voltage)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.ToScreen(pts[i-1].Time, pts[i-1].Voltage)
		x1, y1 := v.ToScreen(pts[i].Time, pts[i].Voltage)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}

	for _, p := range pts {
		x, y := v.ToScreen(p.Time, p.Voltage)
		dc.DrawCircle(x, y, 3)
		dc.Fill()
	}
}

func drawFrame(dc *gg.Context, v *view.View) {
	left := float64(v.MarginLeft)
	top := float64(v.MarginTop)
	w := float64(v.Width - v.MarginLeft - v.MarginRight)
	h := float64(v.Height - v.MarginTop - v.MarginBottom)

	dc.SetRGB(colAxis[0], colAxis[1], colAxis[2])
	dc.SetLineWidth(1)
	dc.DrawRectangle(left, top, w, h)
	dc.Stroke()
}
