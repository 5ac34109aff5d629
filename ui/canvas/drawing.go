// Package canvas provides drawing primitives for the waveform canvas.
package canvas

import (
	"image"
	"image/color"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// glyphPatterns contains 3x5 pixel patterns for the characters the
// axis labels can produce: SI prefixes, signs, the decimal point and
// scientific notation. Case matters here (m is milli, M is mega), so
// unlike digits these are looked up without case folding.
var glyphPatterns = map[rune][5]uint8{
	'p': {0b000, 0b110, 0b101, 0b110, 0b100},
	'n': {0b000, 0b110, 0b101, 0b101, 0b101},
	'u': {0b000, 0b101, 0b101, 0b101, 0b011},
	'm': {0b000, 0b111, 0b111, 0b101, 0b101},
	'k': {0b100, 0b101, 0b110, 0b110, 0b101},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	's': {0b011, 0b100, 0b010, 0b001, 0b110},
	'e': {0b010, 0b101, 0b111, 0b100, 0b011},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// charPattern returns the 3x5 pixel pattern for a character, or an
// empty pattern for unsupported characters.
func charPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if pattern, ok := glyphPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// textWidth returns the pixel width of a string at the given scale
// (3 pixels per character plus 1 pixel spacing).
func textWidth(s string, scale int) int {
	n := len([]rune(s))
	if n == 0 {
		return 0
	}
	return n*3*scale + (n-1)*scale
}

// drawText draws a string with its top-left corner at (x, y).
func drawText(output *image.RGBA, s string, x, y, scale int, col color.RGBA) {
	if scale < 1 {
		scale = 1
	}
	bounds := output.Bounds()

	charX := x
	for _, ch := range s {
		pattern := charPattern(ch)
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := y + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.Set(px, py, col)
						}
					}
				}
			}
		}
		charX += 4 * scale
	}
}

// drawTextCentered draws a string centered on (cx, cy).
func drawTextCentered(output *image.RGBA, s string, cx, cy, scale int, col color.RGBA) {
	drawText(output, s, cx-textWidth(s, scale)/2, cy-5*scale/2, scale, col)
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawVLineDashed draws a vertical dashed line (4-pixel period).
func drawVLineDashed(output *image.RGBA, x, y1, y2 int, col color.RGBA) {
	bounds := output.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y%4 < 2 && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x, y, col)
		}
	}
}

// drawHLineDashed draws a horizontal dashed line (4-pixel period).
func drawHLineDashed(output *image.RGBA, x1, x2, y int, col color.RGBA) {
	bounds := output.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X {
			output.Set(x, y, col)
		}
	}
}

// drawCircle draws a filled or outlined circle of the given radius.
func drawCircle(output *image.RGBA, cx, cy int, r float64, col color.RGBA, filled bool) {
	bounds := output.Bounds()

	minX := cx - int(r) - 1
	maxX := cx + int(r) + 1
	minY := cy - int(r) - 1
	maxY := cy + int(r) + 1

	r2 := r * r
	innerR2 := (r - 1.5) * (r - 1.5)

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x - cx)
			dy := float64(y - cy)
			dist2 := dx*dx + dy*dy

			if filled {
				if dist2 <= r2 {
					output.Set(x, y, col)
				}
			} else if dist2 <= r2 && dist2 >= innerR2 {
				output.Set(x, y, col)
			}
		}
	}
}

// drawDashedRect draws a dashed rectangle outline (alternate pixels).
func drawDashedRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	bounds := output.Bounds()

	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			output.Set(x, y1, col)
		}
		if (x+y2)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X && y2 >= bounds.Min.Y && y2 < bounds.Max.Y {
			output.Set(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 && x1 >= bounds.Min.X && x1 < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x1, y, col)
		}
		if (x2+y)%4 < 2 && x2 >= bounds.Min.X && x2 < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			output.Set(x2, y, col)
		}
	}
}

// fillRect fills an axis-aligned rectangle, clipped to the image.
func fillRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := output.Bounds()
	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			output.Set(x, y, col)
		}
	}
}
