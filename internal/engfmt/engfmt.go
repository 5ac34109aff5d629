// Package engfmt formats and parses numbers in engineering notation
// (SI prefixes p, n, u, m, k, M, G), the notation SPICE decks use for
// PWL time and voltage values.
package engfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// prefixScale maps each supported suffix to its multiplier.
// Case matters: m is milli, M is mega.
var prefixScale = map[byte]float64{
	'p': 1e-12,
	'n': 1e-9,
	'u': 1e-6,
	'm': 1e-3,
	'k': 1e3,
	'M': 1e6,
	'G': 1e9,
}

// formatSteps is ordered largest-first so Format picks the biggest
// prefix whose scale the value reaches.
var formatSteps = []struct {
	scale  float64
	suffix string
}{
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
}

// Format renders a value with the largest fitting SI prefix,
// trimming trailing zeros: 0.0015 -> "1.5m", 2e-10 -> "200p".
func Format(v float64) string {
	if v == 0 {
		return "0"
	}

	abs := v
	if abs < 0 {
		abs = -abs
	}
	for _, step := range formatSteps {
		if abs >= step.scale {
			scaled := strconv.FormatFloat(v/step.scale, 'f', 6, 64)
			scaled = strings.TrimRight(scaled, "0")
			scaled = strings.TrimRight(scaled, ".")
			return scaled + step.suffix
		}
	}

	// Below 1p: fall back to scientific notation.
	return strconv.FormatFloat(v, 'e', 3, 64)
}

// Parse converts a plain or suffixed numeric string to a float64.
// Accepts everything strconv.ParseFloat does plus a trailing SI
// prefix ("1.5m", "200p", "1k").
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("engfmt: empty value")
	}

	last := s[len(s)-1]
	if scale, ok := prefixScale[last]; ok {
		num, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("engfmt: invalid number %q", s)
		}
		return num * scale, nil
	}

	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("engfmt: invalid number %q", s)
	}
	return num, nil
}
