package engfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{1.5, "1.5"},
		{-2.5, "-2.5"},
		{0.0015, "1.5m"},
		{2e-10, "200p"},
		{1e-6, "1u"},
		{-3.3e-6, "-3.3u"},
		{2.5e-9, "2.5n"},
		{1500, "1.5k"},
		{2e6, "2M"},
		{1e9, "1G"},
		{0.1, "100m"},
	}
	for _, c := range cases {
		assert.Equal(c.want, Format(c.in), "Format(%g)", c.in)
	}
}

func TestFormat_BelowPico(t *testing.T) {
	// Sub-picosecond values have no prefix; scientific notation keeps
	// them readable.
	assert.Equal(t, "5.000e-13", Format(5e-13))
}

func TestParse(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		in   string
		want float64
	}{
		{"2.5", 2.5},
		{"1.5m", 1.5e-3},
		{"200p", 2e-10},
		{"1u", 1e-6},
		{"-3.3u", -3.3e-6},
		{"1k", 1e3},
		{"2M", 2e6},
		{"1G", 1e9},
		{"1e-3", 1e-3},
		{" 10n ", 1e-8},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		assert.NoError(err, "Parse(%q)", c.in)
		assert.InEpsilon(c.want, got, 1e-12, "Parse(%q)", c.in)
	}
}

func TestParse_Zero(t *testing.T) {
	assert := assert.New(t)

	for _, in := range []string{"0", "0m", "0.0"} {
		got, err := Parse(in)
		assert.NoError(err, "Parse(%q)", in)
		assert.Equal(0.0, got, "Parse(%q)", in)
	}
}

func TestParse_Errors(t *testing.T) {
	assert := assert.New(t)

	for _, in := range []string{"", "   ", "abc", "m", "1.5x", "--1"} {
		_, err := Parse(in)
		assert.Error(err, "Parse(%q)", in)
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	for _, v := range []float64{1e-12, 2.5e-9, 1e-6, 0.0033, 0.5, 12, 4.7e3, 1e6} {
		got, err := Parse(Format(v))
		assert.NoError(err)
		assert.InEpsilon(v, got, 1e-6)
	}
}
