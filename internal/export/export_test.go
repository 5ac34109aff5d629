package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

func TestWritePNG(t *testing.T) {
	assert := assert.New(t)

	w := pwl.New()
	_, _ = w.Insert(1e-3, 0)
	_, _ = w.Insert(2e-3, 1.5)
	_, _ = w.Insert(3e-3, -0.5)

	v := view.Default()
	v.FitToPoints([]float64{1e-3, 2e-3, 3e-3}, []float64{0, 1.5, -0.5})

	path := filepath.Join(t.TempDir(), "wave.png")
	assert.NoError(WritePNG(path, w, v, Options{Width: 640, Height: 480, Title: "wave"}))

	f, err := os.Open(path)
	assert.NoError(err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	assert.NoError(err)
	assert.Equal(640, cfg.Width)
	assert.Equal(480, cfg.Height)
}

func TestWritePNG_DefaultSizeAndEmptyWave(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "empty.png")
	assert.NoError(WritePNG(path, pwl.New(), view.Default(), Options{}))

	f, err := os.Open(path)
	assert.NoError(err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	assert.NoError(err)
	assert.Equal(1200, cfg.Width)
	assert.Equal(800, cfg.Height)
}

func TestWritePNG_LeavesCallerViewAlone(t *testing.T) {
	assert := assert.New(t)

	v := view.Default()
	path := filepath.Join(t.TempDir(), "wave.png")
	assert.NoError(WritePNG(path, pwl.New(), v, Options{Width: 300, Height: 200}))

	assert.Equal(800, v.Width)
	assert.Equal(500, v.Height)
}
