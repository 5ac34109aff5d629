// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Prefs stores the editor's persisted settings. Zero values mean
// "use the default"; Load fills them in.
type Prefs struct {
	mu   sync.Mutex
	path string

	WindowWidth   int     `json:"window_width"`
	WindowHeight  int     `json:"window_height"`
	LastDir       string  `json:"last_dir,omitempty"`
	DragPrecision float64 `json:"drag_precision"`
	YMin          float64 `json:"y_min"`
	YMax          float64 `json:"y_max"`
}

func defaults() Prefs {
	return Prefs{
		WindowWidth:   1200,
		WindowHeight:  800,
		DragPrecision: 1e-3,
		YMin:          -1.5,
		YMax:          1.5,
	}
}

// Load reads preferences from ~/.config/pwl-editor/preferences.json.
// Returns defaults if the file doesn't exist or fails to parse.
func Load() *Prefs {
	p := defaults()

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p.path = filepath.Join(configDir, "pwl-editor", prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return &p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		p = defaults()
		p.path = filepath.Join(configDir, "pwl-editor", prefsFile)
		return &p
	}
	if p.WindowWidth <= 0 {
		p.WindowWidth = 1200
	}
	if p.WindowHeight <= 0 {
		p.WindowHeight = 800
	}
	if p.DragPrecision <= 0 {
		p.DragPrecision = 1e-3
	}
	if p.YMax <= p.YMin {
		p.YMin, p.YMax = -1.5, 1.5
	}
	return &p
}

// Save writes preferences to disk, creating the directory if needed.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p, "", "  ")
	path := p.path
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
