// Package app provides application state, file IO, and events.
package app

import (
	"os"
	"sync"

	"pwl-editor/internal/interact"
	"pwl-editor/internal/pwl"
	"pwl-editor/internal/view"
)

// State holds the editor state: the waveform, the view window, and the
// interaction controller on top of them.
type State struct {
	mu sync.RWMutex

	// File
	FilePath string
	Modified bool

	Wave       *pwl.Waveform
	View       *view.View
	Controller *interact.Controller

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventFileLoaded EventType = iota
	EventFileSaved
	EventWaveformChanged
	EventSelectionChanged
	EventViewChanged
	EventOverlayChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new editor state with an empty waveform and the
// default view. Controller changes are translated into events so UI
// widgets can subscribe without knowing about the controller.
func NewState() *State {
	s := &State{
		Wave:      pwl.New(),
		View:      view.Default(),
		listeners: make(map[EventType][]EventListener),
	}
	s.Controller = interact.New(s.Wave, s.View)
	s.Controller.OnChange(func(ch interact.Change) {
		if ch.Waveform {
			s.SetModified(true)
			s.Emit(EventWaveformChanged, nil)
		}
		if ch.Selection {
			s.Emit(EventSelectionChanged, nil)
		}
		if ch.View {
			s.Emit(EventViewChanged, nil)
		}
		if ch.Overlay {
			s.Emit(EventOverlayChanged, nil)
		}
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the waveform as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// LoadPWL replaces the waveform with the contents of a PWL text file.
// Selection is cleared; the view is left alone so a reload does not
// jump the window around.
func (s *State) LoadPWL(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := pwl.Parse(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.FilePath = path
	s.Modified = false
	s.mu.Unlock()

	s.Wave.SetPoints(w.Points())
	s.Controller.ClearSelection()
	s.Emit(EventWaveformChanged, nil)
	s.Emit(EventFileLoaded, path)
	return nil
}

// SavePWL writes the waveform to a PWL text file.
func (s *State) SavePWL(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pwl.Serialize(f, s.Wave); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.mu.Lock()
	s.FilePath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventFileSaved, path)
	return nil
}
