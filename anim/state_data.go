package anim

import "fmt"

type mixKey struct {
	from, to *Animation
}

// StateData holds the crossfade durations between animations of a library.
type StateData struct {
	Library    *Library
	DefaultMix float32

	mixes map[mixKey]float32
}

func NewStateData(lib *Library) *StateData {
	return &StateData{Library: lib, mixes: make(map[mixKey]float32)}
}

// SetMix sets the crossfade duration from one named animation to another.
func (d *StateData) SetMix(from, to string, duration float32) error {
	a, err := d.Library.Find(from)
	if err != nil {
		return fmt.Errorf("anim: set mix from: %w", err)
	}
	b, err := d.Library.Find(to)
	if err != nil {
		return fmt.Errorf("anim: set mix to: %w", err)
	}
	d.SetMixWith(a, b, duration)
	return nil
}

func (d *StateData) SetMixWith(from, to *Animation, duration float32) {
	d.mixes[mixKey{from: from, to: to}] = duration
}

// Mix returns the crossfade duration from one animation to another, falling
// back to DefaultMix.
func (d *StateData) Mix(from, to *Animation) float32 {
	if d == nil {
		return 0
	}
	if v, ok := d.mixes[mixKey{from: from, to: to}]; ok {
		return v
	}
	return d.DefaultMix
}
