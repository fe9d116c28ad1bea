package anim

import "math"

// TrackEntry is one playback of an animation on a track. Exported fields may
// be changed by the host between calls to Update.
type TrackEntry struct {
	TrackIndex int
	Animation  *Animation
	Loop       bool

	// Delay is the track time of the previous entry at which a queued entry
	// starts, and the time a current entry waits before playing.
	Delay float32
	// TrackEnd terminates the entry once its track time reaches it and
	// nothing else is queued or mixing on the track.
	TrackEnd  float32
	TimeScale float32
	Alpha     float32

	AnimationStart float32
	AnimationEnd   float32

	// Thresholds gate the discrete timelines of an entry while it mixes out:
	// they apply only while the successor's mix-in is below the threshold.
	EventThreshold      float32
	AttachmentThreshold float32
	DrawOrderThreshold  float32

	MixDuration float32
	// MixBlend is used for properties already written by lower tracks.
	MixBlend MixBlend

	trackTime         float32
	trackLast         float32
	nextTrackLast     float32
	animationLast     float32
	nextAnimationLast float32

	mixTime  float32
	mixAlpha float32
	inMix    float32

	started  bool
	disposed bool
	state    *State

	blends []MixBlend
	alphas []float32
	skips  []bool
}

func newTrackEntry(s *State, track int, a *Animation, loop bool) *TrackEntry {
	return &TrackEntry{
		TrackIndex:        track,
		Animation:         a,
		Loop:              loop,
		TrackEnd:          math.MaxFloat32,
		TimeScale:         1,
		Alpha:             1,
		AnimationEnd:      a.Duration,
		MixBlend:          MixAdd,
		trackLast:         -1,
		nextTrackLast:     -1,
		animationLast:     -1,
		nextAnimationLast: -1,
		mixAlpha:          1,
		inMix:             1,
		state:             s,
	}
}

func (e *TrackEntry) TrackTime() float32 { return e.trackTime }

func (e *TrackEntry) SetTrackTime(t float32) { e.trackTime = t }

// TrackLast is the track time at the previous apply, or -1 before the first.
func (e *TrackEntry) TrackLast() float32 { return e.trackLast }

func (e *TrackEntry) AnimationLast() float32 { return e.animationLast }

func (e *TrackEntry) MixTime() float32 { return e.mixTime }

func (e *TrackEntry) SetMixTime(t float32) { e.mixTime = t }

// MixAlpha is the weight the entry was applied with on the last apply.
func (e *TrackEntry) MixAlpha() float32 { return e.mixAlpha }

func (e *TrackEntry) Disposed() bool { return e.disposed }

// AnimationTime maps the track time into the animation.
func (e *TrackEntry) AnimationTime() float32 {
	return e.playhead().now
}

// IsComplete reports whether at least one full play of the animation has
// elapsed.
func (e *TrackEntry) IsComplete() bool {
	return e.trackTime >= e.AnimationEnd-e.AnimationStart
}

func (e *TrackEntry) playhead() playhead {
	return newPlayhead(e.trackLast, e.trackTime, e.AnimationStart, e.AnimationEnd, e.Loop)
}

// MixingFrom returns the entry this one is crossfading from, if any.
func (e *TrackEntry) MixingFrom() *TrackEntry {
	t := e.track()
	if t == nil {
		return nil
	}
	for i, c := range t.chain {
		if c == e && i > 0 {
			return t.chain[i-1]
		}
	}
	return nil
}

// Next returns the entry queued to play after this one.
func (e *TrackEntry) Next() *TrackEntry {
	t := e.track()
	if t == nil || len(t.queue) == 0 {
		return nil
	}
	if t.current() == e {
		return t.queue[0]
	}
	for i, q := range t.queue[:len(t.queue)-1] {
		if q == e {
			return t.queue[i+1]
		}
	}
	return nil
}

// SetListener registers l for this entry only.
func (e *TrackEntry) SetListener(l *Listener) {
	if e.state != nil {
		e.state.SetEntryListener(e, l)
	}
}

func (e *TrackEntry) track() *track {
	if e.state == nil || e.TrackIndex >= len(e.state.tracks) {
		return nil
	}
	return e.state.tracks[e.TrackIndex]
}

func (e *TrackEntry) resetScratch() {
	n := len(e.Animation.Timelines)
	if cap(e.blends) < n {
		e.blends = make([]MixBlend, n)
		e.alphas = make([]float32, n)
		e.skips = make([]bool, n)
	}
	e.blends = e.blends[:n]
	e.alphas = e.alphas[:n]
	e.skips = e.skips[:n]
}

// track is the explicit mixing chain of one track, oldest first with the
// current entry last, plus the entries queued behind the current one.
type track struct {
	chain []*TrackEntry
	queue []*TrackEntry
}

func (t *track) current() *TrackEntry {
	if t == nil || len(t.chain) == 0 {
		return nil
	}
	return t.chain[len(t.chain)-1]
}

// last returns the entry a new queued entry follows.
func (t *track) last() *TrackEntry {
	if t == nil {
		return nil
	}
	if len(t.queue) > 0 {
		return t.queue[len(t.queue)-1]
	}
	return t.current()
}
