package anim

import (
	"fmt"
	"math"
	"slices"

	"github.com/milk9111/spine/common"
	"github.com/milk9111/spine/skeleton"
)

var emptyAnimation = NewAnimation("<empty>", nil, 0)

// EmptyAnimation is the animation played by SetEmptyAnimation. It keys
// nothing, so mixing to it fades other entries back toward the setup pose.
func EmptyAnimation() *Animation {
	return emptyAnimation
}

// State plays animations on tracks and mixes them onto a skeleton. Tracks are
// applied in index order: each track crossfades its own entries, and the
// result is layered over lower tracks per the entries' MixBlend.
type State struct {
	Data      *StateData
	TimeScale float32

	tracks         []*track
	listeners      []*Listener
	entryListeners map[*TrackEntry]*Listener
	pending        []queuedEvent
	draining       bool

	touched map[PropertyID]bool
	seen    map[PropertyID]bool
	later   map[PropertyID]float32
	written []PropertyID
	pre     []*Event
	post    []*Event
}

func NewState(data *StateData) *State {
	return &State{
		Data:           data,
		TimeScale:      1,
		entryListeners: make(map[*TrackEntry]*Listener),
		touched:        make(map[PropertyID]bool),
		seen:           make(map[PropertyID]bool),
		later:          make(map[PropertyID]float32),
	}
}

// Update advances every track by delta seconds, promotes queued entries whose
// delay has elapsed and drops entries that finished mixing out.
func (s *State) Update(delta float32) {
	delta *= s.TimeScale
	for i, t := range s.tracks {
		cur := t.current()
		if cur == nil {
			continue
		}
		cur.animationLast = cur.nextAnimationLast
		cur.trackLast = cur.nextTrackLast

		curDelta := delta * cur.TimeScale
		if cur.Delay > 0 {
			cur.Delay -= curDelta
			if cur.Delay > 0 {
				continue
			}
			curDelta = -cur.Delay
			cur.Delay = 0
		}

		if len(t.queue) > 0 {
			next := t.queue[0]
			if nextTime := cur.trackLast - next.Delay; nextTime >= 0 {
				next.Delay = 0
				if cur.TimeScale != 0 {
					// nextTime is in the current entry's track time.
					next.trackTime = (nextTime/cur.TimeScale + delta) * next.TimeScale
				}
				cur.trackTime += curDelta
				t.queue = slices.Delete(t.queue, 0, 1)
				s.setCurrent(i, next, true)
				for _, e := range t.chain {
					e.mixTime += delta
				}
				continue
			}
		}

		s.updateChain(t, delta)
		cur.trackTime += curDelta
	}
	s.drain()
}

// updateChain advances the entries mixing out behind the current one and the
// mix-in of every entry.
func (s *State) updateChain(t *track, delta float32) {
	n := len(t.chain)
	if n < 2 {
		for _, e := range t.chain {
			e.mixTime += delta
		}
		return
	}

	drop := 0
	for k := n - 1; k >= 1; k-- {
		to, from := t.chain[k], t.chain[k-1]
		if to.mixTime > 0 && to.mixTime >= to.MixDuration && from.mixAlpha == 0 {
			drop = k
			break
		}
	}
	for _, e := range t.chain[:drop] {
		s.retire(e)
	}
	t.chain = slices.Delete(t.chain, 0, drop)

	for _, e := range t.chain[:len(t.chain)-1] {
		e.animationLast = e.nextAnimationLast
		e.trackLast = e.nextTrackLast
		e.trackTime += delta * e.TimeScale
	}
	for _, e := range t.chain {
		e.mixTime += delta
	}
}

// Apply poses skel from every track and reports whether any track applied.
// Callbacks for the pass are dispatched before it returns.
func (s *State) Apply(skel *skeleton.Skeleton) bool {
	clear(s.touched)
	applied := false
	for i, t := range s.tracks {
		cur := t.current()
		if cur == nil || cur.Delay > 0 {
			continue
		}
		applied = true
		s.applyTrack(skel, t)

		if len(t.chain) == 1 && len(t.queue) == 0 && cur.trackTime >= cur.TrackEnd {
			s.retire(cur)
			s.tracks[i] = nil
		}
	}
	s.drain()
	return applied
}

func (s *State) applyTrack(skel *skeleton.Skeleton, t *track) {
	n := len(t.chain)
	// An entry with nothing behind it still fades in over its own mix.
	for _, e := range t.chain {
		e.inMix = 1
		if e.MixDuration > 0 {
			e.inMix = common.Clamp(e.mixTime/e.MixDuration, 0, 1)
		}
	}
	rest := float32(1)
	for k := n - 1; k >= 0; k-- {
		e := t.chain[k]
		e.mixAlpha = e.Alpha * e.inMix * rest
		rest *= 1 - e.inMix
	}

	// The first writer of a property on this track mixes from the setup pose
	// and later writers replace, unless a lower track already wrote it.
	clear(s.seen)
	for k, e := range t.chain {
		e.resetScratch()
		mixingOut := k < n-1
		for j, tl := range e.Animation.Timelines {
			e.skips[j] = mixingOut && gated(tl.Type(), e, t.chain[k+1].inMix)
			if e.skips[j] || tl.Type() == TimelineEvent {
				continue
			}
			id := tl.PropertyID()
			switch {
			case s.touched[id] && e.MixBlend != MixSetup:
				e.blends[j] = e.MixBlend
			case !s.seen[id]:
				e.blends[j] = MixSetup
			default:
				e.blends[j] = MixReplace
			}
			s.seen[id] = true
		}
	}

	// Each writer is scaled against the weight left over by the writers that
	// follow it, so the track result is the weighted sum of the entries.
	clear(s.later)
	for k := n - 1; k >= 0; k-- {
		e := t.chain[k]
		for j, tl := range e.Animation.Timelines {
			if e.skips[j] || tl.Type() == TimelineEvent {
				continue
			}
			if e.blends[j] == MixAdd {
				e.alphas[j] = e.mixAlpha
				continue
			}
			id := tl.PropertyID()
			later := s.later[id]
			var a float32
			if rem := 1 - later; rem > 1e-6 {
				a = common.Clamp(e.mixAlpha/rem, 0, 1)
			}
			e.alphas[j] = a
			s.later[id] = later + e.mixAlpha
		}
	}

	for k, e := range t.chain {
		dir := MixIn
		if k < n-1 {
			dir = MixOut
		}
		if !e.started {
			e.started = true
			s.enqueue(EventStart, e)
		}

		ph := e.playhead()
		s.pre, s.post = s.pre[:0], s.post[:0]
		for j, tl := range e.Animation.Timelines {
			if e.skips[j] {
				continue
			}
			if tl.Type() == TimelineEvent {
				ph.applyEvents(tl, skel, &s.pre, &s.post)
				continue
			}
			ph.apply(tl, skel, e.alphas[j], e.blends[j], dir)
			s.written = append(s.written, tl.PropertyID())
		}
		if k == n-1 || t.chain[k+1].inMix < e.EventThreshold {
			s.queueEvents(e, ph)
		}
		e.nextAnimationLast = ph.now
		e.nextTrackLast = e.trackTime
	}

	for _, id := range s.written {
		s.touched[id] = true
	}
	s.written = s.written[:0]
}

// gated reports whether a mixing-out entry skips a discrete timeline.
func gated(kind TimelineType, e *TrackEntry, successorMix float32) bool {
	switch kind {
	case TimelineEvent:
		return successorMix >= e.EventThreshold
	case TimelineAttachment:
		return successorMix >= e.AttachmentThreshold
	case TimelineDrawOrder:
		return successorMix >= e.DrawOrderThreshold
	}
	return false
}

// queueEvents queues the keyed events of a pass with one Complete for every
// loop boundary crossed, or once when a non-looping entry reaches its end.
func (s *State) queueEvents(e *TrackEntry, ph playhead) {
	for _, ev := range s.pre {
		s.enqueueEvent(e, ev)
	}
	completes := 0
	if e.Loop && ph.end > ph.start {
		completes = ph.wraps
		if completes < 0 {
			completes = -completes
		}
	} else if ph.now >= ph.end && ph.last < ph.end {
		completes = 1
	}
	for i := 0; i < completes; i++ {
		s.enqueue(EventComplete, e)
	}
	for _, ev := range s.post {
		s.enqueueEvent(e, ev)
	}
}

// SetAnimation replaces the current entry of a track, crossfading from it
// when a mix duration is configured, and discards anything queued.
func (s *State) SetAnimation(trackIndex int, name string, loop bool) (*TrackEntry, error) {
	a, err := s.Data.Library.Find(name)
	if err != nil {
		return nil, err
	}
	return s.SetAnimationWith(trackIndex, a, loop)
}

func (s *State) SetAnimationWith(trackIndex int, a *Animation, loop bool) (*TrackEntry, error) {
	return s.setAnimation(trackIndex, a, loop, nil)
}

func (s *State) setAnimation(trackIndex int, a *Animation, loop bool, init func(*TrackEntry)) (*TrackEntry, error) {
	if trackIndex < 0 {
		return nil, fmt.Errorf("anim: set animation on track %d: %w", trackIndex, ErrInvalidTrack)
	}
	if a == nil {
		return nil, fmt.Errorf("anim: set nil animation: %w", ErrNotFound)
	}

	t := s.expand(trackIndex)
	interrupt := true
	if cur := t.current(); cur != nil {
		if cur.nextTrackLast < 0 {
			// Never applied: drop it instead of mixing from it.
			t.chain = t.chain[:len(t.chain)-1]
			s.enqueue(EventInterrupt, cur)
			s.retire(cur)
			interrupt = false
		}
		for _, q := range t.queue {
			s.enqueue(EventDispose, q)
		}
		t.queue = nil
	}

	entry := s.newEntry(trackIndex, a, loop, t.current())
	if init != nil {
		init(entry)
	}
	s.setCurrent(trackIndex, entry, interrupt)
	s.drain()
	return entry, nil
}

// AddAnimation queues an animation after the last entry of a track. A delay
// of zero or less starts it when the previous entry completes, minus the mix
// duration, offset by delay.
func (s *State) AddAnimation(trackIndex int, name string, loop bool, delay float32) (*TrackEntry, error) {
	a, err := s.Data.Library.Find(name)
	if err != nil {
		return nil, err
	}
	return s.AddAnimationWith(trackIndex, a, loop, delay)
}

func (s *State) AddAnimationWith(trackIndex int, a *Animation, loop bool, delay float32) (*TrackEntry, error) {
	return s.addAnimation(trackIndex, a, loop, delay, nil)
}

func (s *State) addAnimation(trackIndex int, a *Animation, loop bool, delay float32, init func(*TrackEntry)) (*TrackEntry, error) {
	if trackIndex < 0 {
		return nil, fmt.Errorf("anim: add animation on track %d: %w", trackIndex, ErrInvalidTrack)
	}
	if a == nil {
		return nil, fmt.Errorf("anim: add nil animation: %w", ErrNotFound)
	}

	t := s.expand(trackIndex)
	last := t.last()
	entry := s.newEntry(trackIndex, a, loop, last)
	if init != nil {
		init(entry)
	}

	if last == nil {
		entry.Delay = delay
		s.setCurrent(trackIndex, entry, true)
		s.drain()
		return entry, nil
	}

	if delay <= 0 {
		d := last.AnimationEnd - last.AnimationStart
		switch {
		case d == 0:
			delay = last.trackTime
		case last.Loop:
			delay += d*(1+float32(math.Floor(float64(last.trackTime/d)))) - entry.MixDuration
		default:
			delay += max(d, last.trackTime) - entry.MixDuration
		}
	}
	entry.Delay = delay
	t.queue = append(t.queue, entry)
	return entry, nil
}

// SetEmptyAnimation fades the track out to the setup pose over mix seconds,
// after which the track is cleared.
func (s *State) SetEmptyAnimation(trackIndex int, mix float32) (*TrackEntry, error) {
	return s.setAnimation(trackIndex, emptyAnimation, false, func(e *TrackEntry) {
		e.MixDuration = mix
		e.TrackEnd = mix
	})
}

// AddEmptyAnimation queues a fade out to the setup pose.
func (s *State) AddEmptyAnimation(trackIndex int, mix, delay float32) (*TrackEntry, error) {
	return s.addAnimation(trackIndex, emptyAnimation, false, delay, func(e *TrackEntry) {
		e.MixDuration = mix
		e.TrackEnd = mix
	})
}

// SetEmptyAnimations fades every active track out.
func (s *State) SetEmptyAnimations(mix float32) {
	for i, t := range s.tracks {
		if t.current() == nil {
			continue
		}
		s.SetEmptyAnimation(i, mix)
	}
}

// ClearTrack removes every entry from a track without mixing. End and Dispose
// callbacks fire before it returns.
func (s *State) ClearTrack(trackIndex int) {
	if trackIndex < 0 || trackIndex >= len(s.tracks) {
		return
	}
	t := s.tracks[trackIndex]
	cur := t.current()
	if cur == nil {
		s.tracks[trackIndex] = nil
		return
	}
	s.retire(cur)
	for _, q := range t.queue {
		s.enqueue(EventDispose, q)
	}
	for k := len(t.chain) - 2; k >= 0; k-- {
		s.retire(t.chain[k])
	}
	s.tracks[trackIndex] = nil
	s.drain()
}

func (s *State) ClearTracks() {
	draining := s.draining
	s.draining = true
	for i := range s.tracks {
		s.ClearTrack(i)
	}
	s.tracks = s.tracks[:0]
	s.draining = draining
	s.drain()
}

// Current returns the entry playing on a track, or nil.
func (s *State) Current(trackIndex int) *TrackEntry {
	if trackIndex < 0 || trackIndex >= len(s.tracks) {
		return nil
	}
	return s.tracks[trackIndex].current()
}

// Chain returns the entries of a track oldest first, ending with the current
// one.
func (s *State) Chain(trackIndex int) []*TrackEntry {
	if trackIndex < 0 || trackIndex >= len(s.tracks) || s.tracks[trackIndex] == nil {
		return nil
	}
	return slices.Clone(s.tracks[trackIndex].chain)
}

// Queued returns the entries waiting to play on a track.
func (s *State) Queued(trackIndex int) []*TrackEntry {
	if trackIndex < 0 || trackIndex >= len(s.tracks) || s.tracks[trackIndex] == nil {
		return nil
	}
	return slices.Clone(s.tracks[trackIndex].queue)
}

func (s *State) TrackCount() int {
	return len(s.tracks)
}

func (s *State) newEntry(trackIndex int, a *Animation, loop bool, last *TrackEntry) *TrackEntry {
	e := newTrackEntry(s, trackIndex, a, loop)
	if last != nil {
		e.MixDuration = s.Data.Mix(last.Animation, a)
	}
	return e
}

func (s *State) setCurrent(trackIndex int, entry *TrackEntry, interrupt bool) {
	t := s.expand(trackIndex)
	if from := t.current(); from != nil {
		if interrupt {
			s.enqueue(EventInterrupt, from)
		}
		if entry.MixDuration <= 0 {
			for k := len(t.chain) - 1; k >= 0; k-- {
				s.retire(t.chain[k])
			}
			t.chain = t.chain[:0]
		}
	}
	entry.mixTime = 0
	t.chain = append(t.chain, entry)
}

func (s *State) expand(trackIndex int) *track {
	for len(s.tracks) <= trackIndex {
		s.tracks = append(s.tracks, nil)
	}
	if s.tracks[trackIndex] == nil {
		s.tracks[trackIndex] = &track{}
	}
	return s.tracks[trackIndex]
}
