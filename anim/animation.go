package anim

import (
	"fmt"
	"math"
	"sort"

	"github.com/milk9111/spine/skeleton"
)

// Animation is a named set of timelines sharing one duration.
type Animation struct {
	Name      string
	Duration  float32
	Timelines []Timeline

	properties map[PropertyID]struct{}
}

func NewAnimation(name string, timelines []Timeline, duration float32) *Animation {
	a := &Animation{Name: name, Duration: duration, Timelines: timelines}
	a.properties = make(map[PropertyID]struct{}, len(timelines))
	for _, tl := range timelines {
		a.properties[tl.PropertyID()] = struct{}{}
	}
	return a
}

func (a *Animation) HasTimeline(id PropertyID) bool {
	_, ok := a.properties[id]
	return ok
}

// Validate checks keyframe order and that the duration covers every timeline.
func (a *Animation) Validate() error {
	for _, tl := range a.Timelines {
		if err := tl.Validate(); err != nil {
			return fmt.Errorf("anim: animation %q %s timeline: %w", a.Name, tl.Type(), err)
		}
		if last := tl.LastTime(); last > a.Duration {
			return fmt.Errorf("anim: animation %q %s timeline keyed at %v past duration %v: %w", a.Name, tl.Type(), last, a.Duration, ErrInvalidDuration)
		}
	}
	return nil
}

// Apply poses skel at time. lastTime is the time of the previous apply, or
// -1 on the first, and bounds which events fire and which discrete keys are
// crossed. With loop, times wrap modulo the duration.
func (a *Animation) Apply(skel *skeleton.Skeleton, lastTime, time float32, loop bool, events *[]*Event, alpha float32, blend MixBlend, dir MixDirection) {
	ph := newPlayhead(lastTime, time, 0, a.Duration, loop)
	for _, tl := range a.Timelines {
		if tl.Type() == TimelineEvent {
			ph.applyEvents(tl, skel, events, events)
			continue
		}
		ph.apply(tl, skel, alpha, blend, dir)
	}
}

// playhead maps raw track-relative times onto an animation window
// [start, end].
type playhead struct {
	start, end float32
	// last is negative when the animation has not been applied before.
	last, now float32
	// wraps counts loop boundaries crossed since last: positive going
	// forward, negative going backward.
	wraps int
}

func newPlayhead(lastRaw, nowRaw, start, end float32, loop bool) playhead {
	p := playhead{start: start, end: end, last: -1}
	d := end - start
	if !loop || d <= 0 {
		p.now = min(start+nowRaw, end)
		if lastRaw >= 0 {
			p.last = min(start+lastRaw, end)
		}
		return p
	}

	p.now = start + wrapTime(nowRaw, d)
	switch {
	case lastRaw >= 0:
		p.last = start + wrapTime(lastRaw, d)
		p.wraps = loopIndex(nowRaw, d) - loopIndex(lastRaw, d)
	case nowRaw >= 0:
		p.wraps = loopIndex(nowRaw, d)
	}
	return p
}

func loopIndex(t, d float32) int {
	return int(math.Floor(float64(t / d)))
}

func wrapTime(t, d float32) float32 {
	m := float32(math.Mod(float64(t), float64(d)))
	if m < 0 {
		m += d
	}
	return m
}

// apply runs a pose timeline. After a wrap the timeline is treated as freshly
// entered so discrete timelines re-key from the loop start.
func (p playhead) apply(tl Timeline, skel *skeleton.Skeleton, alpha float32, blend MixBlend, dir MixDirection) {
	last := p.last
	if p.wraps != 0 {
		last = -1
	}
	tl.Apply(skel, last, p.now, nil, alpha, blend, dir)
}

// applyEvents collects events fired before the loop boundary into pre and
// the rest into post.
func (p playhead) applyEvents(tl Timeline, skel *skeleton.Skeleton, pre, post *[]*Event) {
	last := p.last
	if last < 0 {
		last = math.Nextafter32(p.start, float32(math.Inf(-1)))
	}
	switch {
	case p.wraps > 0:
		tl.Apply(skel, last, p.end, pre, 1, MixSetup, MixIn)
		tl.Apply(skel, math.Nextafter32(p.start, float32(math.Inf(-1))), p.now, post, 1, MixSetup, MixIn)
	case p.wraps < 0:
		tl.Apply(skel, last, p.start, pre, 1, MixSetup, MixIn)
		tl.Apply(skel, math.Nextafter32(p.end, float32(math.Inf(1))), p.now, post, 1, MixSetup, MixIn)
	default:
		tl.Apply(skel, last, p.now, pre, 1, MixSetup, MixIn)
	}
}

// Library holds the animations authored for one skeleton.
type Library struct {
	Skeleton *skeleton.Data

	animations []*Animation
	byName     map[string]*Animation
}

func NewLibrary(data *skeleton.Data) *Library {
	return &Library{Skeleton: data, byName: make(map[string]*Animation)}
}

// Add validates and registers an animation.
func (l *Library) Add(a *Animation) error {
	if a == nil {
		return fmt.Errorf("anim: add nil animation: %w", ErrNotFound)
	}
	if _, ok := l.byName[a.Name]; ok {
		return fmt.Errorf("anim: animation %q: %w", a.Name, ErrDuplicateAnimation)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	l.animations = append(l.animations, a)
	l.byName[a.Name] = a
	return nil
}

func (l *Library) Find(name string) (*Animation, error) {
	if l != nil {
		if a, ok := l.byName[name]; ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("anim: animation %q: %w", name, ErrNotFound)
}

func (l *Library) Animations() []*Animation {
	if l == nil {
		return nil
	}
	return l.animations
}

// Names returns the animation names in sorted order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.animations))
	for _, a := range l.animations {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}
