package component

import (
	"fmt"

	"github.com/milk9111/spine/anim"
	"github.com/milk9111/spine/skeleton"
)

// SkeletonAnimation bundles a posed skeleton with the animation state driving
// it. Each instance owns its own skeleton, so instances built from the same
// data never share pose state.
type SkeletonAnimation struct {
	Skeleton *skeleton.Skeleton
	Library  *anim.Library

	DebugBones bool
	DebugSlots bool

	state *anim.State
}

// NewSkeletonAnimation creates a skeleton from data and a state playing
// animations from lib.
func NewSkeletonAnimation(data *skeleton.Data, lib *anim.Library) (*SkeletonAnimation, error) {
	skel, err := skeleton.New(data)
	if err != nil {
		return nil, fmt.Errorf("component: skeleton animation: %w", err)
	}
	if lib == nil {
		lib = anim.NewLibrary(data)
	}
	return &SkeletonAnimation{
		Skeleton: skel,
		Library:  lib,
		state:    anim.NewState(anim.NewStateData(lib)),
	}, nil
}

func (a *SkeletonAnimation) State() *anim.State {
	if a == nil {
		return nil
	}
	return a.state
}

func (a *SkeletonAnimation) FindAnimation(name string) (*anim.Animation, error) {
	return a.Library.Find(name)
}

func (a *SkeletonAnimation) SetAnimation(track int, name string, loop bool) (*anim.TrackEntry, error) {
	return a.state.SetAnimation(track, name, loop)
}

// SetAnimationDelayed sets the animation and holds it for delay seconds
// before it starts playing.
func (a *SkeletonAnimation) SetAnimationDelayed(track int, name string, loop bool, delay float32) (*anim.TrackEntry, error) {
	e, err := a.state.SetAnimation(track, name, loop)
	if err != nil {
		return nil, err
	}
	e.Delay = delay
	return e, nil
}

func (a *SkeletonAnimation) AddAnimation(track int, name string, loop bool, delay float32) (*anim.TrackEntry, error) {
	return a.state.AddAnimation(track, name, loop, delay)
}

func (a *SkeletonAnimation) SetEmptyAnimation(track int, mix float32) (*anim.TrackEntry, error) {
	return a.state.SetEmptyAnimation(track, mix)
}

func (a *SkeletonAnimation) ClearTrack(track int) {
	a.state.ClearTrack(track)
}

func (a *SkeletonAnimation) ClearTracks() {
	a.state.ClearTracks()
}

// Current returns the entry playing on track, or nil.
func (a *SkeletonAnimation) Current(track int) *anim.TrackEntry {
	if a == nil {
		return nil
	}
	return a.state.Current(track)
}

func (a *SkeletonAnimation) SetMix(from, to string, duration float32) error {
	return a.state.Data.SetMix(from, to, duration)
}

func (a *SkeletonAnimation) SetDefaultMix(duration float32) {
	a.state.Data.DefaultMix = duration
}

func (a *SkeletonAnimation) SetTimeScale(scale float32) {
	a.state.TimeScale = scale
}

func (a *SkeletonAnimation) TimeScale() float32 {
	return a.state.TimeScale
}

func (a *SkeletonAnimation) AddListener(l *anim.Listener) {
	a.state.AddListener(l)
}

func (a *SkeletonAnimation) RemoveListener(l *anim.Listener) {
	a.state.RemoveListener(l)
}

// SetTrackListener registers l for a single track entry.
func (a *SkeletonAnimation) SetTrackListener(e *anim.TrackEntry, l *anim.Listener) {
	a.state.SetEntryListener(e, l)
}

// Update advances the state by dt seconds, poses the skeleton and recomputes
// world transforms.
func (a *SkeletonAnimation) Update(dt float32) {
	if a == nil || a.Skeleton == nil {
		return
	}
	a.state.Update(dt)
	a.state.Apply(a.Skeleton)
	a.Skeleton.Update(dt)
	a.Skeleton.UpdateWorldTransform()
}
