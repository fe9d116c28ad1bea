package anim

import (
	"fmt"
	"sort"

	"github.com/milk9111/spine/skeleton"
)

type TimelineType int

const (
	TimelineRotate TimelineType = iota
	TimelineTranslate
	TimelineScale
	TimelineShear
	TimelineAttachment
	TimelineColor
	TimelineDeform
	TimelineEvent
	TimelineDrawOrder
	TimelineIkConstraint
	TimelineTransformConstraint
	TimelinePathConstraintPosition
	TimelinePathConstraintSpacing
	TimelinePathConstraintMix
)

var timelineTypeNames = [...]string{
	TimelineRotate:                 "rotate",
	TimelineTranslate:              "translate",
	TimelineScale:                  "scale",
	TimelineShear:                  "shear",
	TimelineAttachment:             "attachment",
	TimelineColor:                  "color",
	TimelineDeform:                 "deform",
	TimelineEvent:                  "event",
	TimelineDrawOrder:              "draw_order",
	TimelineIkConstraint:           "ik_constraint",
	TimelineTransformConstraint:    "transform_constraint",
	TimelinePathConstraintPosition: "path_constraint_position",
	TimelinePathConstraintSpacing:  "path_constraint_spacing",
	TimelinePathConstraintMix:      "path_constraint_mix",
}

func (t TimelineType) String() string {
	if t >= 0 && int(t) < len(timelineTypeNames) {
		return timelineTypeNames[t]
	}
	return fmt.Sprintf("timeline(%d)", int(t))
}

// MixBlend selects how a timeline combines its keyed value with the pose.
type MixBlend int

const (
	// MixSetup mixes between the setup pose and the keyed value. Used by the
	// first writer of a property in an apply pass.
	MixSetup MixBlend = iota
	// MixReplace mixes between the current pose and the keyed value.
	MixReplace
	// MixAdd adds the keyed offset, scaled by alpha, to the current pose.
	MixAdd
)

func (b MixBlend) String() string {
	switch b {
	case MixSetup:
		return "setup"
	case MixReplace:
		return "replace"
	case MixAdd:
		return "add"
	default:
		return fmt.Sprintf("mix_blend(%d)", int(b))
	}
}

// MixDirection tells discrete timelines whether their entry is mixing in or out.
type MixDirection int

const (
	MixIn MixDirection = iota
	MixOut
)

// PropertyID identifies the pose property a timeline writes.
type PropertyID struct {
	Type       TimelineType
	Index      int
	Attachment string
}

func (p PropertyID) String() string {
	if p.Attachment != "" {
		return fmt.Sprintf("%s[%d]/%s", p.Type, p.Index, p.Attachment)
	}
	return fmt.Sprintf("%s[%d]", p.Type, p.Index)
}

type Timeline interface {
	// Apply writes the value at time into skel weighted by alpha. Event
	// timelines append to events instead.
	Apply(skel *skeleton.Skeleton, lastTime, time float32, events *[]*Event, alpha float32, blend MixBlend, dir MixDirection)
	Type() TimelineType
	PropertyID() PropertyID
	FrameCount() int
	// LastTime is the time of the final keyframe.
	LastTime() float32
	Validate() error
}

type keyframes struct {
	times []float32
}

func newKeyframes(frameCount int) keyframes {
	return keyframes{times: make([]float32, frameCount)}
}

func (k *keyframes) FrameCount() int {
	return len(k.times)
}

func (k *keyframes) Times() []float32 {
	return k.times
}

func (k *keyframes) LastTime() float32 {
	if len(k.times) == 0 {
		return 0
	}
	return k.times[len(k.times)-1]
}

func (k *keyframes) Validate() error {
	if len(k.times) == 0 {
		return fmt.Errorf("anim: timeline has no keyframes: %w", ErrInvalidKeyframeOrder)
	}
	for i := 1; i < len(k.times); i++ {
		if k.times[i] <= k.times[i-1] {
			return fmt.Errorf("anim: keyframe %d at %v not after %v: %w", i, k.times[i], k.times[i-1], ErrInvalidKeyframeOrder)
		}
	}
	return nil
}

// frameAt returns the index of the last keyframe at or before time, or -1
// when time is before the first keyframe.
func (k *keyframes) frameAt(time float32) int {
	return sort.Search(len(k.times), func(i int) bool { return k.times[i] > time }) - 1
}

// curveKeyframes are keyframes whose values interpolate along Curves.
type curveKeyframes struct {
	keyframes
	curves Curves
}

func newCurveKeyframes(frameCount int) curveKeyframes {
	return curveKeyframes{keyframes: newKeyframes(frameCount), curves: newCurves(frameCount)}
}

func (c *curveKeyframes) Curves() *Curves {
	return &c.curves
}

// sample locates time between two keyframes. The value at time is
// v[frame] + (v[next]-v[frame])*percent. Times outside the keyed range clamp
// to the first or last keyframe.
func (c *curveKeyframes) sample(time float32) (frame, next int, percent float32) {
	n := len(c.times)
	if n == 0 {
		return 0, 0, 0
	}
	if time <= c.times[0] {
		return 0, 0, 0
	}
	if time >= c.times[n-1] {
		return n - 1, n - 1, 0
	}
	frame = c.frameAt(time)
	next = frame + 1
	t0, t1 := c.times[frame], c.times[next]
	return frame, next, c.curves.Percent(frame, (time-t0)/(t1-t0))
}

// sampleStride interpolates channel of a value array laid out with stride
// values per keyframe.
func sampleStride(values []float32, stride, channel, frame, next int, percent float32) float32 {
	a := values[frame*stride+channel]
	if frame == next {
		return a
	}
	b := values[next*stride+channel]
	return a + (b-a)*percent
}

// crossedKeyframe reports whether a discrete timeline must write: on first
// application, when a keyframe boundary lies between lastTime and time, or
// when a later writer replaces the value.
func (k *keyframes) crossedKeyframe(lastTime, time float32, blend MixBlend) bool {
	if blend != MixSetup || lastTime < 0 {
		return true
	}
	return k.frameAt(lastTime) != k.frameAt(time)
}

// clampedFrame is frameAt clamped to the first keyframe.
func (k *keyframes) clampedFrame(time float32) int {
	return max(k.frameAt(time), 0)
}
