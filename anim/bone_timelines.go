package anim

import (
	"github.com/milk9111/spine/common"
	"github.com/milk9111/spine/skeleton"
)

// RotateTimeline keys a bone rotation as an offset from the setup rotation.
// Consecutive keys interpolate along the shortest arc.
type RotateTimeline struct {
	curveKeyframes
	BoneIndex int
	angles    []float32
}

func NewRotateTimeline(boneIndex, frameCount int) *RotateTimeline {
	return &RotateTimeline{
		curveKeyframes: newCurveKeyframes(frameCount),
		BoneIndex:      boneIndex,
		angles:         make([]float32, frameCount),
	}
}

func (t *RotateTimeline) Type() TimelineType { return TimelineRotate }

func (t *RotateTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineRotate, Index: t.BoneIndex}
}

func (t *RotateTimeline) SetFrame(frame int, time, angle float32) {
	t.times[frame] = time
	t.angles[frame] = angle
}

// Value returns the keyed rotation offset at time.
func (t *RotateTimeline) Value(time float32) float32 {
	frame, next, percent := t.sample(time)
	r := t.angles[frame]
	if frame == next {
		return r
	}
	delta := common.WrapDegrees(t.angles[next] - r)
	return r + delta*percent
}

func (t *RotateTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	bone := skel.Bones[t.BoneIndex]
	r := t.Value(time)
	setup := bone.Data.Rotation
	switch blend {
	case MixSetup:
		bone.Rotation = setup + r*alpha
	case MixReplace:
		bone.Rotation += common.WrapDegrees(setup+r-bone.Rotation) * alpha
	case MixAdd:
		bone.Rotation += r * alpha
	}
}

const pairStride = 2

// pairKeyframes keys an (x, y) pair per frame.
type pairKeyframes struct {
	curveKeyframes
	values []float32
}

func newPairKeyframes(frameCount int) pairKeyframes {
	return pairKeyframes{
		curveKeyframes: newCurveKeyframes(frameCount),
		values:         make([]float32, frameCount*pairStride),
	}
}

func (t *pairKeyframes) SetFrame(frame int, time, x, y float32) {
	t.times[frame] = time
	t.values[frame*pairStride] = x
	t.values[frame*pairStride+1] = y
}

func (t *pairKeyframes) Value(time float32) (x, y float32) {
	frame, next, percent := t.sample(time)
	return sampleStride(t.values, pairStride, 0, frame, next, percent),
		sampleStride(t.values, pairStride, 1, frame, next, percent)
}

// blendOffset mixes a value keyed as an offset from its setup value.
func blendOffset(p *float32, setup, v, alpha float32, blend MixBlend) {
	switch blend {
	case MixSetup:
		*p = setup + v*alpha
	case MixReplace:
		*p += (setup + v - *p) * alpha
	case MixAdd:
		*p += v * alpha
	}
}

// TranslateTimeline keys a bone position as an offset from setup.
type TranslateTimeline struct {
	pairKeyframes
	BoneIndex int
}

func NewTranslateTimeline(boneIndex, frameCount int) *TranslateTimeline {
	return &TranslateTimeline{pairKeyframes: newPairKeyframes(frameCount), BoneIndex: boneIndex}
}

func (t *TranslateTimeline) Type() TimelineType { return TimelineTranslate }

func (t *TranslateTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineTranslate, Index: t.BoneIndex}
}

func (t *TranslateTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	bone := skel.Bones[t.BoneIndex]
	x, y := t.Value(time)
	blendOffset(&bone.X, bone.Data.X, x, alpha, blend)
	blendOffset(&bone.Y, bone.Data.Y, y, alpha, blend)
}

// ShearTimeline keys a bone shear as an offset from setup.
type ShearTimeline struct {
	pairKeyframes
	BoneIndex int
}

func NewShearTimeline(boneIndex, frameCount int) *ShearTimeline {
	return &ShearTimeline{pairKeyframes: newPairKeyframes(frameCount), BoneIndex: boneIndex}
}

func (t *ShearTimeline) Type() TimelineType { return TimelineShear }

func (t *ShearTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineShear, Index: t.BoneIndex}
}

func (t *ShearTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	bone := skel.Bones[t.BoneIndex]
	x, y := t.Value(time)
	blendOffset(&bone.ShearX, bone.Data.ShearX, x, alpha, blend)
	blendOffset(&bone.ShearY, bone.Data.ShearY, y, alpha, blend)
}

// ScaleTimeline keys a bone scale as a multiplier of the setup scale.
type ScaleTimeline struct {
	pairKeyframes
	BoneIndex int
}

func NewScaleTimeline(boneIndex, frameCount int) *ScaleTimeline {
	return &ScaleTimeline{pairKeyframes: newPairKeyframes(frameCount), BoneIndex: boneIndex}
}

func (t *ScaleTimeline) Type() TimelineType { return TimelineScale }

func (t *ScaleTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineScale, Index: t.BoneIndex}
}

func (t *ScaleTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	bone := skel.Bones[t.BoneIndex]
	mx, my := t.Value(time)
	sx, sy := bone.Data.ScaleX, bone.Data.ScaleY
	x, y := mx*sx, my*sy
	switch blend {
	case MixSetup:
		bone.ScaleX = sx + (x-sx)*alpha
		bone.ScaleY = sy + (y-sy)*alpha
	case MixReplace:
		bone.ScaleX += (x - bone.ScaleX) * alpha
		bone.ScaleY += (y - bone.ScaleY) * alpha
	case MixAdd:
		bone.ScaleX += (x - sx) * alpha
		bone.ScaleY += (y - sy) * alpha
	}
}
