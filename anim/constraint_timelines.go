package anim

import "github.com/milk9111/spine/skeleton"

// blendAbsolute mixes a value keyed absolutely.
func blendAbsolute(p *float32, setup, v, alpha float32, blend MixBlend) {
	switch blend {
	case MixSetup:
		*p = setup + (v-setup)*alpha
	case MixReplace:
		*p += (v - *p) * alpha
	case MixAdd:
		*p += (v - setup) * alpha
	}
}

const ikStride = 2

// IkConstraintTimeline keys the mix and bend direction of an IK constraint.
type IkConstraintTimeline struct {
	curveKeyframes
	ConstraintIndex int
	values          []float32
}

func NewIkConstraintTimeline(constraintIndex, frameCount int) *IkConstraintTimeline {
	return &IkConstraintTimeline{
		curveKeyframes:  newCurveKeyframes(frameCount),
		ConstraintIndex: constraintIndex,
		values:          make([]float32, frameCount*ikStride),
	}
}

func (t *IkConstraintTimeline) Type() TimelineType { return TimelineIkConstraint }

func (t *IkConstraintTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineIkConstraint, Index: t.ConstraintIndex}
}

func (t *IkConstraintTimeline) SetFrame(frame int, time, mix float32, bendDirection int) {
	t.times[frame] = time
	t.values[frame*ikStride] = mix
	t.values[frame*ikStride+1] = float32(bendDirection)
}

func (t *IkConstraintTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, dir MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	c := skel.IkConstraints[t.ConstraintIndex]
	frame, next, percent := t.sample(time)
	mix := sampleStride(t.values, ikStride, 0, frame, next, percent)
	blendAbsolute(&c.Mix, c.Data.Mix, mix, alpha, blend)

	switch {
	case dir == MixIn:
		c.BendDirection = int(t.values[frame*ikStride+1])
	case blend == MixSetup:
		c.BendDirection = c.Data.BendDirection
	}
}

const transformStride = 4

// TransformConstraintTimeline keys the four mixes of a transform constraint.
type TransformConstraintTimeline struct {
	curveKeyframes
	ConstraintIndex int
	values          []float32
}

func NewTransformConstraintTimeline(constraintIndex, frameCount int) *TransformConstraintTimeline {
	return &TransformConstraintTimeline{
		curveKeyframes:  newCurveKeyframes(frameCount),
		ConstraintIndex: constraintIndex,
		values:          make([]float32, frameCount*transformStride),
	}
}

func (t *TransformConstraintTimeline) Type() TimelineType { return TimelineTransformConstraint }

func (t *TransformConstraintTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineTransformConstraint, Index: t.ConstraintIndex}
}

func (t *TransformConstraintTimeline) SetFrame(frame int, time, rotateMix, translateMix, scaleMix, shearMix float32) {
	t.times[frame] = time
	i := frame * transformStride
	t.values[i] = rotateMix
	t.values[i+1] = translateMix
	t.values[i+2] = scaleMix
	t.values[i+3] = shearMix
}

func (t *TransformConstraintTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	c := skel.TransformConstraints[t.ConstraintIndex]
	d := c.Data
	frame, next, percent := t.sample(time)
	blendAbsolute(&c.RotateMix, d.RotateMix, sampleStride(t.values, transformStride, 0, frame, next, percent), alpha, blend)
	blendAbsolute(&c.TranslateMix, d.TranslateMix, sampleStride(t.values, transformStride, 1, frame, next, percent), alpha, blend)
	blendAbsolute(&c.ScaleMix, d.ScaleMix, sampleStride(t.values, transformStride, 2, frame, next, percent), alpha, blend)
	blendAbsolute(&c.ShearMix, d.ShearMix, sampleStride(t.values, transformStride, 3, frame, next, percent), alpha, blend)
}

// PathConstraintTimeline keys a single path parameter: position or spacing.
type PathConstraintTimeline struct {
	curveKeyframes
	ConstraintIndex int
	values          []float32
	kind            TimelineType
}

func NewPathConstraintPositionTimeline(constraintIndex, frameCount int) *PathConstraintTimeline {
	return newPathConstraintTimeline(TimelinePathConstraintPosition, constraintIndex, frameCount)
}

func NewPathConstraintSpacingTimeline(constraintIndex, frameCount int) *PathConstraintTimeline {
	return newPathConstraintTimeline(TimelinePathConstraintSpacing, constraintIndex, frameCount)
}

func newPathConstraintTimeline(kind TimelineType, constraintIndex, frameCount int) *PathConstraintTimeline {
	return &PathConstraintTimeline{
		curveKeyframes:  newCurveKeyframes(frameCount),
		ConstraintIndex: constraintIndex,
		values:          make([]float32, frameCount),
		kind:            kind,
	}
}

func (t *PathConstraintTimeline) Type() TimelineType { return t.kind }

func (t *PathConstraintTimeline) PropertyID() PropertyID {
	return PropertyID{Type: t.kind, Index: t.ConstraintIndex}
}

func (t *PathConstraintTimeline) SetFrame(frame int, time, value float32) {
	t.times[frame] = time
	t.values[frame] = value
}

func (t *PathConstraintTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	c := skel.PathConstraints[t.ConstraintIndex]
	frame, next, percent := t.sample(time)
	v := sampleStride(t.values, 1, 0, frame, next, percent)
	if t.kind == TimelinePathConstraintSpacing {
		blendAbsolute(&c.Spacing, c.Data.Spacing, v, alpha, blend)
		return
	}
	blendAbsolute(&c.Position, c.Data.Position, v, alpha, blend)
}

// PathConstraintMixTimeline keys the rotate and translate mixes of a path
// constraint.
type PathConstraintMixTimeline struct {
	pairKeyframes
	ConstraintIndex int
}

func NewPathConstraintMixTimeline(constraintIndex, frameCount int) *PathConstraintMixTimeline {
	return &PathConstraintMixTimeline{pairKeyframes: newPairKeyframes(frameCount), ConstraintIndex: constraintIndex}
}

func (t *PathConstraintMixTimeline) Type() TimelineType { return TimelinePathConstraintMix }

func (t *PathConstraintMixTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelinePathConstraintMix, Index: t.ConstraintIndex}
}

func (t *PathConstraintMixTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	c := skel.PathConstraints[t.ConstraintIndex]
	rotate, translate := t.Value(time)
	blendAbsolute(&c.RotateMix, c.Data.RotateMix, rotate, alpha, blend)
	blendAbsolute(&c.TranslateMix, c.Data.TranslateMix, translate, alpha, blend)
}
