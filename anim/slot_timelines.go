package anim

import (
	"fmt"

	"github.com/milk9111/spine/skeleton"
)

const colorStride = 4

// ColorTimeline keys an absolute slot tint.
type ColorTimeline struct {
	curveKeyframes
	SlotIndex int
	values    []float32
}

func NewColorTimeline(slotIndex, frameCount int) *ColorTimeline {
	return &ColorTimeline{
		curveKeyframes: newCurveKeyframes(frameCount),
		SlotIndex:      slotIndex,
		values:         make([]float32, frameCount*colorStride),
	}
}

func (t *ColorTimeline) Type() TimelineType { return TimelineColor }

func (t *ColorTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineColor, Index: t.SlotIndex}
}

func (t *ColorTimeline) SetFrame(frame int, time float32, c skeleton.Color) {
	t.times[frame] = time
	i := frame * colorStride
	t.values[i] = c.R
	t.values[i+1] = c.G
	t.values[i+2] = c.B
	t.values[i+3] = c.A
}

func (t *ColorTimeline) Value(time float32) skeleton.Color {
	frame, next, percent := t.sample(time)
	return skeleton.Color{
		R: sampleStride(t.values, colorStride, 0, frame, next, percent),
		G: sampleStride(t.values, colorStride, 1, frame, next, percent),
		B: sampleStride(t.values, colorStride, 2, frame, next, percent),
		A: sampleStride(t.values, colorStride, 3, frame, next, percent),
	}
}

func (t *ColorTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	slot := skel.Slots[t.SlotIndex]
	v := t.Value(time)
	setup := slot.Data.Color
	switch blend {
	case MixSetup:
		if alpha == 1 {
			slot.Color.Set(v.R, v.G, v.B, v.A)
			return
		}
		slot.Color = setup
		slot.Color.Add((v.R-setup.R)*alpha, (v.G-setup.G)*alpha, (v.B-setup.B)*alpha, (v.A-setup.A)*alpha)
	case MixReplace:
		c := slot.Color
		slot.Color.Add((v.R-c.R)*alpha, (v.G-c.G)*alpha, (v.B-c.B)*alpha, (v.A-c.A)*alpha)
	case MixAdd:
		slot.Color.Add((v.R-setup.R)*alpha, (v.G-setup.G)*alpha, (v.B-setup.B)*alpha, (v.A-setup.A)*alpha)
	}
}

// AttachmentTimeline switches the attachment of a slot at keyframe times. An
// empty name hides the slot.
type AttachmentTimeline struct {
	keyframes
	SlotIndex int
	names     []string
}

func NewAttachmentTimeline(slotIndex, frameCount int) *AttachmentTimeline {
	return &AttachmentTimeline{
		keyframes: newKeyframes(frameCount),
		SlotIndex: slotIndex,
		names:     make([]string, frameCount),
	}
}

func (t *AttachmentTimeline) Type() TimelineType { return TimelineAttachment }

func (t *AttachmentTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineAttachment, Index: t.SlotIndex}
}

func (t *AttachmentTimeline) SetFrame(frame int, time float32, name string) {
	t.times[frame] = time
	t.names[frame] = name
}

// Value returns the attachment name keyed at time.
func (t *AttachmentTimeline) Value(time float32) string {
	return t.names[t.clampedFrame(time)]
}

func (t *AttachmentTimeline) Apply(skel *skeleton.Skeleton, lastTime, time float32, _ *[]*Event, alpha float32, blend MixBlend, dir MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	slot := skel.Slots[t.SlotIndex]
	if dir == MixOut && blend == MixSetup && alpha == 0 {
		t.setAttachment(skel, slot, slot.Data.AttachmentName)
		return
	}
	if !t.crossedKeyframe(lastTime, time, blend) {
		return
	}
	t.setAttachment(skel, slot, t.Value(time))
}

func (t *AttachmentTimeline) setAttachment(skel *skeleton.Skeleton, slot *skeleton.Slot, name string) {
	if name == "" {
		slot.SetAttachment(nil)
		return
	}
	a, err := skel.AttachmentAt(t.SlotIndex, name)
	if err != nil {
		return
	}
	slot.SetAttachment(a)
}

// DeformTimeline keys vertex offsets for one vertex attachment. Offsets are
// relative to the setup vertices for unweighted attachments and relative to
// each bone weight's position for weighted ones.
type DeformTimeline struct {
	curveKeyframes
	SlotIndex  int
	Attachment skeleton.VertexBearer
	vertices   [][]float32
}

func NewDeformTimeline(slotIndex int, attachment skeleton.VertexBearer, frameCount int) *DeformTimeline {
	return &DeformTimeline{
		curveKeyframes: newCurveKeyframes(frameCount),
		SlotIndex:      slotIndex,
		Attachment:     attachment,
		vertices:       make([][]float32, frameCount),
	}
}

func (t *DeformTimeline) Type() TimelineType { return TimelineDeform }

func (t *DeformTimeline) PropertyID() PropertyID {
	name := ""
	if t.Attachment != nil {
		name = t.Attachment.Name()
	}
	return PropertyID{Type: TimelineDeform, Index: t.SlotIndex, Attachment: name}
}

func (t *DeformTimeline) SetFrame(frame int, time float32, offsets []float32) {
	t.times[frame] = time
	t.vertices[frame] = offsets
}

func (t *DeformTimeline) Apply(skel *skeleton.Skeleton, _, time float32, _ *[]*Event, alpha float32, blend MixBlend, _ MixDirection) {
	if t.FrameCount() == 0 || t.Attachment == nil {
		return
	}
	slot := skel.Slots[t.SlotIndex]
	target, ok := slot.Attachment().(skeleton.VertexBearer)
	if !ok || !target.AppliesDeform(t.Attachment) {
		return
	}

	count := len(t.vertices[0])
	setup := t.Attachment.Vertex()
	setupAt := func(i int) float32 {
		if setup.Weighted() || i >= len(setup.Vertices) {
			return 0
		}
		return setup.Vertices[i]
	}

	if len(slot.Deform) != count {
		if cap(slot.Deform) < count {
			slot.Deform = make([]float32, count)
		}
		slot.Deform = slot.Deform[:count]
		for i := range slot.Deform {
			slot.Deform[i] = setupAt(i)
		}
		if blend != MixAdd {
			blend = MixSetup
		}
	}

	frame, next, percent := t.sample(time)
	prev, nextVerts := t.vertices[frame], t.vertices[next]
	for i := 0; i < count; i++ {
		v := prev[i]
		if frame != next {
			v += (nextVerts[i] - v) * percent
		}
		blendOffset(&slot.Deform[i], setupAt(i), v, alpha, blend)
	}
}

func (t *DeformTimeline) Validate() error {
	if err := t.keyframes.Validate(); err != nil {
		return err
	}
	for i, v := range t.vertices {
		if len(v) != len(t.vertices[0]) {
			return fmt.Errorf("anim: deform keyframe %d has %d values, want %d: %w", i, len(v), len(t.vertices[0]), ErrInvalidKeyframeOrder)
		}
	}
	return nil
}
