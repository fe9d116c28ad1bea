package system

import (
	spinecomp "github.com/milk9111/spine/component"
	"github.com/milk9111/spine/ecs"
	"github.com/milk9111/spine/ecs/component"
)

// DefaultStep is one tick at 60 updates per second.
const DefaultStep = float32(1.0 / 60.0)

// AnimationSystem steps every skeleton instance by a fixed delta and
// republishes its playback callbacks on the world event queue.
type AnimationSystem struct {
	Step float32
}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{Step: DefaultStep}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	step := a.Step
	if step <= 0 {
		step = DefaultStep
	}

	ecs.ForEach(w, component.SkeletonComponent.Kind(), func(e ecs.Entity, inst *component.SkeletonInstance) {
		if inst.Animation == nil || inst.Animation.Skeleton == nil {
			return
		}
		if !inst.Bound() {
			bindWorldEvents(w, e, inst)
		}

		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			skel := inst.Animation.Skeleton
			skel.X, skel.Y = t.X, t.Y
			skel.FlipX, skel.FlipY = t.FlipX, t.FlipY
		}
		inst.Animation.Update(step)
	})
}

func bindWorldEvents(w *ecs.World, e ecs.Entity, inst *component.SkeletonInstance) {
	emitter := &spinecomp.AnimationEventEmitter{Handlers: []spinecomp.AnimationEventHandler{
		func(_ *spinecomp.SkeletonAnimation, evt spinecomp.AnimationEvent) {
			w.Events().Push(ecs.Event{Type: ecs.EventAnimation, Entity: e, Data: evt})
		},
	}}
	inst.Bind(spinecomp.BindAnimationEvents(inst.Animation, emitter))
}

// AnimationEvents returns the animation events raised by e this frame.
func AnimationEvents(w *ecs.World, e ecs.Entity) []spinecomp.AnimationEvent {
	var out []spinecomp.AnimationEvent
	for _, evt := range w.Events().Events() {
		if evt.Type != ecs.EventAnimation || evt.Entity != e {
			continue
		}
		if ae, ok := evt.Data.(spinecomp.AnimationEvent); ok {
			out = append(out, ae)
		}
	}
	return out
}
