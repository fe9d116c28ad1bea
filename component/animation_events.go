package component

import "github.com/milk9111/spine/anim"

// AnimationEventType identifies a playback callback.
type AnimationEventType string

const (
	AnimationEventStart     AnimationEventType = "start"
	AnimationEventInterrupt AnimationEventType = "interrupt"
	AnimationEventEnd       AnimationEventType = "end"
	AnimationEventDispose   AnimationEventType = "dispose"
	AnimationEventComplete  AnimationEventType = "complete"
	AnimationEventKeyed     AnimationEventType = "event"
)

// AnimationEvent is a flattened copy of a playback callback that stays valid
// after the track entry is disposed.
type AnimationEvent struct {
	Type      AnimationEventType
	Track     int
	Animation string

	// Keyed event payload, set for AnimationEventKeyed only.
	Name   string
	Time   float32
	Int    int
	Float  float32
	String string
}

// AnimationEventHandler handles animation events.
type AnimationEventHandler func(anim *SkeletonAnimation, evt AnimationEvent)

// AnimationEventEmitter dispatches animation events to handlers.
type AnimationEventEmitter struct {
	Handlers []AnimationEventHandler
}

// Emit sends an event to all handlers.
func (e *AnimationEventEmitter) Emit(a *SkeletonAnimation, evt AnimationEvent) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(a, evt)
		}
	}
}

// BindAnimationEvents registers a state listener that forwards every callback
// to emitter. The returned listener can be passed to RemoveListener.
func BindAnimationEvents(a *SkeletonAnimation, emitter *AnimationEventEmitter) *anim.Listener {
	if a == nil || emitter == nil {
		return nil
	}
	forward := func(kind AnimationEventType) anim.EntryFunc {
		return func(e *anim.TrackEntry) {
			emitter.Emit(a, entryEvent(kind, e))
		}
	}
	l := &anim.Listener{
		Start:     forward(AnimationEventStart),
		Interrupt: forward(AnimationEventInterrupt),
		End:       forward(AnimationEventEnd),
		Dispose:   forward(AnimationEventDispose),
		Complete:  forward(AnimationEventComplete),
		Event: func(e *anim.TrackEntry, ev *anim.Event) {
			evt := entryEvent(AnimationEventKeyed, e)
			evt.Name = ev.Name()
			evt.Time = ev.Time
			evt.Int = ev.Int
			evt.Float = ev.Float
			evt.String = ev.String
			emitter.Emit(a, evt)
		},
	}
	a.AddListener(l)
	return l
}

func entryEvent(kind AnimationEventType, e *anim.TrackEntry) AnimationEvent {
	evt := AnimationEvent{Type: kind, Track: e.TrackIndex}
	if e.Animation != nil {
		evt.Animation = e.Animation.Name
	}
	return evt
}
