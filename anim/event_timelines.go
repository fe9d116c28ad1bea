package anim

import (
	"fmt"

	"github.com/milk9111/spine/skeleton"
)

// Event is one firing of an EventData at a keyframe time. The payload starts
// from the EventData defaults and may be overridden per keyframe.
type Event struct {
	Data   *skeleton.EventData
	Time   float32
	Int    int
	Float  float32
	String string
}

func NewEvent(time float32, data *skeleton.EventData) *Event {
	e := &Event{Data: data, Time: time}
	if data != nil {
		e.Int = data.Int
		e.Float = data.Float
		e.String = data.String
	}
	return e
}

func (e *Event) Name() string {
	if e == nil || e.Data == nil {
		return ""
	}
	return e.Data.Name
}

type EventTimeline struct {
	keyframes
	events []*Event
}

func NewEventTimeline(frameCount int) *EventTimeline {
	return &EventTimeline{
		keyframes: newKeyframes(frameCount),
		events:    make([]*Event, frameCount),
	}
}

func (t *EventTimeline) Type() TimelineType { return TimelineEvent }

func (t *EventTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineEvent}
}

func (t *EventTimeline) SetFrame(frame int, e *Event) {
	t.times[frame] = e.Time
	t.events[frame] = e
}

func (t *EventTimeline) Events() []*Event {
	return t.events
}

// Apply fires the events keyed in (lastTime, time] in ascending order. When
// lastTime is after time the timeline is playing backward and fires the
// events in [time, lastTime) in descending order.
func (t *EventTimeline) Apply(_ *skeleton.Skeleton, lastTime, time float32, events *[]*Event, _ float32, _ MixBlend, _ MixDirection) {
	if events == nil || len(t.times) == 0 {
		return
	}
	if lastTime <= time {
		for i, ft := range t.times {
			if ft > lastTime && ft <= time {
				*events = append(*events, t.events[i])
			}
		}
		return
	}
	for i := len(t.times) - 1; i >= 0; i-- {
		ft := t.times[i]
		if ft >= time && ft < lastTime {
			*events = append(*events, t.events[i])
		}
	}
}

// DrawOrderTimeline reorders slots at keyframe times. A nil order restores
// the setup order.
type DrawOrderTimeline struct {
	keyframes
	orders [][]int
}

func NewDrawOrderTimeline(frameCount int) *DrawOrderTimeline {
	return &DrawOrderTimeline{
		keyframes: newKeyframes(frameCount),
		orders:    make([][]int, frameCount),
	}
}

func (t *DrawOrderTimeline) Type() TimelineType { return TimelineDrawOrder }

func (t *DrawOrderTimeline) PropertyID() PropertyID {
	return PropertyID{Type: TimelineDrawOrder}
}

// SetFrame keys a draw order: order[i] is the index of the slot drawn i-th.
func (t *DrawOrderTimeline) SetFrame(frame int, time float32, order []int) {
	t.times[frame] = time
	t.orders[frame] = order
}

func (t *DrawOrderTimeline) Value(time float32) []int {
	return t.orders[t.clampedFrame(time)]
}

func (t *DrawOrderTimeline) Apply(skel *skeleton.Skeleton, lastTime, time float32, _ *[]*Event, alpha float32, blend MixBlend, dir MixDirection) {
	if t.FrameCount() == 0 {
		return
	}
	if dir == MixOut && blend == MixSetup && alpha == 0 {
		copy(skel.DrawOrder, skel.Slots)
		return
	}
	if !t.crossedKeyframe(lastTime, time, blend) {
		return
	}
	order := t.Value(time)
	if order == nil {
		copy(skel.DrawOrder, skel.Slots)
		return
	}
	for i, idx := range order {
		if i < len(skel.DrawOrder) && idx >= 0 && idx < len(skel.Slots) {
			skel.DrawOrder[i] = skel.Slots[idx]
		}
	}
}

func (t *DrawOrderTimeline) Validate() error {
	if err := t.keyframes.Validate(); err != nil {
		return err
	}
	for i, order := range t.orders {
		if order == nil {
			continue
		}
		seen := make(map[int]bool, len(order))
		for _, idx := range order {
			if seen[idx] {
				return fmt.Errorf("anim: draw order keyframe %d repeats slot %d: %w", i, idx, ErrInvalidKeyframeOrder)
			}
			seen[idx] = true
		}
	}
	return nil
}
