package anim

import "slices"

// EntryFunc receives lifecycle callbacks for a track entry.
type EntryFunc func(e *TrackEntry)

// EventFunc receives keyed events fired by a track entry.
type EventFunc func(e *TrackEntry, ev *Event)

// Listener groups the callbacks a host registers with a State, either for
// every entry or for a single entry. Nil callbacks are skipped.
type Listener struct {
	Start     EntryFunc
	Interrupt EntryFunc
	End       EntryFunc
	Dispose   EntryFunc
	Complete  EntryFunc
	Event     EventFunc
}

type EventType int

const (
	EventStart EventType = iota
	EventInterrupt
	EventEnd
	EventDispose
	EventComplete
	EventKeyed
)

var eventTypeNames = [...]string{
	EventStart:     "start",
	EventInterrupt: "interrupt",
	EventEnd:       "end",
	EventDispose:   "dispose",
	EventComplete:  "complete",
	EventKeyed:     "event",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

type queuedEvent struct {
	kind  EventType
	entry *TrackEntry
	event *Event
}

func (l *Listener) call(q queuedEvent) {
	if l == nil {
		return
	}
	var fn EntryFunc
	switch q.kind {
	case EventStart:
		fn = l.Start
	case EventInterrupt:
		fn = l.Interrupt
	case EventEnd:
		fn = l.End
	case EventDispose:
		fn = l.Dispose
	case EventComplete:
		fn = l.Complete
	case EventKeyed:
		if l.Event != nil {
			l.Event(q.entry, q.event)
		}
		return
	}
	if fn != nil {
		fn(q.entry)
	}
}

// AddListener registers l for every entry of the state.
func (s *State) AddListener(l *Listener) {
	if l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// RemoveListener unregisters l. A listener removed from inside a callback
// receives nothing further, including the rest of the event being dispatched.
func (s *State) RemoveListener(l *Listener) {
	if i := slices.Index(s.listeners, l); i >= 0 {
		s.listeners = slices.Delete(slices.Clone(s.listeners), i, i+1)
	}
}

func (s *State) ClearListeners() {
	s.listeners = nil
}

// SetEntryListener registers l for a single entry. The registration is
// dropped once the entry is disposed.
func (s *State) SetEntryListener(e *TrackEntry, l *Listener) {
	if e == nil || e.disposed {
		return
	}
	if l == nil {
		delete(s.entryListeners, e)
		return
	}
	s.entryListeners[e] = l
}

func (s *State) EntryListener(e *TrackEntry) *Listener {
	return s.entryListeners[e]
}

func (s *State) enqueue(kind EventType, e *TrackEntry) {
	s.pending = append(s.pending, queuedEvent{kind: kind, entry: e})
}

func (s *State) enqueueEvent(e *TrackEntry, ev *Event) {
	s.pending = append(s.pending, queuedEvent{kind: EventKeyed, entry: e, event: ev})
}

// retire queues the end of an entry's life on the track.
func (s *State) retire(e *TrackEntry) {
	s.enqueue(EventEnd, e)
	s.enqueue(EventDispose, e)
}

// drain dispatches queued callbacks in order. Callbacks may call back into
// the state; anything they queue is dispatched by the same drain.
func (s *State) drain() {
	if s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for i := 0; i < len(s.pending); i++ {
		q := s.pending[i]
		s.entryListeners[q.entry].call(q)
		listeners := s.listeners
		for _, l := range listeners {
			if !slices.Contains(s.listeners, l) {
				continue
			}
			l.call(q)
		}
		if q.kind == EventDispose {
			delete(s.entryListeners, q.entry)
			q.entry.disposed = true
		}
	}
	s.pending = s.pending[:0]
}
