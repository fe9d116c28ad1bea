package system

import (
	"github.com/milk9111/spine/ecs"
	"github.com/milk9111/spine/ecs/component"
	"github.com/milk9111/spine/inspect"
)

type SnapshotPublisher interface {
	Publish(snaps []inspect.Snapshot)
}

// InspectSystem hands a pose snapshot of every skeleton to Publisher each
// frame. Register it after the animation system.
type InspectSystem struct {
	Publisher SnapshotPublisher
	// Every publishes once per this many frames; zero publishes every frame.
	Every int

	frame int
}

func NewInspectSystem(p SnapshotPublisher) *InspectSystem {
	return &InspectSystem{Publisher: p}
}

func (s *InspectSystem) Update(w *ecs.World) {
	if s.Publisher == nil {
		return
	}
	s.frame++
	if s.Every > 1 && s.frame%s.Every != 0 {
		return
	}
	s.Publisher.Publish(Snapshots(w))
}

// Snapshots captures every skeleton in the world, ordered by entity name.
func Snapshots(w *ecs.World) []inspect.Snapshot {
	var out []inspect.Snapshot
	ecs.ForEach(w, component.SkeletonComponent.Kind(), func(e ecs.Entity, inst *component.SkeletonInstance) {
		name := inst.Name
		if name == "" {
			name = e.String()
		}
		out = append(out, inspect.Capture(name, inst.Animation))
	})
	inspect.SortByEntity(out)
	return out
}
