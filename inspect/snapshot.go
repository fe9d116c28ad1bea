package inspect

import (
	"sort"

	"github.com/milk9111/spine/anim"
	spinecomp "github.com/milk9111/spine/component"
	"github.com/milk9111/spine/prefabs"
	"github.com/milk9111/spine/skeleton"
	"gopkg.in/yaml.v3"
)

// Snapshot is a copy of one instance's pose taken after a frame's apply.
// It shares nothing with the live skeleton.
type Snapshot struct {
	Entity   string          `json:"entity" yaml:"entity"`
	Skeleton string          `json:"skeleton" yaml:"skeleton"`
	Skin     string          `json:"skin,omitempty" yaml:"skin,omitempty"`
	Time     float32         `json:"time" yaml:"time"`
	Bones    []BoneSnapshot  `json:"bones" yaml:"bones"`
	Slots    []SlotSnapshot  `json:"slots" yaml:"slots"`
	Tracks   []TrackSnapshot `json:"tracks" yaml:"tracks"`
}

type BoneSnapshot struct {
	Name     string  `json:"name" yaml:"name"`
	Parent   string  `json:"parent,omitempty" yaml:"parent,omitempty"`
	X        float32 `json:"x" yaml:"x"`
	Y        float32 `json:"y" yaml:"y"`
	Rotation float32 `json:"rotation" yaml:"rotation"`
	ScaleX   float32 `json:"scale_x" yaml:"scale_x"`
	ScaleY   float32 `json:"scale_y" yaml:"scale_y"`
	ShearX   float32 `json:"shear_x,omitempty" yaml:"shear_x,omitempty"`
	ShearY   float32 `json:"shear_y,omitempty" yaml:"shear_y,omitempty"`
	WorldX   float32 `json:"world_x" yaml:"world_x"`
	WorldY   float32 `json:"world_y" yaml:"world_y"`
}

type SlotSnapshot struct {
	Name       string `json:"name" yaml:"name"`
	Bone       string `json:"bone" yaml:"bone"`
	Attachment string `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Color      string `json:"color" yaml:"color"`
	Deformed   bool   `json:"deformed,omitempty" yaml:"deformed,omitempty"`
	// Order is the slot's position in the current draw order.
	Order int `json:"order" yaml:"order"`
}

type TrackSnapshot struct {
	Track     int      `json:"track" yaml:"track"`
	Animation string   `json:"animation" yaml:"animation"`
	Loop      bool     `json:"loop" yaml:"loop"`
	TrackTime float32  `json:"track_time" yaml:"track_time"`
	Time      float32  `json:"animation_time" yaml:"animation_time"`
	Alpha     float32  `json:"alpha" yaml:"alpha"`
	Mixing    []string `json:"mixing_from,omitempty" yaml:"mixing_from,omitempty"`
	MixTime   float32  `json:"mix_time,omitempty" yaml:"mix_time,omitempty"`
	Queued    []string `json:"queued,omitempty" yaml:"queued,omitempty"`
}

// Capture copies the pose and track state of inst.
func Capture(entity string, inst *spinecomp.SkeletonAnimation) Snapshot {
	if inst == nil || inst.Skeleton == nil {
		return Snapshot{Entity: entity}
	}
	skel := inst.Skeleton
	snap := Snapshot{
		Entity: entity,
		Time:   skel.Time,
		Bones:  make([]BoneSnapshot, 0, len(skel.Bones)),
		Slots:  make([]SlotSnapshot, 0, len(skel.Slots)),
	}
	if skel.Data != nil {
		snap.Skeleton = skel.Data.Name
	}
	if skel.Skin != nil {
		snap.Skin = skel.Skin.Name
	}

	for _, b := range skel.Bones {
		bs := BoneSnapshot{
			Name:     b.Data.Name,
			X:        b.X,
			Y:        b.Y,
			Rotation: b.Rotation,
			ScaleX:   b.ScaleX,
			ScaleY:   b.ScaleY,
			ShearX:   b.ShearX,
			ShearY:   b.ShearY,
			WorldX:   b.WorldX,
			WorldY:   b.WorldY,
		}
		if b.Parent != nil {
			bs.Parent = b.Parent.Data.Name
		}
		snap.Bones = append(snap.Bones, bs)
	}

	order := make(map[*skeleton.Slot]int, len(skel.DrawOrder))
	for i, s := range skel.DrawOrder {
		order[s] = i
	}
	for _, s := range skel.Slots {
		ss := SlotSnapshot{
			Name:     s.Data.Name,
			Bone:     s.Bone.Data.Name,
			Color:    prefabs.Hex(s.Color),
			Deformed: len(s.Deform) > 0,
			Order:    order[s],
		}
		if att := s.Attachment(); att != nil {
			ss.Attachment = att.Name()
		}
		snap.Slots = append(snap.Slots, ss)
	}

	snap.Tracks = captureTracks(inst.State())
	return snap
}

func captureTracks(state *anim.State) []TrackSnapshot {
	if state == nil {
		return nil
	}
	var out []TrackSnapshot
	for i := 0; i < state.TrackCount(); i++ {
		cur := state.Current(i)
		if cur == nil {
			continue
		}
		ts := TrackSnapshot{
			Track:     i,
			Animation: cur.Animation.Name,
			Loop:      cur.Loop,
			TrackTime: cur.TrackTime(),
			Time:      cur.AnimationTime(),
			Alpha:     cur.Alpha,
			MixTime:   cur.MixTime(),
		}
		for from := cur.MixingFrom(); from != nil; from = from.MixingFrom() {
			ts.Mixing = append(ts.Mixing, from.Animation.Name)
		}
		for _, q := range state.Queued(i) {
			ts.Queued = append(ts.Queued, q.Animation.Name)
		}
		out = append(out, ts)
	}
	return out
}

// YAML renders snapshots in the form the pose dump and clipboard copy use.
func YAML(snaps ...Snapshot) ([]byte, error) {
	if len(snaps) == 1 {
		return yaml.Marshal(snaps[0])
	}
	return yaml.Marshal(snaps)
}

// SortByEntity orders snapshots by entity name, keeping capture order for
// equal names.
func SortByEntity(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Entity < snaps[j].Entity
	})
}
