package skeleton

import "fmt"

// TransformMode controls which parts of the parent world transform a bone inherits.
type TransformMode int

const (
	TransformNormal TransformMode = iota
	TransformOnlyTranslation
	TransformNoRotationOrReflection
	TransformNoScale
	TransformNoScaleOrReflection
)

func (m TransformMode) String() string {
	switch m {
	case TransformNormal:
		return "normal"
	case TransformOnlyTranslation:
		return "only_translation"
	case TransformNoRotationOrReflection:
		return "no_rotation_or_reflection"
	case TransformNoScale:
		return "no_scale"
	case TransformNoScaleOrReflection:
		return "no_scale_or_reflection"
	default:
		return fmt.Sprintf("transform_mode(%d)", int(m))
	}
}

// BlendMode is a render hint carried by slots. The runtime never interprets it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiply
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	default:
		return fmt.Sprintf("blend_mode(%d)", int(m))
	}
}

// BoneData is the setup pose of a single bone.
type BoneData struct {
	Index  int
	Name   string
	Parent *BoneData

	Length         float32
	X, Y           float32
	Rotation       float32
	ScaleX, ScaleY float32
	ShearX, ShearY float32
	TransformMode  TransformMode
}

func NewBoneData(index int, name string, parent *BoneData) *BoneData {
	return &BoneData{
		Index:  index,
		Name:   name,
		Parent: parent,
		ScaleX: 1,
		ScaleY: 1,
	}
}

type SlotData struct {
	Index          int
	Name           string
	BoneData       *BoneData
	Color          Color
	AttachmentName string
	BlendMode      BlendMode
}

func NewSlotData(index int, name string, bone *BoneData) *SlotData {
	return &SlotData{
		Index:    index,
		Name:     name,
		BoneData: bone,
		Color:    White,
	}
}

// EventData holds the default payload of a named animation event.
type EventData struct {
	Name   string
	Int    int
	Float  float32
	String string
}

type IkConstraintData struct {
	Name          string
	Order         int
	Bones         []*BoneData
	Target        *BoneData
	Mix           float32
	BendDirection int
}

type TransformConstraintData struct {
	Name   string
	Order  int
	Bones  []*BoneData
	Target *BoneData

	OffsetRotation float32
	OffsetX        float32
	OffsetY        float32
	OffsetScaleX   float32
	OffsetScaleY   float32
	OffsetShearY   float32

	RotateMix    float32
	TranslateMix float32
	ScaleMix     float32
	ShearMix     float32
}

type PathConstraintData struct {
	Name   string
	Order  int
	Bones  []*BoneData
	Target *SlotData

	Position     float32
	Spacing      float32
	RotateMix    float32
	TranslateMix float32
}

// Data is the immutable description of a skeleton shared by every instance built from it.
type Data struct {
	Name        string
	Bones       []*BoneData
	Slots       []*SlotData
	Skins       []*Skin
	DefaultSkin *Skin
	Events      []*EventData

	IkConstraints        []*IkConstraintData
	TransformConstraints []*TransformConstraintData
	PathConstraints      []*PathConstraintData

	finalized bool
}

// Finalize orders bones parent-first and reindexes bones and slots. Skeletons
// built from the data iterate bones in this order.
func (d *Data) Finalize() error {
	if d == nil {
		return fmt.Errorf("skeleton: finalize: %w", ErrInvalidHierarchy)
	}

	known := make(map[*BoneData]bool, len(d.Bones))
	names := make(map[string]bool, len(d.Bones))
	for _, b := range d.Bones {
		if b == nil {
			return fmt.Errorf("skeleton: finalize %q: nil bone: %w", d.Name, ErrInvalidHierarchy)
		}
		if names[b.Name] {
			return fmt.Errorf("skeleton: finalize %q: duplicate bone %q: %w", d.Name, b.Name, ErrInvalidHierarchy)
		}
		names[b.Name] = true
		known[b] = true
	}
	for _, b := range d.Bones {
		if b.Parent != nil && !known[b.Parent] {
			return fmt.Errorf("skeleton: finalize %q: bone %q has unknown parent %q: %w", d.Name, b.Name, b.Parent.Name, ErrInvalidHierarchy)
		}
	}

	ordered := make([]*BoneData, 0, len(d.Bones))
	placed := make(map[*BoneData]bool, len(d.Bones))
	remaining := append([]*BoneData(nil), d.Bones...)
	for len(remaining) > 0 {
		next := remaining[:0]
		progress := false
		for _, b := range remaining {
			if b.Parent == nil || placed[b.Parent] {
				placed[b] = true
				ordered = append(ordered, b)
				progress = true
				continue
			}
			next = append(next, b)
		}
		if !progress {
			return fmt.Errorf("skeleton: finalize %q: bone %q is part of a cycle: %w", d.Name, next[0].Name, ErrInvalidHierarchy)
		}
		remaining = next
	}
	for i, b := range ordered {
		b.Index = i
	}
	d.Bones = ordered

	for i, s := range d.Slots {
		if s.BoneData == nil || !known[s.BoneData] {
			return fmt.Errorf("skeleton: finalize %q: slot %q has no bone: %w", d.Name, s.Name, ErrInvalidHierarchy)
		}
		s.Index = i
	}

	d.finalized = true
	return nil
}

func (d *Data) Finalized() bool {
	return d != nil && d.finalized
}

func (d *Data) FindBone(name string) *BoneData {
	for _, b := range d.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (d *Data) FindBoneIndex(name string) int {
	for i, b := range d.Bones {
		if b.Name == name {
			return i
		}
	}
	return -1
}

func (d *Data) FindSlot(name string) *SlotData {
	for _, s := range d.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (d *Data) FindSlotIndex(name string) int {
	for i, s := range d.Slots {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (d *Data) FindSkin(name string) *Skin {
	for _, s := range d.Skins {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (d *Data) FindEvent(name string) *EventData {
	for _, e := range d.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (d *Data) FindIkConstraint(name string) *IkConstraintData {
	for _, c := range d.IkConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (d *Data) FindTransformConstraint(name string) *TransformConstraintData {
	for _, c := range d.TransformConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (d *Data) FindPathConstraint(name string) *PathConstraintData {
	for _, c := range d.PathConstraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}
