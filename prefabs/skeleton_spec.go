package prefabs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkeletonSpec is the YAML form of a skeleton and its animations.
type SkeletonSpec struct {
	Name       string                    `yaml:"name"`
	Bones      []BoneSpec                `yaml:"bones"`
	Slots      []SlotSpec                `yaml:"slots"`
	Skins      []SkinSpec                `yaml:"skins"`
	Events     []EventSpec               `yaml:"events"`
	Ik         []IkConstraintSpec        `yaml:"ik"`
	Transform  []TransformConstraintSpec `yaml:"transform"`
	Path       []PathConstraintSpec      `yaml:"path"`
	Animations []AnimationSpec           `yaml:"animations"`
	Mixes      []MixSpec                 `yaml:"mixes"`
	DefaultMix float32                   `yaml:"default_mix"`
}

func LoadSkeletonSpec(filename string) (*SkeletonSpec, error) {
	spec, err := LoadSpec[SkeletonSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type BoneSpec struct {
	Name      string   `yaml:"name"`
	Parent    string   `yaml:"parent"`
	Length    float32  `yaml:"length"`
	X         float32  `yaml:"x"`
	Y         float32  `yaml:"y"`
	Rotation  float32  `yaml:"rotation"`
	ScaleX    *float32 `yaml:"scale_x"`
	ScaleY    *float32 `yaml:"scale_y"`
	ShearX    float32  `yaml:"shear_x"`
	ShearY    float32  `yaml:"shear_y"`
	Transform string   `yaml:"transform"`
}

type SlotSpec struct {
	Name       string     `yaml:"name"`
	Bone       string     `yaml:"bone"`
	Color      *YAMLColor `yaml:"color"`
	Attachment string     `yaml:"attachment"`
	Blend      string     `yaml:"blend"`
}

// SkinSpec maps slot name to attachment name to attachment.
type SkinSpec struct {
	Name        string                               `yaml:"name"`
	Attachments map[string]map[string]AttachmentSpec `yaml:"attachments"`
}

type AttachmentSpec struct {
	Type string `yaml:"type"`
	// Name overrides the skin key as the attachment's own name.
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	X        float32    `yaml:"x"`
	Y        float32    `yaml:"y"`
	Rotation float32    `yaml:"rotation"`
	ScaleX   *float32   `yaml:"scale_x"`
	ScaleY   *float32   `yaml:"scale_y"`
	Width    float32    `yaml:"width"`
	Height   float32    `yaml:"height"`
	Color    *YAMLColor `yaml:"color"`

	// Vertices are x, y pairs, or bone count prefixed bone, x, y, weight
	// groups when Weighted is set.
	Vertices  []float32 `yaml:"vertices"`
	Weighted  bool      `yaml:"weighted"`
	UVs       []float32 `yaml:"uvs"`
	Triangles []uint16  `yaml:"triangles"`
	Hull      int       `yaml:"hull"`

	Parent string `yaml:"parent"`
	Skin   string `yaml:"skin"`
	Deform *bool  `yaml:"deform"`

	Lengths       []float32 `yaml:"lengths"`
	Closed        bool      `yaml:"closed"`
	ConstantSpeed *bool     `yaml:"constant_speed"`
}

type EventSpec struct {
	Name   string  `yaml:"name"`
	Int    int     `yaml:"int"`
	Float  float32 `yaml:"float"`
	String string  `yaml:"string"`
}

type IkConstraintSpec struct {
	Name   string   `yaml:"name"`
	Order  int      `yaml:"order"`
	Bones  []string `yaml:"bones"`
	Target string   `yaml:"target"`
	Mix    *float32 `yaml:"mix"`
	// BendPositive defaults to true.
	BendPositive *bool `yaml:"bend_positive"`
}

type TransformConstraintSpec struct {
	Name         string   `yaml:"name"`
	Order        int      `yaml:"order"`
	Bones        []string `yaml:"bones"`
	Target       string   `yaml:"target"`
	Rotation     float32  `yaml:"rotation"`
	X            float32  `yaml:"x"`
	Y            float32  `yaml:"y"`
	ScaleX       float32  `yaml:"scale_x"`
	ScaleY       float32  `yaml:"scale_y"`
	ShearY       float32  `yaml:"shear_y"`
	RotateMix    *float32 `yaml:"rotate_mix"`
	TranslateMix *float32 `yaml:"translate_mix"`
	ScaleMix     *float32 `yaml:"scale_mix"`
	ShearMix     *float32 `yaml:"shear_mix"`
}

type PathConstraintSpec struct {
	Name         string   `yaml:"name"`
	Order        int      `yaml:"order"`
	Bones        []string `yaml:"bones"`
	Target       string   `yaml:"target"`
	Position     float32  `yaml:"position"`
	Spacing      float32  `yaml:"spacing"`
	RotateMix    *float32 `yaml:"rotate_mix"`
	TranslateMix *float32 `yaml:"translate_mix"`
}

type MixSpec struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	Duration float32 `yaml:"duration"`
}

// AnimationSpec keys timelines by the name of the bone, slot or constraint
// they drive.
type AnimationSpec struct {
	Name string `yaml:"name"`
	// Duration defaults to the last keyframe time.
	Duration *float32                     `yaml:"duration"`
	Bones    map[string]BoneTimelinesSpec `yaml:"bones"`
	Slots    map[string]SlotTimelinesSpec `yaml:"slots"`
	// Deform is keyed by skin, then slot, then attachment.
	Deform    map[string]map[string]map[string][]DeformKey `yaml:"deform"`
	Events    []EventKey                                   `yaml:"events"`
	DrawOrder []DrawOrderKey                               `yaml:"draw_order"`
	Ik        map[string][]IkKey                           `yaml:"ik"`
	Transform map[string][]TransformKey                    `yaml:"transform"`
	Path      map[string]PathTimelinesSpec                 `yaml:"path"`
}

type BoneTimelinesSpec struct {
	Rotate    []RotateKey `yaml:"rotate"`
	Translate []PairKey   `yaml:"translate"`
	Scale     []PairKey   `yaml:"scale"`
	Shear     []PairKey   `yaml:"shear"`
}

type SlotTimelinesSpec struct {
	Color      []ColorKey      `yaml:"color"`
	Attachment []AttachmentKey `yaml:"attachment"`
}

type PathTimelinesSpec struct {
	Position []ValueKey   `yaml:"position"`
	Spacing  []ValueKey   `yaml:"spacing"`
	Mix      []PathMixKey `yaml:"mix"`
}

type RotateKey struct {
	Time  float32   `yaml:"time"`
	Angle float32   `yaml:"angle"`
	Curve CurveSpec `yaml:"curve"`
}

// PairKey is an x, y key. Scale keys default both values to 1.
type PairKey struct {
	Time  float32   `yaml:"time"`
	X     *float32  `yaml:"x"`
	Y     *float32  `yaml:"y"`
	Curve CurveSpec `yaml:"curve"`
}

type ColorKey struct {
	Time  float32   `yaml:"time"`
	Color YAMLColor `yaml:"color"`
	Curve CurveSpec `yaml:"curve"`
}

// AttachmentKey clears the slot when Name is empty.
type AttachmentKey struct {
	Time float32 `yaml:"time"`
	Name string  `yaml:"name"`
}

// DeformKey holds vertex offsets starting at Offset; the rest are zero.
type DeformKey struct {
	Time     float32   `yaml:"time"`
	Offset   int       `yaml:"offset"`
	Vertices []float32 `yaml:"vertices"`
	Curve    CurveSpec `yaml:"curve"`
}

// EventKey overrides the event's default payload when a field is set.
type EventKey struct {
	Time   float32  `yaml:"time"`
	Name   string   `yaml:"name"`
	Int    *int     `yaml:"int"`
	Float  *float32 `yaml:"float"`
	String *string  `yaml:"string"`
}

// DrawOrderKey moves slots relative to their setup position. A key without
// offsets restores the setup order.
type DrawOrderKey struct {
	Time    float32           `yaml:"time"`
	Offsets []DrawOrderOffset `yaml:"offsets"`
}

type DrawOrderOffset struct {
	Slot   string `yaml:"slot"`
	Offset int    `yaml:"offset"`
}

type IkKey struct {
	Time         float32   `yaml:"time"`
	Mix          *float32  `yaml:"mix"`
	BendPositive *bool     `yaml:"bend_positive"`
	Curve        CurveSpec `yaml:"curve"`
}

type TransformKey struct {
	Time         float32   `yaml:"time"`
	RotateMix    *float32  `yaml:"rotate_mix"`
	TranslateMix *float32  `yaml:"translate_mix"`
	ScaleMix     *float32  `yaml:"scale_mix"`
	ShearMix     *float32  `yaml:"shear_mix"`
	Curve        CurveSpec `yaml:"curve"`
}

type ValueKey struct {
	Time  float32   `yaml:"time"`
	Value float32   `yaml:"value"`
	Curve CurveSpec `yaml:"curve"`
}

type PathMixKey struct {
	Time         float32   `yaml:"time"`
	RotateMix    *float32  `yaml:"rotate_mix"`
	TranslateMix *float32  `yaml:"translate_mix"`
	Curve        CurveSpec `yaml:"curve"`
}

// CurveSpec is "linear" (the default), "stepped", or a bezier written as
// [cx1, cy1, cx2, cy2].
type CurveSpec struct {
	Stepped bool
	Bezier  []float32
}

func (c *CurveSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		switch strings.ToLower(strings.TrimSpace(value.Value)) {
		case "", "linear":
			*c = CurveSpec{}
		case "stepped":
			*c = CurveSpec{Stepped: true}
		default:
			return fmt.Errorf("unknown curve %q", value.Value)
		}
		return nil
	case yaml.SequenceNode:
		var points []float32
		if err := value.Decode(&points); err != nil {
			return err
		}
		if len(points) != 4 {
			return fmt.Errorf("bezier curve needs 4 values, got %d", len(points))
		}
		*c = CurveSpec{Bezier: points}
		return nil
	default:
		return fmt.Errorf("curve must be a string or a list")
	}
}

func (c CurveSpec) String() string {
	switch {
	case c.Stepped:
		return "stepped"
	case len(c.Bezier) == 4:
		return fmt.Sprintf("bezier%v", c.Bezier)
	default:
		return "linear"
	}
}
