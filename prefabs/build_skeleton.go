package prefabs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/milk9111/spine/anim"
	"github.com/milk9111/spine/component"
	"github.com/milk9111/spine/skeleton"
)

var (
	// ErrInvalidKeyframeOrder is anim.ErrInvalidKeyframeOrder, so either
	// package's sentinel matches errors from BuildSkeleton.
	ErrInvalidKeyframeOrder = anim.ErrInvalidKeyframeOrder
	ErrUnknownReference     = errors.New("prefabs: unknown reference")
	ErrInvalidSpec          = errors.New("prefabs: invalid skeleton spec")
)

// SkeletonAsset is a skeleton spec built into shared runtime data. Instances
// created from one asset share Data and Library but never pose state.
type SkeletonAsset struct {
	Spec    *SkeletonSpec
	Data    *skeleton.Data
	Library *anim.Library
}

// LoadSkeleton reads and builds a skeleton spec.
func LoadSkeleton(filename string) (*SkeletonAsset, error) {
	spec, err := LoadSkeletonSpec(filename)
	if err != nil {
		return nil, err
	}
	data, lib, err := BuildSkeleton(spec)
	if err != nil {
		return nil, fmt.Errorf("prefabs: build %s: %w", filename, err)
	}
	return &SkeletonAsset{Spec: spec, Data: data, Library: lib}, nil
}

// NewInstance creates an animated skeleton with the spec's mix durations.
func (a *SkeletonAsset) NewInstance() (*component.SkeletonAnimation, error) {
	if a == nil {
		return nil, fmt.Errorf("prefabs: new instance: %w", ErrInvalidSpec)
	}
	inst, err := component.NewSkeletonAnimation(a.Data, a.Library)
	if err != nil {
		return nil, err
	}
	if err := ConfigureMixes(a.Spec, inst.State().Data); err != nil {
		return nil, err
	}
	return inst, nil
}

// ConfigureMixes copies the spec's default and per pair mix durations.
func ConfigureMixes(spec *SkeletonSpec, sd *anim.StateData) error {
	if spec == nil || sd == nil {
		return nil
	}
	sd.DefaultMix = spec.DefaultMix
	for _, m := range spec.Mixes {
		if err := sd.SetMix(m.From, m.To, m.Duration); err != nil {
			return fmt.Errorf("prefabs: mix %s -> %s: %w", m.From, m.To, err)
		}
	}
	return nil
}

// BuildSkeleton converts spec into skeleton data and the animations keyed
// against it. Keyframes must be in strictly increasing time order and every
// name must resolve.
func BuildSkeleton(spec *SkeletonSpec) (*skeleton.Data, *anim.Library, error) {
	if spec == nil {
		return nil, nil, fmt.Errorf("prefabs: build skeleton: nil spec: %w", ErrInvalidSpec)
	}
	data, err := buildData(spec)
	if err != nil {
		return nil, nil, err
	}

	lib := anim.NewLibrary(data)
	for i := range spec.Animations {
		a, err := buildAnimation(data, &spec.Animations[i])
		if err != nil {
			return nil, nil, err
		}
		if err := lib.Add(a); err != nil {
			return nil, nil, fmt.Errorf("prefabs: skeleton %q: %w", spec.Name, err)
		}
	}
	return data, lib, nil
}

func buildData(spec *SkeletonSpec) (*skeleton.Data, error) {
	data := &skeleton.Data{Name: spec.Name}

	bones := make(map[string]*skeleton.BoneData, len(spec.Bones))
	for i, bs := range spec.Bones {
		if bs.Name == "" {
			return nil, fmt.Errorf("prefabs: bone %d has no name: %w", i, ErrInvalidSpec)
		}
		b := skeleton.NewBoneData(i, bs.Name, nil)
		b.Length = bs.Length
		b.X, b.Y = bs.X, bs.Y
		b.Rotation = bs.Rotation
		b.ScaleX = deref(bs.ScaleX, 1)
		b.ScaleY = deref(bs.ScaleY, 1)
		b.ShearX, b.ShearY = bs.ShearX, bs.ShearY
		mode, err := parseTransformMode(bs.Transform)
		if err != nil {
			return nil, fmt.Errorf("prefabs: bone %q: %w", bs.Name, err)
		}
		b.TransformMode = mode
		if _, ok := bones[bs.Name]; !ok {
			bones[bs.Name] = b
		}
		data.Bones = append(data.Bones, b)
	}
	for i, bs := range spec.Bones {
		if bs.Parent == "" {
			continue
		}
		parent, ok := bones[bs.Parent]
		if !ok {
			return nil, fmt.Errorf("prefabs: bone %q parent %q: %w", bs.Name, bs.Parent, ErrUnknownReference)
		}
		data.Bones[i].Parent = parent
	}

	for i, ss := range spec.Slots {
		bone, ok := bones[ss.Bone]
		if !ok {
			return nil, fmt.Errorf("prefabs: slot %q bone %q: %w", ss.Name, ss.Bone, ErrUnknownReference)
		}
		if data.FindSlot(ss.Name) != nil {
			return nil, fmt.Errorf("prefabs: duplicate slot %q: %w", ss.Name, ErrInvalidSpec)
		}
		s := skeleton.NewSlotData(i, ss.Name, bone)
		if ss.Color != nil {
			s.Color = ss.Color.SkeletonColor()
		}
		s.AttachmentName = ss.Attachment
		mode, err := parseBlendMode(ss.Blend)
		if err != nil {
			return nil, fmt.Errorf("prefabs: slot %q: %w", ss.Name, err)
		}
		s.BlendMode = mode
		data.Slots = append(data.Slots, s)
	}

	for _, es := range spec.Events {
		data.Events = append(data.Events, &skeleton.EventData{Name: es.Name, Int: es.Int, Float: es.Float, String: es.String})
	}

	if err := data.Finalize(); err != nil {
		return nil, err
	}

	if err := buildSkins(data, spec.Skins); err != nil {
		return nil, err
	}
	if err := buildConstraints(data, spec); err != nil {
		return nil, err
	}
	return data, nil
}

type pendingLink struct {
	skin *skeleton.Skin
	slot int
	mesh *skeleton.LinkedMeshAttachment
}

func buildSkins(data *skeleton.Data, specs []SkinSpec) error {
	var links []pendingLink
	for _, ss := range specs {
		skin := skeleton.NewSkin(ss.Name)
		for _, slotName := range sortedKeys(ss.Attachments) {
			slot := data.FindSlotIndex(slotName)
			if slot < 0 {
				return fmt.Errorf("prefabs: skin %q slot %q: %w", ss.Name, slotName, ErrUnknownReference)
			}
			entries := ss.Attachments[slotName]
			for _, key := range sortedKeys(entries) {
				a, err := buildAttachment(data, key, entries[key])
				if err != nil {
					return fmt.Errorf("prefabs: skin %q attachment %s/%s: %w", ss.Name, slotName, key, err)
				}
				if lm, ok := a.(*skeleton.LinkedMeshAttachment); ok {
					links = append(links, pendingLink{skin: skin, slot: slot, mesh: lm})
				}
				skin.AddAttachment(slot, key, a)
			}
		}
		data.Skins = append(data.Skins, skin)
	}

	data.DefaultSkin = data.FindSkin("default")
	if data.DefaultSkin == nil && len(data.Skins) > 0 {
		data.DefaultSkin = data.Skins[0]
	}

	for _, l := range links {
		skin := l.skin
		if l.mesh.SkinName != "" {
			skin = data.FindSkin(l.mesh.SkinName)
			if skin == nil {
				return fmt.Errorf("prefabs: linked mesh %q skin %q: %w", l.mesh.Name(), l.mesh.SkinName, ErrUnknownReference)
			}
		}
		var parent *skeleton.MeshAttachment
		switch p := skin.Attachment(l.slot, l.mesh.ParentName).(type) {
		case *skeleton.MeshAttachment:
			parent = p
		case *skeleton.LinkedMeshAttachment:
			parent = &p.MeshAttachment
		}
		if parent == nil {
			return fmt.Errorf("prefabs: linked mesh %q parent %q: %w", l.mesh.Name(), l.mesh.ParentName, ErrUnknownReference)
		}
		l.mesh.SetParentMesh(parent)
	}
	return nil
}

func buildAttachment(data *skeleton.Data, key string, as AttachmentSpec) (skeleton.Attachment, error) {
	name := key
	if as.Name != "" {
		name = as.Name
	}

	switch strings.ToLower(as.Type) {
	case "", "region":
		r := skeleton.NewRegionAttachment(name)
		r.Path = as.Path
		if r.Path == "" {
			r.Path = name
		}
		r.X, r.Y = as.X, as.Y
		r.Rotation = as.Rotation
		r.ScaleX = deref(as.ScaleX, 1)
		r.ScaleY = deref(as.ScaleY, 1)
		r.Width, r.Height = as.Width, as.Height
		if as.Color != nil {
			r.Color = as.Color.SkeletonColor()
		}
		r.UpdateOffset()
		return r, nil
	case "bounding_box", "boundingbox":
		b := skeleton.NewBoundingBoxAttachment(name)
		if err := setVertices(data, &b.VertexAttachment, as); err != nil {
			return nil, err
		}
		if as.Color != nil {
			b.Color = as.Color.SkeletonColor()
		}
		return b, nil
	case "mesh":
		m := skeleton.NewMeshAttachment(name)
		if err := setVertices(data, &m.VertexAttachment, as); err != nil {
			return nil, err
		}
		m.Path = as.Path
		if m.Path == "" {
			m.Path = name
		}
		m.RegionUVs = as.UVs
		m.Triangles = as.Triangles
		m.HullLength = as.Hull * 2
		if as.Color != nil {
			m.Color = as.Color.SkeletonColor()
		}
		return m, nil
	case "linked_mesh", "linkedmesh":
		if as.Parent == "" {
			return nil, fmt.Errorf("linked mesh without parent: %w", ErrInvalidSpec)
		}
		lm := skeleton.NewLinkedMeshAttachment(name, as.Parent)
		lm.SkinName = as.Skin
		lm.InheritDeform = derefBool(as.Deform, true)
		lm.Path = as.Path
		if lm.Path == "" {
			lm.Path = name
		}
		if as.Color != nil {
			lm.Color = as.Color.SkeletonColor()
		}
		return lm, nil
	case "path":
		p := skeleton.NewPathAttachment(name)
		if err := setVertices(data, &p.VertexAttachment, as); err != nil {
			return nil, err
		}
		p.Lengths = as.Lengths
		p.Closed = as.Closed
		p.ConstantSpeed = derefBool(as.ConstantSpeed, true)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown attachment type %q: %w", as.Type, ErrInvalidSpec)
	}
}

// setVertices decodes either plain x, y pairs or weighted groups of
// count followed by count (bone, x, y, weight) quads.
func setVertices(data *skeleton.Data, v *skeleton.VertexAttachment, as AttachmentSpec) error {
	if !as.Weighted {
		if len(as.Vertices)%2 != 0 {
			return fmt.Errorf("odd vertex list length %d: %w", len(as.Vertices), ErrInvalidSpec)
		}
		v.Vertices = append([]float32(nil), as.Vertices...)
		v.WorldVerticesLength = len(as.Vertices)
		return nil
	}

	var bones []int
	var weights []float32
	count := 0
	for i := 0; i < len(as.Vertices); {
		n := int(as.Vertices[i])
		i++
		if n <= 0 || i+n*4 > len(as.Vertices) {
			return fmt.Errorf("weighted vertex %d is truncated: %w", count, ErrInvalidSpec)
		}
		bones = append(bones, n)
		for end := i + n*4; i < end; i += 4 {
			bone := int(as.Vertices[i])
			if bone < 0 || bone >= len(data.Bones) {
				return fmt.Errorf("weighted vertex %d bone %d: %w", count, bone, ErrUnknownReference)
			}
			bones = append(bones, bone)
			weights = append(weights, as.Vertices[i+1], as.Vertices[i+2], as.Vertices[i+3])
		}
		count++
	}
	v.Bones = bones
	v.Vertices = weights
	v.WorldVerticesLength = count * 2
	return nil
}

func buildConstraints(data *skeleton.Data, spec *SkeletonSpec) error {
	findBones := func(owner string, names []string) ([]*skeleton.BoneData, error) {
		out := make([]*skeleton.BoneData, 0, len(names))
		for _, n := range names {
			b := data.FindBone(n)
			if b == nil {
				return nil, fmt.Errorf("prefabs: constraint %q bone %q: %w", owner, n, ErrUnknownReference)
			}
			out = append(out, b)
		}
		return out, nil
	}

	for _, cs := range spec.Ik {
		bones, err := findBones(cs.Name, cs.Bones)
		if err != nil {
			return err
		}
		if len(bones) == 0 || len(bones) > 2 {
			return fmt.Errorf("prefabs: ik constraint %q needs 1 or 2 bones, got %d: %w", cs.Name, len(bones), ErrInvalidSpec)
		}
		target := data.FindBone(cs.Target)
		if target == nil {
			return fmt.Errorf("prefabs: ik constraint %q target %q: %w", cs.Name, cs.Target, ErrUnknownReference)
		}
		data.IkConstraints = append(data.IkConstraints, &skeleton.IkConstraintData{
			Name:          cs.Name,
			Order:         cs.Order,
			Bones:         bones,
			Target:        target,
			Mix:           deref(cs.Mix, 1),
			BendDirection: bendDirection(cs.BendPositive),
		})
	}

	for _, cs := range spec.Transform {
		bones, err := findBones(cs.Name, cs.Bones)
		if err != nil {
			return err
		}
		target := data.FindBone(cs.Target)
		if target == nil {
			return fmt.Errorf("prefabs: transform constraint %q target %q: %w", cs.Name, cs.Target, ErrUnknownReference)
		}
		data.TransformConstraints = append(data.TransformConstraints, &skeleton.TransformConstraintData{
			Name:           cs.Name,
			Order:          cs.Order,
			Bones:          bones,
			Target:         target,
			OffsetRotation: cs.Rotation,
			OffsetX:        cs.X,
			OffsetY:        cs.Y,
			OffsetScaleX:   cs.ScaleX,
			OffsetScaleY:   cs.ScaleY,
			OffsetShearY:   cs.ShearY,
			RotateMix:      deref(cs.RotateMix, 1),
			TranslateMix:   deref(cs.TranslateMix, 1),
			ScaleMix:       deref(cs.ScaleMix, 1),
			ShearMix:       deref(cs.ShearMix, 1),
		})
	}

	for _, cs := range spec.Path {
		bones, err := findBones(cs.Name, cs.Bones)
		if err != nil {
			return err
		}
		target := data.FindSlot(cs.Target)
		if target == nil {
			return fmt.Errorf("prefabs: path constraint %q target slot %q: %w", cs.Name, cs.Target, ErrUnknownReference)
		}
		data.PathConstraints = append(data.PathConstraints, &skeleton.PathConstraintData{
			Name:         cs.Name,
			Order:        cs.Order,
			Bones:        bones,
			Target:       target,
			Position:     cs.Position,
			Spacing:      cs.Spacing,
			RotateMix:    deref(cs.RotateMix, 1),
			TranslateMix: deref(cs.TranslateMix, 1),
		})
	}
	return nil
}

type curved interface {
	Curves() *anim.Curves
}

func setCurve(tl curved, frame int, c CurveSpec) {
	curves := tl.Curves()
	switch {
	case c.Stepped:
		curves.SetStepped(frame)
	case len(c.Bezier) == 4:
		curves.SetBezier(frame, c.Bezier[0], c.Bezier[1], c.Bezier[2], c.Bezier[3])
	}
}

func buildAnimation(data *skeleton.Data, spec *AnimationSpec) (*anim.Animation, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("prefabs: animation without name: %w", ErrInvalidSpec)
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("prefabs: animation %q: "+format, append([]any{spec.Name}, args...)...)
	}

	var timelines []anim.Timeline

	for _, name := range sortedKeys(spec.Bones) {
		bone := data.FindBoneIndex(name)
		if bone < 0 {
			return nil, fail("bone %q: %w", name, ErrUnknownReference)
		}
		bt := spec.Bones[name]
		if keys := bt.Rotate; len(keys) > 0 {
			tl := anim.NewRotateTimeline(bone, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, k.Angle)
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
		if keys := bt.Translate; len(keys) > 0 {
			tl := anim.NewTranslateTimeline(bone, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, deref(k.X, 0), deref(k.Y, 0))
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
		if keys := bt.Scale; len(keys) > 0 {
			tl := anim.NewScaleTimeline(bone, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, deref(k.X, 1), deref(k.Y, 1))
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
		if keys := bt.Shear; len(keys) > 0 {
			tl := anim.NewShearTimeline(bone, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, deref(k.X, 0), deref(k.Y, 0))
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
	}

	for _, name := range sortedKeys(spec.Slots) {
		slot := data.FindSlotIndex(name)
		if slot < 0 {
			return nil, fail("slot %q: %w", name, ErrUnknownReference)
		}
		st := spec.Slots[name]
		if keys := st.Color; len(keys) > 0 {
			tl := anim.NewColorTimeline(slot, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, k.Color.SkeletonColor())
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
		if keys := st.Attachment; len(keys) > 0 {
			tl := anim.NewAttachmentTimeline(slot, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, k.Name)
			}
			timelines = append(timelines, tl)
		}
	}

	for _, skinName := range sortedKeys(spec.Deform) {
		skin := data.FindSkin(skinName)
		if skin == nil {
			return nil, fail("deform skin %q: %w", skinName, ErrUnknownReference)
		}
		slots := spec.Deform[skinName]
		for _, slotName := range sortedKeys(slots) {
			slot := data.FindSlotIndex(slotName)
			if slot < 0 {
				return nil, fail("deform slot %q: %w", slotName, ErrUnknownReference)
			}
			for _, attName := range sortedKeys(slots[slotName]) {
				vb, ok := skin.Attachment(slot, attName).(skeleton.VertexBearer)
				if !ok {
					return nil, fail("deform attachment %s/%s: %w", slotName, attName, ErrUnknownReference)
				}
				n := deformLength(vb.Vertex())
				keys := slots[slotName][attName]
				tl := anim.NewDeformTimeline(slot, vb, len(keys))
				for i, k := range keys {
					if k.Offset < 0 || k.Offset+len(k.Vertices) > n {
						return nil, fail("deform %s/%s key %d overflows %d values: %w", slotName, attName, i, n, ErrInvalidSpec)
					}
					offsets := make([]float32, n)
					copy(offsets[k.Offset:], k.Vertices)
					tl.SetFrame(i, k.Time, offsets)
					setCurve(tl, i, k.Curve)
				}
				timelines = append(timelines, tl)
			}
		}
	}

	if keys := spec.Events; len(keys) > 0 {
		tl := anim.NewEventTimeline(len(keys))
		for i, k := range keys {
			ed := data.FindEvent(k.Name)
			if ed == nil {
				return nil, fail("event %q: %w", k.Name, ErrUnknownReference)
			}
			ev := anim.NewEvent(k.Time, ed)
			if k.Int != nil {
				ev.Int = *k.Int
			}
			if k.Float != nil {
				ev.Float = *k.Float
			}
			if k.String != nil {
				ev.String = *k.String
			}
			tl.SetFrame(i, ev)
		}
		timelines = append(timelines, tl)
	}

	if keys := spec.DrawOrder; len(keys) > 0 {
		tl := anim.NewDrawOrderTimeline(len(keys))
		for i, k := range keys {
			order, err := drawOrder(data, k.Offsets)
			if err != nil {
				return nil, fail("draw order key %d: %w", i, err)
			}
			tl.SetFrame(i, k.Time, order)
		}
		timelines = append(timelines, tl)
	}

	for _, name := range sortedKeys(spec.Ik) {
		idx := ikIndex(data, name)
		if idx < 0 {
			return nil, fail("ik constraint %q: %w", name, ErrUnknownReference)
		}
		keys := spec.Ik[name]
		tl := anim.NewIkConstraintTimeline(idx, len(keys))
		for i, k := range keys {
			tl.SetFrame(i, k.Time, deref(k.Mix, 1), bendDirection(k.BendPositive))
			setCurve(tl, i, k.Curve)
		}
		timelines = append(timelines, tl)
	}

	for _, name := range sortedKeys(spec.Transform) {
		idx := transformIndex(data, name)
		if idx < 0 {
			return nil, fail("transform constraint %q: %w", name, ErrUnknownReference)
		}
		keys := spec.Transform[name]
		tl := anim.NewTransformConstraintTimeline(idx, len(keys))
		for i, k := range keys {
			tl.SetFrame(i, k.Time, deref(k.RotateMix, 1), deref(k.TranslateMix, 1), deref(k.ScaleMix, 1), deref(k.ShearMix, 1))
			setCurve(tl, i, k.Curve)
		}
		timelines = append(timelines, tl)
	}

	for _, name := range sortedKeys(spec.Path) {
		idx := pathIndex(data, name)
		if idx < 0 {
			return nil, fail("path constraint %q: %w", name, ErrUnknownReference)
		}
		pt := spec.Path[name]
		if keys := pt.Position; len(keys) > 0 {
			tl := anim.NewPathConstraintPositionTimeline(idx, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, k.Value)
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
		if keys := pt.Spacing; len(keys) > 0 {
			tl := anim.NewPathConstraintSpacingTimeline(idx, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, k.Value)
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
		if keys := pt.Mix; len(keys) > 0 {
			tl := anim.NewPathConstraintMixTimeline(idx, len(keys))
			for i, k := range keys {
				tl.SetFrame(i, k.Time, deref(k.RotateMix, 1), deref(k.TranslateMix, 1))
				setCurve(tl, i, k.Curve)
			}
			timelines = append(timelines, tl)
		}
	}

	var duration float32
	for _, tl := range timelines {
		duration = max(duration, tl.LastTime())
	}
	if spec.Duration != nil {
		duration = *spec.Duration
	}
	return anim.NewAnimation(spec.Name, timelines, duration), nil
}

func deformLength(v *skeleton.VertexAttachment) int {
	if v.Weighted() {
		return len(v.Vertices) / 3 * 2
	}
	return len(v.Vertices)
}

// drawOrder expands slot offsets into a full draw order. Slots without an
// offset keep their relative setup order in the remaining positions.
func drawOrder(data *skeleton.Data, offsets []DrawOrderOffset) ([]int, error) {
	if len(offsets) == 0 {
		return nil, nil
	}
	type move struct{ slot, offset int }
	moves := make([]move, 0, len(offsets))
	for _, o := range offsets {
		idx := data.FindSlotIndex(o.Slot)
		if idx < 0 {
			return nil, fmt.Errorf("slot %q: %w", o.Slot, ErrUnknownReference)
		}
		moves = append(moves, move{slot: idx, offset: o.Offset})
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].slot < moves[j].slot })

	n := len(data.Slots)
	order := make([]int, n)
	for i := range order {
		order[i] = -1
	}
	unchanged := make([]int, 0, n)
	original := 0
	for _, m := range moves {
		if m.slot < original {
			return nil, fmt.Errorf("slot %q offset listed twice: %w", data.Slots[m.slot].Name, ErrInvalidSpec)
		}
		for original != m.slot {
			unchanged = append(unchanged, original)
			original++
		}
		at := original + m.offset
		if at < 0 || at >= n || order[at] != -1 {
			return nil, fmt.Errorf("slot %q offset %d out of range: %w", data.Slots[m.slot].Name, m.offset, ErrInvalidSpec)
		}
		order[at] = original
		original++
	}
	for ; original < n; original++ {
		unchanged = append(unchanged, original)
	}
	for i := n - 1; i >= 0; i-- {
		if order[i] == -1 {
			last := len(unchanged) - 1
			order[i] = unchanged[last]
			unchanged = unchanged[:last]
		}
	}
	return order, nil
}

func ikIndex(data *skeleton.Data, name string) int {
	for i, c := range data.IkConstraints {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func transformIndex(data *skeleton.Data, name string) int {
	for i, c := range data.TransformConstraints {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func pathIndex(data *skeleton.Data, name string) int {
	for i, c := range data.PathConstraints {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func parseTransformMode(s string) (skeleton.TransformMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return skeleton.TransformNormal, nil
	case "only_translation", "onlytranslation":
		return skeleton.TransformOnlyTranslation, nil
	case "no_rotation_or_reflection", "norotationorreflection":
		return skeleton.TransformNoRotationOrReflection, nil
	case "no_scale", "noscale":
		return skeleton.TransformNoScale, nil
	case "no_scale_or_reflection", "noscaleorreflection":
		return skeleton.TransformNoScaleOrReflection, nil
	default:
		return 0, fmt.Errorf("unknown transform mode %q: %w", s, ErrInvalidSpec)
	}
}

func parseBlendMode(s string) (skeleton.BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return skeleton.BlendNormal, nil
	case "additive":
		return skeleton.BlendAdditive, nil
	case "multiply":
		return skeleton.BlendMultiply, nil
	case "screen":
		return skeleton.BlendScreen, nil
	default:
		return 0, fmt.Errorf("unknown blend mode %q: %w", s, ErrInvalidSpec)
	}
}

func bendDirection(positive *bool) int {
	if derefBool(positive, true) {
		return 1
	}
	return -1
}

func deref(p *float32, def float32) float32 {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
