package skeleton

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/spine/common"
)

type AttachmentType int

const (
	AttachmentRegion AttachmentType = iota
	AttachmentBoundingBox
	AttachmentMesh
	AttachmentLinkedMesh
	AttachmentPath
)

func (t AttachmentType) String() string {
	switch t {
	case AttachmentRegion:
		return "region"
	case AttachmentBoundingBox:
		return "bounding_box"
	case AttachmentMesh:
		return "mesh"
	case AttachmentLinkedMesh:
		return "linked_mesh"
	case AttachmentPath:
		return "path"
	default:
		return fmt.Sprintf("attachment(%d)", int(t))
	}
}

// Attachment is implemented by every attachment variant. Variants are plain
// data distinguished by Type.
type Attachment interface {
	Name() string
	Type() AttachmentType
}

// VertexBearer is implemented by attachments whose geometry is a vertex list.
type VertexBearer interface {
	Attachment
	Vertex() *VertexAttachment
	// AppliesDeform reports whether deform keys authored for source apply here.
	AppliesDeform(source Attachment) bool
}

type named struct {
	name string
}

func (n named) Name() string {
	return n.name
}

type RegionAttachment struct {
	named

	Path           string
	X, Y           float32
	Rotation       float32
	ScaleX, ScaleY float32
	Width, Height  float32
	Color          Color

	offset [8]float32
}

func NewRegionAttachment(name string) *RegionAttachment {
	return &RegionAttachment{
		named:  named{name: name},
		ScaleX: 1,
		ScaleY: 1,
		Color:  White,
	}
}

func (r *RegionAttachment) Type() AttachmentType {
	return AttachmentRegion
}

// UpdateOffset recomputes the four local corners. Call it after changing the
// region geometry.
func (r *RegionAttachment) UpdateOffset() {
	localX := -r.Width / 2 * r.ScaleX
	localY := -r.Height / 2 * r.ScaleY
	localX2 := -localX
	localY2 := -localY
	cos := common.CosDeg(r.Rotation)
	sin := common.SinDeg(r.Rotation)

	localXCos := localX*cos + r.X
	localXSin := localX * sin
	localYCos := localY*cos + r.Y
	localYSin := localY * sin
	localX2Cos := localX2*cos + r.X
	localX2Sin := localX2 * sin
	localY2Cos := localY2*cos + r.Y
	localY2Sin := localY2 * sin

	r.offset = [8]float32{
		localXCos - localYSin, localYCos + localXSin, // bottom left
		localXCos - localY2Sin, localY2Cos + localXSin, // upper left
		localX2Cos - localY2Sin, localY2Cos + localX2Sin, // upper right
		localX2Cos - localYSin, localYCos + localX2Sin, // bottom right
	}
}

// ComputeWorldVertices writes the four world corners into out, which must
// hold at least 8 floats, and returns it.
func (r *RegionAttachment) ComputeWorldVertices(bone *Bone, out []float32) []float32 {
	if len(out) < 8 {
		out = make([]float32, 8)
	}
	m := bone.WorldMatrix()
	for i := 0; i < 8; i += 2 {
		p := m.Mul3x1(mgl32.Vec3{r.offset[i], r.offset[i+1], 1})
		out[i], out[i+1] = p.X(), p.Y()
	}
	return out[:8]
}

// VertexAttachment holds either unweighted vertices (x, y pairs relative to
// the slot bone) or weighted ones. Weighted layout: Bones holds, per vertex,
// a bone count followed by that many bone indices; Vertices holds x, y,
// weight triples for each of those bones.
type VertexAttachment struct {
	named

	Bones               []int
	Vertices            []float32
	WorldVerticesLength int
}

func (v *VertexAttachment) Vertex() *VertexAttachment {
	return v
}

func (v *VertexAttachment) Weighted() bool {
	return len(v.Bones) > 0
}

// ComputeWorldVertices transforms all vertices into world space, honoring the
// slot's deform offsets, and returns out resized to WorldVerticesLength.
func (v *VertexAttachment) ComputeWorldVertices(slot *Slot, out []float32) []float32 {
	n := v.WorldVerticesLength
	if cap(out) < n {
		out = make([]float32, n)
	}
	out = out[:n]
	deform := slot.Deform

	if !v.Weighted() {
		vertices := v.Vertices
		if len(deform) > 0 {
			vertices = deform
		}
		bone := slot.Bone
		for i := 0; i+1 < len(vertices) && i+1 < n; i += 2 {
			vx, vy := vertices[i], vertices[i+1]
			out[i] = vx*bone.A + vy*bone.B + bone.WorldX
			out[i+1] = vx*bone.C + vy*bone.D + bone.WorldY
		}
		return out
	}

	bones := slot.Bone.skeleton.Bones
	vi, b, f := 0, 0, 0
	for w := 0; w+1 < n; w += 2 {
		var wx, wy float32
		count := v.Bones[vi]
		vi++
		for end := vi + count; vi < end; vi, b, f = vi+1, b+3, f+2 {
			bone := bones[v.Bones[vi]]
			vx, vy, weight := v.Vertices[b], v.Vertices[b+1], v.Vertices[b+2]
			if len(deform) > 0 {
				vx += deform[f]
				vy += deform[f+1]
			}
			wx += (vx*bone.A + vy*bone.B + bone.WorldX) * weight
			wy += (vx*bone.C + vy*bone.D + bone.WorldY) * weight
		}
		out[w] = wx
		out[w+1] = wy
	}
	return out
}

func (v *VertexAttachment) AppliesDeform(source Attachment) bool {
	vb, ok := source.(VertexBearer)
	return ok && vb.Vertex() == v
}

type BoundingBoxAttachment struct {
	VertexAttachment
	Color Color
}

func NewBoundingBoxAttachment(name string) *BoundingBoxAttachment {
	return &BoundingBoxAttachment{
		VertexAttachment: VertexAttachment{named: named{name: name}},
		Color:            White,
	}
}

func (b *BoundingBoxAttachment) Type() AttachmentType {
	return AttachmentBoundingBox
}

type MeshAttachment struct {
	VertexAttachment

	Path       string
	RegionUVs  []float32
	Triangles  []uint16
	// HullLength counts floats, two per hull vertex.
	HullLength int
	Color      Color
}

func NewMeshAttachment(name string) *MeshAttachment {
	return &MeshAttachment{
		VertexAttachment: VertexAttachment{named: named{name: name}},
		Color:            White,
	}
}

func (m *MeshAttachment) Type() AttachmentType {
	return AttachmentMesh
}

// LinkedMeshAttachment shares the geometry of a parent mesh.
type LinkedMeshAttachment struct {
	MeshAttachment

	ParentName    string
	SkinName      string
	InheritDeform bool

	parent *MeshAttachment
}

func NewLinkedMeshAttachment(name, parent string) *LinkedMeshAttachment {
	return &LinkedMeshAttachment{
		MeshAttachment: *NewMeshAttachment(name),
		ParentName:     parent,
		InheritDeform:  true,
	}
}

func (l *LinkedMeshAttachment) Type() AttachmentType {
	return AttachmentLinkedMesh
}

func (l *LinkedMeshAttachment) ParentMesh() *MeshAttachment {
	return l.parent
}

// SetParentMesh links the geometry of parent into this mesh.
func (l *LinkedMeshAttachment) SetParentMesh(parent *MeshAttachment) {
	l.parent = parent
	if parent == nil {
		return
	}
	l.Bones = parent.Bones
	l.Vertices = parent.Vertices
	l.WorldVerticesLength = parent.WorldVerticesLength
	l.RegionUVs = parent.RegionUVs
	l.Triangles = parent.Triangles
	l.HullLength = parent.HullLength
}

func (l *LinkedMeshAttachment) AppliesDeform(source Attachment) bool {
	vb, ok := source.(VertexBearer)
	if !ok {
		return false
	}
	if vb.Vertex() == &l.VertexAttachment {
		return true
	}
	return l.InheritDeform && l.parent != nil && vb.Vertex() == &l.parent.VertexAttachment
}

type PathAttachment struct {
	VertexAttachment

	Lengths       []float32
	Closed        bool
	ConstantSpeed bool
}

func NewPathAttachment(name string) *PathAttachment {
	return &PathAttachment{
		VertexAttachment: VertexAttachment{named: named{name: name}},
		ConstantSpeed:    true,
	}
}

func (p *PathAttachment) Type() AttachmentType {
	return AttachmentPath
}
