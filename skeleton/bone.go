package skeleton

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/spine/common"
)

// Bone is the runtime pose of one BoneData. Timelines write the local
// transform; constraint solvers write the applied transform.
type Bone struct {
	Data     *BoneData
	Parent   *Bone
	Children []*Bone

	X, Y           float32
	Rotation       float32
	ScaleX, ScaleY float32
	ShearX, ShearY float32

	AX, AY           float32
	ARotation        float32
	AScaleX, AScaleY float32
	AShearX, AShearY float32

	A, B, C, D     float32
	WorldX, WorldY float32

	skeleton *Skeleton
}

func newBone(data *BoneData, skel *Skeleton, parent *Bone) *Bone {
	b := &Bone{Data: data, Parent: parent, skeleton: skel}
	b.SetToSetupPose()
	return b
}

func (b *Bone) Skeleton() *Skeleton {
	return b.skeleton
}

func (b *Bone) SetToSetupPose() {
	d := b.Data
	b.X = d.X
	b.Y = d.Y
	b.Rotation = d.Rotation
	b.ScaleX = d.ScaleX
	b.ScaleY = d.ScaleY
	b.ShearX = d.ShearX
	b.ShearY = d.ShearY
}

// UpdateWorldTransform recomputes the world transform from the local pose.
// The parent's world transform must already be current.
func (b *Bone) UpdateWorldTransform() {
	b.UpdateWorldTransformWith(b.X, b.Y, b.Rotation, b.ScaleX, b.ScaleY, b.ShearX, b.ShearY)
}

// UpdateAppliedWorldTransform recomputes the world transform from the applied
// pose left by the last world pass or constraint solver.
func (b *Bone) UpdateAppliedWorldTransform() {
	b.UpdateWorldTransformWith(b.AX, b.AY, b.ARotation, b.AScaleX, b.AScaleY, b.AShearX, b.AShearY)
}

func (b *Bone) UpdateWorldTransformWith(x, y, rotation, scaleX, scaleY, shearX, shearY float32) {
	b.AX, b.AY = x, y
	b.ARotation = rotation
	b.AScaleX, b.AScaleY = scaleX, scaleY
	b.AShearX, b.AShearY = shearX, shearY

	var flipX, flipY bool
	var originX, originY float32
	if b.skeleton != nil {
		flipX, flipY = b.skeleton.FlipX, b.skeleton.FlipY
		originX, originY = b.skeleton.X, b.skeleton.Y
	}

	parent := b.Parent
	if parent == nil {
		rotationY := rotation + 90 + shearY
		la := common.CosDeg(rotation+shearX) * scaleX
		lb := common.CosDeg(rotationY) * scaleY
		lc := common.SinDeg(rotation+shearX) * scaleX
		ld := common.SinDeg(rotationY) * scaleY
		if flipX {
			x = -x
			la = -la
			lb = -lb
		}
		if flipY {
			y = -y
			lc = -lc
			ld = -ld
		}
		b.A, b.B, b.C, b.D = la, lb, lc, ld
		b.WorldX = x + originX
		b.WorldY = y + originY
		return
	}

	pa, pb, pc, pd := parent.A, parent.B, parent.C, parent.D
	b.WorldX = pa*x + pb*y + parent.WorldX
	b.WorldY = pc*x + pd*y + parent.WorldY

	switch b.Data.TransformMode {
	case TransformNormal:
		rotationY := rotation + 90 + shearY
		la := common.CosDeg(rotation+shearX) * scaleX
		lb := common.CosDeg(rotationY) * scaleY
		lc := common.SinDeg(rotation+shearX) * scaleX
		ld := common.SinDeg(rotationY) * scaleY
		b.A = pa*la + pb*lc
		b.B = pa*lb + pb*ld
		b.C = pc*la + pd*lc
		b.D = pc*lb + pd*ld
		return
	case TransformOnlyTranslation:
		rotationY := rotation + 90 + shearY
		b.A = common.CosDeg(rotation+shearX) * scaleX
		b.B = common.CosDeg(rotationY) * scaleY
		b.C = common.SinDeg(rotation+shearX) * scaleX
		b.D = common.SinDeg(rotationY) * scaleY
	case TransformNoRotationOrReflection:
		s := pa*pa + pc*pc
		var prx float32
		if s > 0.0001 {
			s = common.Abs(pa*pd-pb*pc) / s
			pb = pc * s
			pd = pa * s
			prx = common.Atan2Deg(pc, pa)
		} else {
			pa = 0
			pc = 0
			prx = 90 - common.Atan2Deg(pd, pb)
		}
		rx := rotation + shearX - prx
		ry := rotation + shearY - prx + 90
		la := common.CosDeg(rx) * scaleX
		lb := common.CosDeg(ry) * scaleY
		lc := common.SinDeg(rx) * scaleX
		ld := common.SinDeg(ry) * scaleY
		b.A = pa*la - pb*lc
		b.B = pa*lb - pb*ld
		b.C = pc*la + pd*lc
		b.D = pc*lb + pd*ld
	case TransformNoScale, TransformNoScaleOrReflection:
		cos := common.CosDeg(rotation)
		sin := common.SinDeg(rotation)
		za := pa*cos + pb*sin
		zc := pc*cos + pd*sin
		s := common.Sqrt(za*za + zc*zc)
		if s > 0.00001 {
			s = 1 / s
		}
		za *= s
		zc *= s
		s = common.Sqrt(za*za + zc*zc)
		r := math.Pi/2 + common.Atan2(zc, za)
		zb := float32(math.Cos(float64(r))) * s
		zd := float32(math.Sin(float64(r))) * s
		la := common.CosDeg(shearX) * scaleX
		lb := common.CosDeg(90+shearY) * scaleY
		lc := common.SinDeg(shearX) * scaleX
		ld := common.SinDeg(90+shearY) * scaleY
		if b.Data.TransformMode == TransformNoScale && (pa*pd-pb*pc < 0) != (flipX != flipY) {
			zb = -zb
			zd = -zd
		}
		b.A = za*la + zb*lc
		b.B = za*lb + zb*ld
		b.C = zc*la + zd*lc
		b.D = zc*lb + zd*ld
		return
	}

	if flipX {
		b.A = -b.A
		b.B = -b.B
	}
	if flipY {
		b.C = -b.C
		b.D = -b.D
	}
}

func (b *Bone) WorldRotationX() float32 {
	return common.Atan2Deg(b.C, b.A)
}

func (b *Bone) WorldRotationY() float32 {
	return common.Atan2Deg(b.D, b.B)
}

func (b *Bone) WorldScaleX() float32 {
	return common.Sqrt(b.A*b.A + b.C*b.C)
}

func (b *Bone) WorldScaleY() float32 {
	return common.Sqrt(b.B*b.B + b.D*b.D)
}

func (b *Bone) LocalToWorld(x, y float32) (float32, float32) {
	return x*b.A + y*b.B + b.WorldX, x*b.C + y*b.D + b.WorldY
}

func (b *Bone) WorldToLocal(x, y float32) (float32, float32) {
	det := b.A*b.D - b.B*b.C
	if det == 0 {
		return 0, 0
	}
	inv := 1 / det
	x -= b.WorldX
	y -= b.WorldY
	return (x*b.D - y*b.B) * inv, (y*b.A - x*b.C) * inv
}

// WorldMatrix returns the world transform as a column-major affine matrix.
func (b *Bone) WorldMatrix() mgl32.Mat3 {
	return common.Affine(b.A, b.B, b.C, b.D, b.WorldX, b.WorldY)
}

// parentFrame returns the world frame bones without a parent are placed in.
func (b *Bone) parentFrame() (pa, pb, pc, pd, wx, wy float32) {
	if p := b.Parent; p != nil {
		return p.A, p.B, p.C, p.D, p.WorldX, p.WorldY
	}
	pa, pd = 1, 1
	if b.skeleton != nil {
		if b.skeleton.FlipX {
			pa = -1
		}
		if b.skeleton.FlipY {
			pd = -1
		}
		wx, wy = b.skeleton.X, b.skeleton.Y
	}
	return pa, 0, 0, pd, wx, wy
}
