package skeleton

import (
	"math"

	"github.com/milk9111/spine/common"
)

// Solver adjusts bone applied transforms after timelines have posed the
// skeleton. Solvers run in Order between the two world passes of
// Skeleton.UpdateWorldTransform.
type Solver interface {
	Order() int
	Solve(s *Skeleton)
}

// PathSolverFunc solves a path constraint. Path constraints have no built-in
// solver; hosts install one with Skeleton.SetPathSolver.
type PathSolverFunc func(s *Skeleton, c *PathConstraint)

type IkConstraint struct {
	Data          *IkConstraintData
	Bones         []*Bone
	Target        *Bone
	Mix           float32
	BendDirection int
}

func newIkConstraint(data *IkConstraintData, skel *Skeleton) *IkConstraint {
	c := &IkConstraint{Data: data, Target: skel.Bones[data.Target.Index]}
	for _, b := range data.Bones {
		c.Bones = append(c.Bones, skel.Bones[b.Index])
	}
	c.SetToSetupPose()
	return c
}

func (c *IkConstraint) SetToSetupPose() {
	c.Mix = c.Data.Mix
	c.BendDirection = c.Data.BendDirection
}

func (c *IkConstraint) Order() int {
	return c.Data.Order
}

func (c *IkConstraint) Solve(_ *Skeleton) {
	switch len(c.Bones) {
	case 1:
		SolveIkOneBone(c.Bones[0], c.Target.WorldX, c.Target.WorldY, c.Mix)
	case 2:
		SolveIkTwoBone(c.Bones[0], c.Bones[1], c.Target.WorldX, c.Target.WorldY, c.BendDirection, c.Mix)
	}
}

// SolveIkOneBone rotates bone so it points at the world target.
func SolveIkOneBone(bone *Bone, targetX, targetY, alpha float32) {
	if alpha == 0 {
		return
	}
	pa, pb, pc, pd, pwx, pwy := bone.parentFrame()
	det := pa*pd - pb*pc
	if det == 0 {
		return
	}
	id := 1 / det
	x := targetX - pwx
	y := targetY - pwy
	tx := (x*pd-y*pb)*id - bone.AX
	ty := (y*pa-x*pc)*id - bone.AY
	rotationIK := common.Atan2Deg(ty, tx) - bone.AShearX - bone.ARotation
	if bone.AScaleX < 0 {
		rotationIK += 180
	}
	if rotationIK > 180 {
		rotationIK -= 360
	} else if rotationIK < -180 {
		rotationIK += 360
	}
	bone.UpdateWorldTransformWith(bone.AX, bone.AY, bone.ARotation+rotationIK*alpha,
		bone.AScaleX, bone.AScaleY, bone.AShearX, bone.AShearY)
}

// SolveIkTwoBone bends parent and child so the child tip reaches the target.
// bendDir is 1 or -1.
func SolveIkTwoBone(parent, child *Bone, targetX, targetY float32, bendDir int, alpha float32) {
	if alpha == 0 {
		return
	}
	px, py := parent.AX, parent.AY
	psx, psy, csx := parent.AScaleX, parent.AScaleY, child.AScaleX
	var os1, os2, s2 float32
	if psx < 0 {
		psx = -psx
		os1 = 180
		s2 = -1
	} else {
		os1 = 0
		s2 = 1
	}
	if psy < 0 {
		psy = -psy
		s2 = -s2
	}
	if csx < 0 {
		csx = -csx
		os2 = 180
	}

	cx := child.AX
	var cy, cwx, cwy float32
	a, b, c, d := parent.A, parent.B, parent.C, parent.D
	uniform := common.Abs(psx-psy) <= 0.0001
	if !uniform {
		cy = 0
		cwx = a*cx + parent.WorldX
		cwy = c*cx + parent.WorldY
	} else {
		cy = child.AY
		cwx = a*cx + b*cy + parent.WorldX
		cwy = c*cx + d*cy + parent.WorldY
	}

	a, b, c, d, ppx, ppy := parent.parentFrame()
	det := a*d - b*c
	if det == 0 {
		return
	}
	id := 1 / det
	x := targetX - ppx
	y := targetY - ppy
	tx := (x*d-y*b)*id - px
	ty := (y*a-x*c)*id - py
	x = cwx - ppx
	y = cwy - ppy
	dx := (x*d-y*b)*id - px
	dy := (y*a-x*c)*id - py
	l1 := common.Sqrt(dx*dx + dy*dy)
	l2 := child.Data.Length * csx
	bend := float32(bendDir)
	var a1, a2 float32

	if uniform {
		l2 *= psx
		var cos float32 = 1
		if l1 != 0 && l2 != 0 {
			cos = common.Clamp((tx*tx+ty*ty-l1*l1-l2*l2)/(2*l1*l2), -1, 1)
		}
		a2 = float32(math.Acos(float64(cos))) * bend
		a = l1 + l2*cos
		b = l2 * float32(math.Sin(float64(a2)))
		a1 = common.Atan2(ty*a-tx*b, tx*a+ty*b)
	} else {
		a1, a2 = solveNonUniform(l1, l2, psx, psy, tx, ty, bend)
	}

	offset := common.Atan2(cy, cx) * s2
	rotation := parent.ARotation
	a1 = (a1-offset)*common.RadDeg + os1 - rotation
	if a1 > 180 {
		a1 -= 360
	} else if a1 < -180 {
		a1 += 360
	}
	parent.UpdateWorldTransformWith(px, py, rotation+a1*alpha, parent.AScaleX, parent.AScaleY, 0, 0)

	rotation = child.ARotation
	a2 = ((a2+offset)*common.RadDeg-child.AShearX)*s2 + os2 - rotation
	if a2 > 180 {
		a2 -= 360
	} else if a2 < -180 {
		a2 += 360
	}
	child.UpdateWorldTransformWith(cx, cy, rotation+a2*alpha, child.AScaleX, child.AScaleY, child.AShearX, child.AShearY)
}

func solveNonUniform(l1, l2, psx, psy, tx, ty, bend float32) (a1, a2 float32) {
	a := psx * l2
	b := psy * l2
	aa, bb := a*a, b*b
	dd := tx*tx + ty*ty
	ta := common.Atan2(ty, tx)
	c := bb*l1*l1 + aa*dd - aa*bb
	c1 := -2 * bb * l1
	c2 := bb - aa
	d := c1*c1 - 4*c2*c
	if d >= 0 && c2 != 0 {
		q := common.Sqrt(d)
		if c1 < 0 {
			q = -q
		}
		q = -(c1 + q) / 2
		r0 := q / c2
		r1 := c / q
		r := r1
		if common.Abs(r0) < common.Abs(r1) {
			r = r0
		}
		if r*r <= dd {
			y := common.Sqrt(dd-r*r) * bend
			a1 = ta - common.Atan2(y, r)
			a2 = common.Atan2(y/psy, (r-l1)/psx)
			return a1, a2
		}
	}

	minAngle := float32(math.Pi)
	minX := l1 - a
	minDist := minX * minX
	var minY float32
	var maxAngle float32
	maxX := l1 + a
	maxDist := maxX * maxX
	var maxY float32
	if aa != bb {
		c = -a * l1 / (aa - bb)
		if c >= -1 && c <= 1 {
			c = float32(math.Acos(float64(c)))
			x := a*float32(math.Cos(float64(c))) + l1
			y := b * float32(math.Sin(float64(c)))
			d = x*x + y*y
			if d < minDist {
				minAngle, minDist, minX, minY = c, d, x, y
			}
			if d > maxDist {
				maxAngle, maxDist, maxX, maxY = c, d, x, y
			}
		}
	}
	if dd <= (minDist+maxDist)/2 {
		return ta - common.Atan2(minY*bend, minX), minAngle * bend
	}
	return ta - common.Atan2(maxY*bend, maxX), maxAngle * bend
}

type TransformConstraint struct {
	Data   *TransformConstraintData
	Bones  []*Bone
	Target *Bone

	RotateMix    float32
	TranslateMix float32
	ScaleMix     float32
	ShearMix     float32
}

func newTransformConstraint(data *TransformConstraintData, skel *Skeleton) *TransformConstraint {
	c := &TransformConstraint{Data: data, Target: skel.Bones[data.Target.Index]}
	for _, b := range data.Bones {
		c.Bones = append(c.Bones, skel.Bones[b.Index])
	}
	c.SetToSetupPose()
	return c
}

func (c *TransformConstraint) SetToSetupPose() {
	c.RotateMix = c.Data.RotateMix
	c.TranslateMix = c.Data.TranslateMix
	c.ScaleMix = c.Data.ScaleMix
	c.ShearMix = c.Data.ShearMix
}

func (c *TransformConstraint) Order() int {
	return c.Data.Order
}

// Solve moves each constrained bone's applied local transform toward the
// target's applied local transform plus the configured offsets.
func (c *TransformConstraint) Solve(_ *Skeleton) {
	t := c.Target
	d := c.Data
	for _, bone := range c.Bones {
		rotation := bone.ARotation
		if c.RotateMix != 0 {
			r := common.WrapDegrees(t.ARotation - rotation + d.OffsetRotation)
			rotation += r * c.RotateMix
		}

		x, y := bone.AX, bone.AY
		if c.TranslateMix != 0 {
			x += (t.AX - x + d.OffsetX) * c.TranslateMix
			y += (t.AY - y + d.OffsetY) * c.TranslateMix
		}

		scaleX, scaleY := bone.AScaleX, bone.AScaleY
		if c.ScaleMix != 0 {
			scaleX += (t.AScaleX - scaleX + d.OffsetScaleX) * c.ScaleMix
			scaleY += (t.AScaleY - scaleY + d.OffsetScaleY) * c.ScaleMix
		}

		shearY := bone.AShearY
		if c.ShearMix != 0 {
			r := common.WrapDegrees(t.AShearY - shearY + d.OffsetShearY)
			shearY += r * c.ShearMix
		}

		bone.UpdateWorldTransformWith(x, y, rotation, scaleX, scaleY, bone.AShearX, shearY)
	}
}

// PathConstraint carries the interpolated path parameters. It is solved only
// when the skeleton has a path solver installed.
type PathConstraint struct {
	Data   *PathConstraintData
	Bones  []*Bone
	Target *Slot

	Position     float32
	Spacing      float32
	RotateMix    float32
	TranslateMix float32
}

func newPathConstraint(data *PathConstraintData, skel *Skeleton) *PathConstraint {
	c := &PathConstraint{Data: data, Target: skel.Slots[data.Target.Index]}
	for _, b := range data.Bones {
		c.Bones = append(c.Bones, skel.Bones[b.Index])
	}
	c.SetToSetupPose()
	return c
}

func (c *PathConstraint) SetToSetupPose() {
	c.Position = c.Data.Position
	c.Spacing = c.Data.Spacing
	c.RotateMix = c.Data.RotateMix
	c.TranslateMix = c.Data.TranslateMix
}

func (c *PathConstraint) Order() int {
	return c.Data.Order
}

func (c *PathConstraint) Solve(s *Skeleton) {
	if s.pathSolver == nil {
		return
	}
	s.pathSolver(s, c)
}
