package skeleton

import (
	"fmt"
	"math"
	"sort"
)

// Skeleton is the mutable pose of one character instance. Nothing in a
// Skeleton is shared with other instances built from the same Data.
type Skeleton struct {
	Data      *Data
	Bones     []*Bone
	Slots     []*Slot
	DrawOrder []*Slot
	Skin      *Skin
	Color     Color

	IkConstraints        []*IkConstraint
	TransformConstraints []*TransformConstraint
	PathConstraints      []*PathConstraint

	X, Y         float32
	FlipX, FlipY bool
	Time         float32

	solvers    []Solver
	pathSolver PathSolverFunc
}

// New builds a skeleton in its setup pose. Data is finalized on first use.
func New(data *Data) (*Skeleton, error) {
	if data == nil {
		return nil, fmt.Errorf("skeleton: new: nil data: %w", ErrInvalidHierarchy)
	}
	if !data.Finalized() {
		if err := data.Finalize(); err != nil {
			return nil, err
		}
	}

	s := &Skeleton{Data: data, Color: White}
	s.Bones = make([]*Bone, 0, len(data.Bones))
	for _, bd := range data.Bones {
		var parent *Bone
		if bd.Parent != nil {
			parent = s.Bones[bd.Parent.Index]
		}
		b := newBone(bd, s, parent)
		if parent != nil {
			parent.Children = append(parent.Children, b)
		}
		s.Bones = append(s.Bones, b)
	}

	s.Slots = make([]*Slot, 0, len(data.Slots))
	for _, sd := range data.Slots {
		s.Slots = append(s.Slots, &Slot{Data: sd, Bone: s.Bones[sd.BoneData.Index], Color: sd.Color})
	}
	s.DrawOrder = append([]*Slot(nil), s.Slots...)

	for _, cd := range data.IkConstraints {
		c := newIkConstraint(cd, s)
		s.IkConstraints = append(s.IkConstraints, c)
		s.solvers = append(s.solvers, c)
	}
	for _, cd := range data.TransformConstraints {
		c := newTransformConstraint(cd, s)
		s.TransformConstraints = append(s.TransformConstraints, c)
		s.solvers = append(s.solvers, c)
	}
	for _, cd := range data.PathConstraints {
		c := newPathConstraint(cd, s)
		s.PathConstraints = append(s.PathConstraints, c)
		s.solvers = append(s.solvers, c)
	}
	s.sortSolvers()

	s.SetToSetupPose()
	s.UpdateWorldTransform()
	return s, nil
}

func (s *Skeleton) sortSolvers() {
	sort.SliceStable(s.solvers, func(i, j int) bool {
		return s.solvers[i].Order() < s.solvers[j].Order()
	})
}

// AddSolver registers an extra host solver.
func (s *Skeleton) AddSolver(solver Solver) {
	if solver == nil {
		return
	}
	s.solvers = append(s.solvers, solver)
	s.sortSolvers()
}

func (s *Skeleton) SetPathSolver(fn PathSolverFunc) {
	s.pathSolver = fn
}

// UpdateWorldTransform computes world transforms from the local pose, runs
// the constraint solvers, then recomputes world transforms so children follow
// solved bones.
func (s *Skeleton) UpdateWorldTransform() {
	for _, b := range s.Bones {
		b.UpdateWorldTransform()
	}
	if len(s.solvers) == 0 {
		return
	}
	for _, solver := range s.solvers {
		solver.Solve(s)
	}
	for _, b := range s.Bones {
		b.UpdateAppliedWorldTransform()
	}
}

func (s *Skeleton) SetToSetupPose() {
	s.SetBonesToSetupPose()
	s.SetSlotsToSetupPose()
}

func (s *Skeleton) SetBonesToSetupPose() {
	for _, b := range s.Bones {
		b.SetToSetupPose()
	}
	for _, c := range s.IkConstraints {
		c.SetToSetupPose()
	}
	for _, c := range s.TransformConstraints {
		c.SetToSetupPose()
	}
	for _, c := range s.PathConstraints {
		c.SetToSetupPose()
	}
}

func (s *Skeleton) SetSlotsToSetupPose() {
	copy(s.DrawOrder, s.Slots)
	for _, slot := range s.Slots {
		slot.SetToSetupPose()
	}
}

func (s *Skeleton) Update(delta float32) {
	s.Time += delta
}

func (s *Skeleton) FindBone(name string) *Bone {
	for _, b := range s.Bones {
		if b.Data.Name == name {
			return b
		}
	}
	return nil
}

func (s *Skeleton) FindBoneIndex(name string) int {
	return s.Data.FindBoneIndex(name)
}

func (s *Skeleton) FindSlot(name string) *Slot {
	for _, slot := range s.Slots {
		if slot.Data.Name == name {
			return slot
		}
	}
	return nil
}

func (s *Skeleton) FindSlotIndex(name string) int {
	return s.Data.FindSlotIndex(name)
}

func (s *Skeleton) FindIkConstraint(name string) *IkConstraint {
	for _, c := range s.IkConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

func (s *Skeleton) FindTransformConstraint(name string) *TransformConstraint {
	for _, c := range s.TransformConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

func (s *Skeleton) FindPathConstraint(name string) *PathConstraint {
	for _, c := range s.PathConstraints {
		if c.Data.Name == name {
			return c
		}
	}
	return nil
}

// attachmentAt looks in the active skin first, then the default skin.
func (s *Skeleton) attachmentAt(slotIndex int, name string) Attachment {
	if name == "" {
		return nil
	}
	if a := s.Skin.Attachment(slotIndex, name); a != nil {
		return a
	}
	return s.Data.DefaultSkin.Attachment(slotIndex, name)
}

// AttachmentAt resolves an attachment by slot index through the active and
// default skins.
func (s *Skeleton) AttachmentAt(slotIndex int, name string) (Attachment, error) {
	a := s.attachmentAt(slotIndex, name)
	if a == nil {
		return nil, fmt.Errorf("skeleton: attachment %q in slot %d: %w", name, slotIndex, ErrNotFound)
	}
	return a, nil
}

func (s *Skeleton) GetAttachment(slotName, attachmentName string) (Attachment, error) {
	idx := s.FindSlotIndex(slotName)
	if idx < 0 {
		return nil, fmt.Errorf("skeleton: slot %q: %w", slotName, ErrNotFound)
	}
	a := s.attachmentAt(idx, attachmentName)
	if a == nil {
		return nil, fmt.Errorf("skeleton: attachment %q in slot %q: %w", attachmentName, slotName, ErrNotFound)
	}
	return a, nil
}

// SetAttachment shows the named attachment in the slot. An empty attachment
// name hides the slot.
func (s *Skeleton) SetAttachment(slotName, attachmentName string) error {
	idx := s.FindSlotIndex(slotName)
	if idx < 0 {
		return fmt.Errorf("skeleton: slot %q: %w", slotName, ErrNotFound)
	}
	slot := s.Slots[idx]
	if attachmentName == "" {
		slot.SetAttachment(nil)
		return nil
	}
	a := s.attachmentAt(idx, attachmentName)
	if a == nil {
		return fmt.Errorf("skeleton: attachment %q in slot %q: %w", attachmentName, slotName, ErrNotFound)
	}
	slot.SetAttachment(a)
	return nil
}

// SetSkin switches to the named skin. An empty name removes the active skin.
func (s *Skeleton) SetSkin(name string) error {
	if name == "" {
		s.Skin = nil
		return nil
	}
	skin := s.Data.FindSkin(name)
	if skin == nil {
		return fmt.Errorf("skeleton: skin %q: %w", name, ErrNotFound)
	}
	s.applySkin(skin)
	return nil
}

func (s *Skeleton) applySkin(skin *Skin) {
	if s.Skin != nil {
		skin.AttachAll(s, s.Skin)
	} else {
		for i, slot := range s.Slots {
			if slot.Data.AttachmentName == "" {
				continue
			}
			if a := skin.Attachment(i, slot.Data.AttachmentName); a != nil {
				slot.SetAttachment(a)
			}
		}
	}
	s.Skin = skin
}

// Bounds returns the axis-aligned box around every visible region, mesh and
// bounding box attachment. ok is false when nothing is visible.
func (s *Skeleton) Bounds() (minX, minY, maxX, maxY float32, ok bool) {
	minX, minY = math.MaxFloat32, math.MaxFloat32
	maxX, maxY = -math.MaxFloat32, -math.MaxFloat32
	var buf []float32
	for _, slot := range s.DrawOrder {
		var verts []float32
		switch a := slot.Attachment().(type) {
		case *RegionAttachment:
			verts = a.ComputeWorldVertices(slot.Bone, buf)
		case *MeshAttachment:
			verts = a.ComputeWorldVertices(slot, buf)
		case *LinkedMeshAttachment:
			verts = a.ComputeWorldVertices(slot, buf)
		case *BoundingBoxAttachment:
			verts = a.ComputeWorldVertices(slot, buf)
		default:
			continue
		}
		for i := 0; i+1 < len(verts); i += 2 {
			x, y := verts[i], verts[i+1]
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
			ok = true
		}
		buf = verts
	}
	if !ok {
		return 0, 0, 0, 0, false
	}
	return minX, minY, maxX, maxY, true
}
