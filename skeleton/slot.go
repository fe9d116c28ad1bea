package skeleton

type Slot struct {
	Data  *SlotData
	Bone  *Bone
	Color Color

	// Deform holds vertex positions written by deform timelines for the
	// current vertex attachment: absolute local positions when unweighted,
	// offsets per bone weight when weighted.
	Deform []float32

	attachment     Attachment
	attachmentTime float32
}

func (s *Slot) Attachment() Attachment {
	return s.attachment
}

// SetAttachment changes the visible attachment and clears the deform buffer.
// Setting the current attachment again is a no-op.
func (s *Slot) SetAttachment(a Attachment) {
	if s.attachment == a {
		return
	}
	s.attachment = a
	s.attachmentTime = s.Bone.skeleton.Time
	s.Deform = s.Deform[:0]
}

// AttachmentTime is the skeleton time elapsed since the attachment changed.
func (s *Slot) AttachmentTime() float32 {
	return s.Bone.skeleton.Time - s.attachmentTime
}

func (s *Slot) SetAttachmentTime(t float32) {
	s.attachmentTime = s.Bone.skeleton.Time - t
}

func (s *Slot) SetToSetupPose() {
	s.Color = s.Data.Color
	if s.Data.AttachmentName == "" {
		s.SetAttachment(nil)
		return
	}
	s.attachment = nil
	s.SetAttachment(s.Bone.skeleton.attachmentAt(s.Data.Index, s.Data.AttachmentName))
}
