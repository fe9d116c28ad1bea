package skeleton

import "sort"

type skinKey struct {
	slot int
	name string
}

// SkinEntry is one attachment registered in a skin.
type SkinEntry struct {
	SlotIndex  int
	Name       string
	Attachment Attachment
}

// Skin maps (slot, attachment name) pairs to attachments.
type Skin struct {
	Name        string
	attachments map[skinKey]Attachment
}

func NewSkin(name string) *Skin {
	return &Skin{Name: name, attachments: make(map[skinKey]Attachment)}
}

func (s *Skin) AddAttachment(slotIndex int, name string, attachment Attachment) {
	if s.attachments == nil {
		s.attachments = make(map[skinKey]Attachment)
	}
	s.attachments[skinKey{slot: slotIndex, name: name}] = attachment
}

// Attachment returns nil when the skin has no such attachment.
func (s *Skin) Attachment(slotIndex int, name string) Attachment {
	if s == nil {
		return nil
	}
	return s.attachments[skinKey{slot: slotIndex, name: name}]
}

// Entries returns every attachment ordered by slot index then name.
func (s *Skin) Entries() []SkinEntry {
	if s == nil {
		return nil
	}
	out := make([]SkinEntry, 0, len(s.attachments))
	for k, a := range s.attachments {
		out = append(out, SkinEntry{SlotIndex: k.slot, Name: k.name, Attachment: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotIndex != out[j].SlotIndex {
			return out[i].SlotIndex < out[j].SlotIndex
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AttachAll swaps in this skin's attachment for every slot that currently
// shows an attachment of old under the same name.
func (s *Skin) AttachAll(skel *Skeleton, old *Skin) {
	for _, e := range old.Entries() {
		if e.SlotIndex < 0 || e.SlotIndex >= len(skel.Slots) {
			continue
		}
		slot := skel.Slots[e.SlotIndex]
		if slot.Attachment() != e.Attachment {
			continue
		}
		if a := s.Attachment(e.SlotIndex, e.Name); a != nil {
			slot.SetAttachment(a)
		}
	}
}
