package component

import (
	"github.com/milk9111/spine/anim"
	spinecomp "github.com/milk9111/spine/component"
)

// SkeletonInstance is one animated skeleton living in the world. Every
// instance owns its own SkeletonAnimation, so no pose state is shared.
type SkeletonInstance struct {
	Name      string
	Animation *spinecomp.SkeletonAnimation

	// listener forwards playback callbacks onto the world event queue once
	// the animation system has bound it.
	listener *anim.Listener
}

// Bound reports whether the instance's callbacks are already forwarded.
func (s *SkeletonInstance) Bound() bool {
	return s != nil && s.listener != nil
}

// Bind records the listener forwarding the instance's callbacks.
func (s *SkeletonInstance) Bind(l *anim.Listener) {
	if s == nil {
		return
	}
	s.listener = l
}

// Unbind stops forwarding callbacks.
func (s *SkeletonInstance) Unbind() {
	if s == nil || s.listener == nil {
		return
	}
	s.Animation.RemoveListener(s.listener)
	s.listener = nil
}

var SkeletonComponent = NewComponent[SkeletonInstance]()
