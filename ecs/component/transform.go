package component

// Transform places an entity's skeleton root in world space.
type Transform struct {
	X      float32
	Y      float32
	FlipX  bool
	FlipY  bool
	Hidden bool
}

var TransformComponent = NewComponent[Transform]()
