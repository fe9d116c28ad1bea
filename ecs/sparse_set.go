package ecs

// store is the type-erased view of a component set used when an entity is
// destroyed.
type store interface {
	remove(e Entity) bool
	has(e Entity) bool
	size() int
	entities() []Entity
}

// sparseSet stores one component per entity densely, indexed by entity id.
type sparseSet[T any] struct {
	dense  []Entity
	values []*T
	sparse []int32
}

func newSparseSet[T any]() *sparseSet[T] {
	return &sparseSet[T]{}
}

func (s *sparseSet[T]) index(e Entity) int {
	id := int(e.id())
	if id >= len(s.sparse) {
		return -1
	}
	idx := int(s.sparse[id])
	if idx < 0 || idx >= len(s.dense) || s.dense[idx] != e {
		return -1
	}
	return idx
}

func (s *sparseSet[T]) has(e Entity) bool {
	return s.index(e) >= 0
}

func (s *sparseSet[T]) get(e Entity) (*T, bool) {
	idx := s.index(e)
	if idx < 0 {
		return nil, false
	}
	return s.values[idx], true
}

func (s *sparseSet[T]) set(e Entity, v *T) {
	if idx := s.index(e); idx >= 0 {
		s.values[idx] = v
		return
	}
	id := int(e.id())
	for len(s.sparse) <= id {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[id] = int32(len(s.dense))
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
}

func (s *sparseSet[T]) remove(e Entity) bool {
	idx := s.index(e)
	if idx < 0 {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[moved.id()] = int32(idx)

	s.dense = s.dense[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.sparse[e.id()] = -1
	return true
}

func (s *sparseSet[T]) size() int {
	return len(s.dense)
}

func (s *sparseSet[T]) entities() []Entity {
	return s.dense
}
