package ecs

// smallest returns the store with the fewest entries so joins iterate the
// shortest list. A missing store means the join is empty.
func smallest(stores ...store) store {
	var best store
	for _, s := range stores {
		if s == nil {
			return nil
		}
		if best == nil || s.size() < best.size() {
			best = s
		}
	}
	return best
}

// snapshot copies the entity list of a store so callbacks may add or remove
// components while iterating.
func snapshot(s store) []Entity {
	if s == nil {
		return nil
	}
	return append([]Entity(nil), s.entities()...)
}
