package ecs

import (
	"fmt"

	"github.com/milk9111/spine/ecs/component"
)

func storeOf[T any](w *World, kind component.ComponentKind[T]) *sparseSet[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		return nil
	}
	set, _ := s.(*sparseSet[T])
	return set
}

// erase keeps a missing typed store nil once it is stored in the interface.
func erase[T any](s *sparseSet[T]) store {
	if s == nil {
		return nil
	}
	return s
}

// Add attaches value to e, replacing any component of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return fmt.Errorf("ecs: add %s: %w", component.KindName(kind.ID()), component.ErrInvalidComponentKind)
	}
	if value == nil {
		return fmt.Errorf("ecs: add %s: %w", component.KindName(kind.ID()), component.ErrNilComponent)
	}
	if !IsAlive(w, e) {
		return fmt.Errorf("ecs: add %s to %s: %w", component.KindName(kind.ID()), e, component.ErrEntityNotAlive)
	}
	set := storeOf(w, kind)
	if set == nil {
		set = newSparseSet[T]()
		w.stores[kind.ID()] = set
	}
	set.set(e, value)
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	set := storeOf(w, kind)
	if set == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	return set.get(e)
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	set := storeOf(w, kind)
	if set == nil {
		return false
	}
	return set.remove(e)
}

// ForEach calls fn for every live entity holding a component of kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	set := storeOf(w, kind)
	for _, e := range snapshot(erase(set)) {
		if v, ok := Get(w, e, kind); ok {
			fn(e, v)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := storeOf(w, ka), storeOf(w, kb)
	for _, e := range snapshot(smallest(erase(sa), erase(sb))) {
		a, ok := Get(w, e, ka)
		if !ok {
			continue
		}
		b, ok := Get(w, e, kb)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}
