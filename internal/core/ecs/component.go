package ecs

import (
	"reflect"
	"slices"
)

// componentStore is the type-erased view the World keeps of every store so
// it can detach an entity's data on destroy and evaluate observer terms.
type componentStore interface {
	Type() reflect.Type
	Has(id EntityID) bool
	remove(id EntityID)
}

// PtrComponentStore holds one component type keyed by entity. Pointers
// returned by Get stay valid until the component is removed.
type PtrComponentStore[T any] struct {
	typ  reflect.Type
	data map[EntityID]*T
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		typ:  TypeOf[T](),
		data: make(map[EntityID]*T, 64),
	}
}

// TypeOf returns the reflect.Type used as a component key.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (s *PtrComponentStore[T]) Type() reflect.Type { return s.typ }

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

// Each visits every entity holding T in ascending EntityID order.
// Components removed from inside fn are not visited afterwards.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.ids() {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}

// ids snapshots the keys in ascending order so iteration is repeatable
// from frame to frame.
func (s *PtrComponentStore[T]) ids() []EntityID {
	out := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// put stores v, reusing the existing allocation so outstanding pointers
// observe the new value. Reports whether the component is new.
func (s *PtrComponentStore[T]) put(id EntityID, v T) (*T, bool) {
	if c, ok := s.data[id]; ok {
		*c = v
		return c, false
	}
	c := new(T)
	*c = v
	s.data[id] = c
	return c, true
}

func (s *PtrComponentStore[T]) remove(id EntityID) {
	delete(s.data, id)
}
