package ecs

import "reflect"

// Registry tracks every component store in registration order and supports
// bulk detach on entity destroy.
type Registry struct {
	stores []componentStore
	byType map[reflect.Type]componentStore
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]componentStore, 0, 32),
		byType: make(map[reflect.Type]componentStore, 32),
	}
}

func (r *Registry) add(s componentStore) {
	r.stores = append(r.stores, s)
	r.byType[s.Type()] = s
}

func (r *Registry) lookup(t reflect.Type) (componentStore, bool) {
	s, ok := r.byType[t]
	return s, ok
}

// Len returns the number of registered component types.
func (r *Registry) Len() int { return len(r.stores) }

// hasAll reports whether id holds every term.
func (r *Registry) hasAll(id EntityID, terms []reflect.Type) bool {
	for _, t := range terms {
		s, ok := r.byType[t]
		if !ok || !s.Has(id) {
			return false
		}
	}
	return true
}

// Register returns the store for T, creating it on first use.
func Register[T any](w *World) *PtrComponentStore[T] {
	t := TypeOf[T]()
	if s, ok := w.registry.lookup(t); ok {
		return s.(*PtrComponentStore[T])
	}
	s := NewPtrComponentStore[T]()
	w.registry.add(s)
	return s
}
