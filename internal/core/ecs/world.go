package ecs

import (
	"fmt"
)

const singletonName = "$singleton"

// World is the top-level ECS container. It owns the entity pool, the
// component registry, the observers, the name index and a deferred
// destruction queue.
type World struct {
	pool         *EntityPool
	registry     *Registry
	observers    [numEvents][]*observer
	names        map[string]EntityID
	nameOf       map[EntityID]string
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		names:        make(map[string]EntityID, 16),
		nameOf:       make(map[EntityID]string, 16),
		destroyQueue: make([]EntityID, 0, 16),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

// CreateNamed returns the live entity called name, creating it if needed.
func (w *World) CreateNamed(name string) EntityID {
	if id := w.Lookup(name); !id.IsZero() {
		return id
	}
	id := w.pool.Create()
	w.names[name] = id
	w.nameOf[id] = name
	return id
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return w.pool.Len() }

// Lookup finds an entity by name. Returns the zero ID when none is alive.
func (w *World) Lookup(name string) EntityID {
	id, ok := w.names[name]
	if !ok || !w.pool.Alive(id) {
		return 0
	}
	return id
}

func (w *World) Name(id EntityID) string {
	return w.nameOf[id]
}

// SetName names id. Names are unique among live entities.
func (w *World) SetName(id EntityID, name string) error {
	if !w.pool.Alive(id) {
		return fmt.Errorf("set name %q: entity %s is not alive", name, id)
	}
	if other := w.Lookup(name); !other.IsZero() && other != id {
		return fmt.Errorf("set name %q: already used by %s", name, other)
	}
	if old, ok := w.nameOf[id]; ok {
		delete(w.names, old)
	}
	w.names[name] = id
	w.nameOf[id] = name
	return nil
}

// DestroyEntity detaches every component from id, raising OnRemove for each,
// then retires the ID. Observers may detach further components while this
// runs; the loop keeps going until the entity is empty.
func (w *World) DestroyEntity(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	for detached := true; detached; {
		detached = false
		for _, s := range w.registry.stores {
			if !s.Has(id) {
				continue
			}
			w.notify(OnRemove, s.Type(), id)
			s.remove(id)
			detached = true
		}
	}
	if name, ok := w.nameOf[id]; ok {
		delete(w.nameOf, id)
		if w.names[name] == id {
			delete(w.names, name)
		}
	}
	return w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys every queued entity. Returns how many were live.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.DestroyEntity(id) {
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// Clear destroys every live entity, the singleton holder last.
func (w *World) Clear() {
	single := w.Lookup(singletonName)
	var ids []EntityID
	w.pool.Each(func(id EntityID) {
		if id != single {
			ids = append(ids, id)
		}
	})
	for _, id := range ids {
		w.DestroyEntity(id)
	}
	if !single.IsZero() {
		w.DestroyEntity(single)
	}
}

func (w *World) mustAlive(op string, id EntityID) {
	if !w.pool.Alive(id) {
		panic(fmt.Sprintf("ecs: %s on dead entity %s", op, id))
	}
}

// Add attaches the zero value of T if id does not already hold one.
func Add[T any](w *World, id EntityID) *T {
	w.mustAlive("add", id)
	s := Register[T](w)
	if c, ok := s.Get(id); ok {
		return c
	}
	var zero T
	c, _ := s.put(id, zero)
	w.notify(OnAdd, s.typ, id)
	return c
}

// Set attaches or overwrites T on id. OnAdd fires for a new component and
// OnReplace, with the old value still stored, for an existing one. OnSet
// fires in every case.
func Set[T any](w *World, id EntityID, v T) *T {
	w.mustAlive("set", id)
	s := Register[T](w)
	if s.Has(id) {
		w.raise(Trigger{Event: OnReplace, Entity: id, Component: s.typ, Next: &v})
	}
	c, added := s.put(id, v)
	if added {
		w.notify(OnAdd, s.typ, id)
	}
	w.notify(OnSet, s.typ, id)
	return c
}

func Get[T any](w *World, id EntityID) (*T, bool) {
	return Register[T](w).Get(id)
}

func Has[T any](w *World, id EntityID) bool {
	return Register[T](w).Has(id)
}

// Remove detaches T from id. OnRemove observers still see the data. Removing
// a component the entity does not hold is a no-op.
func Remove[T any](w *World, id EntityID) bool {
	s := Register[T](w)
	if !s.Has(id) {
		return false
	}
	w.notify(OnRemove, s.typ, id)
	s.remove(id)
	return true
}

// SetSingleton stores v on the world's singleton holder.
func SetSingleton[T any](w *World, v T) *T {
	return Set(w, w.CreateNamed(singletonName), v)
}

func GetSingleton[T any](w *World) (*T, bool) {
	id := w.Lookup(singletonName)
	if id.IsZero() {
		return nil, false
	}
	return Get[T](w, id)
}

func RemoveSingleton[T any](w *World) bool {
	id := w.Lookup(singletonName)
	if id.IsZero() {
		return false
	}
	return Remove[T](w, id)
}
