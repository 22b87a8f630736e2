package ecs

import "reflect"

// Event is a component lifecycle notification.
type Event uint8

const (
	OnAdd    Event = iota // component attached for the first time
	OnSet                 // component value written (after OnAdd for new ones)
	OnRemove              // component about to be detached; data still readable
	OnReplace             // existing component about to be overwritten; see Trigger.Next

	numEvents
)

func (e Event) String() string {
	switch e {
	case OnAdd:
		return "OnAdd"
	case OnSet:
		return "OnSet"
	case OnRemove:
		return "OnRemove"
	case OnReplace:
		return "OnReplace"
	}
	return "Unknown"
}

// Trigger describes the notification an observer is reacting to.
type Trigger struct {
	Event     Event
	Entity    EntityID
	Component reflect.Type
	// Next points at the incoming value during OnReplace. The store still
	// holds the old one; observers may edit *Next before it is written.
	Next any
}

// TriggeredBy reports whether the notification was raised for T.
func TriggeredBy[T any](tr Trigger) bool {
	return tr.Component == TypeOf[T]()
}

type observer struct {
	name  string
	event Event
	terms []reflect.Type
	fn    func(Trigger)
}

func (o *observer) watches(t reflect.Type) bool {
	for _, term := range o.terms {
		if term == t {
			return true
		}
	}
	return false
}

// Observe registers fn to run synchronously whenever ev is raised for one of
// terms on an entity that holds all of terms. Observers run in registration
// order; an observer may attach or detach components, and the notifications
// that causes are delivered before Observe's caller regains control.
func (w *World) Observe(name string, ev Event, terms []reflect.Type, fn func(Trigger)) {
	if len(terms) == 0 {
		panic("ecs: observer " + name + " has no terms")
	}
	w.observers[ev] = append(w.observers[ev], &observer{
		name:  name,
		event: ev,
		terms: terms,
		fn:    fn,
	})
}

func (w *World) notify(ev Event, t reflect.Type, id EntityID) {
	w.raise(Trigger{Event: ev, Entity: id, Component: t})
}

func (w *World) raise(tr Trigger) {
	list := w.observers[tr.Event]
	if len(list) == 0 {
		return
	}
	for _, o := range append([]*observer(nil), list...) {
		if !o.watches(tr.Component) || !w.registry.hasAll(tr.Entity, o.terms) {
			continue
		}
		o.fn(tr)
	}
}

// Observers returns the names of observers registered for ev.
func (w *World) Observers(ev Event) []string {
	names := make([]string, 0, len(w.observers[ev]))
	for _, o := range w.observers[ev] {
		names = append(names, o.name)
	}
	return names
}

// Observe1 watches a single component type.
func Observe1[A any](w *World, name string, ev Event, fn func(Trigger, *A)) {
	sa := Register[A](w)
	w.Observe(name, ev, []reflect.Type{sa.Type()}, func(tr Trigger) {
		a, _ := sa.Get(tr.Entity)
		fn(tr, a)
	})
}

// Observe2 watches entities holding both A and B.
func Observe2[A, B any](w *World, name string, ev Event, fn func(Trigger, *A, *B)) {
	sa, sb := Register[A](w), Register[B](w)
	w.Observe(name, ev, []reflect.Type{sa.Type(), sb.Type()}, func(tr Trigger) {
		a, _ := sa.Get(tr.Entity)
		b, _ := sb.Get(tr.Entity)
		fn(tr, a, b)
	})
}

// Observe4 watches entities holding A, B, C and D.
func Observe4[A, B, C, D any](w *World, name string, ev Event, fn func(Trigger, *A, *B, *C, *D)) {
	sa, sb, sc, sd := Register[A](w), Register[B](w), Register[C](w), Register[D](w)
	terms := []reflect.Type{sa.Type(), sb.Type(), sc.Type(), sd.Type()}
	w.Observe(name, ev, terms, func(tr Trigger) {
		a, _ := sa.Get(tr.Entity)
		b, _ := sb.Get(tr.Entity)
		c, _ := sc.Get(tr.Entity)
		d, _ := sd.Get(tr.Entity)
		fn(tr, a, b, c, d)
	})
}

// ObserveReplace watches overwrites of A through Set. cur is the stored
// value and next the incoming one.
func ObserveReplace[A any](w *World, name string, fn func(tr Trigger, cur, next *A)) {
	sa := Register[A](w)
	w.Observe(name, OnReplace, []reflect.Type{sa.Type()}, func(tr Trigger) {
		cur, _ := sa.Get(tr.Entity)
		fn(tr, cur, tr.Next.(*A))
	})
}
