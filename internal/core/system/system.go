package system

import "time"

// System is the interface every frame system implements. Which phase it runs
// in is decided by the Runner binding, not by the system itself.
type System interface {
	Name() string
	Update(dt time.Duration)
}

type funcSystem struct {
	name string
	fn   func(time.Duration)
}

func (s funcSystem) Name() string            { return s.name }
func (s funcSystem) Update(dt time.Duration) { s.fn(dt) }

// Func adapts a plain function into a System.
func Func(name string, fn func(time.Duration)) System {
	return funcSystem{name: name, fn: fn}
}
