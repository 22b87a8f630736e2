package event

import (
	"reflect"
	"testing"
)

type ping struct{ N int }
type pong struct{ S string }

func TestDoubleBuffer(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.N) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	if n := b.DispatchAll(); n != 0 || len(got) != 0 {
		t.Fatalf("events delivered before swap: %v", got)
	}
	if b.Pending() != 2 {
		t.Errorf("pending = %d, want 2", b.Pending())
	}

	b.SwapBuffers()
	Emit(b, ping{3}) // next frame
	if n := b.DispatchAll(); n != 2 {
		t.Errorf("dispatched %d, want 2", n)
	}
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("got = %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("got = %v", got)
	}
}

func TestDispatchOrderByFirstEmit(t *testing.T) {
	b := NewBus()
	var trace []string
	Subscribe(b, func(p pong) { trace = append(trace, "pong:"+p.S) })
	Subscribe(b, func(ping) { trace = append(trace, "ping") })

	Emit(b, pong{"a"})
	Emit(b, ping{})
	Emit(b, pong{"b"})
	b.SwapBuffers()
	b.DispatchAll()

	want := []string{"pong:a", "pong:b", "ping"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}
