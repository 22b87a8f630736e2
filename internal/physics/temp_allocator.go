package physics

import (
	"errors"
	"fmt"
)

var ErrTempAllocatorFull = errors.New("temp allocator exhausted")

// TempAllocator is a bounded scratch arena reset at the start of every step.
// It never grows past its capacity.
type TempAllocator struct {
	buf       []byte
	top       int
	highWater int
}

func NewTempAllocator(capacity int) *TempAllocator {
	return &TempAllocator{buf: make([]byte, capacity)}
}

// Allocate reserves n bytes, aligned to 16.
func (a *TempAllocator) Allocate(n int) ([]byte, error) {
	size := (n + 15) &^ 15
	if a.top+size > len(a.buf) {
		return nil, fmt.Errorf("allocate %d bytes with %d of %d in use: %w", n, a.top, len(a.buf), ErrTempAllocatorFull)
	}
	b := a.buf[a.top : a.top+n : a.top+size]
	a.top += size
	if a.top > a.highWater {
		a.highWater = a.top
	}
	return b, nil
}

// Reset releases every allocation.
func (a *TempAllocator) Reset() { a.top = 0 }

func (a *TempAllocator) Capacity() int  { return len(a.buf) }
func (a *TempAllocator) InUse() int     { return a.top }
func (a *TempAllocator) HighWater() int { return a.highWater }
