// Package input exposes per-key "is held" state to the frame loop.
package input

// Key is a logical key, independent of the device that produced it.
type Key uint8

const (
	KeyNone Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeySpace
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyTab
	KeyF1
	numKeys
)

var keyNames = [numKeys]string{
	KeyNone: "none", KeyW: "W", KeyA: "A", KeyS: "S", KeyD: "D", KeyQ: "Q", KeyE: "E",
	KeySpace: "Space", KeyEscape: "Escape", KeyUp: "Up", KeyDown: "Down",
	KeyLeft: "Left", KeyRight: "Right", KeyTab: "Tab", KeyF1: "F1",
}

func (k Key) String() string {
	if k < numKeys {
		return keyNames[k]
	}
	return "unknown"
}

// Source is sampled by systems on the driving goroutine.
type Source interface {
	IsKeyDown(k Key) bool
	CloseRequested() bool
}

// Static is a Source whose state is set directly.
type Static struct {
	Down  map[Key]bool
	Close bool
}

func NewStatic(keys ...Key) *Static {
	s := &Static{Down: make(map[Key]bool, len(keys))}
	for _, k := range keys {
		s.Down[k] = true
	}
	return s
}

func (s *Static) IsKeyDown(k Key) bool { return s.Down[k] }
func (s *Static) CloseRequested() bool { return s.Close }

func (s *Static) Press(k Key)   { s.Down[k] = true }
func (s *Static) Release(k Key) { delete(s.Down, k) }
