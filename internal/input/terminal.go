package input

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// TerminalSource turns tcell key events into held keys. Terminals only
// report presses (and auto-repeat), so a key stays down for the hold
// window after its most recent press.
type TerminalSource struct {
	mu      sync.Mutex
	pressed [numKeys]time.Time
	hold    time.Duration
	now     func() time.Time
	closed  atomic.Bool
	resized atomic.Bool
	log     *zap.Logger
}

func NewTerminalSource(hold time.Duration, log *zap.Logger) *TerminalSource {
	if hold <= 0 {
		hold = 150 * time.Millisecond
	}
	return &TerminalSource{hold: hold, now: time.Now, log: log}
}

func (s *TerminalSource) IsKeyDown(k Key) bool {
	if k == KeyNone || k >= numKeys {
		return false
	}
	s.mu.Lock()
	at := s.pressed[k]
	s.mu.Unlock()
	return !at.IsZero() && s.now().Sub(at) < s.hold
}

func (s *TerminalSource) CloseRequested() bool { return s.closed.Load() }

// RequestClose marks the source closed, e.g. from a signal handler.
func (s *TerminalSource) RequestClose() { s.closed.Store(true) }

// Resized reports and clears a pending terminal resize.
func (s *TerminalSource) Resized() bool { return s.resized.Swap(false) }

// HandleEvent consumes one tcell event.
func (s *TerminalSource) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		s.HandleKey(ev.Key(), ev.Rune(), ev.Modifiers())
	case *tcell.EventResize:
		s.resized.Store(true)
	}
}

// HandleKey records a press. Escape, Ctrl-C and q request close.
func (s *TerminalSource) HandleKey(key tcell.Key, r rune, mod tcell.ModMask) {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC || (key == tcell.KeyRune && r == 'q' && mod&tcell.ModCtrl == 0) {
		s.closed.Store(true)
		s.log.Debug("close requested", zap.String("key", tcell.KeyNames[key]))
		return
	}
	k := translate(key, r)
	if k == KeyNone {
		return
	}
	s.mu.Lock()
	s.pressed[k] = s.now()
	s.mu.Unlock()
}

func translate(key tcell.Key, r rune) Key {
	switch key {
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyTab:
		return KeyTab
	case tcell.KeyF1:
		return KeyF1
	case tcell.KeyRune:
	default:
		return KeyNone
	}
	switch r {
	case 'w', 'W':
		return KeyW
	case 'a', 'A':
		return KeyA
	case 's', 'S':
		return KeyS
	case 'd', 'D':
		return KeyD
	case 'Q':
		return KeyQ
	case 'e', 'E':
		return KeyE
	case ' ':
		return KeySpace
	}
	return KeyNone
}

// Poller is the part of tcell.Screen Poll needs.
type Poller interface {
	PollEvent() tcell.Event
}

// Poll feeds screen events into s until ctx is done or the screen is
// finalised. Run it on its own goroutine.
func (s *TerminalSource) Poll(ctx context.Context, screen Poller) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		s.HandleEvent(ev)
		if ctx.Err() != nil {
			return
		}
	}
}
