package input

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestSource(hold time.Duration) (*TerminalSource, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := NewTerminalSource(hold, zap.NewNop())
	s.now = clk.now
	return s, clk
}

func TestKeyHeldForHoldWindow(t *testing.T) {
	s, clk := newTestSource(100 * time.Millisecond)
	if s.IsKeyDown(KeyW) {
		t.Fatal("W down before any event")
	}
	s.HandleKey(tcell.KeyRune, 'w', 0)
	if !s.IsKeyDown(KeyW) {
		t.Fatal("W not down after press")
	}
	clk.t = clk.t.Add(99 * time.Millisecond)
	if !s.IsKeyDown(KeyW) {
		t.Error("W released inside hold window")
	}
	clk.t = clk.t.Add(time.Millisecond)
	if s.IsKeyDown(KeyW) {
		t.Error("W still down after hold window")
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want Key
	}{
		{tcell.KeyRune, 'W', KeyW},
		{tcell.KeyRune, 'a', KeyA},
		{tcell.KeyRune, 's', KeyS},
		{tcell.KeyRune, 'D', KeyD},
		{tcell.KeyRune, ' ', KeySpace},
		{tcell.KeyRune, 'x', KeyNone},
		{tcell.KeyUp, 0, KeyUp},
		{tcell.KeyLeft, 0, KeyLeft},
		{tcell.KeyTab, 0, KeyTab},
		{tcell.KeyEnter, 0, KeyNone},
	}
	for _, tt := range tests {
		if got := translate(tt.key, tt.r); got != tt.want {
			t.Errorf("translate(%v, %q) = %s, want %s", tt.key, tt.r, got, tt.want)
		}
	}
}

func TestCloseKeys(t *testing.T) {
	for _, tc := range []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
		{"q", tcell.KeyRune, 'q'},
	} {
		s, _ := newTestSource(0)
		s.HandleKey(tc.key, tc.r, 0)
		if !s.CloseRequested() {
			t.Errorf("%s did not request close", tc.name)
		}
	}
	s, _ := newTestSource(0)
	s.HandleKey(tcell.KeyRune, 'w', 0)
	if s.CloseRequested() {
		t.Error("w requested close")
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(KeyW, KeyD)
	if !s.IsKeyDown(KeyW) || !s.IsKeyDown(KeyD) || s.IsKeyDown(KeyA) {
		t.Fatalf("state = %v", s.Down)
	}
	s.Release(KeyW)
	s.Press(KeyA)
	if s.IsKeyDown(KeyW) || !s.IsKeyDown(KeyA) {
		t.Errorf("state = %v", s.Down)
	}
}
