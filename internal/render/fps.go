package render

import (
	"fmt"
	"time"
)

// fpsCounter counts frames over a one second window.
type fpsCounter struct {
	windowStart time.Time
	frames      int
	fps         int
}

func (f *fpsCounter) frame(now time.Time) {
	if f.windowStart.IsZero() {
		f.windowStart = now
	}
	f.frames++
	if el := now.Sub(f.windowStart); el >= time.Second {
		f.fps = int(float64(f.frames) / el.Seconds())
		f.frames = 0
		f.windowStart = now
	}
}

func fpsText(fps int) string { return fmt.Sprintf("%d FPS", fps) }
