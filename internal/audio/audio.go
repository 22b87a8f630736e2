// Package audio plays short cue tones for gameplay events.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

type Cue uint8

const (
	CueBounce Cue = iota
	CueSpawn
	CueDespawn
)

func (c Cue) String() string {
	switch c {
	case CueBounce:
		return "bounce"
	case CueSpawn:
		return "spawn"
	case CueDespawn:
		return "despawn"
	}
	return "unknown"
}

type tone struct {
	freq     float64
	duration time.Duration
	volume   float64 // base-2 exponent
}

var tones = map[Cue]tone{
	CueBounce:  {freq: 660, duration: 60 * time.Millisecond, volume: -2},
	CueSpawn:   {freq: 880, duration: 90 * time.Millisecond, volume: -1.5},
	CueDespawn: {freq: 330, duration: 120 * time.Millisecond, volume: -2},
}

// Player plays cues without blocking the frame.
type Player interface {
	Play(c Cue) bool
	Close()
}

// Nop is the player used when audio is disabled or unavailable.
type Nop struct{}

func (Nop) Play(Cue) bool { return false }
func (Nop) Close()        {}

// Tone builds the finite streamer for c at sample rate sr.
func Tone(sr beep.SampleRate, c Cue) (beep.Streamer, error) {
	tn, ok := tones[c]
	if !ok {
		return nil, fmt.Errorf("no tone for cue %d", c)
	}
	sine, err := generators.SineTone(sr, tn.freq)
	if err != nil {
		return nil, fmt.Errorf("sine tone %v: %w", c, err)
	}
	return &effects.Volume{
		Streamer: beep.Take(sr.N(tn.duration), sine),
		Base:     2,
		Volume:   tn.volume,
	}, nil
}

// Speaker mixes cue tones onto the system audio device.
type Speaker struct {
	mu     sync.Mutex
	sr     beep.SampleRate
	mixer  *beep.Mixer
	log    *zap.Logger
	closed bool
}

// NewSpeaker initialises the audio device. The speaker package is global,
// so only one Speaker should exist per process.
func NewSpeaker(sampleRate int, log *zap.Logger) (*Speaker, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Millisecond*100)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	s := &Speaker{sr: sr, mixer: &beep.Mixer{}, log: log}
	speaker.Play(s.mixer)
	log.Info("audio initialized", zap.Int("sample_rate", sampleRate))
	return s, nil
}

func (s *Speaker) Play(c Cue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	st, err := Tone(s.sr, c)
	if err != nil {
		s.log.Warn("cue tone", zap.Stringer("cue", c), zap.Error(err))
		return false
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
	return true
}

func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// Open returns a Speaker when enabled and the device comes up, Nop otherwise.
func Open(enabled bool, sampleRate int, log *zap.Logger) Player {
	if !enabled {
		return Nop{}
	}
	sp, err := NewSpeaker(sampleRate, log)
	if err != nil {
		log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		return Nop{}
	}
	return sp
}
