package system

import (
	"time"

	"github.com/res-engine/res/internal/audio"
	"github.com/res-engine/res/internal/core/event"
)

// EventDispatchSystem delivers last frame's events. Begin, first.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Name() string { return "EventDispatch" }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SubscribeAudio plays a cue for bounces, spawns and despawns.
func SubscribeAudio(bus *event.Bus, p audio.Player) {
	event.Subscribe(bus, func(event.BodyBounced) { p.Play(audio.CueBounce) })
	event.Subscribe(bus, func(event.EntitySpawned) { p.Play(audio.CueSpawn) })
	event.Subscribe(bus, func(event.EntityDespawned) { p.Play(audio.CueDespawn) })
}
