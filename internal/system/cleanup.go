package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/res-engine/res/internal/component"
	"github.com/res-engine/res/internal/core/ecs"
	"github.com/res-engine/res/internal/core/event"
)

// LifetimeSystem counts down Lifetime components, queues expired entities
// and then flushes the deferred destruction queue, including entities other
// systems marked this tick. PostTick.
type LifetimeSystem struct {
	world   *ecs.World
	bus     *event.Bus
	log     *zap.Logger
	expired []ecs.EntityID
}

func NewLifetimeSystem(w *ecs.World, bus *event.Bus, log *zap.Logger) *LifetimeSystem {
	return &LifetimeSystem{world: w, bus: bus, log: log}
}

func (s *LifetimeSystem) Name() string { return "Lifetime" }

func (s *LifetimeSystem) Update(dt time.Duration) {
	s.expired = s.expired[:0]
	ecs.Register[component.Lifetime](s.world).Each(func(id ecs.EntityID, l *component.Lifetime) {
		l.Remaining -= dt
		if l.Remaining <= 0 {
			s.expired = append(s.expired, id)
		}
	})
	for _, id := range s.expired {
		event.Emit(s.bus, event.EntityDespawned{Entity: id, Name: s.world.Name(id)})
		s.world.MarkForDestruction(id)
	}
	if n := s.world.FlushDestroyQueue(); n > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", n))
	}
}
