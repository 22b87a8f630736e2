package system

import (
	"fmt"
	"time"

	"github.com/res-engine/res/internal/core/phase"
	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. Within a phase systems
// run in the order they were registered.
type Runner struct {
	graph  *phase.Graph
	order  []phase.Handle
	slots  [][]System
	frames uint64
	log    *zap.Logger
}

func NewRunner(graph *phase.Graph, log *zap.Logger) *Runner {
	order := graph.Order()
	return &Runner{
		graph: graph,
		order: order,
		slots: make([][]System, len(order)),
		log:   log,
	}
}

// Register binds s to phase p. Binding to an undeclared phase is a wiring
// bug and panics.
func (r *Runner) Register(p phase.Handle, s System) {
	if !p.Valid() {
		panic(fmt.Sprintf("system: %s bound to an undeclared phase", s.Name()))
	}
	if !p.Belongs(r.graph) {
		panic(fmt.Sprintf("system: %s bound to phase %s of another graph", s.Name(), p.Name()))
	}
	if p.Index() >= len(r.slots) {
		panic(fmt.Sprintf("system: phase %s declared after the runner was built", p.Name()))
	}
	r.slots[p.Index()] = append(r.slots[p.Index()], s)
	r.log.Debug("system registered",
		zap.String("system", s.Name()),
		zap.String("phase", p.Name()),
	)
}

func (r *Runner) Tick(dt time.Duration) {
	for _, slot := range r.slots {
		for _, s := range slot {
			s.Update(dt)
		}
	}
	r.frames++
}

// TickPhase runs only the systems bound to p.
func (r *Runner) TickPhase(p phase.Handle, dt time.Duration) {
	if !p.Belongs(r.graph) || p.Index() >= len(r.slots) {
		return
	}
	for _, s := range r.slots[p.Index()] {
		s.Update(dt)
	}
}

// Systems returns the names bound to p in run order.
func (r *Runner) Systems(p phase.Handle) []string {
	if !p.Belongs(r.graph) || p.Index() >= len(r.slots) {
		return nil
	}
	names := make([]string, 0, len(r.slots[p.Index()]))
	for _, s := range r.slots[p.Index()] {
		names = append(names, s.Name())
	}
	return names
}

// Frame returns the number of completed ticks.
func (r *Runner) Frame() uint64 { return r.frames }

func (r *Runner) Phases() []phase.Handle { return r.order }
