package sim

import (
	"time"

	"github.com/fieldsim/host/internal/core/event"
	coresys "github.com/fieldsim/host/internal/core/system"
)

// The tick pipeline, one system per stage. Order is normative:
// integrate before detection so a ball that crosses the line this
// tick is caught immediately, counters before the hooks so hooks
// observe the tick they run in.

// dispatchSystem delivers last tick's events. Phase 0.
type dispatchSystem struct {
	bus *event.Bus
}

func (d *dispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (d *dispatchSystem) Update(_ time.Duration) {
	d.bus.Rotate()
	d.bus.Dispatch()
}

// ballSystem integrates the ball kinematically. Phase 1.
type ballSystem struct {
	w *World
}

func (b *ballSystem) Phase() coresys.Phase { return coresys.PhaseIntegrate }

func (b *ballSystem) Update(dt time.Duration) {
	b.w.ball.Integrate(dt.Seconds())
}

// clockSystem advances the cycle counter; time follows from it. Phase 2.
type clockSystem struct {
	w *World
}

func (c *clockSystem) Phase() coresys.Phase { return coresys.PhaseAdvance }

func (c *clockSystem) Update(_ time.Duration) {
	c.w.advance()
}

// goalSystem runs goal detection and the on_goal hook. Phase 3.
type goalSystem struct {
	s *Scheduler
}

func (g *goalSystem) Phase() coresys.Phase { return coresys.PhaseGoal }

func (g *goalSystem) Update(_ time.Duration) {
	g.s.handleGoal()
}

// cycleHookSystem runs the on_cycle hook. Phase 4.
type cycleHookSystem struct {
	s *Scheduler
}

func (c *cycleHookSystem) Phase() coresys.Phase { return coresys.PhaseHook }

func (c *cycleHookSystem) Update(_ time.Duration) {
	c.s.handleCycle()
}

// finishSystem stops the scheduler once the world is finished or the
// cycle ceiling is hit. Phase 5 — this tick still completes.
type finishSystem struct {
	s *Scheduler
}

func (f *finishSystem) Phase() coresys.Phase { return coresys.PhaseFinish }

func (f *finishSystem) Update(_ time.Duration) {
	f.s.handleFinish()
}
