package sim

import (
	"time"

	"github.com/fieldsim/host/internal/core/event"
)

// World is the aggregate simulation state. Owned exclusively by the
// scheduler goroutine; hooks receive it as a mutable handle scoped to
// one tick. No locks — all outside interaction must be marshaled onto
// the scheduler (spec'd single-threaded core).
type World struct {
	tick    time.Duration
	cycles  uint64
	reg     *Registry
	ball    *BallController
	phase   *PhaseMachine
	done    bool
	bus     *event.Bus // may be nil (tests)
}

func NewWorld(tick time.Duration, field Field, bus *event.Bus) *World {
	return &World{
		tick:  tick,
		reg:   NewRegistry(),
		ball:  NewBallController(field),
		phase: NewPhaseMachine(PhaseInitial),
		bus:   bus,
	}
}

// CycleCount returns the number of completed ticks. Strictly +1 per
// tick, never decreasing.
func (w *World) CycleCount() uint64 { return w.cycles }

// Time returns the simulation clock in seconds. Always equal to
// CycleCount() * tick duration — a pure function of the counter.
func (w *World) Time() float64 {
	return float64(w.cycles) * w.tick.Seconds()
}

func (w *World) TickDuration() time.Duration { return w.tick }

// advance moves the clock one tick. Scheduler-only.
func (w *World) advance() { w.cycles++ }

// Robots returns the robot set in spawn order (snapshot copy).
func (w *World) Robots() []Robot { return w.reg.List() }

// SpawnRobot appends a robot with the given id. Fails with
// ErrDuplicateID on collision.
func (w *World) SpawnRobot(id int) (*Robot, error) {
	rb, err := w.reg.Spawn(id)
	if err != nil {
		return nil, err
	}
	if w.bus != nil {
		event.Emit(w.bus, event.RobotSpawned{Cycle: w.cycles, ID: id})
	}
	return rb, nil
}

// Ball returns a copy of the current ball, or nil when none is in
// play.
func (w *World) Ball() *Ball {
	b := w.ball.Ball()
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

// SetBall replaces the ball (assignment semantics for hook writes).
func (w *World) SetBall(pos, vel Vec2) { w.ball.Set(pos, vel) }

// ClearBall takes the ball out of play. Idempotent.
func (w *World) ClearBall() { w.ball.Remove() }

// ReturnBallToCenter places the ball at the origin with zero
// velocity, regardless of prior state.
func (w *World) ReturnBallToCenter() { w.ball.Recenter() }

// Phase returns the current game phase.
func (w *World) Phase() Phase { return w.phase.Current() }

// RequestPhase applies a validated phase transition. External phase
// writes are requests, never raw mutations.
func (w *World) RequestPhase(target Phase) error {
	from := w.phase.Current()
	if err := w.phase.Request(target); err != nil {
		return err
	}
	if w.bus != nil && from != target {
		event.Emit(w.bus, event.PhaseChanged{Cycle: w.cycles, From: from.String(), To: target.String()})
	}
	return nil
}

// SeedPhase sets the starting phase before the first tick. Boot-time
// seeding only — runtime phase writes go through RequestPhase.
func (w *World) SeedPhase(p Phase) { w.phase = NewPhaseMachine(p) }

// Finished reports whether the simulation has been marked done.
func (w *World) Finished() bool { return w.done }

// Finish marks the simulation done. One-way: further calls are no-ops
// and the flag is never reset.
func (w *World) Finish() { w.done = true }

// snapshot is a deep copy of the mutable world state, taken around
// each hook invocation so a faulting hook leaves no partial writes.
type snapshot struct {
	cycles uint64
	reg    *Registry
	ball   *BallController
	phase  Phase
	done   bool
}

func (w *World) snapshot() snapshot {
	return snapshot{
		cycles: w.cycles,
		reg:    w.reg.clone(),
		ball:   w.ball.clone(),
		phase:  w.phase.Current(),
		done:   w.done,
	}
}

func (w *World) restore(s snapshot) {
	w.cycles = s.cycles
	w.reg = s.reg
	w.ball = s.ball
	w.phase = NewPhaseMachine(s.phase)
	w.done = s.done
}
