package sim

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fieldsim/host/internal/core/event"
	coresys "github.com/fieldsim/host/internal/core/system"
)

// Hooks is the contract consumed from the script layer. Both hooks
// receive the mutable world handle for exactly one tick; an error
// return (or panic) is captured at the scheduler's fault boundary and
// the world is rolled back to its pre-hook state.
type Hooks interface {
	// OnGoal runs once per detected goal crossing, before OnCycle in
	// the same tick.
	OnGoal(w *World) error
	// OnCycle runs once per tick, after goal handling.
	OnCycle(w *World) error
}

// State is the scheduler lifecycle state.
type State int

const (
	Running State = iota
	Stopped // terminal
)

// Config carries the host-recognized scheduler settings.
type Config struct {
	MaxCycles uint64 // safety ceiling; 0 = unlimited
	Realtime  bool   // pace ticks with a wall-clock ticker
}

// Scheduler drives the fixed-step loop. Per tick, in order: integrate
// ball → advance counters → goal detection (+ on_goal) → on_cycle →
// stop when finished. Single-threaded: hooks run in-line on the
// scheduler goroutine and no tick starts before the previous tick's
// hooks return.
type Scheduler struct {
	world  *World
	hooks  Hooks // may be nil (no script layer attached)
	bus    *event.Bus
	log    *zap.Logger
	runner *coresys.Runner

	maxCycles uint64
	realtime  bool

	state   State
	stopReq atomic.Bool
	faults  []HookFault
}

func NewScheduler(w *World, hooks Hooks, bus *event.Bus, cfg Config, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		world:     w,
		hooks:     hooks,
		bus:       bus,
		log:       log,
		runner:    coresys.NewRunner(),
		maxCycles: cfg.MaxCycles,
		realtime:  cfg.Realtime,
	}
	if bus != nil {
		s.runner.Register(&dispatchSystem{bus: bus})
	}
	s.runner.Register(&ballSystem{w: w})
	s.runner.Register(&clockSystem{w: w})
	s.runner.Register(&goalSystem{s: s})
	s.runner.Register(&cycleHookSystem{s: s})
	s.runner.Register(&finishSystem{s: s})
	return s
}

func (s *Scheduler) State() State { return s.state }

func (s *Scheduler) World() *World { return s.world }

// Faults returns the hook faults captured so far, oldest first.
func (s *Scheduler) Faults() []HookFault {
	out := make([]HookFault, len(s.faults))
	copy(out, s.faults)
	return out
}

// Stop requests a cooperative stop. Takes effect at the next tick
// boundary, never mid-tick. Safe to call from another goroutine.
func (s *Scheduler) Stop() { s.stopReq.Store(true) }

// Step runs exactly one tick. No-op once stopped.
func (s *Scheduler) Step() {
	if s.state != Running {
		return
	}
	s.runner.Tick(s.world.TickDuration())
}

// Run ticks until the world finishes, Stop is called, the max-cycle
// ceiling is hit, or ctx is canceled. Returns ctx.Err() only on
// cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	var ticker *time.Ticker
	if s.realtime {
		ticker = time.NewTicker(s.world.TickDuration())
		defer ticker.Stop()
	}
	for s.state == Running {
		if s.stopReq.Load() {
			s.state = Stopped
			s.log.Info("scheduler stopped on request", zap.Uint64("cycle", s.world.CycleCount()))
			break
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				s.state = Stopped
				return ctx.Err()
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			s.state = Stopped
			return ctx.Err()
		}
		s.Step()
	}
	return nil
}

// handleGoal evaluates the goal condition and dispatches the on_goal
// hook. The ball's reposition generation decides ownership of the
// reset: if the hook moved or removed the ball, its write wins and
// the automatic recenter is skipped.
func (s *Scheduler) handleGoal() {
	if !s.world.ball.DetectGoal() {
		return
	}
	pos := s.world.ball.Ball().Pos
	if s.bus != nil {
		event.Emit(s.bus, event.GoalScored{Cycle: s.world.CycleCount(), X: pos.X, Y: pos.Y})
	}
	gen := s.world.ball.Gen()
	if s.hooks != nil {
		s.invokeHook("on_goal", s.hooks.OnGoal)
	}
	if s.world.ball.Gen() == gen {
		s.world.ball.Recenter()
	}
}

func (s *Scheduler) handleCycle() {
	if s.hooks == nil {
		return
	}
	s.invokeHook("on_cycle", s.hooks.OnCycle)
}

func (s *Scheduler) handleFinish() {
	if s.world.Finished() {
		s.state = Stopped
		s.log.Info("simulation finished", zap.Uint64("cycle", s.world.CycleCount()))
		return
	}
	if s.maxCycles > 0 && s.world.CycleCount() >= s.maxCycles {
		s.state = Stopped
		s.log.Warn("max cycle ceiling reached", zap.Uint64("cycle", s.world.CycleCount()))
	}
}

// invokeHook is the fault boundary. The world is deep-copied before
// the call and restored on error or panic, so a faulting hook leaves
// no partial writes behind and the loop proceeds to the next tick.
func (s *Scheduler) invokeHook(name string, call func(*World) error) {
	snap := s.world.snapshot()
	err := protect(call, s.world)
	if err == nil {
		return
	}
	s.world.restore(snap)
	fault := HookFault{Cycle: s.world.CycleCount(), Hook: name, Err: err}
	s.faults = append(s.faults, fault)
	if s.bus != nil {
		event.Emit(s.bus, event.HookFaulted{Cycle: fault.Cycle, Hook: name, Err: err})
	}
	s.log.Warn("hook fault isolated",
		zap.String("hook", name),
		zap.Uint64("cycle", fault.Cycle),
		zap.Error(err))
}

func protect(call func(*World) error, w *World) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panic: %v", r)
		}
	}()
	return call(w)
}
