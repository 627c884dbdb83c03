package scripting

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fieldsim/host/internal/sim"
)

var testField = sim.Field{HalfLength: 4.5, HalfWidth: 3.0, GoalHalfWidth: 0.75}

func newEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		if err := os.WriteFile(filepath.Join(dir, "test.lua"), []byte(script), 0o644); err != nil {
			t.Fatalf("write script: %v", err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func newWorld() *sim.World {
	return sim.NewWorld(time.Second, testField, nil)
}

func TestMissingHooksAreNoops(t *testing.T) {
	e := newEngine(t, "")
	w := newWorld()
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	if err := e.OnGoal(w); err != nil {
		t.Fatalf("on_goal: %v", err)
	}
}

func TestMissingScriptDirIsValid(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.Close()
}

func TestFieldWritesApplyAsRequests(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    world.game_controller_state.game_state = "Ready"
    world.finished = true
end
`)
	w := newWorld()
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	if w.Phase() != sim.PhaseReady {
		t.Fatalf("phase = %s, want Ready", w.Phase())
	}
	if !w.Finished() {
		t.Fatal("finished write not applied")
	}
}

func TestIllegalPhaseWriteIsRejectedNotFatal(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    world.game_controller_state.game_state = "Playing"
end
`)
	w := newWorld()
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	if w.Phase() != sim.PhaseInitial {
		t.Fatalf("phase = %s, want Initial (request rejected)", w.Phase())
	}
}

func TestSpawnRobotFromScript(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    local ok = world.spawn_robot(7)
    if not ok then error("first spawn failed") end
    local ok2, msg = world.spawn_robot(7)
    if ok2 ~= nil then error("duplicate accepted") end
    if msg == nil then error("duplicate gave no message") end
    if #world.robots ~= 1 then error("robots table not patched") end
end
`)
	w := newWorld()
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	robots := w.Robots()
	if len(robots) != 1 || robots[0].ID != 7 {
		t.Fatalf("robots = %v", robots)
	}
}

func TestBallAssignment(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    world.ball = { position = { 1.5, 0.5 }, velocity = { -1.0, 0.0 } }
end
`)
	w := newWorld()
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	b := w.Ball()
	if b == nil || b.Pos.X != 1.5 || b.Pos.Y != 0.5 || b.Vel.X != -1.0 {
		t.Fatalf("ball = %+v", b)
	}
}

func TestBallNilAssignmentRemovesBall(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    world.ball = nil
end
`)
	w := newWorld()
	w.SetBall(sim.Vec2{X: 1}, sim.Vec2{})
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	if w.Ball() != nil {
		t.Fatalf("ball = %+v, want absent", w.Ball())
	}
}

func TestReturnBallToCenterHelper(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    world.return_ball_to_center()
end
`)
	w := newWorld()
	w.SetBall(sim.Vec2{X: 2, Y: 3}, sim.Vec2{X: 1, Y: 1})
	if err := e.OnCycle(w); err != nil {
		t.Fatalf("on_cycle: %v", err)
	}
	b := w.Ball()
	if b == nil || b.Pos != (sim.Vec2{}) || b.Vel != (sim.Vec2{}) {
		t.Fatalf("ball = %+v, want centered", b)
	}
}

func TestLuaErrorPropagates(t *testing.T) {
	e := newEngine(t, `
function on_cycle()
    world.game_controller_state.game_state = "Ready"
    error("nope")
end
`)
	w := newWorld()
	if err := e.OnCycle(w); err == nil {
		t.Fatal("lua error swallowed")
	}
	// Writes are only read back after a successful call.
	if w.Phase() != sim.PhaseInitial {
		t.Fatalf("phase = %s, want Initial", w.Phase())
	}
}

func TestScriptedGoalOwnsBallReset(t *testing.T) {
	e := newEngine(t, `
function on_goal()
    world.ball = nil
end
`)
	w := newWorld()
	w.SetBall(sim.Vec2{X: testField.HalfLength + 1, Y: 0}, sim.Vec2{})

	s := sim.NewScheduler(w, e, nil, sim.Config{}, nil)
	s.Step()

	if w.Ball() != nil {
		t.Fatalf("host recentered over script removal: %+v", w.Ball())
	}
}

func TestScriptedKickoffMatch(t *testing.T) {
	e := newEngine(t, `
goals = 0

function on_cycle()
    if world.cycle_count == 1 then
        world.game_controller_state.game_state = "Ready"
    elseif world.cycle_count == 2 then
        world.game_controller_state.game_state = "Set"
    elseif world.cycle_count == 3 then
        world.game_controller_state.game_state = "Playing"
        world.ball = { position = { 0.0, 0.0 }, velocity = { 2.0, 0.0 } }
    end
    if goals > 0 then
        world.finished = true
    end
end

function on_goal()
    goals = goals + 1
end
`)
	w := newWorld()
	s := sim.NewScheduler(w, e, nil, sim.Config{MaxCycles: 100}, nil)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !w.Finished() {
		t.Fatalf("match never finished (cycle %d)", w.CycleCount())
	}
	// Kicked at cycle 3, 2 m/s against a 4.5m half: crossing on cycle 6.
	if w.CycleCount() != 6 {
		t.Fatalf("finished at cycle %d, want 6", w.CycleCount())
	}
	if w.Phase() != sim.PhasePlaying {
		t.Fatalf("phase = %s, want Playing", w.Phase())
	}
	// Hook never touched the ball in on_goal, so the host recentered it.
	b := w.Ball()
	if b == nil || b.Pos != (sim.Vec2{}) {
		t.Fatalf("ball = %+v, want recentered", b)
	}
	if len(s.Faults()) != 0 {
		t.Fatalf("faults = %+v", s.Faults())
	}
}
