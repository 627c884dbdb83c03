package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/fieldsim/host/internal/sim"
)

// Engine wraps a single gopher-lua VM running the behavior scripts.
// Single-goroutine access only (scheduler loop). It implements
// sim.Hooks: before each hook call it publishes a `world` table, and
// after a successful call it reads the table back and applies script
// writes as requests — ball by assignment, phase through the validated
// transition, finished one-way. A Lua runtime error is returned to the
// scheduler, which rolls the world back and records the fault.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

var _ sim.Hooks = (*Engine)(nil)

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is valid: the host runs with no
// hooks attached.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() { e.vm.Close() }

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Debug("script dir missing, no hooks loaded", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// OnCycle calls the Lua on_cycle hook, if defined.
func (e *Engine) OnCycle(w *sim.World) error {
	return e.call("on_cycle", w)
}

// OnGoal calls the Lua on_goal hook, if defined.
func (e *Engine) OnGoal(w *sim.World) error {
	return e.call("on_goal", w)
}

func (e *Engine) call(name string, w *sim.World) error {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}

	wt := e.buildWorldTable(w)
	e.vm.SetGlobal("world", wt)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, wt); err != nil {
		return fmt.Errorf("lua %s: %w", name, err)
	}

	e.applyWrites(w, wt)
	return nil
}

// buildWorldTable packs the world into the script-facing table. The
// spawn_robot and return_ball_to_center functions mutate the world
// immediately and patch the table, so the post-hook readback stays
// coherent with what the script saw.
func (e *Engine) buildWorldTable(w *sim.World) *lua.LTable {
	t := e.vm.NewTable()

	t.RawSetString("cycle_count", lua.LNumber(w.CycleCount()))
	t.RawSetString("time", lua.LNumber(w.Time()))

	rt := e.vm.NewTable()
	for _, rb := range w.Robots() {
		rt.Append(e.robotTable(rb))
	}
	t.RawSetString("robots", rt)

	if b := w.Ball(); b != nil {
		t.RawSetString("ball", e.ballTable(*b))
	}

	gcs := e.vm.NewTable()
	gcs.RawSetString("game_state", lua.LString(w.Phase().String()))
	t.RawSetString("game_controller_state", gcs)

	t.RawSetString("finished", lua.LBool(w.Finished()))

	t.RawSetString("spawn_robot", e.vm.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		rb, err := w.SpawnRobot(id)
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		rt.Append(e.robotTable(*rb))
		L.Push(lua.LTrue)
		return 1
	}))

	t.RawSetString("return_ball_to_center", e.vm.NewFunction(func(L *lua.LState) int {
		w.ReturnBallToCenter()
		t.RawSetString("ball", e.ballTable(sim.Ball{}))
		return 0
	}))

	return t
}

func (e *Engine) robotTable(rb sim.Robot) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(rb.ID))
	if rb.Pose != nil {
		t.RawSetString("x", lua.LNumber(rb.Pose.X))
		t.RawSetString("y", lua.LNumber(rb.Pose.Y))
	}
	return t
}

func (e *Engine) ballTable(b sim.Ball) *lua.LTable {
	t := e.vm.NewTable()
	pos := e.vm.NewTable()
	pos.RawSetInt(1, lua.LNumber(b.Pos.X))
	pos.RawSetInt(2, lua.LNumber(b.Pos.Y))
	t.RawSetString("position", pos)
	vel := e.vm.NewTable()
	vel.RawSetInt(1, lua.LNumber(b.Vel.X))
	vel.RawSetInt(2, lua.LNumber(b.Vel.Y))
	t.RawSetString("velocity", vel)
	return t
}

// applyWrites turns script-side field writes into host requests.
func (e *Engine) applyWrites(w *sim.World, wt *lua.LTable) {
	e.applyBall(w, wt.RawGetString("ball"))
	e.applyPhase(w, wt.RawGetString("game_controller_state"))
	if lua.LVAsBool(wt.RawGetString("finished")) && !w.Finished() {
		w.Finish()
	}
}

func (e *Engine) applyBall(w *sim.World, lv lua.LValue) {
	cur := w.Ball()
	if lv == lua.LNil {
		if cur != nil {
			w.ClearBall()
		}
		return
	}
	bt, ok := lv.(*lua.LTable)
	if !ok {
		e.log.Warn("script wrote non-table ball, ignoring")
		return
	}
	pos, okP := parseVec(bt.RawGetString("position"))
	vel, okV := parseVec(bt.RawGetString("velocity"))
	if !okP {
		e.log.Warn("script ball missing position, ignoring")
		return
	}
	if !okV {
		vel = sim.Vec2{}
	}
	want := sim.Ball{Pos: pos, Vel: vel}
	if cur == nil || *cur != want {
		w.SetBall(want.Pos, want.Vel)
	}
}

func (e *Engine) applyPhase(w *sim.World, lv lua.LValue) {
	gcs, ok := lv.(*lua.LTable)
	if !ok {
		return
	}
	gs, ok := gcs.RawGetString("game_state").(lua.LString)
	if !ok {
		return
	}
	name := string(gs)
	if name == w.Phase().String() {
		return
	}
	target, err := sim.ParsePhase(name)
	if err != nil {
		e.log.Warn("script wrote unknown phase", zap.String("phase", name))
		return
	}
	// An illegal transition is recoverable: log it, keep the old phase.
	if err := w.RequestPhase(target); err != nil {
		e.log.Warn("script phase transition rejected",
			zap.String("from", w.Phase().String()),
			zap.String("to", name),
			zap.Error(err))
	}
}

func parseVec(lv lua.LValue) (sim.Vec2, bool) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return sim.Vec2{}, false
	}
	x := lua.LVAsNumber(t.RawGetInt(1))
	y := lua.LVAsNumber(t.RawGetInt(2))
	return sim.Vec2{X: float64(x), Y: float64(y)}, true
}
