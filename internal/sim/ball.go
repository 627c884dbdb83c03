package sim

import "math"

// Field holds the goal-line geometry constants. Values are meters;
// defaults come from config.
type Field struct {
	HalfLength    float64 // goal lines at x = ±HalfLength
	HalfWidth     float64 // touchlines at y = ±HalfWidth
	GoalHalfWidth float64 // goal mouth spans y ∈ [-GoalHalfWidth, +GoalHalfWidth]
}

// Ball is the in-play ball. Absence ("no ball") is modeled by the
// controller holding a nil pointer, never a zero-valued sentinel.
type Ball struct {
	Pos Vec2
	Vel Vec2
}

// BallController owns the optional ball: lifecycle, kinematic
// integration, and latched goal-line detection.
//
// The latch makes DetectGoal edge-triggered: once a crossing is
// signaled it cannot retrigger until the ball is explicitly
// repositioned (Spawn, Set, Remove, Recenter). Integration alone does
// not clear the latch.
//
// gen counts explicit repositions. The scheduler records it before
// on_goal and skips the automatic recenter when the hook moved the
// ball itself (last-writer-wins within the tick).
type BallController struct {
	field    Field
	ball     *Ball
	signaled bool
	gen      uint64
}

func NewBallController(field Field) *BallController {
	return &BallController{field: field}
}

// Ball returns the current ball, or nil when absent.
func (c *BallController) Ball() *Ball { return c.ball }

// Gen returns the reposition generation counter.
func (c *BallController) Gen() uint64 { return c.gen }

// Spawn puts a ball in play. Fails with ErrBallExists when one is
// already present; callers must Remove first.
func (c *BallController) Spawn(pos, vel Vec2) error {
	if c.ball != nil {
		return ErrBallExists
	}
	c.ball = &Ball{Pos: pos, Vel: vel}
	c.signaled = false
	c.gen++
	return nil
}

// Set replaces the ball unconditionally. Used for hook-requested ball
// writes, where assignment semantics apply.
func (c *BallController) Set(pos, vel Vec2) {
	c.ball = &Ball{Pos: pos, Vel: vel}
	c.signaled = false
	c.gen++
}

// Remove takes the ball out of play. Idempotent: "no ball" is a valid
// steady state the scheduler tolerates every tick, so removing an
// absent ball is not an error.
func (c *BallController) Remove() {
	c.ball = nil
	c.signaled = false
	c.gen++
}

// Recenter returns the ball to the field origin with zero velocity,
// whether or not a ball existed before. Used both as the explicit
// return-to-center operation and as the automatic post-goal reset.
func (c *BallController) Recenter() {
	c.ball = &Ball{}
	c.signaled = false
	c.gen++
}

// Integrate advances the ball kinematically: pos += vel * dt. No-op
// when no ball is in play. Runs before goal detection each tick so a
// crossing this tick is caught immediately.
func (c *BallController) Integrate(dt float64) {
	if c.ball == nil {
		return
	}
	c.ball.Pos = c.ball.Pos.Add(c.ball.Vel.Scale(dt))
}

// DetectGoal reports whether the ball crossed a goal line. True at
// most once per crossing: after it fires, it stays false until the
// ball is repositioned.
func (c *BallController) DetectGoal() bool {
	if c.ball == nil || c.signaled {
		return false
	}
	if !c.overGoalLine(c.ball.Pos) {
		return false
	}
	c.signaled = true
	return true
}

func (c *BallController) overGoalLine(p Vec2) bool {
	return math.Abs(p.X) > c.field.HalfLength && math.Abs(p.Y) <= c.field.GoalHalfWidth
}

// clone deep-copies the controller for world snapshots.
func (c *BallController) clone() *BallController {
	cp := &BallController{field: c.field, signaled: c.signaled, gen: c.gen}
	if c.ball != nil {
		b := *c.ball
		cp.ball = &b
	}
	return cp
}
