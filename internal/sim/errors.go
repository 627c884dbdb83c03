package sim

import "errors"

var (
	// ErrDuplicateID is returned by Registry.Spawn when the id is taken.
	ErrDuplicateID = errors.New("robot id already spawned")

	// ErrBallExists is returned by BallController.Spawn when a ball is
	// already in play. Callers must Remove first.
	ErrBallExists = errors.New("ball already in play")

	// ErrInvalidTransition is returned by PhaseMachine.Request for a
	// (current, target) pair outside the allowed edge set.
	ErrInvalidTransition = errors.New("invalid phase transition")
)

// HookFault records one isolated hook failure. The scheduler captures
// these at its fault boundary instead of letting them stop the loop.
type HookFault struct {
	Cycle uint64
	Hook  string // "on_cycle" or "on_goal"
	Err   error
}

func (f HookFault) Error() string {
	return f.Hook + ": " + f.Err.Error()
}

func (f HookFault) Unwrap() error { return f.Err }
