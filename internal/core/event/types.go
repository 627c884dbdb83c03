package event

// Domain events emitted by the simulation core. Emitted during tick N,
// dispatched at the start of tick N+1.

// GoalScored fires once per detected goal-line crossing.
type GoalScored struct {
	Cycle uint64
	X, Y  float64 // ball position at detection
}

// PhaseChanged fires on every accepted phase transition.
type PhaseChanged struct {
	Cycle uint64
	From  string
	To    string
}

// HookFaulted fires when a script hook raised and was isolated.
type HookFaulted struct {
	Cycle uint64
	Hook  string
	Err   error
}

// RobotSpawned fires when a robot joins the registry.
type RobotSpawned struct {
	Cycle uint64
	ID    int
}
