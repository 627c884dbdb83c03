package sim

import "fmt"

// Phase is the game-controller state.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseReady
	PhaseSet
	PhasePlaying
	PhaseFinished // terminal
)

var phaseNames = [...]string{"Initial", "Ready", "Set", "Playing", "Finished"}

func (p Phase) String() string {
	if p < PhaseInitial || p > PhaseFinished {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase converts the wire/script spelling of a phase.
func ParsePhase(s string) (Phase, error) {
	for i, n := range phaseNames {
		if n == s {
			return Phase(i), nil
		}
	}
	return PhaseInitial, fmt.Errorf("unknown phase %q", s)
}

// PhaseMachine validates and applies phase transitions. External
// phase writes go through Request — the host never accepts a raw
// assignment, which is what keeps illegal states unrepresentable.
//
// Allowed edges: Initial→Ready, Ready→Set, Set→Playing,
// Playing→Ready (reset), any→Finished. Finished is terminal.
type PhaseMachine struct {
	current Phase
}

func NewPhaseMachine(initial Phase) *PhaseMachine {
	return &PhaseMachine{current: initial}
}

func (m *PhaseMachine) Current() Phase { return m.current }

// Request applies the transition to target if the edge is allowed,
// otherwise fails with ErrInvalidTransition and leaves the phase
// unchanged.
func (m *PhaseMachine) Request(target Phase) error {
	if !allowedEdge(m.current, target) {
		return fmt.Errorf("%s → %s: %w", m.current, target, ErrInvalidTransition)
	}
	m.current = target
	return nil
}

func allowedEdge(from, to Phase) bool {
	if to == PhaseFinished {
		return true
	}
	if from == PhaseFinished {
		return false
	}
	switch from {
	case PhaseInitial:
		return to == PhaseReady
	case PhaseReady:
		return to == PhaseSet
	case PhaseSet:
		return to == PhasePlaying
	case PhasePlaying:
		return to == PhaseReady
	}
	return false
}
