package sim

import (
	"errors"
	"testing"
)

func TestPhaseHappyPath(t *testing.T) {
	m := NewPhaseMachine(PhaseInitial)
	for _, target := range []Phase{PhaseReady, PhaseSet, PhasePlaying} {
		if err := m.Request(target); err != nil {
			t.Fatalf("%s: %v", target, err)
		}
	}
	if m.Current() != PhasePlaying {
		t.Fatalf("current = %s, want Playing", m.Current())
	}

	// Playing → Ready is the reset edge.
	if err := m.Request(PhaseReady); err != nil {
		t.Fatalf("reset to Ready: %v", err)
	}
}

func TestPhaseSkippingStagesFails(t *testing.T) {
	m := NewPhaseMachine(PhaseInitial)
	if err := m.Request(PhaseSet); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Initial→Set err = %v, want ErrInvalidTransition", err)
	}
	if m.Current() != PhaseInitial {
		t.Fatalf("failed request mutated phase: %s", m.Current())
	}
}

func TestPhaseFinishedIsTerminal(t *testing.T) {
	for _, from := range []Phase{PhaseInitial, PhaseReady, PhaseSet, PhasePlaying} {
		m := NewPhaseMachine(from)
		if err := m.Request(PhaseFinished); err != nil {
			t.Fatalf("%s→Finished: %v", from, err)
		}
	}

	m := NewPhaseMachine(PhaseFinished)
	if err := m.Request(PhaseReady); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Finished→Ready err = %v, want ErrInvalidTransition", err)
	}
}

func TestParsePhaseRoundTrip(t *testing.T) {
	for _, p := range []Phase{PhaseInitial, PhaseReady, PhaseSet, PhasePlaying, PhaseFinished} {
		got, err := ParsePhase(p.String())
		if err != nil {
			t.Fatalf("parse %s: %v", p, err)
		}
		if got != p {
			t.Fatalf("round trip %s → %s", p, got)
		}
	}
	if _, err := ParsePhase("Halftime"); err == nil {
		t.Fatal("unknown phase accepted")
	}
}
