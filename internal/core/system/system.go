package system

import "time"

// Phase defines execution ordering within a single tick. The scheduler
// runs every registered system exactly once per tick, in phase order.
type Phase int

const (
	PhaseDispatch  Phase = iota // 0: deliver last tick's events
	PhaseIntegrate              // 1: kinematic integration
	PhaseAdvance                // 2: cycle counter + clock
	PhaseGoal                   // 3: goal detection + on_goal hook
	PhaseHook                   // 4: on_cycle hook
	PhaseFinish                 // 5: finished-flag check, scheduler stop
)

// System is one stage of the tick pipeline.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
