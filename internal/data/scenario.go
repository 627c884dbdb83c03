package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fieldsim/host/internal/sim"
)

// Scenario describes the initial world: which robots exist, where the
// ball starts, and the starting game phase. Without a scenario file
// the host default applies (no robots, ball at origin, phase Initial).
type Scenario struct {
	Name   string       `yaml:"name"`
	Phase  string       `yaml:"phase"` // empty = Initial
	Robots []RobotSpawn `yaml:"robots"`
	Ball   *BallSpawn   `yaml:"ball"` // nil = ball at origin, zero velocity
}

type RobotSpawn struct {
	ID int     `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

type BallSpawn struct {
	Position [2]float64 `yaml:"position"`
	Velocity [2]float64 `yaml:"velocity"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (s *Scenario) validate() error {
	if s.Phase != "" {
		if _, err := sim.ParsePhase(s.Phase); err != nil {
			return err
		}
	}
	seen := make(map[int]bool, len(s.Robots))
	for _, r := range s.Robots {
		if seen[r.ID] {
			return fmt.Errorf("duplicate robot id %d", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Apply seeds the world. Called once before the first tick.
func (s *Scenario) Apply(w *sim.World) error {
	if s.Phase != "" {
		p, err := sim.ParsePhase(s.Phase)
		if err != nil {
			return err
		}
		w.SeedPhase(p)
	}
	for _, rs := range s.Robots {
		rb, err := w.SpawnRobot(rs.ID)
		if err != nil {
			return fmt.Errorf("spawn robot %d: %w", rs.ID, err)
		}
		rb.Pose = &sim.Vec2{X: rs.X, Y: rs.Y}
	}
	if s.Ball != nil {
		w.SetBall(
			sim.Vec2{X: s.Ball.Position[0], Y: s.Ball.Position[1]},
			sim.Vec2{X: s.Ball.Velocity[0], Y: s.Ball.Velocity[1]},
		)
	} else {
		w.ReturnBallToCenter()
	}
	return nil
}
