package sim

// Robot is a spawned simulation entity. Pose is optional; Spawn
// assigns the field origin as the default.
type Robot struct {
	ID   int
	Pose *Vec2
}

// Registry owns the robot set. Accessed only from the scheduler
// goroutine — no locks needed. Spawn order is preserved: List returns
// robots in the order they were spawned.
type Registry struct {
	robots []*Robot
	byID   map[int]*Robot
}

func NewRegistry() *Registry {
	return &Registry{
		robots: make([]*Robot, 0, 8),
		byID:   make(map[int]*Robot),
	}
}

// Spawn creates a robot with the given caller-assigned id and appends
// it. Fails with ErrDuplicateID if the id is already present, leaving
// the registry unchanged.
func (r *Registry) Spawn(id int) (*Robot, error) {
	if _, ok := r.byID[id]; ok {
		return nil, ErrDuplicateID
	}
	rb := &Robot{ID: id, Pose: &Vec2{}}
	r.robots = append(r.robots, rb)
	r.byID[id] = rb
	return rb, nil
}

// Get returns the robot with the given id, or nil.
func (r *Registry) Get(id int) *Robot {
	return r.byID[id]
}

// List returns a snapshot of the current membership in spawn order.
// The returned slice holds copies: iterating it never observes spawns
// or pose writes that happen mid-iteration.
func (r *Registry) List() []Robot {
	out := make([]Robot, len(r.robots))
	for i, rb := range r.robots {
		out[i] = *rb
		if rb.Pose != nil {
			p := *rb.Pose
			out[i].Pose = &p
		}
	}
	return out
}

// Len returns the number of spawned robots.
func (r *Registry) Len() int { return len(r.robots) }

// clone deep-copies the registry for world snapshots.
func (r *Registry) clone() *Registry {
	c := NewRegistry()
	for _, rb := range r.robots {
		cp := &Robot{ID: rb.ID}
		if rb.Pose != nil {
			p := *rb.Pose
			cp.Pose = &p
		}
		c.robots = append(c.robots, cp)
		c.byID[cp.ID] = cp
	}
	return c
}
