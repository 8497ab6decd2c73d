package ecs_test

import (
	"github.com/plus3/floorplan/ecs"
)

// Common test component types
type Position struct {
	ecs.Base
	X, Y float32
}

func (p *Position) Serialize(o ecs.Object) {
	o["x"] = float64(p.X)
	o["y"] = float64(p.Y)
}

func (p *Position) Deserialize(o ecs.Object) error {
	p.X = o.Float32("x", p.X)
	p.Y = o.Float32("y", p.Y)
	return nil
}

type Velocity struct {
	ecs.Base
	DX, DY float32
}

func (v *Velocity) Serialize(o ecs.Object) {
	o["dx"] = float64(v.DX)
	o["dy"] = float64(v.DY)
}

func (v *Velocity) Deserialize(o ecs.Object) error {
	v.DX = o.Float32("dx", v.DX)
	v.DY = o.Float32("dy", v.DY)
	return nil
}

// Update moves the sibling position.
func (v *Velocity) Update(dt float64) {
	for _, c := range v.Owner().Components() {
		if p, ok := c.(*Position); ok {
			p.X += v.DX * float32(dt)
			p.Y += v.DY * float32(dt)
		}
	}
}

type Health struct {
	ecs.Base
	Current int
	Max     int
}

func (h *Health) Serialize(o ecs.Object) {
	o["current"] = h.Current
	o["max"] = h.Max
}

func (h *Health) Deserialize(o ecs.Object) error {
	h.Current = o.Int("current", h.Current)
	h.Max = o.Int("max", h.Max)
	return nil
}

// Tag has no behavior at all.
type Tag struct {
	ecs.Base
}

// Seen records the siblings attached after it.
type Seen struct {
	ecs.Base
	Added []ecs.ComponentID
}

func (s *Seen) OnComponentAdded(c ecs.Component) {
	s.Added = append(s.Added, c.TypeID())
}

type Damage struct {
	Amount int
}

func (Damage) MessageType() ecs.MessageType { return 1 }

type Heal struct {
	Amount int
}

func (Heal) MessageType() ecs.MessageType { return 2 }

type testWorld struct {
	registry  *ecs.Registry
	positions *ecs.Manager[Position, *Position]
	velocity  *ecs.Manager[Velocity, *Velocity]
	health    *ecs.Manager[Health, *Health]
	tags      *ecs.Manager[Tag, *Tag]
	seen      *ecs.Manager[Seen, *Seen]
	prefabs   *ecs.PrefabManager
	entities  *ecs.EntityManager
}

// newTestWorld registers the test components with velocity running before
// position, and health defaulting to 100/100.
func newTestWorld() *testWorld {
	w := &testWorld{registry: ecs.NewRegistry(nil)}
	w.registry.Factory().Register("Health", func() any { return &Health{Current: 100, Max: 100} })

	w.positions = ecs.Register[Position](w.registry, "Position", 128)
	w.velocity = ecs.Register[Velocity](w.registry, "Velocity", 128)
	w.health = ecs.Register[Health](w.registry, "Health", 128)
	w.tags = ecs.Register[Tag](w.registry, "Tag", 4)
	w.seen = ecs.Register[Seen](w.registry, "Seen", 4)
	w.registry.RunsBefore(w.velocity.ID(), w.positions.ID())

	w.prefabs = ecs.NewPrefabManager(nil)
	w.entities = ecs.NewEntityManager(w.registry, w.prefabs, nil)
	return w
}
