package ecs_test

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/floorplan/ecs"
)

type Transform struct {
	ecs.Base
	X, Y float32
}

type Speed struct {
	ecs.Base
	DX, DY float32
}

type Hitpoints struct {
	ecs.Base
	Current, Max int
}

type PhysicsSystem struct {
	Speeds     ecs.Query[Speed, *Speed]
	Transforms *ecs.Manager[Transform, *Transform]
}

func (s *PhysicsSystem) Execute(frame *ecs.UpdateFrame) {
	for entity, speed := range s.Speeds.Iter() {
		t := s.Transforms.Of(entity)
		t.X += speed.DX * float32(frame.DeltaTime)
		t.Y += speed.DY * float32(frame.DeltaTime)
	}
}

type HealingSystem struct {
	Entities  ecs.Query[Hitpoints, *Hitpoints]
	RegenRate float32
}

func (s *HealingSystem) Execute(frame *ecs.UpdateFrame) {
	for _, hp := range s.Entities.Iter() {
		if hp.Current < hp.Max {
			hp.Current += int(s.RegenRate * float32(frame.DeltaTime))
			if hp.Current > hp.Max {
				hp.Current = hp.Max
			}
		}
	}
}

// ExampleScheduler demonstrates building a game loop with multiple systems.
// The Scheduler initializes Query fields, runs systems in registration order
// and flushes the command buffer once they are done.
func ExampleScheduler() {
	registry := ecs.NewRegistry(nil)
	transforms := ecs.Register[Transform](registry, "Transform", 16)
	speeds := ecs.Register[Speed](registry, "Speed", 16)
	hitpoints := ecs.Register[Hitpoints](registry, "Hitpoints", 16)
	entities := ecs.NewEntityManager(registry, nil, nil)

	spawn := func(x, y, dx, dy float32, hp int) {
		e := entities.CreateEntity()
		t := transforms.New()
		t.X, t.Y = x, y
		s := speeds.New()
		s.DX, s.DY = dx, dy
		h := hitpoints.New()
		h.Current, h.Max = hp, 100
		e.AddComponent(t)
		e.AddComponent(s)
		e.AddComponent(h)
	}
	spawn(0, 0, 10, 5, 80)
	spawn(100, 100, -5, -5, 50)

	scheduler := ecs.NewScheduler(entities)
	scheduler.Register(&PhysicsSystem{Transforms: transforms})
	scheduler.Register(&HealingSystem{RegenRate: 10})

	scheduler.Once(1.0)

	fmt.Println("After one frame:")
	for _, e := range entities.Entities() {
		t := transforms.Of(e)
		h := hitpoints.Of(e)
		fmt.Printf("Position: (%.0f, %.0f), Health: %d/%d\n", t.X, t.Y, h.Current, h.Max)
	}

	// Output:
	// After one frame:
	// Position: (10, 5), Health: 90/100
	// Position: (95, 95), Health: 60/100
}

// ExampleScheduler_Run demonstrates running a continuous loop. Run blocks and
// executes all systems at a fixed interval until the context is cancelled.
func ExampleScheduler_Run() {
	registry := ecs.NewRegistry(nil)
	transforms := ecs.Register[Transform](registry, "Transform", 16)
	ecs.Register[Speed](registry, "Speed", 16)
	entities := ecs.NewEntityManager(registry, nil, nil)

	scheduler := ecs.NewScheduler(entities)
	scheduler.Register(&PhysicsSystem{Transforms: transforms})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	scheduler.Run(ctx, 16*time.Millisecond)

	fmt.Println("Scheduler stopped")
	// Output:
	// Scheduler stopped
}
