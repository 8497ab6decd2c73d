package ecs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/plus3/floorplan/ecs"
)

type MovementSystem struct {
	Velocities   ecs.Query[Velocity, *Velocity]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for _, v := range s.Velocities.Iter() {
		v.Update(frame.DeltaTime)
	}
}

type HealthSystem struct {
	Entities     ecs.Query[Health, *Health]
	ExecuteCount int
	TotalHealth  float64
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for _, h := range s.Entities.Iter() {
		s.TotalHealth += float64(h.Current)
	}
}

type phaseRecorder struct {
	name  string
	phase ecs.Phase
	log   *[]string
	spawn bool
}

func (s *phaseRecorder) Execute(frame *ecs.UpdateFrame) {
	*s.log = append(*s.log, fmt.Sprintf("%s:%d", s.name, frame.Entities.Len()))
	if s.spawn {
		frame.Commands.Spawn(ecs.Object{"name": s.name})
	}
}

func (s *phaseRecorder) Name() string { return s.name }

func (s *phaseRecorder) Phase() ecs.Phase { return s.phase }

type namedSystem struct{}

func (namedSystem) Execute(*ecs.UpdateFrame) {}

func (namedSystem) Name() string { return "Renamed" }

func spawnHealth(w *testWorld, current int) *ecs.Entity {
	e := w.entities.CreateEntity()
	h := w.health.New()
	h.Current = current
	e.AddComponent(h)
	return e
}

func TestScheduler(t *testing.T) {
	t.Run("system execution order and query initialization", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)

		movement := &MovementSystem{}
		health := &HealthSystem{}

		scheduler.Register(movement)
		scheduler.Register(health)

		spawnHealth(w, 100)

		scheduler.Once(1.0)

		if movement.ExecuteCount != 1 {
			t.Errorf("expected MovementSystem to execute once, got %d", movement.ExecuteCount)
		}

		if health.ExecuteCount != 1 {
			t.Errorf("expected HealthSystem to execute once, got %d", health.ExecuteCount)
		}

		scheduler.Once(1.0)

		if movement.ExecuteCount != 2 {
			t.Errorf("expected MovementSystem to execute twice, got %d", movement.ExecuteCount)
		}

		stats := scheduler.GetStats()
		if stats.SystemCount != 2 || stats.TotalExecutions != 4 {
			t.Errorf("unexpected stats %+v", stats)
		}
		if stats.Systems[0].Name != "MovementSystem" {
			t.Errorf("expected first system to be MovementSystem, got %s", stats.Systems[0].Name)
		}
	})

	t.Run("custom state persistence", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)

		spawnHealth(w, 50)
		spawnHealth(w, 75)

		health := &HealthSystem{}
		scheduler.Register(health)

		scheduler.Once(1.0)

		if health.TotalHealth != 125.0 {
			t.Errorf("expected TotalHealth=125.0, got %f", health.TotalHealth)
		}

		spawnHealth(w, 25)

		scheduler.Once(1.0)

		if health.TotalHealth != 150.0 {
			t.Errorf("expected TotalHealth=150.0, got %f", health.TotalHealth)
		}
	})

	t.Run("inactive and detached components are not queried", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)
		health := &HealthSystem{}
		scheduler.Register(health)

		spawnHealth(w, 10)
		spawnHealth(w, 20).SetActive(false)
		w.health.New()

		scheduler.Once(1.0)

		if health.TotalHealth != 10.0 {
			t.Errorf("expected TotalHealth=10.0, got %f", health.TotalHealth)
		}
	})

	t.Run("context cancellation in run", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)

		movement := &MovementSystem{}
		scheduler.Register(movement)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan bool)
		go func() {
			scheduler.Run(ctx, 1*time.Millisecond)
			done <- true
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("scheduler did not stop after context cancellation")
		}

		if movement.ExecuteCount == 0 {
			t.Error("expected system to execute at least once")
		}
	})

	t.Run("delta time calculation", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)

		e := w.entities.CreateEntity()
		p := w.positions.New()
		v := w.velocity.New()
		v.DX, v.DY = 10, 20
		e.AddComponent(p)
		e.AddComponent(v)

		scheduler.Register(&MovementSystem{})
		scheduler.Once(0.5)

		if p.X != 5.0 || p.Y != 10.0 {
			t.Errorf("expected position (5, 10), got (%f, %f)", p.X, p.Y)
		}
	})

	t.Run("systems can name themselves", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)
		scheduler.Register(namedSystem{})

		if name := scheduler.GetStats().Systems[0].Name; name != "Renamed" {
			t.Errorf("expected Renamed, got %s", name)
		}
	})

	t.Run("phases run in order and flush between them", func(t *testing.T) {
		w := newTestWorld()
		scheduler := ecs.NewScheduler(w.entities)
		var log []string

		scheduler.Register(&phaseRecorder{name: "draw", phase: ecs.PhaseRender, log: &log})
		scheduler.Register(&phaseRecorder{name: "move", phase: ecs.PhaseUpdate, log: &log, spawn: true})
		scheduler.Register(&phaseRecorder{name: "tick", phase: ecs.PhaseUpdate, log: &log})
		scheduler.Register(&phaseRecorder{name: "keys", phase: ecs.PhaseInput, log: &log})

		scheduler.Once(1)

		want := []string{"keys:0", "move:0", "tick:0", "draw:1"}
		if fmt.Sprint(log) != fmt.Sprint(want) {
			t.Errorf("expected %v, got %v", want, log)
		}

		stats := scheduler.GetStats()
		if stats.Systems[0].Name != "keys" || stats.Systems[3].Phase != ecs.PhaseRender {
			t.Errorf("stats not in execution order: %+v", stats.Systems)
		}
		if ecs.PhaseRender.String() != "render" {
			t.Errorf("unexpected phase name %s", ecs.PhaseRender)
		}
	})

	t.Run("unregistered query type panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for unregistered component")
			}
		}()

		registry := ecs.NewRegistry(nil)
		scheduler := ecs.NewScheduler(ecs.NewEntityManager(registry, nil, nil))
		scheduler.Register(&HealthSystem{})
	})
}
