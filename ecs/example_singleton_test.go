package ecs_test

import (
	"fmt"

	"github.com/plus3/floorplan/ecs"
)

type GameConfig struct {
	MaxPlayers int
	Difficulty string
}

type GameScore struct {
	Points int
	Level  int
}

// ExampleNewSingleton demonstrates creating and accessing singletons.
// Singletons are values not associated with any entity, useful for world
// state, configuration, or other application-wide data.
func ExampleNewSingleton() {
	registry := ecs.NewRegistry(nil)
	entities := ecs.NewEntityManager(registry, nil, nil)

	// Create singleton with initializer
	config := ecs.NewSingleton[GameConfig](entities, GameConfig{
		MaxPlayers: 4,
		Difficulty: "Normal",
	})

	fmt.Printf("Config: %d players, %s difficulty\n", config.Get().MaxPlayers, config.Get().Difficulty)

	// Modify the singleton
	config.Get().Difficulty = "Hard"
	fmt.Printf("Updated difficulty: %s\n", config.Get().Difficulty)

	// Another accessor sees the same value; the initializer is ignored
	sameConfig := ecs.NewSingleton[GameConfig](entities, GameConfig{Difficulty: "Easy"})
	fmt.Printf("Same config: %s difficulty\n", sameConfig.Get().Difficulty)

	// Output:
	// Config: 4 players, Normal difficulty
	// Updated difficulty: Hard
	// Same config: Hard difficulty
}

type ScoreSystem struct {
	Score ecs.Singleton[GameScore]
}

func (s *ScoreSystem) Execute(frame *ecs.UpdateFrame) {
	score := s.Score.Get()
	score.Points += 50
	if score.Points >= 100 {
		score.Level++
		score.Points = 0
	}
}

// ExampleSingleton_system shows a system declaring a Singleton field. The
// Scheduler binds it on Register and SetSingleton swaps the value it sees.
func ExampleSingleton_system() {
	registry := ecs.NewRegistry(nil)
	entities := ecs.NewEntityManager(registry, nil, nil)
	ecs.SetSingleton(entities, &GameScore{Level: 1})

	scheduler := ecs.NewScheduler(entities)
	scheduler.Register(&ScoreSystem{})

	scheduler.Once(0)
	scheduler.Once(0)
	score := ecs.NewSingleton[GameScore](entities)
	fmt.Printf("Level %d, %d points\n", score.Get().Level, score.Get().Points)

	ecs.SetSingleton(entities, &GameScore{Level: 5})
	scheduler.Once(0)
	fmt.Printf("Level %d, %d points\n", score.Get().Level, score.Get().Points)

	ecs.RemoveSingleton[GameScore](entities)
	fmt.Println("Exists:", score.Exists())

	// Output:
	// Level 2, 0 points
	// Level 5, 50 points
	// Exists: false
}
