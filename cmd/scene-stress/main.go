// Command scene-stress renders a generated scene of moving boxes on the
// software device for a fixed duration and reports frame timings.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/floorplan/config"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/engine"
	"github.com/plus3/floorplan/logging"
	"github.com/plus3/floorplan/render/soft"
	"go.uber.org/zap"
)

// roomSize is the half extent of the generated floor.
const roomSize = 20

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	models := flag.Int("models", 200, "The number of boxes in the scene.")
	pointLights := flag.Int("point-lights", 2, "The number of point lights.")
	spotLights := flag.Int("spot-lights", 1, "The number of spot lights.")
	width := flag.Int("width", 320, "Viewport width in pixels.")
	height := flag.Int("height", 240, "Viewport height in pixels.")
	deferred := flag.Bool("deferred", false, "Render through the GBuffer instead of the forward target.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	seed := flag.Uint64("seed", 1, "Random seed for model placement.")
	flag.Parse()

	logger := logging.Must(logging.Options{Level: "info"})
	defer logger.Sync()

	logger.Info("starting scene stress test")

	// 1. Engine with no content files
	cfg := config.Default()
	cfg.Graphics.Width, cfg.Graphics.Height = *width, *height
	e, err := engine.New(cfg, soft.New(*width, *height), logger)
	if err != nil {
		logger.Fatal("engine init", zap.Error(err))
	}
	defer e.Shutdown()

	// 2. Populate the scene
	rng := rand.New(rand.NewPCG(*seed, *seed))
	doc := generateScene(rng, *models, *pointLights, *spotLights, *deferred)
	if err := e.Scene().Deserialize(doc); err != nil {
		logger.Fatal("generate scene", zap.Error(err))
	}
	logger.Info("population complete", zap.Int("entities", e.Entities().Len()))

	// 3. Run the frame loop
	report := &Report{
		Duration:       *duration,
		Models:         *models,
		PointLights:    *pointLights,
		SpotLights:     *spotLights,
		Width:          *width,
		Height:         *height,
		Deferred:       *deferred,
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running", zap.Duration("duration", *duration))
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			frameStart := time.Now()
			if err := e.Frame(deltaTime.Seconds()); err != nil {
				logger.Fatal("frame", zap.Error(err))
			}
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			report.TotalFrames++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.FrameTime.Finalize()
	report.LastFrame = e.Renderer().Stats()
	report.Systems = e.Scheduler().GetStats().Systems
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("simulation finished")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// generateScene builds a scene document: both cameras, a sun, the requested
// lights and models boxes drifting and spinning over the floor.
func generateScene(rng *rand.Rand, models, pointLights, spotLights int, deferred bool) ecs.Object {
	entity := func(name string, components ...ecs.Object) ecs.Object {
		return ecs.Object{"name": name, "components": components}
	}
	vec := func(x, y, z float64) []any { return []any{x, y, z} }
	spread := func() float64 { return (rng.Float64()*2 - 1) * (roomSize - 1) }

	entities := []ecs.Object{
		entity("camera3d", ecs.Object{
			"type":     "CameraCmp",
			"position": vec(0, roomSize, roomSize*1.5),
			"target":   vec(0, 0, 0),
		}),
		entity("camera2d", ecs.Object{
			"type":       "CameraCmp",
			"projection": "orthographic",
			"zoom":       float64(roomSize),
		}),
		entity("sun", ecs.Object{
			"type":      "DirectLightCmp",
			"direction": vec(-0.4, -1, -0.3),
		}),
		entity("floor",
			ecs.Object{"type": "TransformCmp", "scale": vec(roomSize/5.0, 1, roomSize/5.0)},
			ecs.Object{"type": "RenderableCmp", "asset": "builtin:floor", "castshadows": false},
		),
	}

	for i := range pointLights {
		entities = append(entities, entity(fmt.Sprintf("point%d", i), ecs.Object{
			"type":     "PointLightCmp",
			"position": vec(spread(), 4, spread()),
			"range":    float64(roomSize),
		}))
	}
	for i := range spotLights {
		entities = append(entities, entity(fmt.Sprintf("spot%d", i), ecs.Object{
			"type":      "SpotLightCmp",
			"position":  vec(spread(), 8, spread()),
			"direction": vec(0, -1, 0),
			"range":     float64(roomSize),
		}))
	}

	for i := range models {
		heading := rng.Float64() * 2 * math.Pi
		entities = append(entities, entity(fmt.Sprintf("box%d", i),
			ecs.Object{"type": "TransformCmp", "position": vec(spread(), 0.5, spread())},
			ecs.Object{"type": "MotionCmp", "velocity": vec(math.Cos(heading), 0, math.Sin(heading)), "spin": rng.Float64()},
			ecs.Object{"type": "RenderableCmp", "asset": "builtin:box", "view": "both", "label": fmt.Sprintf("Box %d", i)},
		))
	}

	doc := ecs.Object{
		"name":          "stress",
		"constraints3d": ecs.Object{"min": vec(-roomSize, 0, -roomSize), "max": vec(roomSize, 10, roomSize)},
		"entities":      entities,
	}
	if deferred {
		doc["rendertarget"] = "GBuffer"
	}
	return doc
}
