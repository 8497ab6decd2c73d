// Command editor opens a scene in a window with the 3D and floor-plan views
// and the ImGui debug windows.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/floorplan/config"
	debugui_ebiten "github.com/plus3/floorplan/ecs/debugui/ebiten"
	"github.com/plus3/floorplan/engine"
	"github.com/plus3/floorplan/logging"
	"github.com/plus3/floorplan/render/soft"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Game configuration file (.json or .yaml).")
	scenePath := flag.String("scene", "", "Scene file to open instead of the configured state.")
	dev := flag.Bool("dev", false, "Human readable logs with caller information.")
	noUI := flag.Bool("no-ui", false, "Run without the ImGui debug windows.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *scenePath != "" {
		cfg.Game.State = *scenePath
	}

	logger := logging.Must(logging.Options{
		Level:       cfg.Game.LogLevel,
		File:        cfg.Resolve(cfg.Game.LogFile),
		Development: *dev,
	})
	defer logger.Sync()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("editor panicked", zap.Any("panic", r), zap.Stack("stack"))
			logger.Sync()
			os.Exit(1)
		}
	}()

	g := cfg.Graphics
	device := soft.New(g.Width, g.Height)

	e, err := engine.New(cfg, device, logger)
	if err != nil {
		logger.Fatal("engine init", zap.Error(err))
	}
	defer e.Shutdown()

	var backend *debugui_ebiten.ImguiBackend
	if !*noUI {
		backend = debugui_ebiten.NewImguiBackend(cfg.Game.Name, g.Width, g.Height)
	}

	ebiten.SetWindowSize(g.Width, g.Height)
	ebiten.SetWindowTitle(cfg.Game.Name)
	if g.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetFullscreen(g.Fullscreen)

	if err := ebiten.RunGame(NewEditor(e, device, backend)); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("run", zap.Error(err))
	}
}
