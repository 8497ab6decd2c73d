package main

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/floorplan/ecs/debugui"
	debugui_ebiten "github.com/plus3/floorplan/ecs/debugui/ebiten"
	"github.com/plus3/floorplan/engine"
	"github.com/plus3/floorplan/render/soft"
	"github.com/plus3/floorplan/scene"
	"go.uber.org/zap"
)

// Editor implements ebiten.Game: it runs one engine frame per tick, shows
// the composite target and routes mouse and keyboard input to the scene.
type Editor struct {
	engine   *engine.Engine
	device   *soft.Device
	logger   *zap.Logger
	controls Controls

	ui      *debugui.UI
	backend *debugui_ebiten.ImguiBackend
	showUI  bool

	screen    *ebiten.Image
	scenePath string
	lastX     int
	lastY     int
	dragging  bool
	statusMsg string
}

func NewEditor(e *engine.Engine, device *soft.Device, backend *debugui_ebiten.ImguiBackend) *Editor {
	ed := &Editor{
		engine:   e,
		device:   device,
		logger:   e.Logger().Named("editor"),
		controls: NewControls(e.Config().Input.Sensitivity),
		backend:  backend,
		showUI:   backend != nil,

		scenePath: e.Config().Resolve(e.Config().Game.State),
	}
	if backend != nil {
		ed.ui = debugui.New(e.Entities(), e.Logger())
		ed.ui.SetSchedulerStats(e.Scheduler().GetStats)
		ed.ui.SpawnDebugUI()
		ed.ui.Add("scene", ed.scenePanel)
		ed.ui.Add("catalogs", ed.catalogPanel)
	}
	return ed
}

func (ed *Editor) Update() error {
	dt := 1 / float64(ebiten.TPS())

	ed.keyboard()
	ed.mouse()

	if err := ed.engine.Frame(dt); err != nil {
		ed.statusMsg = err.Error()
	} else {
		ed.statusMsg = ""
	}

	if ed.backend != nil {
		ed.backend.Update(ed.ui, dt)
	}
	return nil
}

func (ed *Editor) captured() (mouse, keyboard bool) {
	if ed.ui == nil || !ed.showUI {
		return false, false
	}
	in := ed.ui.Input()
	return in.WantCaptureMouse, in.WantCaptureKeyboard
}

func (ed *Editor) keyboard() {
	if _, kb := ed.captured(); kb {
		return
	}
	s := ed.engine.Scene()
	r := ed.engine.Renderer()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		s.ToggleCamera()
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		if v, ok := r.CycleDebugTarget(s); ok {
			ed.logger.Info("debug view", zap.String("view", v.Label))
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF4):
		r.CycleDebugAttachment(s)
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		ed.showUI = !ed.showUI && ed.backend != nil
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		ed.engine.DestroySelected()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		s.ClearSelection()
		r.DisableDebug()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		s.RotateSelection(rotateStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		s.RotateSelection(-rotateStep)
	}
}

func (ed *Editor) mouse() {
	x, y := ebiten.CursorPosition()
	dx, dy := float32(x-ed.lastX), float32(y-ed.lastY)
	ed.lastX, ed.lastY = x, y

	if m, _ := ed.captured(); m {
		ed.dragging = false
		return
	}

	s := ed.engine.Scene()
	cam := s.ActiveCamera()
	_, height := ed.device.Size()

	if _, wy := ebiten.Wheel(); wy != 0 {
		ed.controls.Zoom(cam, float32(wy))
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		ed.dragging = ed.engine.SelectAt(x, y)
		if ed.dragging {
			s.BeginTransform()
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && ed.dragging:
		ed.controls.Drag(s, dx, dy, height)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && ed.dragging:
		ed.dragging = false
		s.EndTransform()
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		ed.controls.Orbit(cam, dx, dy)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		ed.controls.Pan(cam, dx, dy, height)
	default:
		ed.engine.FocusAt(x, y)
	}
}

func (ed *Editor) Draw(screen *ebiten.Image) {
	if img := ed.frameImage(); img != nil {
		if ed.screen == nil || ed.screen.Bounds() != img.Bounds() {
			ed.screen = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
		}
		ed.screen.WritePixels(img.Pix)
		screen.DrawImage(ed.screen, nil)
	}

	if ed.statusMsg != "" {
		ebitenutil.DebugPrintAt(screen, ed.statusMsg, 4, screen.Bounds().Dy()-16)
	}
	if !ed.showUI {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f  FPS %.0f", ebiten.ActualTPS(), ebiten.ActualFPS()), 4, 20)
	}

	if ed.backend != nil && ed.showUI {
		ed.backend.Overlay(screen)
	}
}

// frameImage is the composite target, or the target the debug cycle
// currently inspects.
func (ed *Editor) frameImage() *image.RGBA {
	s := ed.engine.Scene()
	if v, ok := ed.engine.Renderer().DebugView(s); ok {
		if v.Depth {
			gray, err := ed.device.DepthImage(v.Target, 0)
			if err == nil {
				return grayToRGBA(gray)
			}
		} else if img, err := ed.device.Image(v.Target, v.Attachment); err == nil {
			return img
		}
	}
	img, err := ed.device.Image(scene.NoAATarget, 0)
	if err != nil {
		return nil
	}
	return img
}

func grayToRGBA(g *image.Gray) *image.RGBA {
	out := image.NewRGBA(g.Bounds())
	for i, y := range g.Pix {
		out.Pix[i*4+0] = y
		out.Pix[i*4+1] = y
		out.Pix[i*4+2] = y
		out.Pix[i*4+3] = 255
	}
	return out
}

func (ed *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	if ed.backend != nil {
		ed.backend.Layout(outsideWidth, outsideHeight)
	}
	if w, h := ed.device.Size(); w != outsideWidth || h != outsideHeight {
		ed.device.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
