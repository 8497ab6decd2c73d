// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/floorplan/ecs/debugui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window. The imgui.ini file is
// disabled.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: b}
}

// Update runs one ImGui frame of ui between the backend's BeginFrame and
// EndFrame.
func (b *ImguiBackend) Update(ui *debugui.UI, dt float64) {
	b.BeginFrame()
	ui.Frame(dt)
	b.EndFrame()
}

// Overlay draws the ImGui frame over screen.
func (b *ImguiBackend) Overlay(screen *ebiten.Image) {
	b.Draw(screen)
}
