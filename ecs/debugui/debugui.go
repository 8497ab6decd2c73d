// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// Windows are ImguiItem components on a tool-side entity manager; the
// panels inspect a separate, target entity manager.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/floorplan/ecs"
)

// ImguiItemName is the component type name ImguiItem is registered under.
const ImguiItemName = "ImguiItem"

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	ecs.Base
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render functions.
// It also refreshes the ImguiInputState singleton with the current capture
// state.
type ImguiSystem struct {
	Items ecs.Query[ImguiItem, *ImguiItem]
	Input ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Name() string { return "imgui" }

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if in := i.Input.Get(); in != nil {
		io := imgui.CurrentIO()
		in.WantCaptureMouse = io.WantCaptureMouse()
		in.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for _, item := range i.Items.Iter() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}

// RegisterImguiItem installs the ImguiItem manager on r.
func RegisterImguiItem(r *ecs.Registry, capacity int) *ecs.Manager[ImguiItem, *ImguiItem] {
	return ecs.Register[ImguiItem](r, ImguiItemName, capacity)
}
