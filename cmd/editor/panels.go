package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// scenePanel shows the active camera and selection and saves or reloads
// the scene file.
func (ed *Editor) scenePanel() {
	if !imgui.BeginV("Scene", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	s := ed.engine.Scene()
	r := ed.engine.Renderer()

	if cam := s.ActiveCamera(); cam != nil {
		imgui.Text(fmt.Sprintf("Camera: %s", cam.Name))
		imgui.Text(fmt.Sprintf("Position: %.2f %.2f %.2f", cam.Position.X(), cam.Position.Y(), cam.Position.Z()))
		if imgui.Button("Toggle 2D/3D") {
			s.ToggleCamera()
		}
	} else {
		imgui.TextColored(imgui.NewVec4(1, 0.3, 0.3, 1), "No active camera")
	}

	cams, m3, m2, lights := s.Len()
	imgui.Text(fmt.Sprintf("Cameras %d  Models %d/%d  Lights %d", cams, m3, m2, lights))
	imgui.Text(fmt.Sprintf("Selected: %d  Focused: %d", s.Selected(), s.Focused()))

	stats := r.Stats()
	imgui.Text(fmt.Sprintf("Draw calls: %d  FPS: %.0f", stats.DrawCalls, r.FPS()))
	if v, ok := r.DebugView(s); ok {
		imgui.Text("Debug view: " + v.Label)
	}

	imgui.Separator()
	imgui.InputTextWithHint("##path", "scene file", &ed.scenePath, imgui.InputTextFlagsNone, nil)
	if imgui.Button("Save") && ed.scenePath != "" {
		if err := ed.engine.SaveScene(ed.scenePath); err != nil {
			ed.logger.Error("save scene", zap.String("path", ed.scenePath), zap.Error(err))
		}
	}
	imgui.SameLine()
	if imgui.Button("Load") && ed.scenePath != "" {
		if err := ed.engine.LoadScene(ed.scenePath); err != nil {
			ed.logger.Error("load scene", zap.String("path", ed.scenePath), zap.Error(err))
		}
	}

	imgui.End()
}

// catalogPanel lists every catalog by category and spawns the clicked item
// in front of the active camera.
func (ed *Editor) catalogPanel() {
	if !imgui.BeginV("Catalogs", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	catalogs := ed.engine.Catalogs()
	if catalogs.Len() == 0 {
		imgui.Text("No catalogs loaded")
	}

	for _, name := range catalogs.Names() {
		c, _ := catalogs.Get(name)
		if !imgui.TreeNodeStr(name) {
			continue
		}
		for _, it := range c.Items {
			label := it.Name
			if it.Category != "" {
				label = fmt.Sprintf("%s (%s)", it.Name, it.Category)
			}
			if imgui.SelectableBoolV(label, false, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
				ed.spawn(name, it.Name)
			}
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (ed *Editor) spawn(catalog, item string) {
	var pos mgl32.Vec3
	if cam := ed.engine.Scene().ActiveCamera(); cam != nil {
		pos = cam.Position.Add(cam.Forward().Mul(max(cam.Distance(), 1)))
		pos[1] = 0
	}
	e, err := ed.engine.SpawnCatalogItem(catalog, item, pos)
	if err != nil {
		ed.logger.Warn("spawn", zap.String("catalog", catalog), zap.String("item", item), zap.Error(err))
		return
	}
	ed.logger.Debug("spawned", zap.String("entity", e.Name()))
}
