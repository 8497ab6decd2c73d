package render

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
)

// RenderScene2D draws the floor plan into the NoAA target: the grid, the
// visible 2D models in sort order with selection contours, their labels and
// the transform gizmo.
func (r *Renderer) RenderScene2D(s *scene.Scene) error {
	cam := s.ActiveCamera()
	if cam == nil {
		return ErrNoCamera
	}
	spec, _ := s.Target(scene.NoAATarget)
	if err := r.bind(scene.NoAATarget, 0); err != nil {
		return err
	}
	r.device.Clear(ClearAll, spec.Clear)

	base := BaselineState()
	base.DepthTest = false
	base.DepthWrite = false
	base.Cull = CullNone
	r.device.SetState(base)

	vp := cam.ViewProjection()
	r.grid(s, cam, vp)

	fr := cam.Frustum()
	r.visible2d = r.visible2d[:0]
	for _, m := range s.Models2D() {
		r.stats.Models2D++
		if m.Enabled && fr.IntersectsAABB(m.WorldBounds()) {
			r.visible2d = append(r.visible2d, m)
		}
	}
	r.stats.Visible2D = len(r.visible2d)
	slices.SortStableFunc(r.visible2d, func(a, b *object.Model2D) int { return r.sort2D(s, a, b) })

	base.Blend = BlendAlpha
	r.device.SetState(base)
	for _, m := range r.visible2d {
		call := DrawCall{
			Program:  ProgramPlan,
			Mesh:     r.mesh2D(m.Asset),
			Model:    m.Model(),
			ViewProj: vp,
			ID:       m.ID,
			Color:    mgl32.Vec4{1, 1, 1, 1},
			Surface:  SurfaceUnlit,
		}
		col, width, ok := r.highlight(s, m.ID)
		if !ok {
			r.draw(call)
			continue
		}
		r.device.Clear(ClearStencil, mgl32.Vec4{})
		r.device.SetState(stencilWriteState(base))
		r.draw(call)
		r.contour(call, col, width)
		r.device.SetState(base)
	}

	r.labels(cam)
	r.gizmo2D(s, vp)
	return nil
}

// grid draws the minor then the major lines covering the camera's view.
func (r *Renderer) grid(s *scene.Scene, cam *object.Camera, vp mgl32.Mat4) {
	g := s.Grid
	if g == nil || !g.Enabled {
		return
	}
	h := cam.Zoom
	w := h * cam.Aspect
	c := mgl32.Vec2{cam.Position[0], cam.Position[1]}
	minor, major := g.Lines(c.Sub(mgl32.Vec2{w, h}), c.Add(mgl32.Vec2{w, h}), 0, cam.Distance())
	if len(minor) > 0 {
		r.device.DrawLines(minor, g.MinorColor, vp)
	}
	if len(major) > 0 {
		r.device.DrawLines(major, g.MajorColor, vp)
	}
}

// labels writes each visible model's label centered on its projected center.
func (r *Renderer) labels(cam *object.Camera) {
	for _, m := range r.visible2d {
		if m.Label == "" {
			continue
		}
		p, ok := cam.Project(m.Center(), r.width, r.height)
		if !ok {
			continue
		}
		tw, th := r.device.MeasureText(m.Label)
		r.device.Text(m.Label, int(p[0])-tw/2, int(p[1])-th/2, r.Opts.LabelColor)
	}
}

// gizmo2D outlines the model under transform and draws its heading handle.
func (r *Renderer) gizmo2D(s *scene.Scene, vp mgl32.Mat4) {
	id, ok := s.Transforming()
	if !ok {
		return
	}
	m := s.Model2D(id)
	if m == nil || m.NoGizmo || !m.Enabled {
		return
	}
	b := m.WorldBounds()
	z := m.Depth
	corners := [4]mgl32.Vec3{
		{b.Min[0], b.Min[1], z},
		{b.Max[0], b.Min[1], z},
		{b.Max[0], b.Max[1], z},
		{b.Min[0], b.Max[1], z},
	}
	lines := make([]object.Line, 0, 5)
	for i := range corners {
		lines = append(lines, object.Line{From: corners[i], To: corners[(i+1)%4]})
	}
	center := b.Center()
	reach := max(b.Size()[0], b.Size()[1]) * 0.75
	heading := mgl32.Rotate2D(m.Rotation).Mul2x1(mgl32.Vec2{0, 1}).Mul(reach)
	lines = append(lines, object.Line{From: center, To: center.Add(mgl32.Vec3{heading[0], heading[1], 0})})
	r.device.DrawLines(lines, r.Opts.SelectionColor, vp)
}
