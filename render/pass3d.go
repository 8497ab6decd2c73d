package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
)

// RenderScene3D draws the perspective view: shadow maps for every
// shadow-casting light, the GBuffer geometry pass with selection contours,
// the lighting passes into the NoAA target and the debug overlays.
func (r *Renderer) RenderScene3D(s *scene.Scene) error {
	cam := s.ActiveCamera()
	if cam == nil {
		return ErrNoCamera
	}
	r.cull3D(s, cam)

	if err := r.shadowPasses(s); err != nil {
		return err
	}
	if err := r.geometryPass(s, cam.ViewProjection()); err != nil {
		return err
	}
	if err := r.lightingPasses(s); err != nil {
		return err
	}
	r.overlays3D(s, cam)
	return nil
}

func (r *Renderer) cull3D(s *scene.Scene, cam *object.Camera) {
	fr := cam.Frustum()

	r.visible3d = r.visible3d[:0]
	for _, m := range s.Models3D() {
		r.stats.Models3D++
		if m.Enabled && fr.IntersectsAABB(m.WorldBounds()) {
			r.visible3d = append(r.visible3d, m)
		}
	}
	r.stats.Visible3D = len(r.visible3d)

	r.points = r.points[:0]
	for l := range s.PointLights() {
		if l.Enabled && fr.IntersectsSphere(l.Sphere()) {
			r.points = append(r.points, l)
		}
	}
	r.spots = r.spots[:0]
	for l := range s.SpotLights() {
		if l.Enabled && fr.IntersectsSphere(l.Sphere()) {
			r.spots = append(r.spots, l)
		}
	}
	r.stats.PointLights = len(r.points)
	r.stats.SpotLights = len(r.spots)
}

func castsShadow(m *object.Model3D) bool { return m.Enabled && m.CastShadows }

// shadowPasses renders a depth map for the direct light and for each visible
// spot and point light that casts shadows. Casters are not frustum culled:
// an object behind the camera still shadows what is in front of it.
func (r *Renderer) shadowPasses(s *scene.Scene) error {
	models := s.Models3D()

	r.directShadow = ShadowSource{}
	if d := s.DirectLight(); d != nil && d.Enabled && d.CastShadows {
		bounds, ok := s.Bounds()
		if !ok {
			bounds = unionBounds(models, castsShadow)
		}
		if bounds.Valid() {
			space := d.LightSpace(bounds)
			if err := r.shadowTarget(DirectShadowTarget, d.ShadowSize, 1); err != nil {
				return err
			}
			if err := r.shadowPass(DirectShadowTarget, 0, space, models); err != nil {
				return err
			}
			r.directShadow = ShadowSource{Target: DirectShadowTarget, Spaces: []mgl32.Mat4{space}, Bias: d.ShadowBias}
		}
	}

	r.spotShadows = r.spotShadows[:0]
	for i, l := range r.spots {
		src := ShadowSource{}
		if l.CastShadows {
			name := SpotShadowTarget(i)
			space := l.LightSpace()
			if err := r.shadowTarget(name, l.ShadowSize, 1); err != nil {
				return err
			}
			if err := r.shadowPass(name, 0, space, models); err != nil {
				return err
			}
			src = ShadowSource{Target: name, Spaces: []mgl32.Mat4{space}, Bias: l.ShadowBias}
		}
		r.spotShadows = append(r.spotShadows, src)
	}

	r.pointShadows = r.pointShadows[:0]
	for i, l := range r.points {
		src := ShadowSource{}
		if l.CastShadows {
			name := PointShadowTarget(i)
			if err := r.shadowTarget(name, l.ShadowSize, 6); err != nil {
				return err
			}
			spaces := make([]mgl32.Mat4, 6)
			for face := range spaces {
				spaces[face] = l.FaceSpace(face)
				if err := r.shadowPass(name, face, spaces[face], models); err != nil {
					return err
				}
			}
			src = ShadowSource{Target: name, Spaces: spaces, Bias: l.ShadowBias}
		}
		r.pointShadows = append(r.pointShadows, src)
	}
	return nil
}

// shadowPass renders the depth of every caster into one layer of target.
// Front faces are culled to push acne onto back faces.
func (r *Renderer) shadowPass(target string, layer int, space mgl32.Mat4, models []*object.Model3D) error {
	if err := r.bind(target, layer); err != nil {
		return err
	}
	r.device.Clear(ClearDepth, mgl32.Vec4{})

	st := BaselineState()
	st.ColorWrite = false
	st.Cull = CullFront
	r.device.SetState(st)

	for _, m := range models {
		if !castsShadow(m) {
			continue
		}
		r.draw(DrawCall{
			Program:  ProgramShadow,
			Mesh:     r.mesh3D(m.Asset),
			Model:    m.Model(),
			ViewProj: space,
			ID:       m.ID,
		})
	}
	r.stats.ShadowPasses++
	return nil
}

func (r *Renderer) geometryPass(s *scene.Scene, viewProj mgl32.Mat4) error {
	spec, _ := s.Target(scene.GBufferTarget)
	if err := r.bind(scene.GBufferTarget, 0); err != nil {
		return err
	}
	r.device.Clear(ClearAll, spec.Clear)

	base := BaselineState()
	r.device.SetState(base)

	for _, m := range r.visible3d {
		surface := SurfaceLit
		if !m.ReceiveShadows {
			surface = SurfaceNoShadow
		}
		call := DrawCall{
			Program:  ProgramGeometry,
			Mesh:     r.mesh3D(m.Asset),
			Model:    m.Model(),
			ViewProj: viewProj,
			ID:       m.ID,
			Color:    mgl32.Vec4{1, 1, 1, 1},
			Surface:  surface,
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
	return nil
}

// lightingPasses accumulates light into the NoAA target from the GBuffer.
// The ambient pass replaces the target's color; every later pass adds.
func (r *Renderer) lightingPasses(s *scene.Scene) error {
	spec, _ := s.Target(scene.NoAATarget)
	if err := r.bind(scene.NoAATarget, 0); err != nil {
		return err
	}
	r.device.Clear(ClearAll, spec.Clear)

	st := BaselineState()
	st.DepthTest = false
	st.DepthWrite = false
	st.Cull = CullNone
	r.device.SetState(st)

	ambient := r.Opts.Ambient
	d := s.DirectLight()
	if d != nil {
		ambient = d.Ambient
	}
	r.light(LightPass{
		Program:    ProgramAmbient,
		Source:     scene.GBufferTarget,
		Ambient:    ambient,
		Background: spec.Clear,
	})

	st.Blend = BlendAdditive
	r.device.SetState(st)

	if d != nil && d.Enabled {
		r.light(LightPass{
			Program:   ProgramDirect,
			Source:    scene.GBufferTarget,
			Color:     d.Radiance(),
			Direction: d.Direction.Normalize(),
			Shadow:    r.directShadow,
		})
	}
	for i, l := range r.spots {
		r.light(LightPass{
			Program:     ProgramSpot,
			Source:      scene.GBufferTarget,
			Color:       l.Radiance(),
			Direction:   l.Direction.Normalize(),
			Position:    l.Position,
			Attenuation: l.Attenuation(),
			Range:       l.Range,
			InnerCos:    cos32(l.InnerCutoff),
			OuterCos:    cos32(l.OuterCutoff),
			Shadow:      r.spotShadows[i],
		})
	}
	for i, l := range r.points {
		r.light(LightPass{
			Program:     ProgramPoint,
			Source:      scene.GBufferTarget,
			Color:       l.Radiance(),
			Position:    l.Position,
			Attenuation: l.Attenuation(),
			Range:       l.Range,
			Shadow:      r.pointShadows[i],
		})
	}
	return nil
}

func (r *Renderer) light(pass LightPass) {
	r.device.Light(pass)
	r.stats.LightPasses++
}
