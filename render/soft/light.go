package soft

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/render"
)

// Light shades every pixel of the bound target from the matching pixel of
// the pass's source GBuffer. Both must have the same size.
func (d *Device) Light(pass render.LightPass) {
	d.record(Command{Op: OpLight, Target: d.boundName, Program: pass.Program, Source: pass.Source, Shadow: pass.Shadow.Target, State: d.state})
	dst := d.current()
	src, ok := d.targets[pass.Source]
	if dst == nil || !ok || len(dst.color) == 0 || len(src.desc.Attachments) < 4 {
		return
	}
	if src.desc.Width != d.bound.desc.Width || src.desc.Height != d.bound.desc.Height {
		return
	}
	g := src.layers[0]
	out := dst.color[0]

	for i := range out {
		diffuse := g.color[0][i]
		surface := render.Surface(g.color[3][i][3] + 0.5)

		if pass.Program == render.ProgramAmbient {
			var c mgl32.Vec4
			switch surface {
			case render.SurfaceNone:
				c = pass.Background
			case render.SurfaceUnlit:
				c = diffuse
			default:
				c = mulVec3(diffuse.Vec3(), pass.Ambient).Vec4(diffuse[3])
			}
			d.blend(out, i, c)
			continue
		}
		if surface != render.SurfaceLit && surface != render.SurfaceNoShadow {
			continue
		}

		pos := g.color[2][i].Vec3()
		n := g.color[3][i].Vec3()
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()

		var lit float32
		switch pass.Program {
		case render.ProgramDirect:
			lit = max(n.Dot(pass.Direction.Mul(-1)), 0)
		case render.ProgramPoint, render.ProgramSpot:
			toLight := pass.Position.Sub(pos)
			dist := toLight.Len()
			if dist == 0 || dist > pass.Range {
				continue
			}
			l := toLight.Mul(1 / dist)
			lit = max(n.Dot(l), 0) * object.AttenuationAt(pass.Attenuation, dist)
			if pass.Program == render.ProgramSpot {
				lit *= cone(l.Mul(-1).Dot(pass.Direction), pass.InnerCos, pass.OuterCos)
			}
		default:
			continue
		}
		if lit <= 0 {
			continue
		}
		if surface == render.SurfaceLit {
			lit *= d.visibility(pass, pos)
		}
		d.blend(out, i, mulVec3(diffuse.Vec3(), pass.Color).Mul(lit).Vec4(0))
	}
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// cone is the spot falloff between the outer and inner cutoff cosines.
func cone(cosTheta, inner, outer float32) float32 {
	if inner <= outer {
		if cosTheta >= outer {
			return 1
		}
		return 0
	}
	return mgl32.Clamp((cosTheta-outer)/(inner-outer), 0, 1)
}

// visibility is 1 where pos is lit and 0 where a caster in the pass's
// shadow map is closer to the light. No shadow map, or a position outside
// it, counts as lit.
func (d *Device) visibility(pass render.LightPass, pos mgl32.Vec3) float32 {
	src := pass.Shadow
	t, ok := d.targets[src.Target]
	if src.Target == "" || !ok || len(src.Spaces) == 0 {
		return 1
	}
	face := 0
	if pass.Program == render.ProgramPoint && len(src.Spaces) == 6 {
		face = cubeFace(pos.Sub(pass.Position))
	}
	if face >= len(t.layers) || t.layers[face].depth == nil {
		return 1
	}

	clip := src.Spaces[face].Mul4x1(pos.Vec4(1))
	if clip[3] <= 0 {
		return 1
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	if ndc[0] < -1 || ndc[0] > 1 || ndc[1] < -1 || ndc[1] > 1 || ndc[2] > 1 {
		return 1
	}
	w, h := t.desc.Width, t.desc.Height
	x := min(int((ndc[0]*0.5+0.5)*float32(w)), w-1)
	y := min(int((1-(ndc[1]*0.5+0.5))*float32(h)), h-1)
	depth := ndc[2]*0.5 + 0.5
	if depth-src.Bias > t.layers[face].depth[y*w+x] {
		return 0
	}
	return 1
}

// cubeFace picks the point shadow layer by the major axis of v, in the
// +X, -X, +Y, -Y, +Z, -Z order of object.PointLight.FaceSpace.
func cubeFace(v mgl32.Vec3) int {
	axis := 0
	for i := 1; i < 3; i++ {
		if abs32(v[i]) > abs32(v[axis]) {
			axis = i
		}
	}
	face := axis * 2
	if v[axis] < 0 {
		face++
	}
	return face
}
