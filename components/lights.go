package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
)

func lightName(o ecs.Object, owner *ecs.Entity) string {
	if name := o.String("name", ""); name != "" {
		return name
	}
	if owner != nil {
		return owner.Name()
	}
	return ""
}

func serializeLight(o ecs.Object, l *object.Light) {
	o["name"] = l.Name
	o.SetVec3("color", l.Color)
	o["intensity"] = float64(l.Intensity)
	o["enabled"] = l.Enabled
	o["castshadows"] = l.CastShadows
	o["shadowsize"] = l.ShadowSize
}

// deserializeLight reads the shared fields. Color is a 0-1 RGB triple; a
// four-element 0-255 "rgba" array is accepted too.
func deserializeLight(o ecs.Object, l *object.Light, owner *ecs.Entity) {
	l.Name = lightName(o, owner)
	l.Color = o.Vec3("color", l.Color)
	if o.Has("rgba") {
		l.Color = o.Color("rgba", l.Color.Vec4(1)).Vec3()
	}
	l.Intensity = o.Float32("intensity", l.Intensity)
	l.Enabled = o.Bool("enabled", l.Enabled)
	l.CastShadows = o.Bool("castshadows", l.CastShadows)
	l.ShadowSize = o.Int("shadowsize", l.ShadowSize)
}

// DirectLight wraps the scene's directional light.
type DirectLight struct {
	ecs.Base
	Light *object.DirectLight
}

func (d *DirectLight) Serialize(o ecs.Object) {
	serializeLight(o, &d.Light.Light)
	o.SetVec3("direction", d.Light.Direction)
	o.SetVec3("ambient", d.Light.Ambient)
}

func (d *DirectLight) Deserialize(o ecs.Object) error {
	deserializeLight(o, &d.Light.Light, d.Owner())
	d.Light.Direction = o.Vec3("direction", d.Light.Direction).Normalize()
	d.Light.Ambient = o.Vec3("ambient", d.Light.Ambient)
	return nil
}

// PointLight wraps a point light. It follows the entity Transform.
type PointLight struct {
	ecs.Base
	Light *object.PointLight

	seen uint64
}

func (p *PointLight) Update(float64) {
	t := ecs.Find[*Transform](p.Owner())
	if t == nil || t.Version() == p.seen {
		return
	}
	p.seen = t.Version()
	p.Light.Position = t.Position
}

func (p *PointLight) Serialize(o ecs.Object) {
	serializeLight(o, &p.Light.Light)
	o.SetVec3("position", p.Light.Position)
	o["range"] = float64(p.Light.Range)
}

func (p *PointLight) Deserialize(o ecs.Object) error {
	deserializeLight(o, &p.Light.Light, p.Owner())
	p.Light.Position = o.Vec3("position", p.Light.Position)
	p.Light.Range = o.Float32("range", p.Light.Range)
	return nil
}

// SpotLight wraps a spot light. It follows the entity Transform position;
// the cone keeps its own direction. Cutoffs are half-angles in degrees in
// documents.
type SpotLight struct {
	ecs.Base
	Light *object.SpotLight

	seen uint64
}

func (s *SpotLight) Update(float64) {
	t := ecs.Find[*Transform](s.Owner())
	if t == nil || t.Version() == s.seen {
		return
	}
	s.seen = t.Version()
	s.Light.Position = t.Position
}

func (s *SpotLight) Serialize(o ecs.Object) {
	serializeLight(o, &s.Light.Light)
	o.SetVec3("position", s.Light.Position)
	o.SetVec3("direction", s.Light.Direction)
	o["range"] = float64(s.Light.Range)
	o["inner"] = float64(mgl32.RadToDeg(s.Light.InnerCutoff))
	o["outer"] = float64(mgl32.RadToDeg(s.Light.OuterCutoff))
}

func (s *SpotLight) Deserialize(o ecs.Object) error {
	deserializeLight(o, &s.Light.Light, s.Owner())
	s.Light.Position = o.Vec3("position", s.Light.Position)
	s.Light.Direction = o.Vec3("direction", s.Light.Direction).Normalize()
	s.Light.Range = o.Float32("range", s.Light.Range)
	s.Light.InnerCutoff = mgl32.DegToRad(o.Float32("inner", mgl32.RadToDeg(s.Light.InnerCutoff)))
	s.Light.OuterCutoff = mgl32.DegToRad(o.Float32("outer", mgl32.RadToDeg(s.Light.OuterCutoff)))
	if s.Light.OuterCutoff < s.Light.InnerCutoff {
		s.Light.OuterCutoff = s.Light.InnerCutoff
	}
	return nil
}
