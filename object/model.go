package object

import (
	"weak"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/geom"
)

// BoundsMode selects the bounding volume drawn by the debug overlay.
type BoundsMode uint8

const (
	BoundsNone BoundsMode = iota
	BoundsSphere
	BoundsAABB
	BoundsOOBB
)

var boundsModeNames = [...]string{"none", "sphere", "aabb", "oobb"}

func (m BoundsMode) String() string {
	if int(m) < len(boundsModeNames) {
		return boundsModeNames[m]
	}
	return "unknown"
}

// ParseBoundsMode maps a name back to its mode, defaulting to BoundsNone.
func ParseBoundsMode(s string) BoundsMode {
	for i, name := range boundsModeNames {
		if name == s {
			return BoundsMode(i)
		}
	}
	return BoundsNone
}

// Model3D is a placed instance of a shared 3D asset.
type Model3D struct {
	Object3D
	Asset *asset.Asset3D
	ID    ColorID

	CastShadows    bool
	ReceiveShadows bool
	ShowNormals    bool
	ShowBounds     BoundsMode

	owner weak.Pointer[ecs.Entity]
	buddy ColorID
}

func NewModel3D(name string, a *asset.Asset3D, id ColorID) *Model3D {
	return &Model3D{
		Object3D:       NewObject3D(name),
		Asset:          a,
		ID:             id,
		CastShadows:    true,
		ReceiveShadows: true,
	}
}

// Owner is the entity the model belongs to, nil once it has been collected.
func (m *Model3D) Owner() *ecs.Entity { return m.owner.Value() }

func (m *Model3D) SetOwner(e *ecs.Entity) { m.owner = weak.Make(e) }

// Buddy is the color id of the linked 2D model, NoColorID if none.
func (m *Model3D) Buddy() ColorID { return m.buddy }

func (m *Model3D) SetBuddy(id ColorID) { m.buddy = id }

// LocalBounds is the asset's bounding box, or a unit box around the origin
// for a model without an asset.
func (m *Model3D) LocalBounds() geom.AABB {
	if m.Asset == nil {
		return geom.NewAABB(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})
	}
	return m.Asset.Bounds()
}

func (m *Model3D) OOBB() geom.OOBB {
	return geom.OOBB{Local: m.LocalBounds(), Model: m.Model()}
}

// WorldBounds is the axis-aligned box around the transformed OOBB.
func (m *Model3D) WorldBounds() geom.AABB {
	return m.OOBB().Bounds()
}

func (m *Model3D) Sphere() geom.Sphere {
	return m.WorldBounds().Sphere()
}

// Model2D is a placed instance of a floor-plan asset.
type Model2D struct {
	Object2D
	Asset   *asset.Asset2D
	ID      ColorID
	Label   string
	NoGizmo bool

	owner weak.Pointer[ecs.Entity]
	buddy ColorID
}

func NewModel2D(name string, a *asset.Asset2D, id ColorID) *Model2D {
	return &Model2D{
		Object2D: NewObject2D(name),
		Asset:    a,
		ID:       id,
	}
}

func (m *Model2D) Owner() *ecs.Entity { return m.owner.Value() }

func (m *Model2D) SetOwner(e *ecs.Entity) { m.owner = weak.Make(e) }

// Buddy is the color id of the linked 3D model, NoColorID if none.
func (m *Model2D) Buddy() ColorID { return m.buddy }

func (m *Model2D) SetBuddy(id ColorID) { m.buddy = id }

func (m *Model2D) LocalBounds() geom.AABB {
	if m.Asset == nil {
		return geom.NewAABB(mgl32.Vec3{-0.5, -0.5, 0}, mgl32.Vec3{0.5, 0.5, 0})
	}
	return m.Asset.Bounds()
}

func (m *Model2D) WorldBounds() geom.AABB {
	return m.LocalBounds().Transform(m.Model())
}

// Center is the world-space center of the model's bounds.
func (m *Model2D) Center() mgl32.Vec3 {
	return m.WorldBounds().Center()
}
