// Package components defines the engine's concrete ECS components and
// registers their managers, factories, update dependencies and message
// handlers.
package components

import (
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
)

// Document type names.
const (
	TransformName   = "TransformCmp"
	MotionName      = "MotionCmp"
	CameraName      = "CameraCmp"
	RenderableName  = "RenderableCmp"
	DirectLightName = "DirectLightCmp"
	PointLightName  = "PointLightCmp"
	SpotLightName   = "SpotLightCmp"
	CatalogName     = "CatalogCmp"
)

// DefaultCapacity is used for any manager without an explicit capacity.
const DefaultCapacity = 4096

// Options configures Register.
type Options struct {
	// Capacities overrides per-type capacities keyed by document type name.
	Capacities map[string]int
	// Assets resolves Renderable asset paths. Required for renderables.
	Assets *asset.Library
	// IDs allocates picking ids for models. A fresh allocator is used if nil.
	IDs *object.IDAllocator
}

// Managers gives typed access to every engine component manager.
type Managers struct {
	Transform   *ecs.Manager[Transform, *Transform]
	Motion      *ecs.Manager[Motion, *Motion]
	Camera      *ecs.Manager[Camera, *Camera]
	Renderable  *ecs.Manager[Renderable, *Renderable]
	DirectLight *ecs.Manager[DirectLight, *DirectLight]
	PointLight  *ecs.Manager[PointLight, *PointLight]
	SpotLight   *ecs.Manager[SpotLight, *SpotLight]
	Catalog     *ecs.Manager[Catalog, *Catalog]

	ids *object.IDAllocator
}

// Register installs the engine components on reg and their message handlers
// on subs. Motion updates before Transform, and Transform before everything
// that reads it.
func Register(reg *ecs.Registry, subs *ecs.Subscriptions, opts Options) *Managers {
	capacity := func(name string) int {
		if n, ok := opts.Capacities[name]; ok && n > 0 {
			return n
		}
		return DefaultCapacity
	}

	ids := opts.IDs
	if ids == nil {
		ids = object.NewIDAllocator()
	}

	f := reg.Factory()
	f.Register(TransformName, func() any { return newTransform() })
	f.Register(CameraName, func() any { return &Camera{} })
	f.Register(DirectLightName, func() any { return &DirectLight{Light: object.NewDirectLight("")} })
	f.Register(PointLightName, func() any { return &PointLight{Light: object.NewPointLight("")} })
	f.Register(SpotLightName, func() any { return &SpotLight{Light: object.NewSpotLight("")} })
	f.Register(RenderableName, func() any { return &Renderable{View: View3D, CastShadows: true, ReceiveShadows: true, Visible: true} })

	m := &Managers{
		Transform:   ecs.Register[Transform](reg, TransformName, capacity(TransformName)),
		Motion:      ecs.Register[Motion](reg, MotionName, capacity(MotionName)),
		Camera:      ecs.Register[Camera](reg, CameraName, capacity(CameraName)),
		Renderable:  ecs.Register[Renderable](reg, RenderableName, capacity(RenderableName)),
		DirectLight: ecs.Register[DirectLight](reg, DirectLightName, capacity(DirectLightName)),
		PointLight:  ecs.Register[PointLight](reg, PointLightName, capacity(PointLightName)),
		SpotLight:   ecs.Register[SpotLight](reg, SpotLightName, capacity(SpotLightName)),
		Catalog:     ecs.Register[Catalog](reg, CatalogName, capacity(CatalogName)),
		ids:         ids,
	}

	reg.RunsBefore(m.Motion.ID(), m.Transform.ID())
	for _, dependent := range []ecs.ComponentID{
		m.Camera.ID(), m.Renderable.ID(), m.DirectLight.ID(), m.PointLight.ID(), m.SpotLight.ID(),
	} {
		reg.RunsBefore(m.Transform.ID(), dependent)
	}

	m.Renderable.OnCreate(func(r *Renderable) {
		r.assets = opts.Assets
		r.ids = ids
	})

	subscribe(subs, m)
	return m
}

// IDs is the allocator renderables draw picking ids from.
func (m *Managers) IDs() *object.IDAllocator { return m.ids }

// Bits are the capability masks the scene dispatches on.
func (m *Managers) Bits() Bits {
	return Bits{
		Camera:      1 << m.Camera.ID(),
		Renderable:  1 << m.Renderable.ID(),
		DirectLight: 1 << m.DirectLight.ID(),
		SpotLight:   1 << m.SpotLight.ID(),
		PointLight:  1 << m.PointLight.ID(),
		Transform:   1 << m.Transform.ID(),
	}
}

// Bits holds one capability bit per dispatchable component type.
type Bits struct {
	Camera      uint64
	Renderable  uint64
	DirectLight uint64
	SpotLight   uint64
	PointLight  uint64
	Transform   uint64
}
