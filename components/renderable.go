package components

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
)

// View selects which models a Renderable owns.
type View string

const (
	View3D   View = "3d"
	View2D   View = "2d"
	ViewBoth View = "both"
)

// Renderable owns the model or models drawn for its entity. With ViewBoth
// it owns a 3D model plus its floor-plan footprint, linked as buddies.
type Renderable struct {
	ecs.Base
	Asset          string `inspect:"readonly"`
	Asset2D        string `inspect:"readonly"`
	View           View   `inspect:"readonly"`
	CastShadows    bool
	ReceiveShadows bool
	Visible        bool
	Label          string
	Buddy          string
	NoGizmo        bool
	ShowBounds     object.BoundsMode
	ShowNormals    bool

	model3d *object.Model3D
	model2d *object.Model2D
	assets  *asset.Library
	ids     *object.IDAllocator
	seen    uint64
}

func (r *Renderable) Model3D() *object.Model3D { return r.model3d }

func (r *Renderable) Model2D() *object.Model2D { return r.model2d }

// Release gives the models' picking ids back and disables them. It runs when
// the entity is destroyed.
func (r *Renderable) Release() {
	if m := r.model3d; m != nil {
		m.Enabled = false
		if r.ids != nil {
			r.ids.Release(m.ID)
		}
	}
	if m := r.model2d; m != nil {
		m.Enabled = false
		if r.ids != nil {
			r.ids.Release(m.ID)
		}
	}
}

// SetVisible enables or disables every owned model.
func (r *Renderable) SetVisible(v bool) {
	r.Visible = v
	if r.model3d != nil {
		r.model3d.Enabled = v
	}
	if r.model2d != nil {
		r.model2d.Enabled = v
	}
}

// Update pulls the entity transform into the models when it changed.
func (r *Renderable) Update(float64) {
	t := ecs.Find[*Transform](r.Owner())
	if t == nil || t.Version() == r.seen {
		return
	}
	r.seen = t.Version()
	r.PullTransform(t)
}

// PullTransform places the models at t.
func (r *Renderable) PullTransform(t *Transform) {
	switch {
	case r.model3d != nil:
		r.model3d.Position = t.Position
		r.model3d.Rotation = t.Rotation
		r.model3d.Scale = t.Scale
		if r.model2d != nil {
			object.SyncPlan(r.model3d, r.model2d)
		}
	case r.model2d != nil:
		r.model2d.Position = mgl32.Vec2{t.Position[0], t.Position[1]}
		r.model2d.Depth = t.Position[2]
		r.model2d.Rotation = planAngle(t.Rotation)
		r.model2d.Scale = mgl32.Vec2{t.Scale[0], t.Scale[1]}
	}
}

// PushTransform writes the placement of m, one of the renderable's models,
// back into t. A moved footprint first moves its 3D buddy on the same entity.
func (r *Renderable) PushTransform(t *Transform, moved any) {
	switch m := moved.(type) {
	case *object.Model2D:
		if r.model3d != nil {
			object.SyncSpace(m, r.model3d)
			r.pushFrom3D(t)
			break
		}
		t.Position = mgl32.Vec3{m.Position[0], m.Position[1], m.Depth}
		t.Rotation = mgl32.QuatRotate(m.Rotation, mgl32.Vec3{0, 0, 1})
		t.Scale = mgl32.Vec3{m.Scale[0], m.Scale[1], t.Scale[2]}
	case *object.Model3D:
		r.pushFrom3D(t)
	}
	t.version++
	r.seen = t.version
}

func (r *Renderable) pushFrom3D(t *Transform) {
	t.Position = r.model3d.Position
	t.Rotation = r.model3d.Rotation
	t.Scale = r.model3d.Scale
	if r.model2d != nil {
		object.SyncPlan(r.model3d, r.model2d)
	}
}

func (r *Renderable) Serialize(o ecs.Object) {
	o["asset"] = r.Asset
	if r.Asset2D != "" {
		o["asset2d"] = r.Asset2D
	}
	o["view"] = string(r.View)
	o["castshadows"] = r.CastShadows
	o["receiveshadows"] = r.ReceiveShadows
	o["visible"] = r.Visible
	if r.Label != "" {
		o["label"] = r.Label
	}
	if r.Buddy != "" {
		o["buddy"] = r.Buddy
	}
	if r.NoGizmo {
		o["nogizmo"] = true
	}
	if r.ShowBounds != object.BoundsNone {
		o["bounds"] = r.ShowBounds.String()
	}
	if r.ShowNormals {
		o["normals"] = true
	}
}

// Deserialize reads the fields and loads the models through the asset
// library.
func (r *Renderable) Deserialize(o ecs.Object) error {
	r.Asset = o.String("asset", r.Asset)
	r.Asset2D = o.String("asset2d", r.Asset2D)
	r.View = View(o.String("view", string(r.View)))
	r.CastShadows = o.Bool("castshadows", r.CastShadows)
	r.ReceiveShadows = o.Bool("receiveshadows", r.ReceiveShadows)
	r.Visible = o.Bool("visible", r.Visible)
	r.Label = o.String("label", r.Label)
	r.Buddy = o.String("buddy", r.Buddy)
	r.NoGizmo = o.Bool("nogizmo", r.NoGizmo)
	r.ShowBounds = object.ParseBoundsMode(o.String("bounds", r.ShowBounds.String()))
	r.ShowNormals = o.Bool("normals", r.ShowNormals)

	if r.Asset == "" {
		return fmt.Errorf("%w: %q", ecs.ErrMissingField, "asset")
	}
	if r.assets == nil {
		return fmt.Errorf("renderable %q: no asset library", r.Asset)
	}
	return r.build()
}

func (r *Renderable) build() error {
	name := r.Asset
	if r.Owner() != nil && r.Owner().Name() != "" {
		name = r.Owner().Name()
	}

	switch r.View {
	case View3D, ViewBoth:
		a, err := r.assets.Asset3D(r.Asset)
		if err != nil {
			return err
		}
		m := object.NewModel3D(name, a, r.ids.Alloc())
		m.CastShadows = r.CastShadows
		m.ReceiveShadows = r.ReceiveShadows
		m.ShowBounds = r.ShowBounds
		m.ShowNormals = r.ShowNormals
		m.SetOwner(r.Owner())
		r.model3d = m
	case View2D:
	default:
		return fmt.Errorf("renderable %q: unknown view %q", r.Asset, r.View)
	}

	if r.View == View2D || r.View == ViewBoth {
		src := r.Asset
		if r.Asset2D != "" {
			src = r.Asset2D
		}
		a, err := r.assets.Asset2D(src)
		if err != nil {
			return err
		}
		m := object.NewModel2D(name, a, r.ids.Alloc())
		m.Label = r.Label
		m.NoGizmo = r.NoGizmo
		m.SetOwner(r.Owner())
		r.model2d = m
	}

	if r.model3d != nil && r.model2d != nil {
		r.model3d.SetBuddy(r.model2d.ID)
		r.model2d.SetBuddy(r.model3d.ID)
	}

	r.SetVisible(r.Visible)
	if t := ecs.Find[*Transform](r.Owner()); t != nil {
		r.seen = t.Version()
		r.PullTransform(t)
	}
	return nil
}

// planAngle is the rotation of q about +Z as seen on the floor plan.
func planAngle(q mgl32.Quat) float32 {
	x := q.Rotate(mgl32.Vec3{1, 0, 0})
	return float32(math.Atan2(float64(x[1]), float64(x[0])))
}
