package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/ecs"
)

const (
	TranslateMsg ecs.MessageType = iota + 1
	MoveToMsg
	TurnMsg
	VisibilityMsg
	LightSwitchMsg
)

// Translate moves an entity's Transform by Delta.
type Translate struct{ Delta mgl32.Vec3 }

func (Translate) MessageType() ecs.MessageType { return TranslateMsg }

// MoveTo places an entity's Transform at Position.
type MoveTo struct{ Position mgl32.Vec3 }

func (MoveTo) MessageType() ecs.MessageType { return MoveToMsg }

// Turn rotates an entity's Transform about +Y by Yaw radians.
type Turn struct{ Yaw float32 }

func (Turn) MessageType() ecs.MessageType { return TurnMsg }

// Visibility shows or hides an entity's models.
type Visibility struct{ Visible bool }

func (Visibility) MessageType() ecs.MessageType { return VisibilityMsg }

// LightSwitch enables or disables every light on an entity.
type LightSwitch struct{ On bool }

func (LightSwitch) MessageType() ecs.MessageType { return LightSwitchMsg }

func subscribe(subs *ecs.Subscriptions, m *Managers) {
	ecs.Subscribe(subs, m.Transform, func(t *Transform, msg Translate) { t.Translate(msg.Delta) })
	ecs.Subscribe(subs, m.Transform, func(t *Transform, msg MoveTo) { t.SetPosition(msg.Position) })
	ecs.Subscribe(subs, m.Transform, func(t *Transform, msg Turn) { t.RotateYaw(msg.Yaw) })
	ecs.Subscribe(subs, m.Renderable, func(r *Renderable, msg Visibility) { r.SetVisible(msg.Visible) })
	ecs.Subscribe(subs, m.DirectLight, func(d *DirectLight, msg LightSwitch) { d.Light.Enabled = msg.On })
	ecs.Subscribe(subs, m.PointLight, func(p *PointLight, msg LightSwitch) { p.Light.Enabled = msg.On })
	ecs.Subscribe(subs, m.SpotLight, func(s *SpotLight, msg LightSwitch) { s.Light.Enabled = msg.On })
}
