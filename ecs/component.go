package ecs

// ComponentID is the dense, registration-ordered id of a component type.
type ComponentID uint8

const (
	// MaxComponentID bounds how many component types a Registry accepts.
	MaxComponentID = 64
	// InvalidComponentID marks a component that no manager has stamped.
	InvalidComponentID ComponentID = 0xFF
)

// Base carries the bookkeeping every component shares. Embed it by value in
// component structs:
//
//	type Transform struct {
//		ecs.Base
//		Position mgl32.Vec3
//	}
type Base struct {
	typeID   ComponentID
	owner    *Entity
	creation int
	priority int
	slot     int
}

func (b *Base) base() *Base { return b }

// TypeID is the id of the manager that created the component.
func (b *Base) TypeID() ComponentID { return b.typeID }

// Owner is the entity the component is attached to, nil while detached.
func (b *Base) Owner() *Entity { return b.owner }

// CreationPriority is the attach order on the owner; serialization follows it.
func (b *Base) CreationPriority() int { return b.creation }

// UpdatePriority orders per-frame updates; higher runs first.
func (b *Base) UpdatePriority() int { return b.priority }

// Component is implemented by any struct embedding Base.
type Component interface {
	base() *Base
	TypeID() ComponentID
	Owner() *Entity
	CreationPriority() int
	UpdatePriority() int
}

// Updatable components take part in the per-frame update.
type Updatable interface {
	Component
	Update(dt float64)
}

// Serializable components round-trip their fields through an Object. The
// "type" key is written and read by the owning entity.
type Serializable interface {
	Component
	Serialize(o Object)
	Deserialize(o Object) error
}

// ComponentAddedListener components are told when a sibling is attached.
type ComponentAddedListener interface {
	OnComponentAdded(c Component)
}

// Releaser components are told before their manager frees them, while Owner
// is still set.
type Releaser interface {
	Component
	Release()
}
