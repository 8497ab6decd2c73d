package ecs

import (
	"fmt"
	"slices"
)

// EntityTypeName is the factory name entities are built under.
const EntityTypeName = "Entity"

// EntityID identifies an entity for the lifetime of its EntityManager.
type EntityID uint64

// Entity owns an ordered set of components. The component list is kept in
// update order (descending update priority, stable); serialization uses the
// separately kept creation order.
type Entity struct {
	id       EntityID
	name     string
	active   bool
	typeName string
	prefab   string
	attrs    Object

	components []Component
	created    []Component
	mask       uint64

	world *EntityManager
}

func (e *Entity) ID() EntityID { return e.id }

func (e *Entity) Name() string { return e.name }

func (e *Entity) SetName(name string) { e.name = name }

// Active reports whether the entity takes part in component updates.
func (e *Entity) Active() bool { return e.active }

func (e *Entity) SetActive(active bool) { e.active = active }

// Prefab is the name of the prefab the entity was built from, if any.
func (e *Entity) Prefab() string { return e.prefab }

// Attr returns a top-level document field the entity does not interpret
// itself. Such fields survive a Serialize round trip.
func (e *Entity) Attr(key string) (any, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// World is the entity manager the entity belongs to.
func (e *Entity) World() *EntityManager { return e.world }

// AddComponent attaches c. The component's creation priority becomes the
// current component count, listeners on the entity are told about it and
// the list is re-sorted by update priority.
func (e *Entity) AddComponent(c Component) {
	b := c.base()
	if b.owner != nil {
		panic(fmt.Sprintf("ecs: component %T already attached to entity %d", c, b.owner.id))
	}

	b.creation = len(e.created)
	b.owner = e
	e.components = append(e.components, c)
	e.created = append(e.created, c)
	if b.typeID < MaxComponentID {
		e.mask |= 1 << b.typeID
	}

	for _, other := range e.components {
		if other == c {
			continue
		}
		if l, ok := other.(ComponentAddedListener); ok {
			l.OnComponentAdded(c)
		}
	}

	slices.SortStableFunc(e.components, func(a, b Component) int {
		return b.UpdatePriority() - a.UpdatePriority()
	})
}

// Has reports whether the entity carries a component of type id.
func (e *Entity) Has(id ComponentID) bool {
	return id < MaxComponentID && e.mask&(1<<id) != 0
}

// Mask is the capability bitmap of attached component type ids.
func (e *Entity) Mask() uint64 { return e.mask }

// Component returns the first component of type id, or nil.
func (e *Entity) Component(id ComponentID) Component {
	if !e.Has(id) {
		return nil
	}
	for _, c := range e.components {
		if c.TypeID() == id {
			return c
		}
	}
	return nil
}

// Components returns the components in update order.
func (e *Entity) Components() []Component {
	return slices.Clone(e.components)
}

// ComponentsByCreation returns the components in the order they were added.
func (e *Entity) ComponentsByCreation() []Component {
	return slices.Clone(e.created)
}

// Update runs Update on every updatable component in update order.
func (e *Entity) Update(dt float64) {
	if !e.active {
		return
	}
	for _, c := range e.components {
		if u, ok := c.(Updatable); ok {
			u.Update(dt)
		}
	}
}

// Send delivers msg to every subscription registered for its type whose
// component type the entity carries.
func (e *Entity) Send(msg Message) {
	if e.world == nil {
		return
	}
	e.world.subs.dispatch(e, msg)
}

// Serialize writes the entity and its components in creation order.
func (e *Entity) Serialize() Object {
	o := make(Object, len(e.attrs)+5)
	for k, v := range e.attrs {
		o[k] = cloneValue(v)
	}

	o["type"] = e.typeName
	o["name"] = e.name
	o["active"] = e.active
	if e.prefab != "" {
		o["prefab"] = e.prefab
	}

	comps := make([]any, 0, len(e.created))
	for _, c := range e.created {
		block := Object{}
		if m := e.registry().GetByCompID(c.TypeID()); m != nil {
			block["type"] = m.Name()
		}
		if s, ok := c.(Serializable); ok {
			s.Serialize(block)
		}
		comps = append(comps, block)
	}
	o["components"] = comps
	return o
}

// Deserialize reads the entity fields and builds its components. Each
// component is attached before its own fields are read, so a component's
// Deserialize can rely on its owner and on siblings added before it.
func (e *Entity) Deserialize(o Object) error {
	if e.world == nil {
		return fmt.Errorf("entity %d has no entity manager", e.id)
	}

	e.name = o.String("name", e.name)
	e.active = o.Bool("active", true)

	for k, v := range o {
		switch k {
		case "type", "name", "active", "prefab", "components", "id":
			continue
		}
		if e.attrs == nil {
			e.attrs = Object{}
		}
		e.attrs[k] = cloneValue(v)
	}

	blocks, err := o.Objects("components")
	if err != nil {
		return fmt.Errorf("entity %q: %w", e.name, err)
	}

	for i, block := range blocks {
		typeName, err := block.RequireString("type")
		if err != nil {
			return fmt.Errorf("entity %q component %d: %w", e.name, i, err)
		}

		m := e.world.registry.GetByCompName(typeName)
		if m == nil {
			return fmt.Errorf("entity %q: %w: %q", e.name, ErrUnknownComponent, typeName)
		}

		c := m.Create()
		e.AddComponent(c)

		if s, ok := c.(Serializable); ok {
			if err := s.Deserialize(block); err != nil {
				return fmt.Errorf("entity %q component %s: %w", e.name, typeName, err)
			}
		}
	}
	return nil
}

// release detaches and frees every component.
func (e *Entity) release() {
	for _, c := range e.created {
		if r, ok := c.(Releaser); ok {
			r.Release()
		}
		c.base().owner = nil
		if m := e.registry().GetByCompID(c.TypeID()); m != nil {
			m.Remove(c)
		}
	}
	e.components = nil
	e.created = nil
	e.mask = 0
}

// registry is nil once the entity has left its manager.
func (e *Entity) registry() *Registry {
	if e.world == nil {
		return nil
	}
	return e.world.registry
}

// Find returns the first component of e whose concrete type is C, or the
// zero C. It does not need the component's manager.
func Find[C Component](e *Entity) C {
	var zero C
	if e == nil {
		return zero
	}
	for _, c := range e.components {
		if typed, ok := c.(C); ok {
			return typed
		}
	}
	return zero
}
