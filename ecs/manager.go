package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// Manager owns every live component of one type. Components are stored by
// value in block storage, so the *T handed out stays valid until Remove.
type Manager[T any, PT interface {
	*T
	Component
}] struct {
	registry *Registry
	id       ComponentID
	name     string
	capacity int
	storage  blockStorage[T]
	onCreate []func(PT)
}

// Register creates a Manager for T named name, registers it with r and
// installs a zero-value constructor in r's factory unless one is already
// registered under that name.
func Register[T any, PT interface {
	*T
	Component
}](r *Registry, name string, capacity int) *Manager[T, PT] {
	if capacity <= 0 {
		panic(fmt.Sprintf("ecs: %s manager needs a positive capacity", name))
	}

	if !r.factory.Has(name) {
		r.factory.Register(name, func() any { return PT(new(T)) })
	}

	m := &Manager[T, PT]{
		name:     name,
		capacity: capacity,
		id:       InvalidComponentID,
	}
	r.RegisterCmpManager(m)
	return m
}

func (m *Manager[T, PT]) bind(r *Registry, id ComponentID) {
	m.registry = r
	m.id = id
}

// OnCreate adds a hook that runs for every component the manager creates,
// before it is attached to an entity.
func (m *Manager[T, PT]) OnCreate(fn func(PT)) {
	m.onCreate = append(m.onCreate, fn)
}

// ID is the component type id assigned by the registry.
func (m *Manager[T, PT]) ID() ComponentID { return m.id }

// Name is the type name used in documents.
func (m *Manager[T, PT]) Name() string { return m.name }

// Type is the Go type of the managed component.
func (m *Manager[T, PT]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Len is the number of live components.
func (m *Manager[T, PT]) Len() int { return m.storage.len() }

// Cap is the configured capacity.
func (m *Manager[T, PT]) Cap() int { return m.capacity }

// Create builds a component through the factory and stamps it with the
// manager's type id. It panics when the manager is full.
func (m *Manager[T, PT]) Create() Component {
	return m.New()
}

// New is the typed form of Create.
func (m *Manager[T, PT]) New() PT {
	if m.storage.len() >= m.capacity {
		panic(fmt.Sprintf("ecs: %s manager is full (capacity %d)", m.name, m.capacity))
	}

	built, err := m.registry.factory.Create(m.name)
	if err != nil {
		panic(err)
	}
	proto, ok := built.(PT)
	if !ok {
		var want PT
		panic(fmt.Sprintf("ecs: factory built %T for %s, want %T", built, m.name, want))
	}

	slot, value := m.storage.alloc()
	*value = *proto

	c := PT(value)
	b := c.base()
	b.typeID = m.id
	b.owner = nil
	b.creation = 0
	b.priority = m.registry.UpdatePriority(m.id)
	b.slot = slot

	for _, fn := range m.onCreate {
		fn(c)
	}
	return c
}

// Remove frees c if this manager owns it. Ownership is by identity: a
// component from another manager, or one already removed, is ignored.
func (m *Manager[T, PT]) Remove(c Component) bool {
	typed, ok := c.(PT)
	if !ok || (*T)(typed) == nil || typed.base().typeID != m.id {
		return false
	}
	slot := typed.base().slot
	if m.storage.get(slot) != (*T)(typed) {
		return false
	}
	return m.storage.free(slot)
}

// Update calls Update on every live component whose owner is active.
// Components that do not implement Updatable are skipped.
func (m *Manager[T, PT]) Update(dt float64) {
	var zero PT
	if _, ok := any(zero).(Updatable); !ok {
		return
	}

	for _, value := range m.storage.iter() {
		c := PT(value)
		owner := c.base().owner
		if owner == nil || !owner.active {
			continue
		}
		any(c).(Updatable).Update(dt)
	}
}

// Each yields every live component.
func (m *Manager[T, PT]) Each() iter.Seq[PT] {
	return func(yield func(PT) bool) {
		for _, value := range m.storage.iter() {
			if !yield(PT(value)) {
				return
			}
		}
	}
}

// Of returns e's component of this type, or nil.
func (m *Manager[T, PT]) Of(e *Entity) PT {
	if e == nil {
		return nil
	}
	c := e.Component(m.id)
	if c == nil {
		return nil
	}
	return c.(PT)
}
