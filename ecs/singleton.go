package ecs

import (
	"reflect"
)

// Singleton provides access to a single value that is not associated with
// any entity. Use this for world state such as the scene, the renderer or
// input. Systems may declare Singleton fields; the Scheduler initializes
// them like queries.
type Singleton[T any] struct {
	entities      *EntityManager
	componentType reflect.Type
}

// NewSingleton creates a Singleton accessor for em. If the singleton does
// not exist yet it is created from initializer, or as a zero value. This
// guarantees the singleton exists after the call.
func NewSingleton[T any](em *EntityManager, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{}
	s.Init(em)
	if !s.Exists() {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		SetSingleton(em, &value)
	}
	return s
}

// SetSingleton makes v the world's T, replacing any previous one. Existing
// accessors see the new value.
func SetSingleton[T any](em *EntityManager, v *T) {
	em.singletons[reflect.TypeFor[T]()] = v
}

// RemoveSingleton drops the world's T.
func RemoveSingleton[T any](em *EntityManager) {
	delete(em.singletons, reflect.TypeFor[T]())
}

// Init binds the accessor to em.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(em *EntityManager) {
	s.entities = em
	s.componentType = reflect.TypeFor[T]()
}

// Get returns the singleton, or nil if it has not been set.
func (s *Singleton[T]) Get() *T {
	if s.entities == nil {
		return nil
	}
	v, _ := s.entities.singletons[s.componentType].(*T)
	return v
}

// Exists reports whether the singleton has been set.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
