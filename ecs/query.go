package ecs

import (
	"iter"
	"reflect"
)

// Query iterates the attached components of one type together with their
// owners. Systems declare Query fields and the Scheduler initializes them.
type Query[T any, PT interface {
	*T
	Component
}] struct {
	manager *Manager[T, PT]
}

// NewQuery creates a query over the manager registered for T.
func NewQuery[T any, PT interface {
	*T
	Component
}](em *EntityManager) *Query[T, PT] {
	q := &Query[T, PT]{}
	q.Init(em)
	return q
}

// Init binds the query to em's manager for T. It panics if T has no manager.
func (q *Query[T, PT]) Init(em *EntityManager) {
	t := reflect.TypeFor[T]()
	m, ok := em.registry.GetByType(t).(*Manager[T, PT])
	if !ok {
		panic("ecs: component type " + t.String() + " not registered")
	}
	q.manager = m
}

// Iter yields every component of the query's type whose owner is active.
func (q *Query[T, PT]) Iter() iter.Seq2[*Entity, PT] {
	if q.manager == nil {
		panic("Query.Iter() called before Query.Init()")
	}

	return func(yield func(*Entity, PT) bool) {
		for c := range q.manager.Each() {
			owner := c.Owner()
			if owner == nil || !owner.active {
				continue
			}
			if !yield(owner, c) {
				return
			}
		}
	}
}

// Len is the number of live components, attached or not.
func (q *Query[T, PT]) Len() int {
	if q.manager == nil {
		return 0
	}
	return q.manager.Len()
}
