package ecs

import (
	"fmt"
	"reflect"
	"slices"
)

// ComponentManager is the type-erased view of a Manager that the Registry
// and entities work with.
type ComponentManager interface {
	ID() ComponentID
	Name() string
	Type() reflect.Type
	Create() Component
	Remove(c Component) bool
	Update(dt float64)
	Len() int
	Cap() int

	bind(r *Registry, id ComponentID)
}

// Registry maps component type ids and names to their managers. Ids are
// dense and handed out in registration order starting at zero.
type Registry struct {
	managers [MaxComponentID]ComponentManager
	count    int
	byName   map[string]ComponentID
	factory  *Factory

	edges    [][2]ComponentID
	order    []ComponentID
	priority [MaxComponentID]int
	dirty    bool
}

// NewRegistry creates an empty registry. A nil factory gets a fresh one.
func NewRegistry(factory *Factory) *Registry {
	if factory == nil {
		factory = NewFactory()
	}
	return &Registry{
		byName:  make(map[string]ComponentID),
		factory: factory,
	}
}

// Factory returns the object factory managers create components with.
func (r *Registry) Factory() *Factory {
	return r.factory
}

// RegisterCmpManager assigns the next component id to m. It panics once
// MaxComponentID managers are registered or when the name is taken.
func (r *Registry) RegisterCmpManager(m ComponentManager) ComponentID {
	if r.count >= MaxComponentID {
		panic(fmt.Sprintf("ecs: cannot register %s: component id limit %d reached", m.Name(), MaxComponentID))
	}
	if _, ok := r.byName[m.Name()]; ok {
		panic("ecs: component manager " + m.Name() + " registered twice")
	}

	id := ComponentID(r.count)
	r.managers[id] = m
	r.byName[m.Name()] = id
	r.count++
	r.dirty = true
	m.bind(r, id)
	return id
}

// GetByCompID returns the manager for id, or nil. A nil registry has none.
func (r *Registry) GetByCompID(id ComponentID) ComponentManager {
	if r == nil || int(id) >= r.count {
		return nil
	}
	return r.managers[id]
}

// GetByCompName returns the manager registered under name, or nil.
func (r *Registry) GetByCompName(name string) ComponentManager {
	id, ok := r.byName[name]
	if !ok {
		return nil
	}
	return r.managers[id]
}

// GetByType returns the manager for the Go type t, or nil.
func (r *Registry) GetByType(t reflect.Type) ComponentManager {
	for _, m := range r.managers[:r.count] {
		if m.Type() == t {
			return m
		}
	}
	return nil
}

// Count is the number of registered managers.
func (r *Registry) Count() int {
	return r.count
}

// Managers returns the registered managers in id order.
func (r *Registry) Managers() []ComponentManager {
	out := make([]ComponentManager, r.count)
	copy(out, r.managers[:r.count])
	return out
}

// RunsBefore declares that components of type first must update before
// components of type then. Declare dependencies before creating components;
// a component's update priority is fixed when it is created.
func (r *Registry) RunsBefore(first, then ComponentID) {
	if int(first) >= r.count || int(then) >= r.count {
		panic(fmt.Sprintf("ecs: RunsBefore(%d, %d) references an unregistered component", first, then))
	}
	r.edges = append(r.edges, [2]ComponentID{first, then})
	r.dirty = true
}

// UpdatePriority returns the update priority for id. Higher runs first.
func (r *Registry) UpdatePriority(id ComponentID) int {
	r.resolve()
	if int(id) >= r.count {
		return 0
	}
	return r.priority[id]
}

// UpdateOrder returns the component ids in the order Update visits them.
func (r *Registry) UpdateOrder() []ComponentID {
	r.resolve()
	out := make([]ComponentID, len(r.order))
	copy(out, r.order)
	return out
}

// Update calls Update on every registered manager in dependency order.
func (r *Registry) Update(dt float64) {
	r.resolve()
	for _, id := range r.order {
		r.managers[id].Update(dt)
	}
}

// resolve assigns every component type the length of the longest
// dependency chain that follows it, so a type runs after everything declared
// before it. Types outside any declared dependency stay at priority zero and
// Update visits equal priorities in registration order.
func (r *Registry) resolve() {
	if !r.dirty {
		return
	}

	var indegree [MaxComponentID]int
	var next [MaxComponentID][]ComponentID
	for _, e := range r.edges {
		next[e[0]] = append(next[e[0]], e[1])
		indegree[e[1]]++
	}

	// Kahn's algorithm; ties keep registration order.
	topo := make([]ComponentID, 0, r.count)
	done := make([]bool, r.count)
	for len(topo) < r.count {
		picked := -1
		for i := 0; i < r.count; i++ {
			if !done[i] && indegree[i] == 0 {
				picked = i
				break
			}
		}
		if picked < 0 {
			panic("ecs: component update dependencies form a cycle")
		}

		done[picked] = true
		topo = append(topo, ComponentID(picked))
		for _, n := range next[picked] {
			indegree[n]--
		}
	}

	r.priority = [MaxComponentID]int{}
	for i := len(topo) - 1; i >= 0; i-- {
		id := topo[i]
		for _, n := range next[id] {
			if p := r.priority[n] + 1; p > r.priority[id] {
				r.priority[id] = p
			}
		}
	}

	order := make([]ComponentID, r.count)
	for i := range order {
		order[i] = ComponentID(i)
	}
	slices.SortStableFunc(order, func(a, b ComponentID) int {
		return r.priority[b] - r.priority[a]
	})

	r.order = order
	r.dirty = false
}
