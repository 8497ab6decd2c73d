package ecs

import (
	"fmt"
	"sort"
)

// Factory builds objects by type name. Component managers create their
// components through it and the entity manager creates entities through it,
// so an application can override either by registering a different
// constructor under the same name before the managers are built.
type Factory struct {
	ctors map[string]func() any
}

// NewFactory returns a factory that already knows how to build "Entity".
func NewFactory() *Factory {
	f := &Factory{ctors: make(map[string]func() any)}
	f.Register(EntityTypeName, func() any { return &Entity{} })
	return f
}

// Register installs ctor under name, replacing any earlier constructor.
func (f *Factory) Register(name string, ctor func() any) {
	f.ctors[name] = ctor
}

// Has reports whether a constructor is registered for name.
func (f *Factory) Has(name string) bool {
	_, ok := f.ctors[name]
	return ok
}

// Create invokes the constructor registered for name.
func (f *Factory) Create(name string) (any, error) {
	ctor, ok := f.ctors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return ctor(), nil
}

// Names lists the registered type names in sorted order.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
