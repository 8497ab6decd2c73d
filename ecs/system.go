package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing components, Singleton fields for world state, as well as custom
// state fields that persist between frames. A system runs in PhaseUpdate
// unless it implements Phased.
type System interface {
	Execute(frame *UpdateFrame)
}
