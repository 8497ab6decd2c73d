package ecs

import "errors"

var (
	// ErrUnknownComponent is returned when a document names an unregistered component type.
	ErrUnknownComponent = errors.New("ecs: unknown component type")
	// ErrUnknownType is returned when the object factory has no constructor for a name.
	ErrUnknownType = errors.New("ecs: unknown type")
	// ErrMissingField is returned when a required document field is absent.
	ErrMissingField = errors.New("ecs: missing field")
	// ErrFieldType is returned when a document field has the wrong JSON type.
	ErrFieldType = errors.New("ecs: wrong field type")
	// ErrDuplicateComponent is returned for a prefab listing one component type twice.
	ErrDuplicateComponent = errors.New("ecs: duplicate component type")
)
