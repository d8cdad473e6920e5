package ecs

import "errors"

// The core treats most misuses as preconditions: violations panic rather
// than return an error, matching the "assertion in debug, elided in
// release, no runtime recovery" contract. Sentinel errors here are the
// payload of those panics (recoverable via errors.Is against
// recover().(error)) and the return values of the handful of operations
// that are expected to fail in normal operation (serializer round-trips,
// registrant lookups).
var (
	// ErrComponentAlreadyRegistered indicates CreateStorage[C] was called twice for the same C.
	ErrComponentAlreadyRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered signals access to a component type whose storage was never created.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrDeadEntity indicates an operation targeted an id that is not currently alive.
	ErrDeadEntity = errors.New("ecs: entity is not alive")
	// ErrComponentNotPresent indicates Get/MarkUpdated targeted an entity lacking the component.
	ErrComponentNotPresent = errors.New("ecs: entity does not have component")
	// ErrFunctionAlreadyRegistered indicates a duplicate Registry.RegisterFunction call.
	ErrFunctionAlreadyRegistered = errors.New("ecs: function already registered")
	// ErrFunctionNotRegistered indicates UnregisterFunction targeted an unknown id.
	ErrFunctionNotRegistered = errors.New("ecs: function not registered")
	// ErrSystemAlreadyRegistered indicates AddSystem was called twice for the same system type.
	ErrSystemAlreadyRegistered = errors.New("ecs: system already registered")
	// ErrSystemNotRegistered indicates RemoveSystem/GetSystem targeted an unknown system type.
	ErrSystemNotRegistered = errors.New("ecs: system not registered")
	// ErrJobPeriodTooSmall indicates RunParallelJob was asked for a period below the 100ms floor.
	ErrJobPeriodTooSmall = errors.New("ecs: background job period must be at least 100ms")
	// ErrFilterAccessDenied indicates an Observer method was called for a component outside its Require/Exclude rules.
	ErrFilterAccessDenied = errors.New("ecs: component access is not permitted by this observer's filter")
)
