package ecs

import (
	"hash/crc32"
	"reflect"
	"sync"
)

// ComponentTypeID is a stable identity derived from a component type. It is
// a CRC-32 of the type's name as reflect.Type.String reports it (package
// name plus type name, e.g. "ecs.mana"), matching the source system's
// compile-time-CRC-of-typename mechanism: the id is deterministic across
// processes and builds, which the serializer and debug UI both rely on.
type ComponentTypeID uint32

var typeIDCache sync.Map // reflect.Type -> ComponentTypeID

// TypeID returns the stable ComponentTypeID for C, computing and caching it
// on first use.
func TypeID[C any]() ComponentTypeID {
	rt := reflect.TypeFor[C]()
	if v, ok := typeIDCache.Load(rt); ok {
		return v.(ComponentTypeID)
	}
	id := ComponentTypeID(crc32.ChecksumIEEE([]byte(rt.String())))
	actual, _ := typeIDCache.LoadOrStore(rt, id)
	return actual.(ComponentTypeID)
}

// TypeName returns the package-name-qualified type name (reflect.Type.String)
// backing a ComponentTypeID lookup; used for debug introspection and log lines.
func TypeName[C any]() string {
	return reflect.TypeFor[C]().String()
}
