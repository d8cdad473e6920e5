package ecs

import (
	"fmt"

	"github.com/forgecs/ecs/debugui"
	"github.com/forgecs/ecs/ecslog"
	"github.com/forgecs/ecs/serializer"
)

func sprintComponent[C any](v C) string {
	return fmt.Sprintf("%+v", v)
}

// Registrant is a fluent, one-shot façade for registering a component
// type's storage, lifecycle callbacks, serializer hooks and debug hooks.
// Every method after CreateStorage may be called in any order.
type Registrant[C any] struct {
	world    *World
	registry *Registry
}

// NewRegistrant begins fluent registration of component type C.
func NewRegistrant[C any](w *World, r *Registry) *Registrant[C] {
	return &Registrant[C]{world: w, registry: r}
}

// logger returns the owning Registry's attached sink, or the no-op default
// when this Registrant was built without a Registry (e.g. in tests).
func (reg *Registrant[C]) logger() ecslog.Logger {
	if reg.registry == nil {
		return ecslog.NoOp()
	}
	return reg.registry.log
}

// CreateStorage registers C's storage (and its Updated[C] tag storage).
func (reg *Registrant[C]) CreateStorage() *Registrant[C] {
	CreateStorage[C](reg.world)
	return reg
}

// AddConstructCallback registers fn to fire after every successful Emplace of C.
func (reg *Registrant[C]) AddConstructCallback(fn func(Entity, *C)) *Registrant[C] {
	storageFor[C](reg.world).AddConstructCallback(fn)
	return reg
}

// AddDestroyCallback registers fn to fire before physical destruction of C.
func (reg *Registrant[C]) AddDestroyCallback(fn func(Entity, *C)) *Registrant[C] {
	storageFor[C](reg.world).AddDestroyCallback(fn)
	return reg
}

// AddSerialize registers C with s using the default gob-backed POD codec.
func (reg *Registrant[C]) AddSerialize(s *serializer.Serializer) *Registrant[C] {
	id := uint32(TypeID[C]())
	world := reg.world
	s.RegisterSaver(id, func(e serializer.EntityID) ([]byte, bool, error) {
		v, ok := TryGet[C](world, Entity(e))
		if !ok {
			return nil, false, nil
		}
		data, err := serializer.EncodeGob(*v)
		return data, true, err
	})
	s.RegisterLoader(id, func(e serializer.EntityID, payload []byte) error {
		v, err := serializer.DecodeGob[C](payload)
		if err != nil {
			return err
		}
		Emplace(world, Entity(e), v)
		return nil
	})
	return reg
}

// SetSaveFunc overrides the saver installed by AddSerialize with a
// caller-supplied encoder, for components that should not round-trip via
// gob (e.g. containing pointers or requiring versioned payloads).
func (reg *Registrant[C]) SetSaveFunc(s *serializer.Serializer, encode func(C) ([]byte, error)) *Registrant[C] {
	id := uint32(TypeID[C]())
	world := reg.world
	s.RegisterSaver(id, func(e serializer.EntityID) ([]byte, bool, error) {
		v, ok := TryGet[C](world, Entity(e))
		if !ok {
			return nil, false, nil
		}
		data, err := encode(*v)
		return data, true, err
	})
	return reg
}

// SetLoadFunc overrides the loader installed by AddSerialize.
func (reg *Registrant[C]) SetLoadFunc(s *serializer.Serializer, decode func([]byte) (C, error)) *Registrant[C] {
	id := uint32(TypeID[C]())
	world := reg.world
	s.RegisterLoader(id, func(e serializer.EntityID, payload []byte) error {
		v, err := decode(payload)
		if err != nil {
			return err
		}
		Emplace(world, Entity(e), v)
		return nil
	})
	return reg
}

// AddDebuger registers a describe hook for C with dbg, showing the
// component's fmt "%+v" rendering. A nil dbg means the caller has no
// EntityDebugSystem registered; that is warned about here rather than
// silently skipped.
func (reg *Registrant[C]) AddDebuger(dbg *debugui.Registry) *Registrant[C] {
	if dbg == nil {
		reg.logger().Warnw("can't find EntityDebugSystem", "component", TypeName[C]())
		return reg
	}
	world := reg.world
	dbg.RegisterComponent(componentDebugAdapter[C]{world: world, name: TypeName[C]()})
	return reg
}

// AddCreateFunc registers a debug-UI "add this component" hook that
// emplaces C's zero value on the target entity. A nil dbg is warned about,
// matching AddDebuger.
func (reg *Registrant[C]) AddCreateFunc(dbg *debugui.Registry) *Registrant[C] {
	if dbg == nil {
		reg.logger().Warnw("can't find EntityDebugSystem", "component", TypeName[C]())
		return reg
	}
	world := reg.world
	dbg.RegisterCreateFunc(TypeName[C](), func(e debugui.EntityID) error {
		var zero C
		Emplace(world, Entity(e), zero)
		return nil
	})
	return reg
}

type componentDebugAdapter[C any] struct {
	world *World
	name  string
}

func (a componentDebugAdapter[C]) Name() string { return a.name }

func (a componentDebugAdapter[C]) Describe(e debugui.EntityID) (string, bool) {
	v, ok := TryGet[C](a.world, Entity(e))
	if !ok {
		return "", false
	}
	return sprintComponent(*v), true
}
