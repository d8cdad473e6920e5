package ecs

import (
	"iter"
	"sync"
)

// Observer is a cached, refreshable view over the entities matching a
// Filter, plus the World mutation API re-exported with runtime access
// checks derived from that filter. The source enforces Require/Exclude
// access with compile-time static_asserts; Go generics cannot express a
// method that is itself generic, so the equivalent checks live in the
// package-level Obs* functions below and panic on violation, consistent
// with how every other precondition in this runtime is handled.
type Observer struct {
	world  *World
	filter Filter

	mu       sync.RWMutex
	entities []Entity
}

// NewObserver constructs an Observer over w for filter f and performs an
// initial refresh.
func NewObserver(w *World, f Filter) *Observer {
	o := &Observer{world: w, filter: f}
	o.Refresh()
	return o
}

// Refresh recomputes the cached entity snapshot and swaps it in under an
// exclusive lock. This is the only way the snapshot changes.
func (o *Observer) Refresh() {
	result := o.filter.evaluate(o.world)
	o.mu.Lock()
	o.entities = result
	o.mu.Unlock()
}

// Entities returns the sorted ascending snapshot as of the last refresh.
// Callers must not mutate the returned slice.
func (o *Observer) Entities() []Entity {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.entities
}

// Len returns the size of the current snapshot.
func (o *Observer) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entities)
}

// Empty reports whether the current snapshot has no entities.
func (o *Observer) Empty() bool {
	return o.Len() == 0
}

// At returns the EntityWrapper at index i of the current snapshot.
func (o *Observer) At(i int) EntityWrapper {
	o.mu.RLock()
	e := o.entities[i]
	o.mu.RUnlock()
	return EntityWrapper{entity: e, observer: o}
}

// All iterates the current snapshot, yielding one EntityWrapper per entity.
func (o *Observer) All() iter.Seq[EntityWrapper] {
	return func(yield func(EntityWrapper) bool) {
		o.mu.RLock()
		snapshot := o.entities
		o.mu.RUnlock()
		for _, e := range snapshot {
			if !yield(EntityWrapper{entity: e, observer: o}) {
				return
			}
		}
	}
}

// IsAlive reports whether e is currently alive in the backing World.
func (o *Observer) IsAlive(e Entity) bool {
	return o.world.IsAlive(e)
}

// Destroy defers removal of e.
func (o *Observer) Destroy(e Entity) {
	o.world.Destroy(e)
}

// DestroyAll defers removal of every entity in the current snapshot.
func (o *Observer) DestroyAll() {
	o.world.DestroyMany(o.Entities())
}

// Create allocates a new entity via the backing World.
func (o *Observer) Create() EntityWrapper {
	return EntityWrapper{entity: o.world.Create(), observer: o}
}

// EntityWrapper is a thin, non-owning handle pairing an Entity with the
// Observer that produced it. It forwards the same access-checked API,
// scoped to that one entity.
type EntityWrapper struct {
	entity   Entity
	observer *Observer
}

// Entity returns the wrapped id.
func (w EntityWrapper) Entity() Entity { return w.entity }

// IsAlive reports whether the wrapped entity is currently alive.
func (w EntityWrapper) IsAlive() bool { return w.observer.IsAlive(w.entity) }

// Destroy defers removal of the wrapped entity.
func (w EntityWrapper) Destroy() { w.observer.Destroy(w.entity) }

func checkExclude(f Filter, id ComponentTypeID) {
	if f.excludes(id) {
		panic(ErrFilterAccessDenied)
	}
}

func checkRequireExclude(f Filter, id ComponentTypeID) {
	if !f.requires(id) || f.excludes(id) {
		panic(ErrFilterAccessDenied)
	}
}

// ObsHas reports whether e bears C; C must not be in the observer's Exclude list.
func ObsHas[C any](o *Observer, e Entity) bool {
	checkExclude(o.filter, TypeID[C]())
	return Has[C](o.world, e)
}

// ObsGet returns a pointer to e's C component; C must be in Require and not in Exclude.
func ObsGet[C any](o *Observer, e Entity) *C {
	checkRequireExclude(o.filter, TypeID[C]())
	return Get[C](o.world, e)
}

// ObsTryGet returns e's C component and whether e bears it; C must not be in Exclude.
func ObsTryGet[C any](o *Observer, e Entity) (*C, bool) {
	checkExclude(o.filter, TypeID[C]())
	return TryGet[C](o.world, e)
}

// ObsEmplace inserts C on e; C must not be in Exclude.
func ObsEmplace[C any](o *Observer, e Entity, value C) {
	checkExclude(o.filter, TypeID[C]())
	Emplace(o.world, e, value)
}

// ObsEmplaceTagged inserts C on e and marks it Updated; C must not be in Exclude.
func ObsEmplaceTagged[C any](o *Observer, e Entity, value C) {
	checkExclude(o.filter, TypeID[C]())
	EmplaceTagged(o.world, e, value)
}

// ObsErase removes C from e; C must not be in Exclude.
func ObsErase[C any](o *Observer, e Entity) {
	checkExclude(o.filter, TypeID[C]())
	Erase[C](o.world, e)
}

// ObsMarkUpdated marks C updated on e; C must be in Require and not in Exclude.
func ObsMarkUpdated[C any](o *Observer, e Entity) {
	checkRequireExclude(o.filter, TypeID[C]())
	MarkUpdated[C](o.world, e)
}

// ObsClearUpdateTag clears C's update tag on e; C must not be in Exclude.
func ObsClearUpdateTag[C any](o *Observer, e Entity) {
	checkExclude(o.filter, TypeID[C]())
	ClearUpdateTag[C](o.world, e)
}

// ObsEraseAll removes C from every entity in the observer's current
// snapshot; C must not be in Exclude. The bulk counterpart of ObsErase.
func ObsEraseAll[C any](o *Observer) {
	checkExclude(o.filter, TypeID[C]())
	for _, e := range o.Entities() {
		Erase[C](o.world, e)
	}
}

// ObsClearUpdateTagAll clears C's update tag on every entity in the
// observer's current snapshot; C must not be in Exclude. The bulk
// counterpart of ObsClearUpdateTag.
func ObsClearUpdateTagAll[C any](o *Observer) {
	checkExclude(o.filter, TypeID[C]())
	for _, e := range o.Entities() {
		ClearUpdateTag[C](o.world, e)
	}
}

// Unpack1 through Unpack4 return pointers to the Require components in
// declaration order, the Go stand-in for the source's tuple-destructuring
// EntityWrapper::get(). Each type must be in the observer's Require list.
func Unpack1[A any](w EntityWrapper) *A {
	return ObsGet[A](w.observer, w.entity)
}

func Unpack2[A, B any](w EntityWrapper) (*A, *B) {
	return ObsGet[A](w.observer, w.entity), ObsGet[B](w.observer, w.entity)
}

func Unpack3[A, B, C any](w EntityWrapper) (*A, *B, *C) {
	return ObsGet[A](w.observer, w.entity), ObsGet[B](w.observer, w.entity), ObsGet[C](w.observer, w.entity)
}

func Unpack4[A, B, C, D any](w EntityWrapper) (*A, *B, *C, *D) {
	return ObsGet[A](w.observer, w.entity), ObsGet[B](w.observer, w.entity),
		ObsGet[C](w.observer, w.entity), ObsGet[D](w.observer, w.entity)
}

// CreateWith constructs a new entity and emplaces each component in comps,
// the Go stand-in for the source's Archetype-style bulk construction.
// Empty (tag) components should be passed as their zero value.
func CreateWith(o *Observer, comps ...func(*Observer, Entity)) EntityWrapper {
	w := o.Create()
	for _, apply := range comps {
		apply(o, w.entity)
	}
	return w
}

// With returns a CreateWith component applicator for C, e.g.
// CreateWith(o, With[HP](HP{Hp: 100}), With[Damage](Damage{Damage: 3})).
func With[C any](value C) func(*Observer, Entity) {
	return func(o *Observer, e Entity) {
		ObsEmplace[C](o, e, value)
	}
}
