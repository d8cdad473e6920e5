package ecs

import (
	"sort"
	"sync"

	"github.com/kamstrup/intmap"

	"github.com/forgecs/ecs/ecslog"
)

// World owns every component storage, the entity id pool, the
// deferred-destroy queue and the structural-change notify bus. A single
// process is expected to host exactly one World; NewWorld does not enforce
// this beyond documenting it, since the core offers no runtime recovery for
// programmer error (see errors.go).
type World struct {
	mu       sync.RWMutex
	entities []Entity // sorted ascending, live ids
	pool     *entityPool

	toDestroy []Entity

	storages      *intmap.Map[uint32, componentStorage]
	storageOrder  []componentStorage // insertion order, used for round-robin optimise and destroy fan-out
	componentName map[string]ComponentTypeID

	notify []func(Entity)

	optimiseCursor int

	log ecslog.Logger
}

// NewWorld constructs an empty World. It logs nothing until SetLogger
// attaches a real sink; the zero-value default is ecslog.NoOp.
func NewWorld() *World {
	return &World{
		pool:          newEntityPool(),
		storages:      intmap.New[uint32, componentStorage](64),
		componentName: make(map[string]ComponentTypeID),
		log:           ecslog.NoOp(),
	}
}

// SetLogger attaches log as the sink for the core's debug/warn/critical
// diagnostics (component registration, duplicate registration). Passing
// nil restores the no-op default.
func (w *World) SetLogger(log ecslog.Logger) {
	if log == nil {
		log = ecslog.NoOp()
	}
	w.log = log
}

// Entities returns the sorted ascending list of live ids.
func (w *World) Entities() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities
}

// RegisteredComponentNames returns the debug name to ComponentTypeID table.
func (w *World) RegisteredComponentNames() map[string]ComponentTypeID {
	return w.componentName
}

// IsAlive reports whether e is a currently live entity.
func (w *World) IsAlive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i := sort.Search(len(w.entities), func(i int) bool { return w.entities[i] >= e })
	return i < len(w.entities) && w.entities[i] == e
}

// Create allocates a fresh or recycled Entity, inserts it into the live set
// and emits a notify.
func (w *World) Create() Entity {
	w.mu.Lock()
	e := w.pool.create()
	pos := sort.Search(len(w.entities), func(i int) bool { return w.entities[i] >= e })
	w.entities = append(w.entities, 0)
	copy(w.entities[pos+1:], w.entities[pos:])
	w.entities[pos] = e
	w.mu.Unlock()

	w.notifyOne(e)
	return e
}

// Destroy defers removal of e to the next flush. Duplicate requests within
// the same tick are deduplicated at flush time, so calling Destroy on an
// already-queued entity is safe.
func (w *World) Destroy(e Entity) {
	w.toDestroy = append(w.toDestroy, e)
}

// DestroyMany defers removal of every id in es.
func (w *World) DestroyMany(es []Entity) {
	w.toDestroy = append(w.toDestroy, es...)
}

// flush sorts and dedups the pending destroy queue, removes each id from
// every storage, recycles the id, removes it from the live set and emits a
// notify. Called by Registry.Exec at the end of a tick.
func (w *World) flush() {
	if len(w.toDestroy) == 0 {
		return
	}

	pending := dedupSorted(w.toDestroy)
	w.toDestroy = w.toDestroy[:0]

	w.storages.ForEach(func(_ uint32, s componentStorage) bool {
		s.removeSorted(pending)
		return true
	})

	w.mu.Lock()
	w.entities = sortedDifference(w.entities, pending)
	for _, e := range pending {
		w.pool.recycle(e)
	}
	w.mu.Unlock()

	for _, e := range pending {
		w.notifyOne(e)
	}
}

// optimise runs one adjacent-swap sort pass per call, rotating through
// registered storages round-robin, and honours each storage's isOptimised
// flag by skipping storages that already report a fully sorted dense
// array: the cursor advances past them without spending a scan, stopping
// as soon as it finds one that actually does work (or after checking every
// storage once, if all of them are already settled). This resolves the
// original system's conflicting "every 128 ticks" vs "every tick" revisions
// in favour of the simpler, bounded one-storage-per-tick policy.
func (w *World) optimise() {
	n := len(w.storageOrder)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		s := w.storageOrder[w.optimiseCursor%n]
		w.optimiseCursor++
		if s.optimised() {
			continue
		}
		s.optimise()
		return
	}
}

// ComponentsNames returns the human-readable component names e currently
// bears. Debug/introspection only; see debugui for the richer contract.
func (w *World) ComponentsNames(e Entity) []string {
	names := make([]string, 0)
	for name, id := range w.componentName {
		if s, ok := w.storages.Get(uint32(id)); ok && s.has(e) {
			names = append(names, name)
		}
	}
	return names
}

// Subscribe registers fn to be invoked on every structural change to an
// entity: create, destroy, and any component emplace/erase.
func (w *World) Subscribe(fn func(Entity)) {
	w.notify = append(w.notify, fn)
}

func (w *World) notifyOne(e Entity) {
	for _, fn := range w.notify {
		fn(e)
	}
}

// registerStorage installs storage under a stable ComponentTypeID and
// records its debug name. Registering the same component type twice is a
// programmer error and panics, matching the source's debug-build assertion.
func registerStorage[C any](w *World, s *Storage[C]) {
	id := uint32(TypeID[C]())
	name := TypeName[C]()
	if _, exists := w.storages.Get(id); exists {
		w.log.Errorw("component already registered", "component", name)
		panic(ErrComponentAlreadyRegistered)
	}
	w.storages.Put(id, s)
	w.storageOrder = append(w.storageOrder, s)
	w.componentName[name] = TypeID[C]()
	w.log.Debugw("component registered", "component", name)
}

// storageFor looks up the typed Storage[C], panicking with
// ErrComponentNotRegistered if C was never registered via CreateStorage.
func storageFor[C any](w *World) *Storage[C] {
	s, ok := w.storages.Get(uint32(TypeID[C]()))
	if !ok {
		panic(ErrComponentNotRegistered)
	}
	typed, ok := s.(*Storage[C])
	if !ok {
		panic(ErrComponentNotRegistered)
	}
	return typed
}

// CreateStorage registers component type C (and its Updated[C] tag) with w.
// Idiomatic callers use Registrant instead of calling this directly.
func CreateStorage[C any](w *World) {
	registerStorage(w, NewStorage[C]())
	registerStorage(w, NewStorage[Updated[C]]())
}

// Has reports sparse-set membership of C on e.
func Has[C any](w *World, e Entity) bool {
	return storageFor[C](w).Has(e)
}

// Emplace inserts C on e, asserting e is alive, and emits a notify.
// Re-emplacing an already-present component is a no-op.
func Emplace[C any](w *World, e Entity, value C) {
	if !w.IsAlive(e) {
		panic(ErrDeadEntity)
	}
	storageFor[C](w).Emplace(e, value)
	w.notifyOne(e)
}

// ForceEmplace unconditionally overwrites C on e (erase-then-emplace),
// unlike Emplace which is a no-op when C is already present.
func ForceEmplace[C any](w *World, e Entity, value C) {
	if !w.IsAlive(e) {
		panic(ErrDeadEntity)
	}
	s := storageFor[C](w)
	s.Erase(e)
	s.Emplace(e, value)
	w.notifyOne(e)
}

// EmplaceTagged emplaces C then marks it Updated in one call.
func EmplaceTagged[C any](w *World, e Entity, value C) {
	Emplace(w, e, value)
	MarkUpdated[C](w, e)
}

// Erase removes C from e, asserting e is alive, and emits a notify.
func Erase[C any](w *World, e Entity) {
	if !w.IsAlive(e) {
		panic(ErrDeadEntity)
	}
	storageFor[C](w).Erase(e)
	w.notifyOne(e)
}

// MarkUpdated emplaces Updated[C] on e; e must already bear C.
func MarkUpdated[C any](w *World, e Entity) {
	if !Has[C](w, e) {
		panic(ErrComponentNotPresent)
	}
	Emplace(w, e, Updated[C]{})
}

// ClearUpdateTag erases Updated[C] from e.
func ClearUpdateTag[C any](w *World, e Entity) {
	Erase[Updated[C]](w, e)
}

// Get returns a pointer to e's C component, asserting membership.
func Get[C any](w *World, e Entity) *C {
	v, ok := storageFor[C](w).Get(e)
	if !ok {
		panic(ErrComponentNotPresent)
	}
	return v
}

// TryGet returns e's C component and whether e bears it.
func TryGet[C any](w *World, e Entity) (*C, bool) {
	return storageFor[C](w).Get(e)
}

// EntitiesOf returns the sorted ascending bearer list for C, the canonical
// filter input.
func EntitiesOf[C any](w *World) []Entity {
	return storageFor[C](w).Entities()
}

// SizeOf returns the number of bearers of C.
func SizeOf[C any](w *World) int {
	return storageFor[C](w).Len()
}

// dedupSorted sorts a copy of es and removes duplicates.
func dedupSorted(es []Entity) []Entity {
	cp := append([]Entity(nil), es...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	out := cp[:0]
	var last Entity
	first := true
	for _, e := range cp {
		if first || e != last {
			out = append(out, e)
			last = e
			first = false
		}
	}
	return out
}
