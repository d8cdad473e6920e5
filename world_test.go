package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct{ HP int }
type tag struct{}

func newTestWorld() *World {
	w := NewWorld()
	CreateStorage[health](w)
	CreateStorage[tag](w)
	return w
}

func TestWorldCreateDestroyRecyclesID(t *testing.T) {
	w := newTestWorld()
	a := w.Create()
	assert.True(t, w.IsAlive(a))

	w.Destroy(a)
	w.flush()
	assert.False(t, w.IsAlive(a))

	b := w.Create()
	assert.Equal(t, a, b, "the freed id must be reused before a fresh one is minted")
}

func TestWorldEmplaceOnDeadEntityPanics(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	w.Destroy(e)
	w.flush()

	assert.PanicsWithValue(t, ErrDeadEntity, func() {
		Emplace(w, e, health{HP: 10})
	})
}

func TestWorldEmplaceGetErase(t *testing.T) {
	w := newTestWorld()
	e := w.Create()

	Emplace(w, e, health{HP: 10})
	assert.True(t, Has[health](w, e))
	assert.Equal(t, 10, Get[health](w, e).HP)

	Erase[health](w, e)
	assert.False(t, Has[health](w, e))
}

func TestWorldGetMissingComponentPanics(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	assert.PanicsWithValue(t, ErrComponentNotPresent, func() {
		Get[health](w, e)
	})
}

func TestWorldForceEmplaceOverwrites(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 10})
	Emplace(w, e, health{HP: 999}) // no-op, already present
	assert.Equal(t, 10, Get[health](w, e).HP)

	ForceEmplace(w, e, health{HP: 999})
	assert.Equal(t, 999, Get[health](w, e).HP)
}

func TestWorldMarkUpdatedRequiresComponent(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	assert.PanicsWithValue(t, ErrComponentNotPresent, func() {
		MarkUpdated[health](w, e)
	})

	Emplace(w, e, health{HP: 10})
	MarkUpdated[health](w, e)
	assert.True(t, Has[Updated[health]](w, e))

	ClearUpdateTag[health](w, e)
	assert.False(t, Has[Updated[health]](w, e))
}

func TestWorldFlushDeduplicatesDestroyQueue(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	w.Destroy(e)
	w.Destroy(e) // duplicate within the same tick

	assert.NotPanics(t, w.flush)
	assert.False(t, w.IsAlive(e))
}

func TestWorldDestroyIsDeferredUntilFlush(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 10})

	w.Destroy(e)
	assert.True(t, w.IsAlive(e), "entity stays alive until flush")
	assert.True(t, Has[health](w, e))

	w.flush()
	assert.False(t, w.IsAlive(e))
}

func TestComponentsNamesListsBearerComponents(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 1})

	names := w.ComponentsNames(e)
	require.Len(t, names, 1)
	assert.Contains(t, names[0], "health")

	Emplace(w, e, tag{})
	names = w.ComponentsNames(e)
	require.Len(t, names, 2)

	other := w.Create()
	assert.Empty(t, w.ComponentsNames(other))
}

func TestEntitiesOfIsSortedAscending(t *testing.T) {
	w := newTestWorld()
	ids := make([]Entity, 0, 3)
	for i := 0; i < 3; i++ {
		e := w.Create()
		Emplace(w, e, health{HP: 1})
		ids = append(ids, e)
	}

	require.Equal(t, ids, EntitiesOf[health](w))
}

func TestWorldOptimiseRotatesThroughStorages(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 1})
	Emplace(w, e, tag{})

	assert.NotPanics(t, func() {
		for i := 0; i < len(w.storageOrder)*2; i++ {
			w.optimise()
		}
	})
}

func TestWorldOptimiseSkipsAlreadyOptimisedStorages(t *testing.T) {
	w := newTestWorld()
	for _, s := range w.storageOrder {
		require.True(t, s.optimised(), "freshly registered storages start optimised")
	}

	before := w.optimiseCursor
	w.optimise()
	assert.Equal(t, before+len(w.storageOrder), w.optimiseCursor,
		"a call that finds nothing to do should skip past every already-optimised storage")
}

func TestWorldOptimiseStopsAtFirstStorageNeedingWork(t *testing.T) {
	w := newTestWorld()
	a, b, c := w.Create(), w.Create(), w.Create()
	// health is storageOrder[0]; emplacing in descending id order leaves its
	// dense array out of order while every other storage stays untouched.
	Emplace(w, c, health{HP: 1})
	Emplace(w, b, health{HP: 1})
	Emplace(w, a, health{HP: 1})
	require.False(t, w.storageOrder[0].optimised())

	before := w.optimiseCursor
	w.optimise()
	assert.Equal(t, before+1, w.optimiseCursor,
		"optimise must stop at the first storage it actually does work on, not skip past it too")
}
