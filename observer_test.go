package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverRefreshReflectsWorldState(t *testing.T) {
	w := newTestWorld()
	o := NewObserver(w, Require1[health]())
	assert.True(t, o.Empty())

	e := w.Create()
	Emplace(w, e, health{HP: 1})
	assert.True(t, o.Empty(), "stale until Refresh")

	o.Refresh()
	assert.Equal(t, 1, o.Len())
	assert.Equal(t, e, o.At(0).Entity())
}

func TestObserverAccessOutsideRequirePanics(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 1})

	o := NewObserver(w, Require1[health]())
	assert.PanicsWithValue(t, ErrFilterAccessDenied, func() {
		ObsGet[tag](o, e)
	})
}

func TestObserverAccessOnExcludedComponentPanics(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 1})

	o := NewObserver(w, WithExclude1[tag](Require1[health]()))
	assert.PanicsWithValue(t, ErrFilterAccessDenied, func() {
		ObsHas[tag](o, e)
	})
}

func TestObserverEmplaceEraseThroughAccessCheckedAPI(t *testing.T) {
	w := newTestWorld()
	o := NewObserver(w, RunEveryFrame)

	wrapper := o.Create()
	ObsEmplace[health](o, wrapper.Entity(), health{HP: 5})
	assert.True(t, ObsHas[health](o, wrapper.Entity()))

	ObsErase[health](o, wrapper.Entity())
	assert.False(t, ObsHas[health](o, wrapper.Entity()))
}

func TestCreateWithBuildsArchetype(t *testing.T) {
	w := newTestWorld()
	o := NewObserver(w, RunEveryFrame)

	wrapper := CreateWith(o, With[health](health{HP: 42}), With[tag](tag{}))
	assert.Equal(t, 42, Get[health](w, wrapper.Entity()).HP)
	assert.True(t, Has[tag](w, wrapper.Entity()))
}

func TestUnpackReturnsRequiredComponents(t *testing.T) {
	w := newFilterTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 3})
	Emplace(w, e, velocity{DX: 1, DY: 2})

	o := NewObserver(w, Require2[health, velocity]())
	require.Equal(t, 1, o.Len())

	wrapper := o.At(0)
	hp, vel := Unpack2[health, velocity](wrapper)
	assert.Equal(t, 3, hp.HP)
	assert.Equal(t, velocity{DX: 1, DY: 2}, *vel)
}

func TestObserverUpdatedFilterAllowsAccessToUnderlyingComponent(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 5})
	MarkUpdated[health](w, e)

	o := NewObserver(w, Require1[Updated[health]]())
	require.Equal(t, 1, o.Len(), "e bears Updated[health] after MarkUpdated")

	var hp *health
	assert.NotPanics(t, func() {
		hp = ObsGet[health](o, e)
	}, "requiring Updated[health] must still permit reading health")
	require.NotNil(t, hp)
	assert.Equal(t, 5, hp.HP)

	assert.PanicsWithValue(t, ErrFilterAccessDenied, func() {
		ObsGet[tag](o, e)
	}, "the unwrap must not widen access to unrelated components")
}

func TestObsEraseAllRemovesFromEverySnapshotEntity(t *testing.T) {
	w := newTestWorld()
	o := NewObserver(w, Require1[health]())

	a, b := w.Create(), w.Create()
	Emplace(w, a, health{HP: 1})
	Emplace(w, b, health{HP: 2})
	Emplace(w, a, tag{})
	o.Refresh()
	require.Equal(t, 2, o.Len())

	ObsEraseAll[health](o)
	assert.False(t, Has[health](w, a))
	assert.False(t, Has[health](w, b))
	assert.True(t, Has[tag](w, a), "unrelated components are untouched")
}

func TestObsEraseAllRespectsExclude(t *testing.T) {
	w := newTestWorld()
	e := w.Create()
	Emplace(w, e, health{HP: 1})

	o := NewObserver(w, WithExclude1[health](RunEveryFrame))
	assert.PanicsWithValue(t, ErrFilterAccessDenied, func() {
		ObsEraseAll[health](o)
	})
}

func TestObsClearUpdateTagAllClearsEverySnapshotEntity(t *testing.T) {
	w := newTestWorld()
	o := NewObserver(w, Require1[health]())

	a, b := w.Create(), w.Create()
	Emplace(w, a, health{HP: 1})
	Emplace(w, b, health{HP: 2})
	MarkUpdated[health](w, a)
	MarkUpdated[health](w, b)
	o.Refresh()
	require.Equal(t, 2, o.Len())

	ObsClearUpdateTagAll[health](o)
	assert.False(t, Has[Updated[health]](w, a))
	assert.False(t, Has[Updated[health]](w, b))
}

func TestObserverDestroyAllDefersRemoval(t *testing.T) {
	w := newTestWorld()
	o := NewObserver(w, Require1[health]())

	e := w.Create()
	Emplace(w, e, health{HP: 1})
	o.Refresh()

	o.DestroyAll()
	assert.True(t, w.IsAlive(e), "destruction is deferred to flush")
	w.flush()
	assert.False(t, w.IsAlive(e))
}
